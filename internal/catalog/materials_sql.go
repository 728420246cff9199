package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SupportMaterial is an extra file attached to a lesson (PDFs, slides).
// The file itself lives in the blob store; file_path is its key.
type SupportMaterial struct {
	ID        string `json:"id"`
	LessonID  string `json:"lesson_id"`
	Name      string `json:"name"`
	Comment   string `json:"comment,omitempty"`
	FilePath  string `json:"file_path"`
	CreatedAt int64  `json:"created_at"`
}

func (s *SQLStore) AddMaterial(ctx context.Context, m SupportMaterial) (SupportMaterial, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO support_materials (id, lesson_id, name, comment, file_path, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.LessonID, m.Name, m.Comment, m.FilePath, m.CreatedAt)
	return m, err
}

func (s *SQLStore) ListMaterials(ctx context.Context, lessonID string) ([]SupportMaterial, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson_id, name, comment, file_path, created_at
		   FROM support_materials WHERE lesson_id=$1 ORDER BY created_at DESC`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SupportMaterial{}
	for rows.Next() {
		var m SupportMaterial
		if err := rows.Scan(&m.ID, &m.LessonID, &m.Name, &m.Comment, &m.FilePath, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMaterial removes the row and reports the blob key so the caller
// can remove the file too.
func (s *SQLStore) DeleteMaterial(ctx context.Context, id string) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx,
		`SELECT file_path FROM support_materials WHERE id=$1`, id).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM support_materials WHERE id=$1`, id)
	return key, err
}

package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/eadlabs/ead-platform/internal/rbac"
)

var ErrNotFound = errors.New("not found")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// ListModules returns all modules ordered by display_order with nested
// lessons. For student viewers every lesson is annotated with its own
// completion flag joined from student_progress.
func (s *SQLStore) ListModules(ctx context.Context, viewer Viewer) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, is_free, price, display_order, quiz_question_cap
		   FROM modules ORDER BY display_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := []Module{}
	idx := map[string]int{}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.IsFree, &m.Price, &m.DisplayOrder, &m.QuizQuestionCap); err != nil {
			return nil, err
		}
		m.Lessons = []Lesson{}
		idx[m.ID] = len(modules)
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Resolve the completion map before opening the lessons cursor: a
	// nested query while lrows holds its connection starves a small pool.
	var completed map[string]bool
	if viewer.Role == rbac.RoleStudent {
		completed, err = s.completedLessons(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
	}

	lrows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, title, description, video_hls_path, support_material_path, display_order, min_pass_score
		   FROM lessons ORDER BY display_order ASC`)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()

	for lrows.Next() {
		var l Lesson
		var video, material sql.NullString
		if err := lrows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Description, &video, &material, &l.DisplayOrder, &l.MinPassScore); err != nil {
			return nil, err
		}
		l.VideoHLSPath = video.String
		l.SupportMaterialPath = material.String
		if completed != nil {
			done := completed[l.ID]
			l.IsCompleted = &done
		}
		if i, ok := idx[l.ModuleID]; ok {
			modules[i].Lessons = append(modules[i].Lessons, l)
		}
	}
	return modules, lrows.Err()
}

func (s *SQLStore) completedLessons(ctx context.Context, studentID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lesson_id FROM student_progress WHERE student_id=$1 AND is_completed=TRUE`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *SQLStore) GetModule(ctx context.Context, id string) (Module, error) {
	var m Module
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, is_free, price, display_order, quiz_question_cap
		   FROM modules WHERE id=$1`, id,
	).Scan(&m.ID, &m.Title, &m.Description, &m.IsFree, &m.Price, &m.DisplayOrder, &m.QuizQuestionCap)
	if errors.Is(err, sql.ErrNoRows) {
		return Module{}, ErrNotFound
	}
	return m, err
}

func (s *SQLStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	var l Lesson
	var video, material sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, module_id, title, description, video_hls_path, support_material_path, display_order, min_pass_score
		   FROM lessons WHERE id=$1`, id,
	).Scan(&l.ID, &l.ModuleID, &l.Title, &l.Description, &video, &material, &l.DisplayOrder, &l.MinPassScore)
	if errors.Is(err, sql.ErrNoRows) {
		return Lesson{}, ErrNotFound
	}
	l.VideoHLSPath = video.String
	l.SupportMaterialPath = material.String
	return l, err
}

func (s *SQLStore) CreateModule(ctx context.Context, m Module) (Module, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO modules (id, title, description, is_free, price, display_order, quiz_question_cap)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Title, m.Description, m.IsFree, m.Price, m.DisplayOrder, m.QuizQuestionCap)
	return m, err
}

func (s *SQLStore) UpdateModule(ctx context.Context, m Module) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE modules SET title=$1, description=$2, is_free=$3, price=$4, display_order=$5, quiz_question_cap=$6
		  WHERE id=$7`,
		m.Title, m.Description, m.IsFree, m.Price, m.DisplayOrder, m.QuizQuestionCap, m.ID)
	return oneRow(res, err)
}

func (s *SQLStore) DeleteModule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id=$1`, id)
	return oneRow(res, err)
}

func (s *SQLStore) CreateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.MinPassScore == 0 {
		l.MinPassScore = 70
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, module_id, title, description, video_hls_path, support_material_path, display_order, min_pass_score)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		l.ID, l.ModuleID, l.Title, l.Description, nullable(l.VideoHLSPath), nullable(l.SupportMaterialPath), l.DisplayOrder, l.MinPassScore)
	return l, err
}

func (s *SQLStore) UpdateLesson(ctx context.Context, l Lesson) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET title=$1, description=$2, video_hls_path=$3, support_material_path=$4, display_order=$5, min_pass_score=$6
		  WHERE id=$7`,
		l.Title, l.Description, nullable(l.VideoHLSPath), nullable(l.SupportMaterialPath), l.DisplayOrder, l.MinPassScore, l.ID)
	return oneRow(res, err)
}

func (s *SQLStore) DeleteLesson(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	return oneRow(res, err)
}

// LessonPassScore implements assessment.PassPolicy.
func (s *SQLStore) LessonPassScore(ctx context.Context, lessonID string) (int, error) {
	var min int
	err := s.db.QueryRowContext(ctx,
		`SELECT min_pass_score FROM lessons WHERE id=$1`, lessonID).Scan(&min)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return min, err
}

// CountLessons feeds the completion gate.
func (s *SQLStore) CountLessons(ctx context.Context, moduleID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lessons WHERE module_id=$1`, moduleID).Scan(&n)
	return n, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func oneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

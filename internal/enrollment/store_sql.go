package enrollment

import (
	"context"
	"database/sql"
	"time"
)

type Enrollment struct {
	StudentID  string `json:"student_id"`
	ModuleID   string `json:"module_id"`
	Status     string `json:"status"` // active|completed
	EnrolledAt int64  `json:"enrolled_at"`
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Enroll grants a student access to a module. Enrolling twice is a no-op,
// not an error; the first enrolled_at wins. There is no unenroll path.
// Reports whether a new row was written so callers can journal first-time
// enrollments without logging the no-op repeats.
func (s *SQLStore) Enroll(ctx context.Context, studentID, moduleID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (student_id, module_id, status, enrolled_at)
		 VALUES ($1,$2,'active',$3)
		 ON CONFLICT (student_id, module_id) DO NOTHING`,
		studentID, moduleID, time.Now().Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) ListByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, module_id, status, enrolled_at
		   FROM enrollments WHERE student_id=$1 ORDER BY enrolled_at ASC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Enrollment{}
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.StudentID, &e.ModuleID, &e.Status, &e.EnrolledAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Exists implements the completion gate's enrollment predicate.
func (s *SQLStore) Exists(ctx context.Context, studentID, moduleID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE student_id=$1 AND module_id=$2`,
		studentID, moduleID).Scan(&n)
	return n > 0, err
}

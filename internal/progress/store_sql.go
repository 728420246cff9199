package progress

import (
	"context"
	"database/sql"
	"time"
)

type Progress struct {
	StudentID   string `json:"student_id"`
	LessonID    string `json:"lesson_id"`
	IsCompleted bool   `json:"is_completed"`
	CompletedAt int64  `json:"completed_at,omitempty"`
	AnswersJSON string `json:"-"`
}

// StudentLessonRow is the staff-facing per-student detail row.
type StudentLessonRow struct {
	ModuleTitle string `json:"module_title"`
	LessonID    string `json:"lesson_id"`
	LessonTitle string `json:"lesson_title"`
	IsCompleted bool   `json:"is_completed"`
	CompletedAt int64  `json:"completed_at,omitempty"`
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// MarkCompleted upserts the (student, lesson) row to completed. Calling it
// again refreshes the timestamp and snapshot instead of creating a
// duplicate; the unique pair key makes concurrent writers converge.
func (s *SQLStore) MarkCompleted(ctx context.Context, studentID, lessonID, answersJSON string) error {
	var answers any
	if answersJSON != "" {
		answers = answersJSON
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO student_progress (student_id, lesson_id, is_completed, completed_at, answers_json)
		 VALUES ($1,$2,TRUE,$3,$4)
		 ON CONFLICT (student_id, lesson_id)
		 DO UPDATE SET is_completed=TRUE, completed_at=EXCLUDED.completed_at, answers_json=EXCLUDED.answers_json`,
		studentID, lessonID, time.Now().Unix(), answers)
	return err
}

func (s *SQLStore) Get(ctx context.Context, studentID, lessonID string) (Progress, bool, error) {
	var p Progress
	var completedAt sql.NullInt64
	var answers sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT student_id, lesson_id, is_completed, completed_at, answers_json
		   FROM student_progress WHERE student_id=$1 AND lesson_id=$2`,
		studentID, lessonID,
	).Scan(&p.StudentID, &p.LessonID, &p.IsCompleted, &completedAt, &answers)
	if err == sql.ErrNoRows {
		return Progress{}, false, nil
	}
	if err != nil {
		return Progress{}, false, err
	}
	p.CompletedAt = completedAt.Int64
	p.AnswersJSON = answers.String
	return p, true, nil
}

// CountCompletedInModule implements the completion gate's progress side.
func (s *SQLStore) CountCompletedInModule(ctx context.Context, studentID, moduleID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		   FROM student_progress sp
		   JOIN lessons l ON sp.lesson_id = l.id
		  WHERE sp.student_id=$1 AND l.module_id=$2 AND sp.is_completed=TRUE`,
		studentID, moduleID).Scan(&n)
	return n, err
}

func (s *SQLStore) ListForStudent(ctx context.Context, studentID string) ([]StudentLessonRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.title, l.id, l.title, sp.is_completed, COALESCE(sp.completed_at, 0)
		   FROM student_progress sp
		   JOIN lessons l ON sp.lesson_id = l.id
		   JOIN modules m ON l.module_id = m.id
		  WHERE sp.student_id=$1
		  ORDER BY m.display_order ASC, l.display_order ASC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []StudentLessonRow{}
	for rows.Next() {
		var r StudentLessonRow
		if err := rows.Scan(&r.ModuleTitle, &r.LessonID, &r.LessonTitle, &r.IsCompleted, &r.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

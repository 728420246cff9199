package assessment

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// CreateQuestion writes a question under exactly one owner. The owner
// partition is immutable after creation; there is no update path that
// moves a question between a lesson and a module.
func (s *SQLStore) CreateQuestion(ctx context.Context, owner QuestionOwner, q Question) (Question, error) {
	q.CorrectOption = strings.ToUpper(strings.TrimSpace(q.CorrectOption))
	switch q.CorrectOption {
	case "A", "B", "C", "D":
	default:
		return Question{}, ErrBadOption
	}
	if strings.TrimSpace(q.Text) == "" {
		return Question{}, ErrQuestionEmpty
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.LessonID, _ = owner.LessonID()
	q.ModuleID, _ = owner.ModuleID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, lesson_id, module_id, question_text, option_a, option_b, option_c, option_d, correct_option)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		q.ID, nullable(q.LessonID), nullable(q.ModuleID), q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption)
	return q, err
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	return err
}

// ListForOwner resolves the owner's question set. A module-scoped listing
// excludes any question that carries a lesson id: the module list is the
// final exam only. includeKey selects the editor view; the taker view
// strips correct_option.
func (s *SQLStore) ListForOwner(ctx context.Context, owner QuestionOwner, includeKey bool) ([]Question, error) {
	rows, err := s.queryOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Question{}
	for rows.Next() {
		var q Question
		var lessonID, moduleID sql.NullString
		if err := rows.Scan(&q.ID, &lessonID, &moduleID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption); err != nil {
			return nil, err
		}
		q.LessonID = lessonID.String
		q.ModuleID = moduleID.String
		if !includeKey {
			q.CorrectOption = ""
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) queryOwner(ctx context.Context, owner QuestionOwner) (*sql.Rows, error) {
	const cols = `id, lesson_id, module_id, question_text, option_a, option_b, option_c, option_d, correct_option`
	if lessonID, ok := owner.LessonID(); ok {
		return s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM questions WHERE lesson_id=$1`, lessonID)
	}
	moduleID, ok := owner.ModuleID()
	if !ok {
		return nil, ErrBadOwner
	}
	return s.db.QueryContext(ctx,
		`SELECT `+cols+` FROM questions WHERE module_id=$1 AND lesson_id IS NULL`, moduleID)
}

// HasQuestions is what the progress service consults before allowing an
// unvalidated completion.
func (s *SQLStore) HasQuestions(ctx context.Context, owner QuestionOwner) (bool, error) {
	var n int
	if lessonID, ok := owner.LessonID(); ok {
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM questions WHERE lesson_id=$1`, lessonID).Scan(&n)
		return n > 0, err
	}
	moduleID, ok := owner.ModuleID()
	if !ok {
		return false, ErrBadOwner
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE module_id=$1 AND lesson_id IS NULL`, moduleID).Scan(&n)
	return n > 0, err
}

// UpsertGrade overwrites the single (student, module) grade slot.
func (s *SQLStore) UpsertGrade(ctx context.Context, g Grade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO student_grades (student_id, module_id, grade, passed, graded_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (student_id, module_id)
		 DO UPDATE SET grade=EXCLUDED.grade, passed=EXCLUDED.passed, graded_at=EXCLUDED.graded_at`,
		g.StudentID, g.ModuleID, g.Grade, g.Passed, time.Now().Unix())
	return err
}

func (s *SQLStore) GetGrade(ctx context.Context, studentID, moduleID string) (Grade, bool, error) {
	var g Grade
	err := s.db.QueryRowContext(ctx,
		`SELECT student_id, module_id, grade, passed, graded_at
		   FROM student_grades WHERE student_id=$1 AND module_id=$2`,
		studentID, moduleID,
	).Scan(&g.StudentID, &g.ModuleID, &g.Grade, &g.Passed, &g.GradedAt)
	if err == sql.ErrNoRows {
		return Grade{}, false, nil
	}
	return g, err == nil, err
}

// ListGrades is the staff listing across all students, newest first.
func (s *SQLStore) ListGrades(ctx context.Context) ([]GradeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.name, u.email, m.title, sg.grade, sg.passed, sg.graded_at
		   FROM student_grades sg
		   JOIN users u ON sg.student_id = u.id
		   JOIN modules m ON sg.module_id = m.id
		  ORDER BY sg.graded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GradeRow{}
	for rows.Next() {
		var r GradeRow
		if err := rows.Scan(&r.StudentName, &r.StudentEmail, &r.ModuleTitle, &r.Grade, &r.Passed, &r.GradedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GradesForStudent feeds the per-student detail view.
func (s *SQLStore) GradesForStudent(ctx context.Context, studentID string) ([]GradeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.name, u.email, m.title, sg.grade, sg.passed, sg.graded_at
		   FROM student_grades sg
		   JOIN users u ON sg.student_id = u.id
		   JOIN modules m ON sg.module_id = m.id
		  WHERE sg.student_id=$1
		  ORDER BY m.display_order ASC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GradeRow{}
	for rows.Next() {
		var r GradeRow
		if err := rows.Scan(&r.StudentName, &r.StudentEmail, &r.ModuleTitle, &r.Grade, &r.Passed, &r.GradedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package assessment_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/eadlabs/ead-platform/internal/assessment"
	"github.com/eadlabs/ead-platform/internal/catalog"
	"github.com/eadlabs/ead-platform/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func seedStudent(t *testing.T, dbh *sql.DB, id string) {
	t.Helper()
	if _, err := dbh.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, 'Student', $2, 'x', 'aluno', 0)`, id, id+"@example.com"); err != nil {
		t.Fatalf("seed student: %v", err)
	}
}

func seedModule(t *testing.T, dbh *sql.DB, id, title string) {
	t.Helper()
	if _, err := dbh.Exec(
		`INSERT INTO modules (id, title) VALUES ($1, $2)`, id, title); err != nil {
		t.Fatalf("seed module: %v", err)
	}
}

func seedLesson(t *testing.T, dbh *sql.DB, id, moduleID string, minPass int) {
	t.Helper()
	if _, err := dbh.Exec(
		`INSERT INTO lessons (id, module_id, title, min_pass_score) VALUES ($1, $2, 'Lesson', $3)`,
		id, moduleID, minPass); err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
}

func mustCreateQuestion(t *testing.T, store *assessment.SQLStore, owner assessment.QuestionOwner, id, correct string) {
	t.Helper()
	_, err := store.CreateQuestion(context.Background(), owner, assessment.Question{
		ID:      id,
		Text:    "q " + id,
		OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: correct,
	})
	if err != nil {
		t.Fatalf("create question %s: %v", id, err)
	}
}

func TestSubmitEmptyQuestionSetPassesVacuously(t *testing.T) {
	dbh := openTestDB(t)
	store := assessment.NewSQLStore(dbh)
	engine := assessment.NewEngine(store, nil, nil)

	seedStudent(t, dbh, "s1")
	seedModule(t, dbh, "m1", "Basics")

	res, err := engine.Submit(context.Background(), "s1", assessment.ModuleOwner("m1"), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 100 || !res.Passed || res.Total != 0 {
		t.Fatalf("want vacuous pass, got %+v", res)
	}
	if _, ok, _ := store.GetGrade(context.Background(), "s1", "m1"); ok {
		t.Fatalf("vacuous pass must not persist a grade")
	}
}

func TestSubmitModuleQuizPersistsGrade(t *testing.T) {
	dbh := openTestDB(t)
	store := assessment.NewSQLStore(dbh)
	engine := assessment.NewEngine(store, nil, nil)
	ctx := context.Background()

	seedStudent(t, dbh, "s1")
	seedModule(t, dbh, "m1", "Basics")
	owner := assessment.ModuleOwner("m1")
	mustCreateQuestion(t, store, owner, "q1", "A")
	mustCreateQuestion(t, store, owner, "q2", "B")

	// One right (case-insensitive match), one wrong.
	res, err := engine.Submit(ctx, "s1", owner, map[string]string{"q1": "a", "q2": "C"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 50 || res.Passed || res.Correct != 1 || res.Total != 2 {
		t.Fatalf("want 50/fail 1/2, got %+v", res)
	}
	g, ok, err := store.GetGrade(ctx, "s1", "m1")
	if err != nil || !ok {
		t.Fatalf("get grade: ok=%v err=%v", ok, err)
	}
	if g.Grade != 50 || g.Passed {
		t.Fatalf("persisted grade mismatch: %+v", g)
	}

	// Retake overwrites the single slot, no second row.
	if _, err := engine.Submit(ctx, "s1", owner, map[string]string{"q1": "A", "q2": "b"}); err != nil {
		t.Fatalf("retake: %v", err)
	}
	g, _, _ = store.GetGrade(ctx, "s1", "m1")
	if g.Grade != 100 || !g.Passed {
		t.Fatalf("retake should overwrite grade, got %+v", g)
	}
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(*) FROM student_grades WHERE student_id='s1'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("want single grade slot, got %d rows", n)
	}
}

func TestSubmitLessonQuizDoesNotPersistGrade(t *testing.T) {
	dbh := openTestDB(t)
	store := assessment.NewSQLStore(dbh)
	courses := catalog.NewSQLStore(dbh)
	engine := assessment.NewEngine(store, courses, nil)
	ctx := context.Background()

	seedStudent(t, dbh, "s1")
	seedModule(t, dbh, "m1", "Basics")
	seedLesson(t, dbh, "l1", "m1", 70)
	owner := assessment.LessonOwner("l1")
	mustCreateQuestion(t, store, owner, "q1", "D")

	res, err := engine.Submit(ctx, "s1", owner, map[string]string{"q1": "d"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 100 || !res.Passed {
		t.Fatalf("want perfect pass, got %+v", res)
	}
	if _, ok, _ := store.GetGrade(ctx, "s1", "m1"); ok {
		t.Fatalf("lesson submission must not write a module grade")
	}
}

func TestSubmitLessonHonorsMinPassScore(t *testing.T) {
	dbh := openTestDB(t)
	store := assessment.NewSQLStore(dbh)
	courses := catalog.NewSQLStore(dbh)
	engine := assessment.NewEngine(store, courses, nil)
	ctx := context.Background()

	seedStudent(t, dbh, "s1")
	seedModule(t, dbh, "m1", "Basics")
	seedLesson(t, dbh, "l1", "m1", 50)
	owner := assessment.LessonOwner("l1")
	mustCreateQuestion(t, store, owner, "q1", "A")
	mustCreateQuestion(t, store, owner, "q2", "B")

	res, err := engine.Submit(ctx, "s1", owner, map[string]string{"q1": "A"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 50 || !res.Passed {
		t.Fatalf("50%% should pass a lesson with min_pass_score=50, got %+v", res)
	}
}

func TestModuleListingExcludesLessonQuestions(t *testing.T) {
	dbh := openTestDB(t)
	store := assessment.NewSQLStore(dbh)
	ctx := context.Background()

	seedModule(t, dbh, "m1", "Basics")
	seedLesson(t, dbh, "l1", "m1", 70)
	mustCreateQuestion(t, store, assessment.LessonOwner("l1"), "ql", "A")
	mustCreateQuestion(t, store, assessment.ModuleOwner("m1"), "qm", "B")

	got, err := store.ListForOwner(ctx, assessment.ModuleOwner("m1"), false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "qm" {
		t.Fatalf("module list must be final-exam questions only, got %+v", got)
	}
	if got[0].CorrectOption != "" {
		t.Fatalf("taker view leaked the answer key")
	}

	edit, err := store.ListForOwner(ctx, assessment.ModuleOwner("m1"), true)
	if err != nil {
		t.Fatalf("list edit: %v", err)
	}
	if edit[0].CorrectOption != "B" {
		t.Fatalf("editor view should carry the key, got %q", edit[0].CorrectOption)
	}
}

func TestOwnerFromIDsRejectsBothAndNeither(t *testing.T) {
	if _, err := assessment.OwnerFromIDs("l1", "m1"); err != assessment.ErrBadOwner {
		t.Fatalf("both ids: want ErrBadOwner, got %v", err)
	}
	if _, err := assessment.OwnerFromIDs("", ""); err != assessment.ErrBadOwner {
		t.Fatalf("neither id: want ErrBadOwner, got %v", err)
	}
	if _, err := assessment.OwnerFromIDs("l1", ""); err != nil {
		t.Fatalf("lesson only: %v", err)
	}
}

func TestCreateQuestionRejectsBadOption(t *testing.T) {
	dbh := openTestDB(t)
	store := assessment.NewSQLStore(dbh)
	seedModule(t, dbh, "m1", "Basics")

	_, err := store.CreateQuestion(context.Background(), assessment.ModuleOwner("m1"), assessment.Question{
		Text:    "q",
		OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: "E",
	})
	if err != assessment.ErrBadOption {
		t.Fatalf("want ErrBadOption, got %v", err)
	}
}

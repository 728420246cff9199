package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eadlabs/ead-platform/internal/catalog"
	"github.com/eadlabs/ead-platform/internal/db"
	"github.com/eadlabs/ead-platform/internal/rbac"
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

func TestListModulesAnnotatesStudentCompletion(t *testing.T) {
	dbh := openTestDB(t)
	store := catalog.NewSQLStore(dbh)
	ctx := context.Background()

	stmts := []string{
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ('s1', 'Student', 's1@x.com', 'x', 'aluno', 0)`,
		`INSERT INTO modules (id, title, display_order) VALUES ('m1', 'Basics', 1)`,
		`INSERT INTO lessons (id, module_id, title, display_order) VALUES
		 ('l1', 'm1', 'Intro', 1), ('l2', 'm1', 'Next', 2)`,
		`INSERT INTO student_progress (student_id, lesson_id, is_completed, completed_at)
		 VALUES ('s1', 'l1', TRUE, 1)`,
	}
	for _, s := range stmts {
		if _, err := dbh.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	modules, err := store.ListModules(ctx, catalog.Viewer{ID: "s1", Role: rbac.RoleStudent})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(modules) != 1 || len(modules[0].Lessons) != 2 {
		t.Fatalf("tree shape wrong: %+v", modules)
	}
	l1, l2 := modules[0].Lessons[0], modules[0].Lessons[1]
	if l1.IsCompleted == nil || !*l1.IsCompleted {
		t.Fatalf("l1 should be flagged completed")
	}
	if l2.IsCompleted == nil || *l2.IsCompleted {
		t.Fatalf("l2 should be flagged not completed")
	}

	// Staff view carries no per-student flags.
	staffView, err := store.ListModules(ctx, catalog.Viewer{ID: "p1", Role: rbac.RoleInstructor})
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if staffView[0].Lessons[0].IsCompleted != nil {
		t.Fatalf("staff view must not be annotated")
	}
}

// The student listing issues a completion lookup besides the module and
// lesson cursors; with a pool of one connection it must still return
// instead of waiting on itself.
func TestListModulesStudentViewOnSingleConnection(t *testing.T) {
	dbh := openTestDB(t)
	store := catalog.NewSQLStore(dbh)

	stmts := []string{
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ('s1', 'Student', 's1@x.com', 'x', 'aluno', 0)`,
		`INSERT INTO modules (id, title) VALUES ('m1', 'Basics')`,
		`INSERT INTO lessons (id, module_id, title) VALUES ('l1', 'm1', 'Intro')`,
		`INSERT INTO student_progress (student_id, lesson_id, is_completed, completed_at)
		 VALUES ('s1', 'l1', TRUE, 1)`,
	}
	for _, s := range stmts {
		if _, err := dbh.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := store.ListModules(context.Background(), catalog.Viewer{ID: "s1", Role: rbac.RoleStudent})
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("list: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("ListModules blocked on its own pool connection")
	}
}

func TestUpdateMissingModuleReturnsNotFound(t *testing.T) {
	store := catalog.NewSQLStore(openTestDB(t))
	err := store.UpdateModule(context.Background(), catalog.Module{ID: "nope", Title: "x"})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCreateLessonDefaultsMinPassScore(t *testing.T) {
	dbh := openTestDB(t)
	store := catalog.NewSQLStore(dbh)
	ctx := context.Background()

	if _, err := dbh.Exec(`INSERT INTO modules (id, title) VALUES ('m1', 'Basics')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, err := store.CreateLesson(ctx, catalog.Lesson{ModuleID: "m1", Title: "Intro"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	min, err := store.LessonPassScore(ctx, l.ID)
	if err != nil || min != 70 {
		t.Fatalf("want default 70, got %d err=%v", min, err)
	}
}

func TestDeleteModuleCascadesLessons(t *testing.T) {
	dbh := openTestDB(t)
	store := catalog.NewSQLStore(dbh)
	ctx := context.Background()

	stmts := []string{
		`INSERT INTO modules (id, title) VALUES ('m1', 'Basics')`,
		`INSERT INTO lessons (id, module_id, title) VALUES ('l1', 'm1', 'Intro')`,
	}
	for _, s := range stmts {
		if _, err := dbh.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := store.DeleteModule(ctx, "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, err := store.CountLessons(ctx, "m1"); err != nil || n != 0 {
		t.Fatalf("lessons should cascade away, got %d err=%v", n, err)
	}
}

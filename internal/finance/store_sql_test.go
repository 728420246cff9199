package finance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/eadlabs/ead-platform/internal/db"
	"github.com/eadlabs/ead-platform/internal/finance"
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

	if _, err := dbh.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES
		 ('s1', 'A', 'a@x.com', 'x', 'aluno', 0),
		 ('s2', 'B', 'b@x.com', 'x', 'aluno', 0)`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return dbh
}

func TestCreateValidatesCharge(t *testing.T) {
	store := finance.NewSQLStore(openTestDB(t))
	ctx := context.Background()

	bad := []finance.Charge{
		{Amount: 100, DueDate: "2026-10-01"},                        // no student
		{StudentID: "s1", Amount: 0, DueDate: "2026-10-01"},         // zero amount
		{StudentID: "s1", Amount: 100, DueDate: "01/10/2026"},       // wrong date format
		{StudentID: "s1", Amount: 100, DueDate: "2026-13-01"},       // invalid month
	}
	for i, c := range bad {
		if _, err := store.Create(ctx, c); !errors.Is(err, finance.ErrBadCharge) {
			t.Errorf("case %d: want ErrBadCharge, got %v", i, err)
		}
	}

	c, err := store.Create(ctx, finance.Charge{StudentID: "s1", Amount: 150.5, DueDate: "2026-10-01"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" || c.Status != "pending" {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestGetForStudentScopesToOwner(t *testing.T) {
	store := finance.NewSQLStore(openTestDB(t))
	ctx := context.Background()

	c, err := store.Create(ctx, finance.Charge{StudentID: "s1", Amount: 99, DueDate: "2026-09-30"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, ok, err := store.GetForStudent(ctx, c.ID, "s1"); err != nil || !ok {
		t.Fatalf("owner should see the charge: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := store.GetForStudent(ctx, c.ID, "s2"); ok {
		t.Fatalf("charge must not leak to another student")
	}
}

func TestListAllJoinsStudentIdentity(t *testing.T) {
	store := finance.NewSQLStore(openTestDB(t))
	ctx := context.Background()

	if _, err := store.Create(ctx, finance.Charge{StudentID: "s1", Amount: 50, DueDate: "2026-09-30"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	list, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].StudentName != "A" || list[0].StudentEmail != "a@x.com" {
		t.Fatalf("join missing: %+v", list)
	}
}

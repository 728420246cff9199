package metrics_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/eadlabs/ead-platform/internal/db"
	"github.com/eadlabs/ead-platform/internal/metrics"
	"github.com/eadlabs/ead-platform/internal/rbac"
)

func openSeededDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { dbh.Close() })

	stmts := []string{
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES
		 ('s1', 'A', 'a@x.com', 'x', 'aluno', 0),
		 ('s2', 'B', 'b@x.com', 'x', 'aluno', 0),
		 ('p1', 'P', 'p@x.com', 'x', 'professor', 0),
		 ('c1', 'C', 'c@x.com', 'x', 'coordenador', 0)`,
		`INSERT INTO modules (id, title, display_order) VALUES ('m1', 'Basics', 1), ('m2', 'Advanced', 2)`,
		`INSERT INTO lessons (id, module_id, title) VALUES ('l1', 'm1', 'Intro')`,
		`INSERT INTO student_progress (student_id, lesson_id, is_completed, completed_at) VALUES
		 ('s1', 'l1', TRUE, 1), ('s2', 'l1', TRUE, 1)`,
		`INSERT INTO student_grades (student_id, module_id, grade, passed, graded_at) VALUES
		 ('s1', 'm1', 80, TRUE, 1), ('s2', 'm1', 60, FALSE, 1)`,
		`INSERT INTO financial_charges (id, student_id, description, amount, due_date, status, created_at) VALUES
		 ('f1', 's1', '', 100, '2026-07-10', 'paid', 0),
		 ('f2', 's1', '', 150, '2026-08-10', 'paid', 0),
		 ('f3', 's2', '', 200, '2026-08-15', 'pending', 0)`,
	}
	for _, s := range stmts {
		if _, err := dbh.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return dbh
}

func TestComputeRejectsStudents(t *testing.T) {
	agg := metrics.NewAggregator(openSeededDB(t), nil)
	_, err := agg.Compute(context.Background(), rbac.RoleStudent)
	if !errors.Is(err, metrics.ErrRoleNotAllowed) {
		t.Fatalf("want ErrRoleNotAllowed, got %v", err)
	}
}

func TestComputeInstructorGetsBasicTierOnly(t *testing.T) {
	agg := metrics.NewAggregator(openSeededDB(t), nil)
	m, err := agg.Compute(context.Background(), rbac.RoleInstructor)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if m.TotalStudents != 2 || m.TotalCompletions != 2 {
		t.Fatalf("basic counts wrong: %+v", m)
	}
	if m.AverageGrade != nil || m.ModulePassRates != nil {
		t.Fatalf("instructor must not see performance fields: %+v", m)
	}
	if m.TotalStaff != nil || m.TotalRevenue != nil || m.MonthlyRevenue != nil {
		t.Fatalf("instructor must not see finance fields: %+v", m)
	}
}

func TestComputeCoordinatorAddsPerformanceTier(t *testing.T) {
	agg := metrics.NewAggregator(openSeededDB(t), nil)
	m, err := agg.Compute(context.Background(), rbac.RoleCoordinator)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if m.AverageGrade == nil || *m.AverageGrade != 70 {
		t.Fatalf("want average 70, got %+v", m.AverageGrade)
	}
	if len(m.ModulePassRates) != 2 {
		t.Fatalf("want one rate row per module, got %+v", m.ModulePassRates)
	}
	basics := m.ModulePassRates[0]
	if basics.ModuleTitle != "Basics" || basics.TotalGraded != 2 || basics.PassedCount != 1 || basics.Rate != 50 {
		t.Fatalf("Basics pass rate wrong: %+v", basics)
	}
	if advanced := m.ModulePassRates[1]; advanced.TotalGraded != 0 || advanced.Rate != 0 {
		t.Fatalf("ungraded module should report zero rate, got %+v", advanced)
	}
	if m.TotalStaff != nil || m.TotalRevenue != nil {
		t.Fatalf("coordinator must not see finance fields: %+v", m)
	}
}

func TestComputeAdminAddsFinanceTier(t *testing.T) {
	agg := metrics.NewAggregator(openSeededDB(t), nil)
	m, err := agg.Compute(context.Background(), rbac.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if m.TotalStaff == nil || *m.TotalStaff != 2 {
		t.Fatalf("want 2 staff, got %+v", m.TotalStaff)
	}
	if m.TotalRevenue == nil || *m.TotalRevenue != 250 {
		t.Fatalf("want paid total 250, got %+v", m.TotalRevenue)
	}
	if m.PendingRevenue == nil || *m.PendingRevenue != 200 {
		t.Fatalf("want pending 200, got %+v", m.PendingRevenue)
	}
	if len(m.MonthlyRevenue) != 2 {
		t.Fatalf("want two revenue months, got %+v", m.MonthlyRevenue)
	}
	// Oldest first for charting.
	if m.MonthlyRevenue[0].Month != "2026-07" || m.MonthlyRevenue[0].Total != 100 {
		t.Fatalf("month order/total wrong: %+v", m.MonthlyRevenue)
	}
	if m.MonthlyRevenue[1].Month != "2026-08" || m.MonthlyRevenue[1].Total != 150 {
		t.Fatalf("pending charges must not count as revenue: %+v", m.MonthlyRevenue)
	}
}

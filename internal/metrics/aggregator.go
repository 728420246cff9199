package metrics

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eadlabs/ead-platform/internal/rbac"
)

var ErrRoleNotAllowed = errors.New("role not authorized for dashboard metrics")

// Trailing window of the revenue-by-month series.
const revenueMonths = 6

type ModulePassRate struct {
	ModuleTitle string  `json:"title"`
	TotalGraded int     `json:"total_evals"`
	PassedCount int     `json:"passed_count"`
	Rate        float64 `json:"rate"` // 0 when TotalGraded == 0
}

type MonthRevenue struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

// Metrics is role-shaped: pointer/slice fields stay absent below the tier
// that unlocks them, so coordinator output is a strict superset of
// instructor output and admin output a superset of both.
type Metrics struct {
	TotalStudents    int `json:"total_students"`
	TotalCompletions int `json:"total_completions"`

	AverageGrade    *float64         `json:"average_grade,omitempty"`
	ModulePassRates []ModulePassRate `json:"module_pass_rates,omitempty"`

	TotalStaff     *int           `json:"total_staff,omitempty"`
	TotalRevenue   *float64       `json:"total_revenue,omitempty"`
	PendingRevenue *float64       `json:"pending_revenue,omitempty"`
	MonthlyRevenue []MonthRevenue `json:"monthly_revenue,omitempty"`
}

type Aggregator struct {
	db      *sql.DB
	checker *rbac.Checker
}

func NewAggregator(db *sql.DB, checker *rbac.Checker) *Aggregator {
	if checker == nil {
		checker = rbac.NewChecker(nil)
	}
	return &Aggregator{db: db, checker: checker}
}

// Compute builds the dashboard for the caller's role. Stateless read-only
// aggregation; every tier check goes through the capability table.
func (a *Aggregator) Compute(ctx context.Context, role string) (Metrics, error) {
	if !a.checker.Has(role, "metrics:view-basic") {
		return Metrics{}, ErrRoleNotAllowed
	}

	var m Metrics
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role=$1`, rbac.RoleStudent,
	).Scan(&m.TotalStudents); err != nil {
		return Metrics{}, err
	}
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM student_progress WHERE is_completed=TRUE`,
	).Scan(&m.TotalCompletions); err != nil {
		return Metrics{}, err
	}

	if !a.checker.Has(role, "metrics:view-performance") {
		return m, nil
	}

	var avg sql.NullFloat64
	if err := a.db.QueryRowContext(ctx,
		`SELECT AVG(grade) FROM student_grades`).Scan(&avg); err != nil {
		return Metrics{}, err
	}
	m.AverageGrade = &avg.Float64 // 0 when no grades exist

	rates, err := a.modulePassRates(ctx)
	if err != nil {
		return Metrics{}, err
	}
	m.ModulePassRates = rates

	if !a.checker.Has(role, "metrics:view-finance") {
		return m, nil
	}

	var staff int
	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role IN ($1,$2)`,
		rbac.RoleInstructor, rbac.RoleCoordinator,
	).Scan(&staff); err != nil {
		return Metrics{}, err
	}
	m.TotalStaff = &staff

	var paid, pending sql.NullFloat64
	if err := a.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM financial_charges WHERE status='paid'`).Scan(&paid); err != nil {
		return Metrics{}, err
	}
	if err := a.db.QueryRowContext(ctx,
		`SELECT SUM(amount) FROM financial_charges WHERE status='pending'`).Scan(&pending); err != nil {
		return Metrics{}, err
	}
	m.TotalRevenue = &paid.Float64
	m.PendingRevenue = &pending.Float64

	monthly, err := a.monthlyRevenue(ctx)
	if err != nil {
		return Metrics{}, err
	}
	m.MonthlyRevenue = monthly
	return m, nil
}

func (a *Aggregator) modulePassRates(ctx context.Context) ([]ModulePassRate, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT m.title,
		        COUNT(sg.student_id),
		        COALESCE(SUM(CASE WHEN sg.passed THEN 1 ELSE 0 END), 0)
		   FROM modules m
		   LEFT JOIN student_grades sg ON m.id = sg.module_id
		  GROUP BY m.id, m.title, m.display_order
		  ORDER BY m.display_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ModulePassRate{}
	for rows.Next() {
		var r ModulePassRate
		if err := rows.Scan(&r.ModuleTitle, &r.TotalGraded, &r.PassedCount); err != nil {
			return nil, err
		}
		if r.TotalGraded > 0 {
			r.Rate = float64(r.PassedCount) / float64(r.TotalGraded) * 100
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (a *Aggregator) monthlyRevenue(ctx context.Context) ([]MonthRevenue, error) {
	// due_date is stored as YYYY-MM-DD text, so the month key is a prefix;
	// works on both sqlite and postgres.
	rows, err := a.db.QueryContext(ctx,
		`SELECT substr(due_date, 1, 7) AS month, SUM(amount)
		   FROM financial_charges
		  WHERE status='paid'
		  GROUP BY month
		  ORDER BY month DESC
		  LIMIT $1`, revenueMonths)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recent := []MonthRevenue{}
	for rows.Next() {
		var r MonthRevenue
		if err := rows.Scan(&r.Month, &r.Total); err != nil {
			return nil, err
		}
		recent = append(recent, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// oldest first for charting
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}

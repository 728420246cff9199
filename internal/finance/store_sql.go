package finance

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrBadCharge = errors.New("charge requires student_id, amount and due_date")

type Charge struct {
	ID            string  `json:"id"`
	StudentID     string  `json:"student_id"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	DueDate       string  `json:"due_date"` // YYYY-MM-DD
	Status        string  `json:"status"`   // pending|paid|canceled
	PaymentMethod string  `json:"payment_method,omitempty"`
	CreatedAt     int64   `json:"created_at"`

	// Joined for the staff listing.
	StudentName  string `json:"student_name,omitempty"`
	StudentEmail string `json:"student_email,omitempty"`
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Create(ctx context.Context, c Charge) (Charge, error) {
	if c.StudentID == "" || c.Amount <= 0 || !validDueDate(c.DueDate) {
		return Charge{}, ErrBadCharge
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = "pending"
	}
	c.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO financial_charges (id, student_id, description, amount, due_date, status, payment_method, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.StudentID, c.Description, c.Amount, c.DueDate, c.Status, nullable(c.PaymentMethod), c.CreatedAt)
	return c, err
}

func (s *SQLStore) ListAll(ctx context.Context) ([]Charge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.student_id, f.description, f.amount, f.due_date, f.status, f.payment_method, f.created_at,
		        u.name, u.email
		   FROM financial_charges f
		   JOIN users u ON f.student_id = u.id
		  ORDER BY f.due_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Charge{}
	for rows.Next() {
		var c Charge
		var method sql.NullString
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Description, &c.Amount, &c.DueDate, &c.Status, &method, &c.CreatedAt, &c.StudentName, &c.StudentEmail); err != nil {
			return nil, err
		}
		c.PaymentMethod = method.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListByStudent(ctx context.Context, studentID string) ([]Charge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, description, amount, due_date, status, payment_method, created_at
		   FROM financial_charges WHERE student_id=$1 ORDER BY due_date DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Charge{}
	for rows.Next() {
		var c Charge
		var method sql.NullString
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Description, &c.Amount, &c.DueDate, &c.Status, &method, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.PaymentMethod = method.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get scoped to the owning student; receipts must not leak across users.
func (s *SQLStore) GetForStudent(ctx context.Context, chargeID, studentID string) (Charge, bool, error) {
	var c Charge
	var method sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, description, amount, due_date, status, payment_method, created_at
		   FROM financial_charges WHERE id=$1 AND student_id=$2`, chargeID, studentID,
	).Scan(&c.ID, &c.StudentID, &c.Description, &c.Amount, &c.DueDate, &c.Status, &method, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return Charge{}, false, nil
	}
	c.PaymentMethod = method.String
	return c, err == nil, err
}

func validDueDate(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

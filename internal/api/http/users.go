package http

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eadlabs/ead-platform/internal/assessment"
	"github.com/eadlabs/ead-platform/internal/progress"
	"github.com/eadlabs/ead-platform/internal/rbac"
)

type userProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CPF       string `json:"cpf,omitempty"`
	APIToken  string `json:"api_token,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// POST /users  { name, email, password, role?, cpf? } — registration.
// Role never auto-transitions afterwards; only this create sets it.
func CreateUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
			CPF      string `json:"cpf"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			req.Name == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "name, email and password required", http.StatusBadRequest)
			return
		}
		role := req.Role
		if role == "" {
			role = rbac.RoleStudent
		}
		switch role {
		case rbac.RoleStudent, rbac.RoleInstructor, rbac.RoleCoordinator, rbac.RoleSuperAdmin:
		default:
			http.Error(w, "unknown role", http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		id := uuid.NewString()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id, name, email, password_hash, role, cpf, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, req.Name, req.Email, string(hash), role, nullableStr(req.CPF), time.Now().Unix())
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				http.Error(w, "email or cpf already registered", http.StatusConflict)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]string{"id": id})
	}
}

// GET /profile
func GetProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		var p userProfile
		var cpf, token sql.NullString
		err := db.QueryRowContext(r.Context(),
			`SELECT id, name, email, role, cpf, api_token, created_at FROM users WHERE id=$1`, sub,
		).Scan(&p.ID, &p.Name, &p.Email, &p.Role, &cpf, &token, &p.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		p.CPF = cpf.String
		p.APIToken = token.String
		writeJSON(w, p)
	}
}

// PUT /profile  { name, email, password? }
func UpdateProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Email == "" {
			http.Error(w, "name and email required", http.StatusBadRequest)
			return
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if _, err := db.ExecContext(r.Context(),
				`UPDATE users SET name=$1, email=$2, password_hash=$3 WHERE id=$4`,
				req.Name, req.Email, string(hash), sub); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
		} else {
			if _, err := db.ExecContext(r.Context(),
				`UPDATE users SET name=$1, email=$2 WHERE id=$3`,
				req.Name, req.Email, sub); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /user/generate-token — rotate the caller's API token.
func GenerateTokenHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		token := hex.EncodeToString(buf)
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET api_token=$1 WHERE id=$2`, token, sub); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"api_token": token})
	}
}

// GET /students — staff listing.
func ListStudentsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, name, email, cpf, created_at FROM users WHERE role=$1 ORDER BY created_at DESC`,
			rbac.RoleStudent)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []userProfile{}
		for rows.Next() {
			var p userProfile
			var cpf sql.NullString
			if err := rows.Scan(&p.ID, &p.Name, &p.Email, &cpf, &p.CreatedAt); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			p.Role = rbac.RoleStudent
			p.CPF = cpf.String
			out = append(out, p)
		}
		writeJSON(w, out)
	}
}

// GET /students/{studentID}/details — basic info + progress + grades.
func StudentDetailsHandler(db *sql.DB, prog *progress.SQLStore, grades *assessment.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		var p userProfile
		var cpf sql.NullString
		err := db.QueryRowContext(r.Context(),
			`SELECT id, name, email, cpf, created_at FROM users WHERE id=$1 AND role=$2`,
			studentID, rbac.RoleStudent,
		).Scan(&p.ID, &p.Name, &p.Email, &cpf, &p.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		p.Role = rbac.RoleStudent
		p.CPF = cpf.String

		progressRows, err := prog.ListForStudent(r.Context(), studentID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		gradeRows, err := grades.GradesForStudent(r.Context(), studentID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"student":  p,
			"progress": progressRows,
			"grades":   gradeRows,
		})
	}
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eadlabs/ead-platform/internal/catalog"
	"github.com/eadlabs/ead-platform/internal/enrollment"
	"github.com/eadlabs/ead-platform/internal/rbac"
	syncx "github.com/eadlabs/ead-platform/internal/sync"
)

// POST /enrollments  { module_id, student_id? }
//
// Students enroll themselves; staff with course:manage may enroll any
// student. Enrolling twice is a deliberate no-op and is not journaled.
func EnrollHandler(store *enrollment.SQLStore, modules *catalog.SQLStore, checker *rbac.Checker, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := caller(r)
		var req struct {
			ModuleID  string `json:"module_id"`
			StudentID string `json:"student_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ModuleID == "" {
			http.Error(w, "module_id required", http.StatusBadRequest)
			return
		}
		studentID := sub
		if req.StudentID != "" && req.StudentID != sub {
			if !checker.Has(role, "course:manage") {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			studentID = req.StudentID
		}
		if _, err := modules.GetModule(r.Context(), req.ModuleID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "module not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		inserted, err := store.Enroll(r.Context(), studentID, req.ModuleID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if inserted && events != nil {
			_ = events.Append(r.Context(), "StudentEnrolled", studentID+"/"+req.ModuleID,
				map[string]string{"student_id": studentID, "module_id": req.ModuleID, "enrolled_by": sub})
		}
		writeJSON(w, map[string]string{"student_id": studentID, "module_id": req.ModuleID, "status": "active"})
	}
}

// GET /enrollments/my
func ListMyEnrollmentsHandler(store *enrollment.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		list, err := store.ListByStudent(r.Context(), sub)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	}
}

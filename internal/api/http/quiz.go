package http

import (
	"encoding/json"
	"net/http"

	"github.com/eadlabs/ead-platform/internal/assessment"
)

// POST /quiz/submit  { lesson_id XOR module_id, answers: {questionID: "A"} }
//
// Module-scoped submissions persist the grade as a side effect;
// lesson-scoped ones only return the result.
func SubmitQuizHandler(engine *assessment.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		var req struct {
			LessonID string            `json:"lesson_id"`
			ModuleID string            `json:"module_id"`
			Answers  map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		owner, err := assessment.OwnerFromIDs(req.LessonID, req.ModuleID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := engine.Submit(r.Context(), sub, owner, req.Answers)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, res)
	}
}

// GET /grades — staff listing across all students.
func ListGradesHandler(store *assessment.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.ListGrades(r.Context())
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	}
}

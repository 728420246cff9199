package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eadlabs/ead-platform/internal/progress"
)

// POST /progress/{lessonID}  optional body: { answers: {questionID: "A"} }
//
// Lessons without a quiz complete unconditionally; lessons with one
// require a passing answer set. Re-marking is an idempotent upsert.
func MarkLessonCompletedHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		lessonID := chi.URLParam(r, "lessonID")

		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		res, err := svc.CompleteLesson(r.Context(), sub, lessonID, req.Answers)
		if errors.Is(err, progress.ErrQuizNotPassed) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{"completed": false, "result": res})
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"completed": true, "result": res})
	}
}

// GET /students/{studentID}/lessons/{lessonID}/answers — instructor review
// of the snapshot taken when the lesson quiz was passed.
func StudentAnswersHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ReviewAnswers(r.Context(),
			chi.URLParam(r, "studentID"), chi.URLParam(r, "lessonID"))
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eadlabs/ead-platform/internal/assessment"
)

func ownerFromQuery(r *http.Request) (assessment.QuestionOwner, error) {
	kind := r.URL.Query().Get("owner")
	id := r.URL.Query().Get("id")
	switch kind {
	case "lesson":
		return assessment.OwnerFromIDs(id, "")
	case "module":
		return assessment.OwnerFromIDs("", id)
	default:
		return assessment.QuestionOwner{}, assessment.ErrBadOwner
	}
}

// GET /questions?owner=lesson|module&id= — taker view, answer key omitted.
func ListQuestionsHandler(store *assessment.SQLStore) http.HandlerFunc {
	return listQuestions(store, false)
}

// GET /questions/edit?owner=lesson|module&id= — editor view with the key.
func ListQuestionsEditHandler(store *assessment.SQLStore) http.HandlerFunc {
	return listQuestions(store, true)
}

func listQuestions(store *assessment.SQLStore, includeKey bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		questions, err := store.ListForOwner(r.Context(), owner, includeKey)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, questions)
	}
}

// POST /questions  { lesson_id XOR module_id, question_text, options, correct_option }
func CreateQuestionHandler(store *assessment.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assessment.Question
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		owner, err := assessment.OwnerFromIDs(req.LessonID, req.ModuleID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q, err := store.CreateQuestion(r.Context(), owner, req)
		if err != nil {
			if errors.Is(err, assessment.ErrBadOption) || errors.Is(err, assessment.ErrQuestionEmpty) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		// never echo the key back on the create response
		q.CorrectOption = ""
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, q)
	}
}

func DeleteQuestionHandler(store *assessment.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

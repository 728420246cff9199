package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eadlabs/ead-platform/internal/catalog"
)

// Handlers only — routes remain in main.go

// GET /modules — full tree, with per-lesson is_completed for students.
func ListModulesHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := caller(r)
		modules, err := store.ListModules(r.Context(), catalog.Viewer{ID: sub, Role: role})
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, modules)
	}
}

// GET /modules/{moduleID} — single module, no lesson tree.
func GetModuleHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := store.GetModule(r.Context(), chi.URLParam(r, "moduleID"))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "module not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, m)
	}
}

func CreateModuleHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m catalog.Module
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil || m.Title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		created, err := store.CreateModule(r.Context(), m)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, created)
	}
}

func UpdateModuleHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m catalog.Module
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil || m.Title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		m.ID = chi.URLParam(r, "moduleID")
		if err := store.UpdateModule(r.Context(), m); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "module not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, m)
	}
}

func DeleteModuleHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteModule(r.Context(), chi.URLParam(r, "moduleID")); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "module not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /modules/{moduleID}/lessons
func CreateLessonHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l catalog.Lesson
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil || l.Title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		l.ModuleID = chi.URLParam(r, "moduleID")
		if _, err := store.GetModule(r.Context(), l.ModuleID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "module not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		created, err := store.CreateLesson(r.Context(), l)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, created)
	}
}

func UpdateLessonHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l catalog.Lesson
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil || l.Title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		l.ID = chi.URLParam(r, "lessonID")
		if err := store.UpdateLesson(r.Context(), l); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "lesson not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, l)
	}
}

func DeleteLessonHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteLesson(r.Context(), chi.URLParam(r, "lessonID")); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "lesson not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

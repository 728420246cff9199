package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eadlabs/ead-platform/internal/finance"
)

// POST /finance/charges — staff only.
func CreateChargeHandler(store *finance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finance.Charge
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		c, err := store.Create(r.Context(), req)
		if errors.Is(err, finance.ErrBadCharge) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, c)
	}
}

// GET /finance/charges — staff listing with student identity joined.
func ListChargesHandler(store *finance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListAll(r.Context())
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	}
}

// GET /finance/my-charges
func MyChargesHandler(store *finance.SQLStore) http.HandlerFunc {
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

// GET /finance/my-charges/{chargeID} — the single charge, scoped to the
// caller, for receipt rendering downstream.
func MyChargeHandler(store *finance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		c, ok, err := store.GetForStudent(r.Context(), chi.URLParam(r, "chargeID"), sub)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "charge not found", http.StatusNotFound)
			return
		}
		writeJSON(w, c)
	}
}

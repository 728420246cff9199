package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eadlabs/ead-platform/internal/completion"
)

// Boolean eligibility checks consumed by the external document renderer
// immediately before it produces a certificate or receipt PDF. This core
// only decides; it never renders.

// GET /eligibility/certificate/{moduleID}
func CertificateEligibilityHandler(gate *completion.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		moduleID := chi.URLParam(r, "moduleID")
		ok, err := gate.EligibleForCertificate(r.Context(), sub, moduleID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]bool{"eligible": ok})
	}
}

// GET /eligibility/enrollment-receipt/{moduleID}
func EnrollmentReceiptEligibilityHandler(gate *completion.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := caller(r)
		moduleID := chi.URLParam(r, "moduleID")
		ok, err := gate.EligibleForEnrollmentReceipt(r.Context(), sub, moduleID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]bool{"eligible": ok})
	}
}

package http

import (
	"errors"
	"net/http"

	"github.com/eadlabs/ead-platform/internal/metrics"
)

// GET /dashboard/metrics — shape depends on the caller's role tier.
func MetricsHandler(agg *metrics.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role := caller(r)
		m, err := agg.Compute(r.Context(), role)
		if errors.Is(err, metrics.ErrRoleNotAllowed) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, m)
	}
}

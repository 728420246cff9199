package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/eadlabs/ead-platform/internal/auth/middleware"
	"github.com/eadlabs/ead-platform/internal/rbac"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// caller returns the authenticated (userID, role) pair placed in the
// context by the auth middleware.
func caller(r *http.Request) (string, string) {
	return authmw.SubjectFromContext(r.Context()), rbac.RoleFromContext(r.Context())
}

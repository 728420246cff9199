package http

import (
	"encoding/json"
	"net/http"

	syncx "github.com/eadlabs/ead-platform/internal/sync"
)

type auditEvent struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// GET /audit/events?key=<studentID>/<ownerID> — staff view of the write
// history behind a grade or progress slot. Grade retakes overwrite in
// place, so this trail is where prior values live.
func AuditTrailHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			http.Error(w, "key required", http.StatusBadRequest)
			return
		}
		rows, err := events.ListByKey(r.Context(), key)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		out := make([]auditEvent, 0, len(rows))
		for _, e := range rows {
			out = append(out, auditEvent{
				Seq:       e.Seq,
				Type:      e.Type,
				Key:       e.Key,
				Data:      json.RawMessage(e.DataJSON),
				CreatedAt: e.CreatedAt,
			})
		}
		writeJSON(w, out)
	}
}

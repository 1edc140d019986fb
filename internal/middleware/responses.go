package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/observability"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// writeError answers htmx callers with JSON and browsers with plain text.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	observability.FromContext(r.Context()).Warn("request rejected",
		zap.Int("status", code),
		zap.String("reason", msg),
	)
	if IsHTMX(r.Context()) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Status: code})
		return
	}
	http.Error(w, msg, code)
}

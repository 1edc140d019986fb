package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/observability"
)

// Logger emits one structured log entry per request and hands a request
// scoped logger to downstream handlers.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := observability.FromContext(ctx).With(
			zap.String("request_id", chiMid.GetReqID(ctx)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		r = r.WithContext(observability.WithLogger(ctx, logger))

		rw := NewResponseRecorder(w)
		next.ServeHTTP(rw, r)

		fields := []zap.Field{
			zap.Int("status", rw.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.Int64("bytes", rw.BytesWritten()),
			zap.String("remote_ip", clientIP(r)),
			zap.Bool("htmx", IsHTMX(r.Context())),
		}
		if id := GetSession(r).ID; id != "" {
			fields = append(fields, zap.String("visitor_id", id))
		}
		switch status := rw.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	})
}

func clientIP(r *http.Request) string {
	// the right-most X-Forwarded-For hop is the one the proxy appended
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return strings.TrimSpace(xrip)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.Trim(r.RemoteAddr, "[]")
}

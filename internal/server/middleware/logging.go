package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/logger"
)

// ClientIDFunc identifies the caller of a request.
type ClientIDFunc func(r *http.Request) string

// AccessLog logs one line per request with status, size and latency. It must
// run inside RequestID to include the request ID.
func AccessLog(log *zap.Logger, clientID ClientIDFunc) func(http.Handler) http.Handler {
	log = logger.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", m.Code),
				zap.Int64("bytes", m.Written),
				zap.Duration("duration", m.Duration),
			}
			if id := GetRequestID(r.Context()); id != "" {
				fields = append(fields, zap.String(logger.FieldRequestID, id))
			}
			if clientID != nil {
				fields = append(fields, zap.String(logger.FieldClientIP, clientID(r)))
			}

			switch {
			case m.Code >= http.StatusInternalServerError:
				log.Error("request completed", fields...)
			case m.Code >= http.StatusBadRequest:
				log.Warn("request completed", fields...)
			default:
				log.Info("request completed", fields...)
			}
		})
	}
}

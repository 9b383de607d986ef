package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/transferlog/internal/idx"
	"github.com/erazemk/transferlog/internal/metrics"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the request-scoped logger, or the default logger.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and
// duration, tags them with a request ID and records their latency.
func LoggingMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = idx.New()
			}
			w.Header().Set(RequestIDHeader, reqID)

			logger := slog.Default().With("req_id", reqID)
			r = r.WithContext(WithLogger(r.Context(), logger))

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			m.ObserveHTTP(r.Method, rec.status, elapsed)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.RequestURI(),
				"status", rec.status,
				"duration", elapsed.Round(time.Millisecond),
			)
		})
	}
}

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskwell/taskwell-api/internal/api/shared"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
)

// TraceMiddleware attaches a correlation trace ID to every request.
// An inbound x-correlation-id header is honored; otherwise a fresh ID is
// generated. The ID is echoed back in the response header, stored in the
// request context, and baked into a request-scoped logger so every log line
// downstream carries it. This middleware should be applied early in the
// chain so all subsequent handlers see the trace ID.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(shared.TraceIDHeader)
		if traceID == "" {
			traceID = shared.GenerateTraceID()
		}

		w.Header().Set(shared.TraceIDHeader, traceID)

		ctx := shared.WithTraceID(r.Context(), traceID)

		log := slog.With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one structured line per request with method, path,
// status, bytes written, and duration. It relies on TraceMiddleware having
// already placed a trace-scoped logger in the context.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log := logger.FromContextOrDefault(r.Context(), slog.Default())
			log.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr))
		}()

		next.ServeHTTP(ww, r)
	})
}

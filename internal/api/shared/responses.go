package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ProblemDetail is the RFC 9457 style error envelope every error response
// uses. Detail carries the human-readable explanation; Instance is the
// request path; TraceID is the correlation ID echoed in the
// x-correlation-id header.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
	TraceID  string `json:"traceId,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithProblem writes a problem-details error response. It fills in
// the request path as the instance and the context trace ID, and logs the
// response: 5xx at ERROR level, everything else at DEBUG.
func RespondWithProblem(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	title string,
	detail string,
) {
	traceID := GetTraceID(r.Context())

	problem := ProblemDetail{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
		TraceID:  traceID,
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response",
		slog.Int("status_code", status),
		slog.String("title", title),
		slog.String("detail", detail),
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/middleware"
)

// redactedFields are JSON keys whose values must never reach the logs.
// Login and staff-creation payloads carry passwords, refresh requests
// carry tokens.
var redactedFields = []string{
	"password",
	"password_hash",
	"token",
	"access_token",
	"refresh_token",
	"authorization",
	"secret",
}

const maxLoggedBody = 4 << 10

// LoggingMiddleware logs one line per request with method, path, status,
// duration and a redacted copy of small JSON request bodies.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := chiMiddleware.GetReqID(r.Context())

			body := captureRequestBody(r)

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_bytes", sw.written,
				"body", body,
			)
		})
	}
}

// statusWriter records the status code and response size without
// buffering the body.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.written += int64(n)
	return n, err
}

// captureRequestBody reads the request body for logging and restores it
// for the handler. Oversized or non-JSON bodies are summarized rather
// than logged.
func captureRequestBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))

	if len(raw) == 0 {
		return ""
	}
	if len(raw) > maxLoggedBody {
		return "[truncated]"
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "[non-json body]"
	}

	redacted, err := json.Marshal(redactValues(payload))
	if err != nil {
		return "[non-json body]"
	}
	return string(redacted)
}

// redactValues walks a decoded JSON document and masks redacted keys.
func redactValues(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isRedactedKey(key) {
				out[key] = "[REDACTED]"
				continue
			}
			out[key] = redactValues(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = redactValues(item)
		}
		return out
	default:
		return v
	}
}

func isRedactedKey(key string) bool {
	lower := strings.ToLower(key)
	for _, field := range redactedFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrorResponse is the body of every error the API returns.
type ErrorResponse struct {
	Detail []string `json:"detail"`
}

// responseRecorder captures plain text error bodies so they can be
// rewritten as JSON. JSON and success responses pass through untouched.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	wroteHead  bool
	capture    bool
	body       strings.Builder
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.wroteHead {
		return
	}
	r.wroteHead = true
	r.statusCode = statusCode
	contentType := r.Header().Get("Content-Type")
	if statusCode >= 400 && !strings.HasPrefix(contentType, "application/json") {
		r.capture = true
		return
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHead {
		r.WriteHeader(http.StatusOK)
	}
	if r.capture {
		r.body.Write(b)
		return len(b), nil
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) flushJSON() {
	message := strings.TrimSpace(r.body.String())
	if message == "" {
		message = http.StatusText(r.statusCode)
	}
	writeJSONError(r.ResponseWriter, r.statusCode, message)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Del("Content-Length")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: []string{message}})
}

// ErrorHandler recovers panics and turns non-JSON error responses into the
// API's JSON error shape.
func ErrorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				logging.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("recovered from panic")
				if !rec.wroteHead || rec.capture {
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
				}
				return
			}
			if rec.capture {
				rec.flushJSON()
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/nirvanaflow/api/internal/response"
)

const (
	// DefaultRequestTimeout is the default request timeout (30 seconds)
	DefaultRequestTimeout = 30 * time.Second
)

// Timeout enforces a deadline on request handlers. The handler's context is
// cancelled at the deadline and slow responses are replaced with a 503 in
// the standard error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			// Every endpoint responds with JSON, including the timeout body
			// http.TimeoutHandler writes on our behalf.
			w.Header().Set("Content-Type", "application/json")

			body := response.ErrorBody("Request Timeout", "The request took too long to complete")
			http.TimeoutHandler(next, timeout, body).ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Package request holds per-request helpers shared by middleware and
// handlers: the authenticated user attached to the context and client
// address extraction.
package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/nirvanaflow/api/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// ClientIP returns the originating client address. Proxy headers win over
// the socket address, and only the first X-Forwarded-For hop counts.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WithUser returns a context with the user attached.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user from the request context, or nil if missing or wrong type.
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userContextKey).(*models.User)
	return u
}

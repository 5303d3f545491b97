// internal/app/system/requestid/requestid.go

// Package requestid assigns each request a correlation id, echoed in the
// X-Request-ID response header and available to handlers for log fields.
// Incoming X-Request-ID values from trusted proxies are reused.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the request/response header carrying the correlation id.
const Header = "X-Request-ID"

// Middleware tags the request with a correlation id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request's correlation id, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

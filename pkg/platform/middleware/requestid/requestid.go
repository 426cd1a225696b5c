// Package requestid assigns a request ID to every inbound request, reusing a
// caller-supplied X-Request-ID when present.
package requestid

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"civicfin/pkg/requestcontext"
)

// Header is the request/response header carrying the ID.
const Header = "X-Request-ID"

const maxLength = 128

// Middleware injects the request ID into the context and echoes it back.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" || len(id) > maxLength {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

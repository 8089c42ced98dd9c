package middleware

import (
	"net/http"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/websocket"
)

// SocketIDHeader names the caller's own socket connection so that events
// caused by the request are not echoed back to it.
const SocketIDHeader = "X-Socket-ID"

// SocketOrigin records the caller's socket id together with the
// authenticated user. It must run inside RequireAuth; without a user the
// header is ignored.
func SocketOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SocketIDHeader)
		userID := auth.UserID(r.Context())
		if id == "" || userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(websocket.WithOrigin(r.Context(), id, userID)))
	})
}

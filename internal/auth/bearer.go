package auth

import (
	"net/http"
	"strings"
)

// BearerToken returns the credential from an "Authorization: Bearer" header,
// or "" when there is none.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

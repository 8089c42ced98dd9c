package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/model"
)

// CredentialVerifier resolves a bearer credential to the current state of
// its user.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth validates the bearer credential and populates AuthContext.
// Requests without a valid credential get a 401 JSON error.
func RequireAuth(verifier CredentialVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required", "InvalidToken")
				return
			}

			user, err := verifier.VerifyCredential(r.Context(), token)
			if err != nil {
				logger.Debug("credential rejected", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token", "InvalidToken")
				return
			}

			ac := auth.AuthContext{
				UserID:   user.ID,
				FamilyID: user.FamilyID,
				Email:    user.Email,
				Role:     user.Role,
			}

			recordUser(w, user.ID)
			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}

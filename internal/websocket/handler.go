package websocket

import (
	"context"
	"encoding/json"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/model"
)

// CredentialVerifier resolves a bearer credential to its user.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context, token string) (*model.User, error)
}

// HandleWebSocket authenticates the request, upgrades it and runs the
// connection as a Hub client. The credential comes from the token query
// parameter or the Authorization header. originPatterns restricts browser
// origins; when empty any origin is accepted.
func HandleWebSocket(hub *Hub, verifier CredentialVerifier, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = auth.BearerToken(r)
		}
		if token == "" {
			writeUnauthorized(w)
			return
		}

		user, err := verifier.VerifyCredential(r.Context(), token)
		if err != nil {
			hub.logger.Debug("websocket auth failed", "error", err)
			writeUnauthorized(w)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns:     originPatterns,
			InsecureSkipVerify: len(originPatterns) == 0,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, user.ID, user.FamilyID)
		client.Run(r.Context())
		conn.Close(ws.StatusNormalClosure, "")
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required", "code": "InvalidToken"})
}

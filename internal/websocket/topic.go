package websocket

import (
	"context"
	"errors"
	"strings"
)

// Event names sent to clients.
const (
	EventConnected       = "connected"
	EventPostCreated     = "post-created"
	EventCommentCreated  = "comment-created"
	EventMessageReceived = "message-received"
)

const (
	KindFamily = "family"
	KindUser   = "user"
)

var ErrMalformedTopic = errors.New("malformed topic")

func FamilyTopic(familyID string) string { return KindFamily + ":" + familyID }

func UserTopic(userID string) string { return KindUser + ":" + userID }

// ParseTopic splits a topic into its kind and id. Only family and user
// topics with a non-empty id are accepted.
func ParseTopic(topic string) (kind, id string, err error) {
	kind, id, ok := strings.Cut(topic, ":")
	if !ok || id == "" || strings.TrimSpace(id) != id {
		return "", "", ErrMalformedTopic
	}
	if kind != KindFamily && kind != KindUser {
		return "", "", ErrMalformedTopic
	}
	return kind, id, nil
}

type originKey struct{}

type origin struct {
	connID string
	userID string
}

// WithOrigin records the socket connection that triggered a request, and the
// user making the request, so family-wide events can skip that connection.
// The connection is only skipped when it belongs to userID.
func WithOrigin(ctx context.Context, connID, userID string) context.Context {
	if connID == "" || userID == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, origin{connID: connID, userID: userID})
}

// ConnectionID returns the connection recorded by WithOrigin.
func ConnectionID(ctx context.Context) string {
	return originFrom(ctx).connID
}

func originFrom(ctx context.Context) origin {
	o, _ := ctx.Value(originKey{}).(origin)
	return o
}

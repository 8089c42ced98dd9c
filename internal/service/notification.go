package service

import (
	"context"
	"strings"

	"github.com/dukerupert/famfeed/internal/model"
	"github.com/dukerupert/famfeed/internal/store"
)

type NotificationService struct {
	Deps
}

func NewNotificationService(deps Deps) *NotificationService {
	return &NotificationService{Deps: deps}
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	list, err := store.NewNotificationStore(s.DB).ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, internalError(err)
	}
	return list, nil
}

// MarkNotificationRead is idempotent. Another user's notification is
// reported as not found.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, id, userID string) error {
	notifications := store.NewNotificationStore(s.DB)
	n, err := notifications.GetByID(ctx, id)
	if err != nil {
		return internalError(err)
	}
	if n == nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	if err := notifications.MarkRead(ctx, n.ID); err != nil {
		return internalError(err)
	}
	return nil
}

// SubscribePush registers a browser push endpoint for the user.
func (s *NotificationService) SubscribePush(ctx context.Context, userID, endpoint, p256dh, authKey, userAgent string) (*model.PushSubscription, error) {
	endpoint = strings.TrimSpace(endpoint)
	v := validator{}
	v.required("endpoint", endpoint)
	v.required("p256dh", p256dh)
	v.required("auth", authKey)
	if endpoint != "" && !strings.HasPrefix(endpoint, "https://") {
		v.add("endpoint", "endpoint must be an https URL")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	sub, err := store.NewPushStore(s.DB).CreateSubscription(ctx, userID, endpoint, p256dh, authKey, userAgent)
	if err != nil {
		return nil, internalError(err)
	}
	return sub, nil
}

func (s *NotificationService) UnsubscribePush(ctx context.Context, id, userID string) error {
	subs := store.NewPushStore(s.DB)
	sub, err := subs.GetByID(ctx, id, userID)
	if err != nil {
		return internalError(err)
	}
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	if err := subs.DeleteSubscription(ctx, sub.ID, userID); err != nil {
		return internalError(err)
	}
	return nil
}

func (s *NotificationService) ListPushSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	subs, err := store.NewPushStore(s.DB).ListByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return subs, nil
}

package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/famfeed/internal/metrics"
	"github.com/dukerupert/famfeed/internal/model"
)

const (
	queueSize   = 256
	sendTimeout = 10 * time.Second
)

type sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, payload Payload) error
}

// SubscriptionStore is the subset of the push store the notifier needs.
type SubscriptionStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// Notifier delivers durable notifications to a user's subscribed browsers on
// a background worker. Delivery is best effort: a full queue drops the
// notification, which stays readable through the notifications API.
type Notifier struct {
	mu     sync.RWMutex
	sender sender
	subs   SubscriptionStore
	queue  chan *model.Notification
	logger *slog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewNotifier(svc *Service, subs SubscriptionStore, logger *slog.Logger) *Notifier {
	return newNotifier(svc, subs, logger)
}

func newNotifier(s sender, subs SubscriptionStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender: s,
		subs:   subs,
		queue:  make(chan *model.Notification, queueSize),
		logger: logger,
	}
}

// Start begins the delivery loop.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	ctx, n.cancel = context.WithCancel(ctx)
	n.done = make(chan struct{})
	n.mu.Unlock()

	go func() {
		defer close(n.done)
		for {
			select {
			case <-ctx.Done():
				return
			case notif := <-n.queue:
				n.deliver(ctx, notif)
			}
		}
	}()
}

// Stop halts the delivery loop and waits for it to exit.
func (n *Notifier) Stop() {
	n.mu.RLock()
	cancel := n.cancel
	done := n.done
	n.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Notify queues a notification without blocking.
func (n *Notifier) Notify(_ context.Context, notif *model.Notification) {
	select {
	case n.queue <- notif:
	default:
		metrics.PushResult("dropped")
		n.logger.Warn("push queue full, dropping notification", "notification_id", notif.ID)
	}
}

func (n *Notifier) deliver(ctx context.Context, notif *model.Notification) {
	subs, err := n.subs.ListByUser(ctx, notif.UserID)
	if err != nil {
		n.logger.Error("list push subscriptions", "user_id", notif.UserID, "error", err)
		return
	}

	payload := Payload{
		Title: notif.Title,
		Body:  notif.Message,
		URL:   urlFor(notif.Type),
		Tag:   notif.Type + "-" + notif.ID,
	}

	for i := range subs {
		sub := &subs[i]
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := n.sender.Send(sendCtx, sub, payload)
		cancel()

		switch {
		case err == nil:
			metrics.PushResult("sent")
		case errors.Is(err, ErrExpired):
			metrics.PushResult("expired")
			if err := n.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				n.logger.Error("delete expired push subscription", "error", err)
			}
		default:
			metrics.PushResult("error")
			n.logger.Warn("send push notification", "user_id", notif.UserID, "error", err)
		}
	}
}

func urlFor(notifType string) string {
	switch notifType {
	case model.NotifTypeMessage:
		return "/messages"
	default:
		return "/"
	}
}

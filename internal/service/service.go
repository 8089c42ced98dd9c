// Package service implements the domain operations. Each operation runs as
// one transactional unit against the store and reports failures as *Error.
// Real-time events are published only after the transaction commits.
package service

import (
	"context"
	"log/slog"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
)

// Publisher fans an event out to the subscribers of a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, event string, payload any)
}

// Notifier delivers a durable notification out of band.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification)
}

// Deps are the collaborators shared by every service.
type Deps struct {
	DB        *database.DB
	Publisher Publisher
	Notifier  Notifier
	Logger    *slog.Logger
}

func (d Deps) publish(ctx context.Context, topic, event string, payload any) {
	if d.Publisher == nil {
		return
	}
	d.Publisher.Publish(ctx, topic, event, payload)
}

func (d Deps) notify(ctx context.Context, n *model.Notification) {
	if d.Notifier == nil || n == nil {
		return
	}
	d.Notifier.Notify(ctx, n)
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

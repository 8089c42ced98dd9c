package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/famfeed/internal/model"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []string
	expired  map[string]bool
	payloads []Payload
}

func (f *fakeSender) Send(_ context.Context, sub *model.PushSubscription, p Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expired[sub.Endpoint] {
		return ErrExpired
	}
	f.sent = append(f.sent, sub.Endpoint)
	f.payloads = append(f.payloads, p)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSubs struct {
	mu      sync.Mutex
	byUser  map[string][]model.PushSubscription
	deleted []string
	err     error
}

func (f *fakeSubs) ListByUser(_ context.Context, userID string) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUser[userID], f.err
}

func (f *fakeSubs) DeleteByEndpoint(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func (f *fakeSubs) deletedEndpoints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func TestNotifierDelivers(t *testing.T) {
	sender := &fakeSender{expired: map[string]bool{"https://push/old": true}}
	subs := &fakeSubs{byUser: map[string][]model.PushSubscription{
		"bob": {{Endpoint: "https://push/phone"}, {Endpoint: "https://push/old"}},
	}}
	n := newNotifier(sender, subs, slog.Default())
	n.Start(context.Background())

	n.Notify(context.Background(), &model.Notification{ID: "n1", UserID: "bob", Type: model.NotifTypeMessage, Title: "New message", Message: "Alice: hi"})

	deadline := time.Now().Add(2 * time.Second)
	for len(subs.deletedEndpoints()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for delivery")
		}
		time.Sleep(5 * time.Millisecond)
	}
	n.Stop()

	if sender.count() != 1 {
		t.Errorf("sent = %d, want 1", sender.count())
	}
	if got := subs.deletedEndpoints(); len(got) != 1 || got[0] != "https://push/old" {
		t.Errorf("deleted = %v, want [https://push/old]", got)
	}
	if p := sender.payloads[0]; p.URL != "/messages" || p.Body != "Alice: hi" {
		t.Errorf("payload = %+v", p)
	}
}

func TestNotifierListError(t *testing.T) {
	sender := &fakeSender{}
	subs := &fakeSubs{err: errors.New("db down")}
	n := newNotifier(sender, subs, slog.Default())

	n.deliver(context.Background(), &model.Notification{ID: "n1", UserID: "bob"})

	if sender.count() != 0 {
		t.Errorf("sent = %d, want 0", sender.count())
	}
}

func TestNotifyDropsWhenQueueFull(t *testing.T) {
	n := newNotifier(&fakeSender{}, &fakeSubs{}, slog.Default())
	for i := 0; i < queueSize+5; i++ {
		n.Notify(context.Background(), &model.Notification{ID: "n"})
	}
	if got := len(n.queue); got != queueSize {
		t.Errorf("queue length = %d, want %d", got, queueSize)
	}
}

func TestStopWithoutStart(t *testing.T) {
	n := newNotifier(&fakeSender{}, &fakeSubs{}, slog.Default())
	// Should not block or panic
	n.Stop()
}

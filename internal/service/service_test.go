package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
)

type published struct {
	topic   string
	event   string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, topic, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic, event, payload})
}

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, notif *model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
}

type testEnv struct {
	db            *database.DB
	pub           *fakePublisher
	notifier      *fakeNotifier
	tokens        *auth.TokenManager
	auth          *AuthService
	posts         *PostService
	messages      *MessageService
	users         *UserService
	notifications *NotificationService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := &fakePublisher{}
	notifier := &fakeNotifier{}
	deps := Deps{DB: db, Publisher: pub, Notifier: notifier, Logger: slog.Default()}
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	return &testEnv{
		db:            db,
		pub:           pub,
		notifier:      notifier,
		tokens:        tokens,
		auth:          NewAuthService(deps, tokens),
		posts:         NewPostService(deps),
		messages:      NewMessageService(deps),
		users:         NewUserService(deps),
		notifications: NewNotificationService(deps),
	}
}

// register creates a family with an admin and returns the admin.
func (e *testEnv) register(t *testing.T, email, name, familyName string) *model.User {
	t.Helper()
	res, err := e.auth.RegisterFamilyAdmin(context.Background(), email, "secret1", name, familyName)
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) join(t *testing.T, email, name, familyID string) *model.User {
	t.Helper()
	res, err := e.auth.JoinFamily(context.Background(), email, "secret1", name, familyID)
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func strPtr(s string) *string { return &s }

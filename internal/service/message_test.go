package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/famfeed/internal/model"
	"github.com/dukerupert/famfeed/internal/websocket"
)

func TestSendUnreadMarkReadFlow(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	bob := env.join(t, "b@x.com", "Bob", alice.FamilyID)

	msg, err := env.messages.SendMessage(ctx, alice.ID, bob.ID, "hi")
	require.NoError(t, err)
	assert.False(t, msg.IsRead)

	unread, err := env.messages.ListUnread(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, msg.ID, unread[0].ID)
	assert.False(t, unread[0].IsRead)

	require.NoError(t, env.messages.MarkMessageRead(ctx, msg.ID, bob.ID))
	require.NoError(t, env.messages.MarkMessageRead(ctx, msg.ID, bob.ID))

	unread, err = env.messages.ListUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestSendMessagePublishesAndNotifies(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	bob := env.join(t, "b@x.com", "Bob", alice.FamilyID)

	msg, err := env.messages.SendMessage(ctx, alice.ID, bob.ID, "dinner at 6?")
	require.NoError(t, err)

	events := env.pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, websocket.UserTopic(bob.ID), events[0].topic)
	assert.Equal(t, websocket.EventMessageReceived, events[0].event)
	assert.Equal(t, msg.ID, events[0].payload.(*model.Message).ID)

	notes, err := env.notifications.ListNotifications(ctx, bob.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotifTypeMessage, notes[0].Type)
	assert.Equal(t, "Alice: dinner at 6?", notes[0].Message)
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, bob.ID, env.notifier.sent[0].UserID)

	require.NoError(t, env.notifications.MarkNotificationRead(ctx, notes[0].ID, bob.ID))
	err = env.notifications.MarkNotificationRead(ctx, notes[0].ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestSendMessageErrors(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	dave := env.register(t, "d@x.com", "Dave", "Joneses")

	_, err := env.messages.SendMessage(ctx, alice.ID, dave.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = env.messages.SendMessage(ctx, alice.ID, "missing", "hi")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.messages.SendMessage(ctx, alice.ID, dave.ID, "hi")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	assert.Equal(t, 0, env.count(t, `SELECT COUNT(*) FROM messages`))
	assert.Equal(t, 0, env.count(t, `SELECT COUNT(*) FROM notifications`))
	assert.Empty(t, env.pub.all())
}

func TestMarkMessageReadErrors(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	bob := env.join(t, "b@x.com", "Bob", alice.FamilyID)
	msg, err := env.messages.SendMessage(ctx, alice.ID, bob.ID, "hi")
	require.NoError(t, err)

	assert.ErrorIs(t, env.messages.MarkMessageRead(ctx, "missing", bob.ID), ErrMessageNotFound)
	assert.ErrorIs(t, env.messages.MarkMessageRead(ctx, msg.ID, alice.ID), ErrNotAuthorized)
}

func TestListConversation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	bob := env.join(t, "b@x.com", "Bob", alice.FamilyID)

	_, err := env.messages.SendMessage(ctx, alice.ID, bob.ID, "ping")
	require.NoError(t, err)
	_, err = env.messages.SendMessage(ctx, bob.ID, alice.ID, "pong")
	require.NoError(t, err)

	msgs, err := env.messages.ListConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "ping", msgs[0].Content)
	assert.Equal(t, "pong", msgs[1].Content)

	_, err = env.messages.ListConversation(ctx, alice.ID, "")
	assert.Equal(t, KindValidation, AsError(err).Kind)
}

func TestPreviewTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "é"
	}
	p := preview(long)
	assert.Equal(t, previewLength+1, len([]rune(p)))
	assert.Equal(t, "short", preview("short"))
}

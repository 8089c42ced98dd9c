package store

import (
	"context"
	"testing"

	"github.com/dukerupert/famfeed/internal/model"
)

func TestMessageUnreadAndMarkRead(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := createTestFamily(t, db, "Smiths")
	alice := createTestUser(t, db, f.ID, "alice@example.com", "Alice")
	bob := createTestUser(t, db, f.ID, "bob@example.com", "Bob")
	ms := NewMessageStore(db)

	m, err := ms.Create(ctx, alice.ID, bob.ID, "hi")
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if m.IsRead {
		t.Error("expected new message to be unread")
	}
	if m.SenderName != "Alice" || m.RecipientName != "Bob" {
		t.Errorf("names = %q/%q, want Alice/Bob", m.SenderName, m.RecipientName)
	}

	unread, err := ms.ListUnread(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("unread = %d, want 1", len(unread))
	}

	for i := 0; i < 2; i++ {
		if err := ms.MarkRead(ctx, m.ID); err != nil {
			t.Fatalf("mark read: %v", err)
		}
	}

	unread, err = ms.ListUnread(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread after mark = %d, want 0", len(unread))
	}
}

func TestMessageListConversation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := createTestFamily(t, db, "Smiths")
	alice := createTestUser(t, db, f.ID, "alice@example.com", "Alice")
	bob := createTestUser(t, db, f.ID, "bob@example.com", "Bob")
	carol := createTestUser(t, db, f.ID, "carol@example.com", "Carol")
	ms := NewMessageStore(db)

	for _, tc := range []struct{ from, to, content string }{
		{alice.ID, bob.ID, "hi bob"},
		{bob.ID, alice.ID, "hi alice"},
		{carol.ID, alice.ID, "not in this conversation"},
	} {
		if _, err := ms.Create(ctx, tc.from, tc.to, tc.content); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	msgs, err := ms.ListConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].Content != "hi bob" || msgs[1].Content != "hi alice" {
		t.Errorf("order = [%q %q], want [hi bob, hi alice]", msgs[0].Content, msgs[1].Content)
	}
}

func TestMessageGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)

	m, err := NewMessageStore(db).GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if m != nil {
		t.Error("expected nil for nonexistent message")
	}
}

func TestNotificationListAndMarkRead(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := createTestFamily(t, db, "Smiths")
	alice := createTestUser(t, db, f.ID, "alice@example.com", "Alice")
	ns := NewNotificationStore(db)

	first, err := ns.Create(ctx, alice.ID, model.NotifTypeMessage, "New message", "Bob: hi", strPtr(`{"messageId":"m1"}`))
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if _, err := ns.Create(ctx, alice.ID, model.NotifTypeComment, "New comment", "Bob commented", nil); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	if err := ns.MarkRead(ctx, first.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	all, err := ns.ListByUser(ctx, alice.ID, false)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}

	unread, err := ns.ListByUser(ctx, alice.ID, true)
	if err != nil {
		t.Fatalf("list unread notifications: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("unread = %d, want 1", len(unread))
	}
	if unread[0].Type != model.NotifTypeComment {
		t.Errorf("type = %q, want %q", unread[0].Type, model.NotifTypeComment)
	}

	got, err := ns.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get notification: %v", err)
	}
	if !got.IsRead {
		t.Error("expected notification to be read")
	}
	if got.Data == nil || *got.Data != `{"messageId":"m1"}` {
		t.Errorf("data = %v", got.Data)
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/dukerupert/famfeed/internal/store"
	"github.com/dukerupert/famfeed/internal/websocket"
)

const previewLength = 80

type MessageService struct {
	Deps
}

func NewMessageService(deps Deps) *MessageService {
	return &MessageService{Deps: deps}
}

// SendMessage stores a direct message and the recipient's notification in
// one transaction, then signals the recipient.
func (s *MessageService) SendMessage(ctx context.Context, senderID, recipientID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, ValidationError(map[string]string{"recipientId": "recipientId is required"})
	}

	var msg *model.Message
	var notif *model.Notification
	err := database.WithTx(ctx, s.DB, func(tx *database.Tx) error {
		users := store.NewUserStore(tx)
		sender, err := users.GetByID(ctx, senderID)
		if err != nil {
			return err
		}
		if sender == nil {
			return ErrUserNotFound
		}
		recipient, err := users.GetByID(ctx, recipientID)
		if err != nil {
			return err
		}
		if recipient == nil || !recipient.IsActive {
			return ErrUserNotFound
		}
		if recipient.FamilyID != sender.FamilyID {
			return ErrNotAuthorized
		}

		msg, err = store.NewMessageStore(tx).Create(ctx, sender.ID, recipient.ID, content)
		if err != nil {
			return err
		}

		data, err := json.Marshal(map[string]string{"messageId": msg.ID, "senderId": sender.ID})
		if err != nil {
			return err
		}
		payload := string(data)
		notif, err = store.NewNotificationStore(tx).Create(ctx, recipient.ID, model.NotifTypeMessage,
			"New message", fmt.Sprintf("%s: %s", sender.Name, preview(content)), &payload)
		return err
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.publish(ctx, websocket.UserTopic(msg.RecipientID), websocket.EventMessageReceived, msg)
	s.notify(ctx, notif)
	return msg, nil
}

// MarkMessageRead marks a message read. Repeating it is harmless.
func (s *MessageService) MarkMessageRead(ctx context.Context, messageID, userID string) error {
	messages := store.NewMessageStore(s.DB)
	msg, err := messages.GetByID(ctx, messageID)
	if err != nil {
		return internalError(err)
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.RecipientID != userID {
		return ErrNotAuthorized
	}
	if err := messages.MarkRead(ctx, msg.ID); err != nil {
		return internalError(err)
	}
	return nil
}

// ListConversation returns the messages between two users, oldest first.
func (s *MessageService) ListConversation(ctx context.Context, userID, otherUserID string) ([]model.Message, error) {
	v := validator{}
	v.required("userId", userID)
	v.required("otherUserId", otherUserID)
	if err := v.err(); err != nil {
		return nil, err
	}
	msgs, err := store.NewMessageStore(s.DB).ListConversation(ctx, userID, otherUserID)
	if err != nil {
		return nil, internalError(err)
	}
	return msgs, nil
}

// ListUnread returns unread messages addressed to userID, newest first.
func (s *MessageService) ListUnread(ctx context.Context, userID string) ([]model.Message, error) {
	msgs, err := store.NewMessageStore(s.DB).ListUnread(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	return msgs, nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	r := []rune(s)
	return string(r[:previewLength]) + "…"
}

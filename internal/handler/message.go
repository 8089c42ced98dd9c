package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
	responder
}

func NewMessageHandler(ms *service.MessageService, logger *slog.Logger, dev bool) *MessageHandler {
	return &MessageHandler{messages: ms, responder: newResponder(logger, dev)}
}

// Conversation handles GET /api/messages?userId=&otherUserId=
// The caller must be one side of the conversation.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, otherUserID := q.Get("userId"), q.Get("otherUserId")
	if userID != "" && otherUserID != "" && userID != auth.UserID(r.Context()) {
		h.forbidden(w)
		return
	}

	msgs, err := h.messages.ListConversation(r.Context(), userID, otherUserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

type sendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.messages.SendMessage(r.Context(), auth.UserID(r.Context()), req.RecipientID, req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": msg})
}

// Unread handles GET /api/messages/unread/{userId}
func (h *MessageHandler) Unread(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID != auth.UserID(r.Context()) {
		h.forbidden(w)
		return
	}

	msgs, err := h.messages.ListUnread(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// MarkRead handles PUT /api/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.MarkMessageRead(r.Context(), r.PathValue("id"), auth.UserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("message marked as read"))
}

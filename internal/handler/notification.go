package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
	responder
}

func NewNotificationHandler(ns *service.NotificationService, logger *slog.Logger, dev bool) *NotificationHandler {
	return &NotificationHandler{notifications: ns, responder: newResponder(logger, dev)}
}

// List handles GET /api/notifications?unread=true
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	list, err := h.notifications.ListNotifications(r.Context(), auth.UserID(r.Context()), unreadOnly)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

// MarkRead handles PUT /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkNotificationRead(r.Context(), r.PathValue("id"), auth.UserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("notification marked as read"))
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/push"
	"github.com/dukerupert/famfeed/internal/service"
)

type PushHandler struct {
	notifications *service.NotificationService
	pusher        *push.Service // nil when push is disabled
	responder
}

func NewPushHandler(ns *service.NotificationService, svc *push.Service, logger *slog.Logger, dev bool) *PushHandler {
	return &PushHandler{notifications: ns, pusher: svc, responder: newResponder(logger, dev)}
}

// subscribeRequest accepts both the browser's PushSubscription.toJSON()
// shape and flat p256dh/auth fields.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.P256dh == "" {
		req.P256dh = req.Keys.P256dh
	}
	if req.Auth == "" {
		req.Auth = req.Keys.Auth
	}

	sub, err := h.notifications.SubscribePush(r.Context(), auth.UserID(r.Context()), req.Endpoint, req.P256dh, req.Auth, r.UserAgent())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.UnsubscribePush(r.Context(), r.PathValue("id"), auth.UserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/push/subscriptions
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.notifications.ListPushSubscriptions(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

// VAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.pusher == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "push notifications are not enabled", Code: "PushDisabled"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.pusher.VAPIDPublicKey()})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/service"
)

type UserHandler struct {
	users *service.UserService
	responder
}

func NewUserHandler(us *service.UserService, logger *slog.Logger, dev bool) *UserHandler {
	return &UserHandler{users: us, responder: newResponder(logger, dev)}
}

// FamilyMembers handles GET /api/users/family-members?familyId=
func (h *UserHandler) FamilyMembers(w http.ResponseWriter, r *http.Request) {
	familyID := r.URL.Query().Get("familyId")
	if familyID != "" && familyID != auth.FamilyID(r.Context()) {
		h.forbidden(w)
		return
	}

	users, err := h.users.ListFamilyMembers(r.Context(), familyID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Profile handles GET /api/users/profile/{id}. Users outside the caller's
// family are reported as not found.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if user.FamilyID != auth.FamilyID(r.Context()) {
		h.fail(w, r, service.ErrUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

type updateProfileRequest struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), auth.UserID(r.Context()), req.Name, req.Avatar)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

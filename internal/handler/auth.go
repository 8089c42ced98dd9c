package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
	responder
}

func NewAuthHandler(as *service.AuthService, logger *slog.Logger, dev bool) *AuthHandler {
	return &AuthHandler{auth: as, responder: newResponder(logger, dev)}
}

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	FamilyName string `json:"familyName"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.RegisterFamilyAdmin(r.Context(), req.Email, req.Password, req.Name, req.FamilyName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type joinFamilyRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	FamilyCode string `json:"familyCode"`
}

// JoinFamily handles POST /api/auth/join-family
func (h *AuthHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	var req joinFamilyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.JoinFamily(r.Context(), req.Email, req.Password, req.Name, req.FamilyCode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Verify handles GET /api/auth/verify. Any credential problem, including a
// user that no longer exists, is a 401.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	if token == "" {
		h.fail(w, r, service.ErrInvalidToken)
		return
	}

	user, err := h.auth.VerifyCredential(r.Context(), token)
	if err != nil {
		if service.AsError(err).Kind != service.KindInternal {
			err = service.ErrInvalidToken
		}
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/service"
)

type PostHandler struct {
	posts *service.PostService
	responder
}

func NewPostHandler(ps *service.PostService, logger *slog.Logger, dev bool) *PostHandler {
	return &PostHandler{posts: ps, responder: newResponder(logger, dev)}
}

// List handles GET /api/posts?familyId=&page=&limit=
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	familyID := r.URL.Query().Get("familyId")
	if familyID == "" {
		h.fail(w, r, service.ValidationError(map[string]string{"familyId": "familyId is required"}))
		return
	}
	if familyID != auth.FamilyID(r.Context()) {
		h.forbidden(w)
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.posts.ListPosts(r.Context(), familyID, page, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createPostRequest struct {
	Content  *string `json:"content"`
	ImageURL *string `json:"imageUrl"`
}

// Create handles POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	post, err := h.posts.CreatePost(r.Context(), auth.UserID(r.Context()), req.Content, req.ImageURL)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"post": post})
}

// Delete handles DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.DeletePost(r.Context(), r.PathValue("id"), auth.UserID(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, message("post deleted"))
}

// ToggleLike handles POST /api/posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	result, err := h.posts.ToggleLike(r.Context(), r.PathValue("id"), auth.UserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListComments handles GET /api/posts/{id}/comments
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.posts.ListComments(r.Context(), r.PathValue("id"), auth.UserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment handles POST /api/posts/{id}/comments
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.posts.AddComment(r.Context(), r.PathValue("id"), auth.UserID(r.Context()), req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"comment": comment})
}

package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/famfeed/internal/upload"
)

// multipartOverhead allows for form boundaries and headers on top of the
// file itself.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploader *upload.Uploader
	responder
}

func NewUploadHandler(u *upload.Uploader, logger *slog.Logger, dev bool) *UploadHandler {
	return &UploadHandler{uploader: u, responder: newResponder(logger, dev)}
}

// Image handles POST /api/upload/image with a multipart "image" field.
func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploader.MaxBytes()+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		h.badRequest(w, "multipart form data is required", "InvalidUpload")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			h.badRequest(w, upload.ErrEmpty.Error(), "ImageRequired")
			return
		}
		if err != nil {
			h.uploadFailed(w, r, err)
			return
		}
		if part.FormName() != "image" {
			part.Close()
			continue
		}

		res, err := h.uploader.SaveImage(r.Context(), part)
		part.Close()
		if err != nil {
			h.uploadFailed(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}
}

func (h *UploadHandler) uploadFailed(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, upload.ErrTooLarge), errors.As(err, &maxErr):
		h.badRequest(w, fmt.Sprintf("file is too large (max %dMB)", h.uploader.MaxBytes()>>20), "FileTooLarge")
	case errors.Is(err, upload.ErrNotImage):
		h.badRequest(w, upload.ErrNotImage.Error(), "NotAnImage")
	case errors.Is(err, upload.ErrEmpty):
		h.badRequest(w, upload.ErrEmpty.Error(), "ImageRequired")
	default:
		h.fail(w, r, err)
	}
}

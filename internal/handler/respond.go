package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/famfeed/internal/service"
)

const maxJSONBody = 1 << 20

// responder turns results and errors into JSON responses. In development
// mode internal errors carry their detail.
type responder struct {
	logger *slog.Logger
	dev    bool
}

func newResponder(logger *slog.Logger, dev bool) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger, dev: dev}
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Detail string            `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := service.AsError(err)
	status := e.Kind.HTTPStatus()
	body := errorBody{Error: e.Message, Code: e.Code, Fields: e.Fields}

	if status >= http.StatusInternalServerError {
		rs.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body = errorBody{Error: "internal server error", Code: e.Code}
		if rs.dev {
			body.Detail = err.Error()
		}
	}
	writeJSON(w, status, body)
}

func (rs responder) badRequest(w http.ResponseWriter, msg, code string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: code})
}

func (rs responder) forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, errorBody{Error: service.ErrNotAuthorized.Message, Code: service.ErrNotAuthorized.Code})
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func (rs responder) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		rs.badRequest(w, "request body too large", "BodyTooLarge")
	case errors.Is(err, io.EOF):
		rs.badRequest(w, "request body is required", "InvalidJSON")
	default:
		rs.badRequest(w, "invalid JSON", "InvalidJSON")
	}
	return false
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, service.ValidationError(map[string]string{name: name + " must be an integer"})
	}
	return n, nil
}

func message(msg string) map[string]string {
	return map[string]string{"message": msg}
}

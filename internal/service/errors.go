package service

import (
	"errors"
	"net/http"
)

// Kind classifies an Error for the transport boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindAuthentication
	KindConflict
)

// HTTPStatus maps the kind to a response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is the typed failure returned by every domain operation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so that errors.Is works against the sentinels below
// even when the returned value carries extra detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrDuplicateEmail       = &Error{Kind: KindConflict, Code: "DuplicateEmail", Message: "email is already registered"}
	ErrFamilyNotFound       = &Error{Kind: KindNotFound, Code: "FamilyNotFound", Message: "family not found"}
	ErrInvalidCredentials   = &Error{Kind: KindAuthentication, Code: "InvalidCredentials", Message: "invalid email or password"}
	ErrInvalidToken         = &Error{Kind: KindAuthentication, Code: "InvalidToken", Message: "invalid or expired token"}
	ErrUserNotFound         = &Error{Kind: KindNotFound, Code: "UserNotFound", Message: "user not found"}
	ErrEmptyPost            = &Error{Kind: KindValidation, Code: "EmptyPost", Message: "post needs content or an image"}
	ErrPostNotFound         = &Error{Kind: KindNotFound, Code: "PostNotFound", Message: "post not found"}
	ErrNotAuthorized        = &Error{Kind: KindAuthorization, Code: "NotAuthorized", Message: "not authorized"}
	ErrEmptyContent         = &Error{Kind: KindValidation, Code: "EmptyContent", Message: "content is required"}
	ErrMessageNotFound      = &Error{Kind: KindNotFound, Code: "MessageNotFound", Message: "message not found"}
	ErrNotificationNotFound = &Error{Kind: KindNotFound, Code: "NotificationNotFound", Message: "notification not found"}
	ErrSubscriptionNotFound = &Error{Kind: KindNotFound, Code: "SubscriptionNotFound", Message: "push subscription not found"}
)

// ValidationError reports field-level input problems.
func ValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "ValidationError", Message: "validation failed", Fields: fields}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Code: "InternalError", Message: "internal server error", Err: err}
}

// AsError converts any error into an *Error, classifying unknown errors as
// internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internalError(err)
}

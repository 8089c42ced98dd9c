package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const minPasswordLength = 6

// validator collects field errors; the first message per field wins.
type validator map[string]string

func (v validator) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, field+" is required")
	}
}

func (v validator) email(field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.add(field, "a valid email address is required")
	}
}

func (v validator) password(field, value string) {
	if utf8.RuneCountInString(value) < minPasswordLength {
		v.add(field, "password must be at least 6 characters")
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return ValidationError(v)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// optional trims s and returns nil when nothing is left.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

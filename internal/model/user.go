package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a family member account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	FamilyID     string    `json:"family_id"`
	FamilyName   string    `json:"family_name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Avatar       *string   `json:"avatar"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

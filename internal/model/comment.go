package model

import "time"

type Comment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	PostID     string    `json:"post_id"`
	FamilyID   string    `json:"family_id"`
	Content    string    `json:"content"`
	UserName   string    `json:"user_name"`
	UserAvatar *string   `json:"user_avatar"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

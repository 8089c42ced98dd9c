package model

import "time"

type Message struct {
	ID              string    `json:"id"`
	SenderID        string    `json:"sender_id"`
	RecipientID     string    `json:"recipient_id"`
	Content         string    `json:"content"`
	IsRead          bool      `json:"is_read"`
	SenderName      string    `json:"sender_name"`
	SenderAvatar    *string   `json:"sender_avatar"`
	RecipientName   string    `json:"recipient_name"`
	RecipientAvatar *string   `json:"recipient_avatar"`
	CreatedAt       time.Time `json:"created_at"`
}

package model

import "time"

// Post is a feed entry. LikesCount and CommentsCount are computed from the
// likes and comments tables when the post is read.
type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	FamilyID      string    `json:"family_id"`
	Content       *string   `json:"content"`
	ImageURL      *string   `json:"image_url"`
	UserName      string    `json:"user_name"`
	UserAvatar    *string   `json:"user_avatar"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

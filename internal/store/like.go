package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/google/uuid"
)

type LikeStore struct {
	db database.DBTX
}

func NewLikeStore(db database.DBTX) *LikeStore {
	return &LikeStore{db: db}
}

func (s *LikeStore) Get(ctx context.Context, userID, postID string) (*model.Like, error) {
	var l model.Like
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, post_id, created_at FROM likes WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	).Scan(&l.ID, &l.UserID, &l.PostID, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return &l, nil
}

// Create inserts a like. A second like by the same user on the same post
// fails the (user_id, post_id) unique constraint.
func (s *LikeStore) Create(ctx context.Context, userID, postID string) (*model.Like, error) {
	l := &model.Like{
		ID:        uuid.NewString(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: database.Now(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO likes (id, user_id, post_id, created_at) VALUES (?, ?, ?, ?)`,
		l.ID, l.UserID, l.PostID, l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert like: %w", err)
	}
	return l, nil
}

// Delete removes the user's like on a post and reports whether one existed.
func (s *LikeStore) Delete(ctx context.Context, userID, postID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *LikeStore) CountByPost(ctx context.Context, postID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

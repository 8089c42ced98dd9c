package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/google/uuid"
)

type CommentStore struct {
	db database.DBTX
}

func NewCommentStore(db database.DBTX) *CommentStore {
	return &CommentStore{db: db}
}

func scanComment(scanner interface{ Scan(...any) error }) (*model.Comment, error) {
	var c model.Comment
	err := scanner.Scan(&c.ID, &c.UserID, &c.PostID, &c.FamilyID, &c.Content,
		&c.UserName, &c.UserAvatar, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const commentCols = `c.id, c.user_id, c.post_id, p.family_id, c.content, u.name, u.avatar, c.created_at, c.updated_at`

const commentFrom = ` FROM comments c JOIN users u ON u.id = c.user_id JOIN posts p ON p.id = c.post_id`

func (s *CommentStore) Create(ctx context.Context, userID, postID, content string) (*model.Comment, error) {
	id := uuid.NewString()
	now := database.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, post_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, postID, content, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *CommentStore) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentCols+commentFrom+` WHERE c.id = ?`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// ListByPost returns a post's comments in display order, oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentCols+commentFrom+` WHERE c.post_id = ? ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments by post: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (s *CommentStore) CountByPost(ctx context.Context, postID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

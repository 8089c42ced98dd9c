package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/google/uuid"
)

type PostStore struct {
	db database.DBTX
}

func NewPostStore(db database.DBTX) *PostStore {
	return &PostStore{db: db}
}

func scanPost(scanner interface{ Scan(...any) error }) (*model.Post, error) {
	var p model.Post
	err := scanner.Scan(&p.ID, &p.UserID, &p.FamilyID, &p.Content, &p.ImageURL,
		&p.UserName, &p.UserAvatar, &p.LikesCount, &p.CommentsCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Like and comment counts are derived on every read so they always match
// the surviving rows.
const postCols = `p.id, p.user_id, p.family_id, p.content, p.image_url, u.name, u.avatar,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	p.created_at, p.updated_at`

const postFrom = ` FROM posts p JOIN users u ON u.id = p.user_id`

func (s *PostStore) Create(ctx context.Context, userID, familyID string, content, imageURL *string) (*model.Post, error) {
	id := uuid.NewString()
	now := database.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, family_id, content, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, familyID, content, imageURL, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postCols+postFrom+` WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// ListByFamily returns a page of a family's posts, newest first.
func (s *PostStore) ListByFamily(ctx context.Context, familyID string, limit, offset int) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postCols+postFrom+` WHERE p.family_id = ?
		 ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		familyID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts by family: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *PostStore) CountByFamily(ctx context.Context, familyID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE family_id = ?`, familyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts by family: %w", err)
	}
	return n, nil
}

// Delete removes a post. Likes and comments go with it through ON DELETE CASCADE.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/dukerupert/famfeed/internal/store"
	"github.com/dukerupert/famfeed/internal/websocket"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostPage is one page of a family feed.
type PostPage struct {
	Posts []model.Post `json:"posts"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}

type PostService struct {
	Deps
}

func NewPostService(deps Deps) *PostService {
	return &PostService{Deps: deps}
}

// errAlreadyLiked rolls back a toggle whose insert lost the race to a
// concurrent like by the same user.
var errAlreadyLiked = errors.New("already liked")

// CreatePost publishes a post to the author's family feed.
func (s *PostService) CreatePost(ctx context.Context, authorID string, content, imageURL *string) (*model.Post, error) {
	content, imageURL = optional(content), optional(imageURL)
	if content == nil && imageURL == nil {
		return nil, ErrEmptyPost
	}

	var post *model.Post
	err := database.WithTx(ctx, s.DB, func(tx *database.Tx) error {
		author, err := store.NewUserStore(tx).GetByID(ctx, authorID)
		if err != nil {
			return err
		}
		if author == nil {
			return ErrUserNotFound
		}
		post, err = store.NewPostStore(tx).Create(ctx, author.ID, author.FamilyID, content, imageURL)
		return err
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.publish(ctx, websocket.FamilyTopic(post.FamilyID), websocket.EventPostCreated, post)
	return post, nil
}

// DeletePost removes a post with its likes and comments. Only the author may
// delete it.
func (s *PostService) DeletePost(ctx context.Context, postID, userID string) error {
	err := database.WithTx(ctx, s.DB, func(tx *database.Tx) error {
		posts := store.NewPostStore(tx)
		post, err := posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post == nil {
			return ErrPostNotFound
		}
		if post.UserID != userID {
			return ErrNotAuthorized
		}
		return posts.Delete(ctx, post.ID)
	})
	if err != nil {
		return AsError(err)
	}
	return nil
}

// ToggleLike flips the user's like on a post. The (user, post) unique
// constraint decides concurrent toggles: an insert that loses the race
// means the post is already liked.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*model.LikeResult, error) {
	result := &model.LikeResult{}
	err := database.WithTx(ctx, s.DB, func(tx *database.Tx) error {
		if _, err := s.visiblePost(ctx, tx, postID, userID); err != nil {
			return err
		}

		likes := store.NewLikeStore(tx)
		removed, err := likes.Delete(ctx, userID, postID)
		if err != nil {
			return err
		}
		if removed {
			result.Liked = false
			return nil
		}

		if _, err := likes.Create(ctx, userID, postID); err != nil {
			if database.IsUniqueViolation(err) {
				return errAlreadyLiked
			}
			return err
		}
		result.Liked = true
		return nil
	})
	if errors.Is(err, errAlreadyLiked) {
		result.Liked = true
		err = nil
	}
	if err != nil {
		return nil, AsError(err)
	}

	count, err := store.NewLikeStore(s.DB).CountByPost(ctx, postID)
	if err != nil {
		return nil, internalError(err)
	}
	result.LikesCount = count
	return result, nil
}

// AddComment comments on a post, notifies the post author and publishes the
// comment to the family.
func (s *PostService) AddComment(ctx context.Context, postID, userID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	var comment *model.Comment
	var notif *model.Notification
	err := database.WithTx(ctx, s.DB, func(tx *database.Tx) error {
		post, err := s.visiblePost(ctx, tx, postID, userID)
		if err != nil {
			return err
		}

		comment, err = store.NewCommentStore(tx).Create(ctx, userID, postID, content)
		if err != nil {
			return err
		}

		if post.UserID == userID {
			return nil
		}
		data, err := json.Marshal(map[string]string{"postId": post.ID, "commentId": comment.ID})
		if err != nil {
			return err
		}
		payload := string(data)
		notif, err = store.NewNotificationStore(tx).Create(ctx, post.UserID, model.NotifTypeComment,
			"New comment", fmt.Sprintf("%s commented on your post", comment.UserName), &payload)
		return err
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.publish(ctx, websocket.FamilyTopic(comment.FamilyID), websocket.EventCommentCreated, comment)
	s.notify(ctx, notif)
	return comment, nil
}

// ListComments returns a post's comments oldest first.
func (s *PostService) ListComments(ctx context.Context, postID, userID string) ([]model.Comment, error) {
	if _, err := s.visiblePost(ctx, s.DB, postID, userID); err != nil {
		return nil, AsError(err)
	}
	comments, err := store.NewCommentStore(s.DB).ListByPost(ctx, postID)
	if err != nil {
		return nil, internalError(err)
	}
	return comments, nil
}

// ListPosts returns a page of a family's feed, newest first. page is 1-based.
func (s *PostService) ListPosts(ctx context.Context, familyID string, page, pageSize int) (*PostPage, error) {
	if strings.TrimSpace(familyID) == "" {
		return nil, ValidationError(map[string]string{"familyId": "familyId is required"})
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	posts := store.NewPostStore(s.DB)
	list, err := posts.ListByFamily(ctx, familyID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, internalError(err)
	}
	total, err := posts.CountByFamily(ctx, familyID)
	if err != nil {
		return nil, internalError(err)
	}
	return &PostPage{Posts: list, Page: page, Limit: pageSize, Total: total}, nil
}

// visiblePost loads a post and checks that userID belongs to its family.
func (s *PostService) visiblePost(ctx context.Context, db database.DBTX, postID, userID string) (*model.Post, error) {
	post, err := store.NewPostStore(db).GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	user, err := store.NewUserStore(db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.FamilyID != post.FamilyID {
		return nil, ErrNotAuthorized
	}
	return post, nil
}

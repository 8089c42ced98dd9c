package service

import (
	"context"
	"strings"

	"github.com/dukerupert/famfeed/internal/model"
	"github.com/dukerupert/famfeed/internal/store"
)

type UserService struct {
	Deps
}

func NewUserService(deps Deps) *UserService {
	return &UserService{Deps: deps}
}

// ListFamilyMembers returns the active members of a family, oldest first.
func (s *UserService) ListFamilyMembers(ctx context.Context, familyID string) ([]model.User, error) {
	if strings.TrimSpace(familyID) == "" {
		return nil, ValidationError(map[string]string{"familyId": "familyId is required"})
	}
	users, err := store.NewUserStore(s.DB).ListByFamily(ctx, familyID)
	if err != nil {
		return nil, internalError(err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := store.NewUserStore(s.DB).GetByID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the display name and avatar. A nil avatar clears it.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string, avatar *string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError(map[string]string{"name": "name is required"})
	}

	users := store.NewUserStore(s.DB)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	updated, err := users.UpdateProfile(ctx, user.ID, name, optional(avatar))
	if err != nil {
		return nil, internalError(err)
	}
	return updated, nil
}

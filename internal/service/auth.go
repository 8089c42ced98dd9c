package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dukerupert/famfeed/internal/auth"
	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/dukerupert/famfeed/internal/store"
)

// AuthResult is returned by every operation that signs a user in.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// dummyHash stands in for a stored hash when no active user matches, so a
// failed login costs one argon2 derivation either way.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("no-such-user")
	return h
})

var verifyPassword = auth.VerifyPassword

type AuthService struct {
	Deps
	tokens *auth.TokenManager
}

func NewAuthService(deps Deps, tokens *auth.TokenManager) *AuthService {
	return &AuthService{Deps: deps, tokens: tokens}
}

// RegisterFamilyAdmin creates a family and its first user, an admin.
func (s *AuthService) RegisterFamilyAdmin(ctx context.Context, email, password, name, familyName string) (*AuthResult, error) {
	email = normalizeEmail(email)
	v := validator{}
	v.email("email", email)
	v.password("password", password)
	v.required("name", name)
	v.required("familyName", familyName)
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internalError(err)
	}

	var user *model.User
	err = database.WithTx(ctx, s.DB, func(tx *database.Tx) error {
		users := store.NewUserStore(tx)
		exists, err := users.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEmail
		}

		family, err := store.NewFamilyStore(tx).Create(ctx, strings.TrimSpace(familyName), nil)
		if err != nil {
			return err
		}

		user, err = users.Create(ctx, store.CreateUserParams{
			FamilyID:     family.ID,
			Email:        email,
			PasswordHash: hash,
			Name:         strings.TrimSpace(name),
			Role:         model.RoleAdmin,
		})
		return err
	})
	if err != nil {
		return nil, classifyCreateUser(err)
	}

	s.logger().Info("family registered", "family_id", user.FamilyID, "user_id", user.ID)
	return s.signIn(user)
}

// JoinFamily adds a member to the family whose id is the invite code.
func (s *AuthService) JoinFamily(ctx context.Context, email, password, name, familyCode string) (*AuthResult, error) {
	email = normalizeEmail(email)
	familyCode = strings.TrimSpace(familyCode)
	v := validator{}
	v.email("email", email)
	v.password("password", password)
	v.required("name", name)
	v.required("familyCode", familyCode)
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internalError(err)
	}

	var user *model.User
	err = database.WithTx(ctx, s.DB, func(tx *database.Tx) error {
		family, err := store.NewFamilyStore(tx).GetByID(ctx, familyCode)
		if err != nil {
			return err
		}
		if family == nil {
			return ErrFamilyNotFound
		}

		users := store.NewUserStore(tx)
		exists, err := users.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateEmail
		}

		user, err = users.Create(ctx, store.CreateUserParams{
			FamilyID:     family.ID,
			Email:        email,
			PasswordHash: hash,
			Name:         strings.TrimSpace(name),
			Role:         model.RoleMember,
		})
		return err
	})
	if err != nil {
		return nil, classifyCreateUser(err)
	}

	s.logger().Info("member joined family", "family_id", user.FamilyID, "user_id", user.ID)
	return s.signIn(user)
}

// Login checks the password and issues a credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	v := validator{}
	v.email("email", email)
	v.required("password", password)
	if err := v.err(); err != nil {
		return nil, err
	}

	user, err := store.NewUserStore(s.DB).GetByEmail(ctx, email)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil || !user.IsActive {
		verifyPassword(password, dummyHash())
		return nil, ErrInvalidCredentials
	}

	ok, err := verifyPassword(password, user.PasswordHash)
	if err != nil {
		s.logger().Warn("unreadable password hash", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.signIn(user)
}

// VerifyCredential resolves a credential to the current state of its user.
func (s *AuthService) VerifyCredential(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, &Error{Kind: KindAuthentication, Code: ErrInvalidToken.Code, Message: ErrInvalidToken.Message, Err: err}
	}

	user, err := store.NewUserStore(s.DB).GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, internalError(err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) signIn(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(auth.Claims{
		UserID:   user.ID,
		FamilyID: user.FamilyID,
		Email:    user.Email,
		Role:     user.Role,
	})
	if err != nil {
		return nil, internalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// classifyCreateUser maps a lost race on the email unique constraint to
// ErrDuplicateEmail.
func classifyCreateUser(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if database.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return internalError(err)
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
	"github.com/google/uuid"
)

type UserStore struct {
	db database.DBTX
}

func NewUserStore(db database.DBTX) *UserStore {
	return &UserStore{db: db}
}

// CreateUserParams holds the fields needed to insert a user.
type CreateUserParams struct {
	FamilyID     string
	Email        string
	PasswordHash string
	Name         string
	Avatar       *string
	Role         string
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.FamilyID, &u.FamilyName, &u.Email, &u.PasswordHash,
		&u.Name, &u.Avatar, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `u.id, u.family_id, f.name, u.email, u.password_hash, u.name, u.avatar, u.role, u.is_active, u.created_at, u.updated_at`

const userFrom = ` FROM users u JOIN families f ON f.id = u.family_id`

// Create inserts a user. A duplicate email surfaces as a unique violation
// that callers can detect with database.IsUniqueViolation.
func (s *UserStore) Create(ctx context.Context, p CreateUserParams) (*model.User, error) {
	id := uuid.NewString()
	now := database.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, family_id, email, password_hash, name, avatar, role, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.FamilyID, p.Email, p.PasswordHash, p.Name, p.Avatar, p.Role, true, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+userFrom+` WHERE u.id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+userFrom+` WHERE u.email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// EmailExists reports whether any user, active or not, has the email.
func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return n > 0, nil
}

// ListByFamily returns the active members of a family, oldest first.
func (s *UserStore) ListByFamily(ctx context.Context, familyID string) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userCols+userFrom+` WHERE u.family_id = ? AND u.is_active = ? ORDER BY u.created_at ASC, u.id ASC`,
		familyID, true,
	)
	if err != nil {
		return nil, fmt.Errorf("list users by family: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateProfile(ctx context.Context, id, name string, avatar *string) (*model.User, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, avatar = ?, updated_at = ? WHERE id = ?`,
		name, avatar, database.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) SetActive(ctx context.Context, id string, active bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, database.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}

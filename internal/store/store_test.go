package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/model"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestFamily(t *testing.T, db database.DBTX, name string) *model.Family {
	t.Helper()
	f, err := NewFamilyStore(db).Create(context.Background(), name, nil)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return f
}

func createTestUser(t *testing.T, db database.DBTX, familyID, email, name string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(context.Background(), CreateUserParams{
		FamilyID:     familyID,
		Email:        email,
		PasswordHash: "hash",
		Name:         name,
		Role:         model.RoleMember,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func strPtr(s string) *string { return &s }

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bank-portal/internal/domain"
	"bank-portal/internal/repository"
)

func openTestDB(t *testing.T) (repository.UserRepository, repository.AccountRepository) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := NewUserRepository(db)
	accounts := NewAccountRepository(db)
	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := accounts.Init(ctx); err != nil {
		t.Fatalf("init accounts: %v", err)
	}
	return users, accounts
}

func newTestUser(t *testing.T, users repository.UserRepository, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     "tester",
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestUserCreateAndGet(t *testing.T) {
	users, _ := openTestDB(t)
	ctx := context.Background()

	created := newTestUser(t, users, "a@x.com", domain.RoleCustomer)
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := users.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != created.ID || got.Role != domain.RoleCustomer {
		t.Fatalf("got=%+v", got)
	}

	if _, err := users.GetByEmail(ctx, "missing@x.com"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	users, _ := openTestDB(t)

	newTestUser(t, users, "dup@x.com", domain.RoleCustomer)
	err := users.Create(context.Background(), &domain.User{
		Username:     "other",
		Email:        "dup@x.com",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
	})
	if !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestUserTokenRotation(t *testing.T) {
	users, _ := openTestDB(t)
	ctx := context.Background()

	user := newTestUser(t, users, "rot@x.com", domain.RoleCustomer)

	tok := "first-token"
	expiresAt := time.Now().UTC().Add(time.Hour)
	if err := users.UpdateToken(ctx, user.ID, &tok, &expiresAt); err != nil {
		t.Fatalf("UpdateToken: %v", err)
	}

	got, err := users.GetByToken(ctx, tok)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("resolved wrong user %q", got.ID)
	}

	// rotation invalidates the previous token
	next := "second-token"
	if err := users.UpdateToken(ctx, user.ID, &next, &expiresAt); err != nil {
		t.Fatalf("UpdateToken: %v", err)
	}
	if _, err := users.GetByToken(ctx, tok); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("old token should not resolve, got %v", err)
	}

	// clearing drops the session entirely
	if err := users.UpdateToken(ctx, user.ID, nil, nil); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if _, err := users.GetByToken(ctx, next); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("cleared token should not resolve, got %v", err)
	}

	got, err = users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AccessToken != nil || got.TokenExpiresAt != nil {
		t.Fatalf("token fields should be nil after clear: %+v", got)
	}
}

func TestUpdateTokenUnknownUser(t *testing.T) {
	users, _ := openTestDB(t)

	err := users.UpdateToken(context.Background(), "no-such-id", nil, nil)
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

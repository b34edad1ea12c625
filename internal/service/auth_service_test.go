package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bank-portal/internal/domain"
	"bank-portal/internal/token"
)

func newAuth(env *testEnv, ttl time.Duration) AuthService {
	return NewAuthService(env.users, token.NewIssuer(ttl), 4)
}

func TestSignUpValidation(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuth(env, time.Hour)
	ctx := context.Background()

	if _, err := auth.SignUp(ctx, "alice", "alice@x.com", "short", domain.RoleCustomer); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("want ErrPasswordTooShort, got %v", err)
	}
	if _, err := auth.SignUp(ctx, "alice", "alice@x.com", "secret1", domain.Role("admin")); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("want ErrInvalidRole, got %v", err)
	}

	user, err := auth.SignUp(ctx, "alice", "alice@x.com", "secret1", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked from SignUp")
	}

	// role defaults to customer
	bob, err := auth.SignUp(ctx, "bob", "bob@x.com", "secret1", "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if bob.Role != domain.RoleCustomer {
		t.Fatalf("role=%q want=customer", bob.Role)
	}

	if _, err := auth.SignUp(ctx, "alice2", "alice@x.com", "secret1", domain.RoleCustomer); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("want ErrEmailInUse, got %v", err)
	}
}

func TestSignInAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuth(env, time.Hour)
	ctx := context.Background()

	if _, err := auth.SignUp(ctx, "alice", "alice@x.com", "secret1", domain.RoleCustomer); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, _, err := auth.SignIn(ctx, "alice@x.com", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := auth.SignIn(ctx, "nobody@x.com", "secret1", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	tok, role, err := auth.SignIn(ctx, "alice@x.com", "secret1", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if role != domain.RoleCustomer || len(tok) != 36 {
		t.Fatalf("role=%q token=%q", role, tok)
	}

	principal, err := auth.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.Email != "alice@x.com" {
		t.Fatalf("principal=%+v", principal)
	}
	if principal.PasswordHash != "" || principal.AccessToken != nil {
		t.Fatal("principal carries credential material")
	}
}

func TestSignInRoleMismatchKeepsToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuth(env, time.Hour)
	ctx := context.Background()

	if _, err := auth.SignUp(ctx, "alice", "alice@x.com", "secret1", domain.RoleCustomer); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	tok, _, err := auth.SignIn(ctx, "alice@x.com", "secret1", "")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if _, _, err := auth.SignIn(ctx, "alice@x.com", "secret1", domain.RoleBanker); !errors.Is(err, ErrRoleMismatch) {
		t.Fatalf("want ErrRoleMismatch, got %v", err)
	}

	// the mismatched attempt must not have rotated the live token
	if _, err := auth.Authenticate(ctx, tok); err != nil {
		t.Fatalf("token rotated by mismatched sign-in: %v", err)
	}
}

func TestSignOutInvalidatesToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuth(env, time.Hour)
	ctx := context.Background()

	if _, err := auth.SignUp(ctx, "alice", "alice@x.com", "secret1", domain.RoleCustomer); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	tok, _, err := auth.SignIn(ctx, "alice@x.com", "secret1", "")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	principal, err := auth.Authenticate(ctx, tok)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := auth.SignOut(ctx, principal.ID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := auth.Authenticate(ctx, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken after sign-out, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuth(env, -time.Minute) // tokens are born expired
	ctx := context.Background()

	if _, err := auth.SignUp(ctx, "alice", "alice@x.com", "secret1", domain.RoleCustomer); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	tok, _, err := auth.SignIn(ctx, "alice@x.com", "secret1", "")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if _, err := auth.Authenticate(ctx, tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuth(env, time.Hour)

	if _, err := auth.Authenticate(context.Background(), "never-issued"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for empty token, got %v", err)
	}
}

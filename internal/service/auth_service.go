package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bank-portal/internal/domain"
	"bank-portal/internal/repository"
	"bank-portal/internal/token"
)

var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailInUse is returned when signing up with an already registered email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrPasswordTooShort is returned when the sign-up password is under 6 characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrInvalidRole indicates a role outside {customer, banker}.
	ErrInvalidRole = errors.New("invalid role")
	// ErrRoleMismatch indicates sign-in requested a role the user does not hold.
	ErrRoleMismatch = errors.New("user is not authorized as the requested role")
	// ErrInvalidToken indicates a bearer token that resolves to no user.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a resolvable but expired bearer token.
	ErrTokenExpired = errors.New("token expired")
)

// AuthService covers the user session lifecycle: registration, sign-in with
// token rotation, sign-out, and bearer-token authentication.
type AuthService interface {
	SignUp(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error)
	// SignIn verifies credentials and rotates the user's access token. When
	// requestedRole is non-empty it must match the stored role; a mismatch
	// fails without rotating the token.
	SignIn(ctx context.Context, email, password string, requestedRole domain.Role) (accessToken string, role domain.Role, err error)
	SignOut(ctx context.Context, userID string) error
	// Authenticate resolves a presented bearer token to its user.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type authService struct {
	users      repository.UserRepository
	issuer     *token.Issuer
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, issuer *token.Issuer, bcryptCost int) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		issuer:     issuer,
		bcryptCost: bcryptCost,
	}
}

func (s *authService) SignUp(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" {
		return nil, errors.New("username is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// an initial session token is issued at registration; the client still
	// signs in to obtain it
	accessToken, expiresAt, err := s.issuer.Issue()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	user := &domain.User{
		Username:       username,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		AccessToken:    &accessToken,
		TokenExpiresAt: &expiresAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *authService) SignIn(ctx context.Context, email, password string, requestedRole domain.Role) (string, domain.Role, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", "", ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	// role check precedes rotation: a mismatched sign-in must leave any live
	// session token untouched
	if requestedRole != "" && user.Role != requestedRole {
		return "", "", ErrRoleMismatch
	}

	accessToken, expiresAt, err := s.issuer.Issue()
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.UpdateToken(ctx, user.ID, &accessToken, &expiresAt); err != nil {
		return "", "", fmt.Errorf("store token: %w", err)
	}
	return accessToken, user.Role, nil
}

func (s *authService) SignOut(ctx context.Context, userID string) error {
	if err := s.users.UpdateToken(ctx, userID, nil, nil); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.TokenExpiresAt != nil && time.Now().After(*user.TokenExpiresAt) {
		return nil, ErrTokenExpired
	}
	return sanitizeUser(user), nil
}

// sanitizeUser strips credential material before the user leaves the service.
func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

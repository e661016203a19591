package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ashevelev/chatweb/pkg/domain"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchUpdatedAt(ctx context.Context, userID string) error
}

type authService struct {
	users UserRepository
}

func NewAuthService(users UserRepository) *authService {
	return &authService{users: users}
}

// SignUp validates the request, hashes the password and creates the
// account. A duplicate email yields domain.ErrConflict.
func (a *authService) SignUp(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, domain.NewValidationError("Name, email, and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, domain.NewValidationError("Please provide a valid email address")
	}

	if len(req.Password) < 6 {
		return nil, domain.NewValidationError("Password must be at least 6 characters long")
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, domain.NewValidationError("Name must be at least 2 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// SignIn authenticates by email and password. An unknown email and a
// wrong password are indistinguishable to the caller.
func (a *authService) SignIn(ctx context.Context, req domain.SigninRequest) (*domain.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		return nil, domain.NewValidationError("Please provide a valid email address")
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	if err := a.users.TouchUpdatedAt(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("updating last activity: %w", err)
	}
	user.UpdatedAt = time.Now()

	return user, nil
}

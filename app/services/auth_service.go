package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"inkpost/app/models"
	"inkpost/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("you have already signed up with that email")
	ErrInvalidCredentials = errors.New("your email or password is wrong")
)

// AuthService registers users and checks their credentials.
type AuthService struct {
	users  repositories.UserRepository
	hasher PasswordHasher

	// dummyHash is compared against when the email is unknown so a miss
	// costs the same as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Register validates the form and stores a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, form *models.RegisterForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	email := models.NormalizeEmail(form.Email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(form.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, models.ValidationErrors{"password": "Password is too long."}
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Username: strings.TrimSpace(form.Username),
		Password: hash,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user owning the submitted credentials, or
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, form *models.LoginForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, form.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.hasher.Verify(form.Password, s.dummy())
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	ok, err := s.hasher.Verify(form.Password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// User loads a user by ID.
func (s *AuthService) User(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}

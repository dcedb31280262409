package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/kunkakamikasa/dramini-api/internal/model"
	"github.com/kunkakamikasa/dramini-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 8
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

type AuthService struct {
	Users *repository.UserRepository
}

func NewAuthService(users *repository.UserRepository) *AuthService {
	return &AuthService{Users: users}
}

func (s *AuthService) validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

func (s *AuthService) validatePassword(pw string) error {
	if len(pw) < MinPasswordLen {
		return fmt.Errorf("password too short: must be at least %d characters", MinPasswordLen)
	}
	return nil
}

// Register creates a user with role "user". Passwords are stored only as
// bcrypt hashes.
func (s *AuthService) Register(ctx context.Context, email, password string) (int64, error) {
	if err := s.validateEmail(email); err != nil {
		return 0, err
	}
	if err := s.validatePassword(password); err != nil {
		return 0, err
	}
	exists, err := s.Users.EmailExists(ctx, email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, errors.New("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.Users.CreateUser(ctx, email, string(hash), "user")
}

// Login authenticates using email + password and returns the user (without password hash).
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		// do not reveal whether email exists
		return nil, errors.New("invalid credentials")
	}
	if u.DeletedAt != nil {
		return nil, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	// zero out password before returning
	u.PasswordHash = ""
	return u, nil
}

func (s *AuthService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.Users.GetByID(ctx, id)
}

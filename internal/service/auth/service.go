// Package auth signs users up and in, and resolves opaque access tokens back
// to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"clubstore/internal/domain"
	tokenrepo "clubstore/internal/repository/token"
	userrepo "clubstore/internal/repository/user"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

type Service struct {
	users       userrepo.Repository
	tokens      *tokenManager
	logger      *log.Logger
	accessTTL   time.Duration
	passwordMin int
}

func New(users userrepo.Repository, tokens tokenrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		users:       users,
		tokens:      newTokenManager(tokens),
		logger:      logger,
		accessTTL:   48 * time.Hour,
		passwordMin: 8,
	}
}

type SignupInput struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

// Signup registers a customer account. Admins are promoted out of band.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, domain.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         domain.RoleCustomer,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("auth: signup user_id=%s", u.ID)
	return u, nil
}

// Login validates credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	password = strings.TrimSpace(password)
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(ctx, u.ID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	s.logger.Printf("auth: login user_id=%s", u.ID)
	return u, access, nil
}

// Logout revokes the token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// Me returns the user bound to a valid access token.
func (s *Service) Me(ctx context.Context, token string) (*domain.User, error) {
	userID, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// AccessTTL exposes the access token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, min)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number", domain.ErrValidation)
	}
	return nil
}

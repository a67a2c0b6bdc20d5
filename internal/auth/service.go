package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/logging"
)

// Service implements registration and login over the users table
type Service struct {
	repo        *database.Repository
	jwt         *JWTManager
	passwords   *PasswordManager
	adminSecret string
	log         *logging.Logger
}

// NewService creates the auth service. adminSecret gates admin registration;
// an empty secret disables admin self-registration entirely.
func NewService(repo *database.Repository, jwt *JWTManager, passwords *PasswordManager, adminSecret string) *Service {
	return &Service{
		repo:        repo,
		jwt:         jwt,
		passwords:   passwords,
		adminSecret: adminSecret,
		log:         logging.WithComponent("auth"),
	}
}

// Register creates a new user. Supplying the correct admin secret makes the
// user an admin; supplying a wrong one fails the request rather than quietly
// downgrading.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	isAdmin := false
	if req.AdminSecret != "" {
		if !s.checkAdminSecret(req.AdminSecret) {
			return nil, ErrBadAdminSecret
		}
		isAdmin = true
	}

	if _, err := s.repo.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &database.User{
		Username:     req.Username,
		PasswordHash: hash,
		EmployeeID:   req.EmployeeID,
		IsAdmin:      isAdmin,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", "username", user.Username, "is_admin", user.IsAdmin)
	return userResponse(user), nil
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.passwords.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(UserClaims{
		UserID:     user.ID,
		Username:   user.Username,
		EmployeeID: user.EmployeeID,
		IsAdmin:    user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:        *userResponse(user),
		AccessToken: token,
		ExpiresIn:   s.jwt.GetAccessTokenDuration(),
		TokenType:   "Bearer",
	}, nil
}

// Me loads the user behind a validated token
func (s *Service) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userResponse(user), nil
}

func (s *Service) checkAdminSecret(candidate string) bool {
	if s.adminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.adminSecret)) == 1
}

func userResponse(user *database.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		EmployeeID: user.EmployeeID,
		IsAdmin:    user.IsAdmin,
	}
}

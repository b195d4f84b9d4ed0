package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/smartextemp/extemp-backend/internal/auth/jwt"
	"github.com/smartextemp/extemp-backend/internal/auth/repository"
	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/logger"
)

// AuthService handles authentication against the Users tab
type AuthService struct {
	repo       *repository.UserRepository
	jwtManager *jwt.Manager
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repo *repository.UserRepository, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
		logger:     log,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
	User         *UserInfo `json:"user"`
}

// UserInfo represents user information
type UserInfo struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errors.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, errors.InvalidCredentials()
	}

	if !verifyPassword(user.Password, req.Password) {
		s.logger.Warn().Str("username", user.Username).Msg("failed login attempt")
		return nil, errors.InvalidCredentials()
	}

	info := userInfo(user)
	tokens, err := s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:       info.Username,
		Username: info.Username,
		Name:     info.Name,
		Role:     info.Role,
	})
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}

	s.logger.Info().Str("username", info.Username).Str("role", info.Role).Msg("user logged in")

	return &LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		TokenType:    tokens.TokenType,
		User:         info,
	}, nil
}

// Refresh issues a new token pair from a valid refresh token. The user is
// re-read from the Users tab so removed accounts lose access on refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, errors.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, errors.Unauthorized("account no longer exists")
	}

	info := userInfo(user)
	return s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:       info.Username,
		Username: info.Username,
		Name:     info.Name,
		Role:     info.Role,
	})
}

// GetCurrentUser returns the account behind an authenticated username
func (s *AuthService) GetCurrentUser(ctx context.Context, username string) (*UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return userInfo(user), nil
}

func userInfo(user *repository.User) *UserInfo {
	role := user.Role
	if role == "" {
		role = "staff"
	}
	name := user.Name
	if name == "" {
		name = user.Username
	}
	return &UserInfo{
		Username: user.Username,
		Name:     name,
		Role:     role,
	}
}

// verifyPassword checks a candidate password against the stored value.
// Bcrypt hashes are verified with bcrypt; anything else is treated as a
// legacy plaintext entry and compared in constant time.
func verifyPassword(stored, candidate string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

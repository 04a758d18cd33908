package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/config"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/middleware"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo         repository.UserRepositoryInterface
	refreshTokenRepo repository.RefreshTokenRepositoryInterface
	jwt              config.JWTConfig
}

func NewAuthService(userRepo repository.UserRepositoryInterface, refreshTokenRepo repository.RefreshTokenRepositoryInterface, jwt config.JWTConfig) *AuthService {
	return &AuthService{userRepo: userRepo, refreshTokenRepo: refreshTokenRepo, jwt: jwt}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthSession is what the client persists: a short-lived access token and
// an opaque refresh token.
type AuthSession struct {
	AccessToken     string              `json:"access_token"`
	AccessExpiresAt time.Time           `json:"access_expires_at"`
	RefreshToken    string              `json:"refresh_token"`
	User            models.UserResponse `json:"user"`
}

func (s *AuthService) Register(input RegisterInput) (*AuthSession, error) {
	email := validation.NormalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if !validation.ValidateEmail(email) || !validation.ValidateUsername(username) || !validation.ValidatePassword(input.Password) {
		return nil, ErrInvalidInput
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(input.FullName),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return s.issueSession(user)
}

func (s *AuthService) Login(input LoginInput) (*AuthSession, error) {
	user, err := s.userRepo.FindByEmail(validation.NormalizeEmail(input.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	// one active session per user; the realtime hub enforces the same
	if err := s.refreshTokenRepo.RevokeAllForUser(user.ID); err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

// RefreshSession rotates the refresh token: the presented one is revoked and
// a new pair is issued.
func (s *AuthService) RefreshSession(rawToken string) (*AuthSession, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := hashToken(rawToken)
	stored, err := s.refreshTokenRepo.FindValidByHash(hash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if err := s.refreshTokenRepo.RevokeByHash(hash); err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

// Logout revokes the refresh token. Unknown tokens are not an error.
func (s *AuthService) Logout(rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil
	}
	if err := s.refreshTokenRepo.RevokeByHash(hashToken(rawToken)); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (s *AuthService) issueSession(user *models.User) (*AuthSession, error) {
	access, expiresAt, err := middleware.IssueToken(s.jwt.Secret, user.ID, user.Email, user.Role, s.jwt.AccessTTL)
	if err != nil {
		return nil, err
	}

	raw, hash := generateRefreshToken()
	if err := s.refreshTokenRepo.Create(&models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.jwt.RefreshTTL),
	}); err != nil {
		return nil, err
	}

	return &AuthSession{
		AccessToken:     access,
		AccessExpiresAt: expiresAt,
		RefreshToken:    raw,
		User:            user.ToResponse(),
	}, nil
}

func generateRefreshToken() (raw, hash string) {
	raw = uuid.NewString() + uuid.NewString()
	return raw, hashToken(raw)
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

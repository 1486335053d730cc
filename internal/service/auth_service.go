package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/repository"
)

const (
	SessionTTL        = 30 * 24 * time.Hour
	MinPasswordLength = 6
)

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users      repository.UserRepository
	secret     []byte
	bcryptCost int
	now        func() time.Time
	logger     *zap.Logger
}

func NewAuthService(users repository.UserRepository, secret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		secret:     []byte(secret),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, in models.RegisterInput) (models.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if name == "" {
		return models.User{}, "", invalid("name", "Name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return models.User{}, "", invalid("email", "A valid email is required")
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return models.User{}, "", invalid("password", "Password must be at least %d characters", MinPasswordLength)
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return models.User{}, "", ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, "", fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, "", ErrUserExists
		}
		return models.User{}, "", fmt.Errorf("register: %w", err)
	}

	token, err := s.IssueToken(user.Id)
	if err != nil {
		return models.User{}, "", err
	}

	s.logger.Info("user registered", zap.String("user", user.Id))
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.Id)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) IssueToken(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a session token to its user. Any failure, including a
// user deleted after the token was issued, is ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrUnauthorized
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("rejected session token", zap.Error(err))
		return models.User{}, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrUnauthorized
	}
	if err != nil {
		return models.User{}, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}

package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/sirupsen/logrus"
)

const msgInvalidCredentials = "Invalid credentials"

// unknownUserPassword is hashed once and compared against when the email is
// unknown, so both login failures cost one hash comparison.
const unknownUserPassword = "unknown-user-password"

// TokenIssuer mints bearer tokens for an authenticated user
type TokenIssuer interface {
	Issue(userID uint) (string, time.Time, error)
}

// LoginResult is returned to a client after a successful login
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

type AuthService interface {
	// Register creates a regular user account. Any requested role is ignored.
	Register(ctx context.Context, input NewUserInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type authService struct {
	users  UserService
	hasher PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserService, hasher PasswordHasher, tokens TokenIssuer) AuthService {
	return &authService{users: users, hasher: hasher, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, input NewUserInput) (*models.User, error) {
	input.Role = models.RoleUser
	return s.users.CreateUser(ctx, input)
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			s.hasher.Compare(s.unknownUserHash(), password)
			return nil, models.NewAuthenticationError(msgInvalidCredentials)
		}
		return nil, err
	}
	if !s.hasher.Compare(user.Password, password) {
		return nil, models.NewAuthenticationError(msgInvalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

func (s *authService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(unknownUserPassword)
		if err != nil {
			logrus.WithError(err).Warn("Could not hash the unknown user password")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/pkg/utils/audit"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPendingApproval    = errors.New("account is pending admin approval")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUserNotFound       = errors.New("user not found")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

const minPasswordLength = 6

// AuthService handles registration, login and session verification
type AuthService struct {
	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	audit      *audit.Logger
	sessionTTL time.Duration
	now        func() time.Time
	bcryptCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, auditLog *audit.Logger, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      repository.NewUserRepository(db),
		sessions:   repository.NewSessionRepository(db),
		audit:      auditLog,
		sessionTTL: sessionTTL,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a user. The first user ever registered is an approved admin.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.UserModel, error) {
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: `username` must be 3-32 letters, digits or _.-", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: `password` must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	exists, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.UserModel{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zaplogger.Info("User registered", zaplogger.Fields{
		"username": user.Username,
		"is_admin": user.IsAdmin,
	})
	return user, nil
}

// Login verifies credentials and opens a new session. Earlier sessions of the
// user stay valid.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.SessionModel, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsApproved {
		return nil, ErrPendingApproval
	}

	session := &models.SessionModel{
		SessionToken: uuid.NewString(),
		UserID:       user.ID,
		ExpiresAt:    s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.User = *user
	return session, nil
}

// Logout deletes the session with the given token
func (s *AuthService) Logout(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

// VerifySession returns the session and its user for a live token.
// Used by the auth middleware.
func (s *AuthService) VerifySession(ctx context.Context, token string) (*models.SessionModel, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if session.IsExpired(s.now()) {
		return nil, ErrInvalidSession
	}
	if !session.User.IsApproved {
		return nil, ErrPendingApproval
	}
	return session, nil
}

// ListPendingUsers lists users waiting for approval
func (s *AuthService) ListPendingUsers(ctx context.Context) ([]models.UserModel, error) {
	return s.users.ListPendingUsers(ctx)
}

// ApproveUser approves a pending user
func (s *AuthService) ApproveUser(ctx context.Context, admin *models.UserModel, userID uint) (*models.UserModel, error) {
	if err := s.users.ApproveUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.audit.Info(admin.Username, "approve-user", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

// PurgeExpiredSessions deletes sessions past their expiry
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

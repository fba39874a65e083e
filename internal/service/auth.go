package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	domainerrors "github.com/listenupapp/bookclub-server/internal/errors"
	"github.com/listenupapp/bookclub-server/internal/id"
	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/store"
	"github.com/listenupapp/bookclub-server/internal/validation"
)

// Messages shown to users for authentication outcomes.
const (
	MsgLoginFailed      = "Login failed. Check your email and password."
	MsgUsernameTaken    = "That username is already taken."
	MsgEmailRegistered  = "An account with that email already exists."
	MsgProfileLoginNeed = "You must be logged in to see your profile."
)

// AuthService handles registration, login and logout.
// Session management is delegated to SessionService.
type AuthService struct {
	store     store.Store
	sessions  *SessionService
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	sessions *SessionService,
	validator *validation.Validator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		sessions:  sessions,
		validator: validator,
		metrics:   metrics,
		logger:    loggerOrDefault(logger),
	}
}

// RegisterRequest contains the data submitted on the registration form.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,max=250"`
	Email    string `json:"email" validate:"required,email,max=250"`
	Password string `json:"password" validate:"required,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the signed-in user and their session token.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates a new account. Username and email are unique ignoring case.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	user.InitTimestamps()

	err = s.store.InTx(ctx, func(tx store.Store) error {
		// Pre-checks name the colliding field; the unique indexes still decide races.
		if _, err := tx.GetUserByUsername(ctx, user.Username); err == nil {
			return domainerrors.Conflict(MsgUsernameTaken)
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup username: %w", err)
		}
		if _, err := tx.GetUserByEmail(ctx, user.Email); err == nil {
			return domainerrors.Conflict(MsgEmailRegistered)
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup email: %w", err)
		}

		if err := tx.CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domainerrors.Conflict("Username or email already exists.").WithCause(err)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRegistration()
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return user, nil
}

// Login verifies credentials and opens a new session. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.loginFailed(req.Email, "unknown email")
			return nil, domainerrors.InvalidCredentials(MsgLoginFailed)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.loginFailed(req.Email, "wrong password")
		return nil, domainerrors.InvalidCredentials(MsgLoginFailed)
	}

	if auth.IsLegacyHash(user.PasswordHash) {
		s.upgradeHash(ctx, user, req.Password)
	}

	session, err := s.sessions.CreateSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.RecordLogin(true)
	s.logger.Info("user logged in", "user_id", user.ID, "session_id", session.SessionID)

	return &AuthResponse{User: user, SessionResponse: *session}, nil
}

// Logout ends the identity's session. Calling it without a session, or twice,
// succeeds.
func (s *AuthService) Logout(ctx context.Context, identity domain.Identity) error {
	return s.sessions.DeleteSession(ctx, identity.SessionID)
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if err := requireIdentity(identity, MsgProfileLoginNeed); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, notFound(err, "User not found.", "get user")
	}
	return user, nil
}

func (s *AuthService) loginFailed(email, reason string) {
	s.metrics.RecordLogin(false)
	s.logger.Info("login failed", "email", email, "reason", reason)
}

// upgradeHash replaces an imported bcrypt hash with argon2id. Failure is
// logged and the login proceeds.
func (s *AuthService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("failed to rehash legacy password", "user_id", user.ID, "error", err)
		return
	}
	user.Touch()
	if err := s.store.UpdatePasswordHash(ctx, user.ID, hash, user.UpdatedAt); err != nil {
		s.logger.Warn("failed to store upgraded password hash", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	s.logger.Info("upgraded legacy password hash", "user_id", user.ID)
}

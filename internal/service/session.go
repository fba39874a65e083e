package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/domain"
	"github.com/listenupapp/bookclub-server/internal/id"
	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/store"
)

// touchInterval limits how often a session's last-seen time is written.
const touchInterval = 5 * time.Minute

// SessionService handles the login session lifecycle.
type SessionService struct {
	store    store.Store
	tokens   *auth.TokenService
	duration time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewSessionService creates a new session management service.
func NewSessionService(
	store store.Store,
	tokens *auth.TokenService,
	duration time.Duration,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		store:    store,
		tokens:   tokens,
		duration: duration,
		metrics:  metrics,
		logger:   loggerOrDefault(logger),
	}
}

// SessionResponse is the opaque token handed to the client.
type SessionResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession stores a session row for user and issues its token.
func (s *SessionService) CreateSession(ctx context.Context, user *domain.User) (*SessionResponse, error) {
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         sessionID,
		UserID:     user.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.duration),
		LastSeenAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &SessionResponse{
		Token:     s.tokens.Issue(session),
		TokenType: "Bearer",
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Resolve maps a client token to the requester's identity. Missing, invalid,
// expired and revoked tokens all resolve to the anonymous identity.
func (s *SessionService) Resolve(ctx context.Context, token string) domain.Identity {
	if token == "" {
		return domain.Anonymous()
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Debug("rejected session token", "error", err)
		return domain.Anonymous()
	}

	session, err := s.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("session lookup failed", "session_id", claims.SessionID, "error", err)
		}
		return domain.Anonymous()
	}

	now := time.Now().UTC()
	if session.UserID != claims.UserID || session.IsExpired(now) {
		return domain.Anonymous()
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return domain.Anonymous()
	}

	if now.Sub(session.LastSeenAt) >= touchInterval {
		if err := s.store.TouchSession(ctx, session.ID, now); err != nil {
			s.logger.Warn("failed to update session last seen", "session_id", session.ID, "error", err)
		}
	}

	return domain.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		SessionID: session.ID,
	}
}

// DeleteSession ends a session. Deleting a session that does not exist succeeds.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("session deleted", "session_id", sessionID)
	return nil
}

// DeleteExpiredSessions removes all expired sessions.
// This should be run periodically as a cleanup job.
func (s *SessionService) DeleteExpiredSessions(ctx context.Context) (int, error) {
	count, err := s.store.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	s.metrics.RecordSessionsPurged(count)
	if count > 0 {
		s.logger.Info("deleted expired sessions", "count", count)
	}
	return count, nil
}

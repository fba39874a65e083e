package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/listenupapp/bookclub-server/internal/domain"
)

const (
	tokenIssuer   = "bookclub-server"
	tokenAudience = "bookclub-client"
)

// ErrInvalidToken is returned for tokens that fail decryption or claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the values carried inside an encrypted session token.
type SessionClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

// TokenService issues and verifies opaque session tokens.
// Tokens are PASETO v4.local, so clients cannot read or forge the claims.
type TokenService struct {
	key paseto.V4SymmetricKey
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("session key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}
	return &TokenService{key: symmetric}, nil
}

// Issue encrypts a token referencing session.
// The token expires with the session; revocation is handled by deleting the row.
func (s *TokenService) Issue(session *domain.Session) string {
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(session.UserID)
	token.SetJti(session.ID)
	token.SetIssuedAt(session.CreatedAt)
	token.SetNotBefore(session.CreatedAt)
	token.SetExpiration(session.ExpiresAt)

	return token.V4Encrypt(s.key, nil)
}

// Parse decrypts and validates a session token.
func (s *TokenService) Parse(raw string) (*SessionClaims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())

	token, err := parser.ParseV4Local(s.key, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sessionID, err := token.GetJti()
	if err != nil || sessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	userID, err := token.GetSubject()
	if err != nil || userID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("%w: missing expiration", ErrInvalidToken)
	}

	return &SessionClaims{SessionID: sessionID, UserID: userID, ExpiresAt: expiresAt}, nil
}

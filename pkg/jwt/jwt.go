package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Claims extends jwt.RegisteredClaims with the session principal.
// Subject carries the account id.
type Claims struct {
	jwt.RegisteredClaims
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

type Manager struct {
	signingKey []byte
	issuer     string
	sessionTTL time.Duration
	now        func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(signingKey string, issuer string, sessionTTL time.Duration, opts ...Option) *Manager {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	m := &Manager{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateSessionToken creates a signed session token for an account.
// Returns the token string and claims (caller can use claims.ID to revoke it).
func (m *Manager) GenerateSessionToken(accountID uuid.UUID, handle, role string) (string, *Claims, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
			ID:        uuid.New().String(),
		},
		Handle: handle,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

// SessionTTL returns the lifetime given to new tokens.
func (m *Manager) SessionTTL() time.Duration { return m.sessionTTL }

// Validate parses and validates a token string, returning claims.
func (m *Manager) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, errors.New("invalid subject")
	}
	if claims.ID == "" || claims.Handle == "" || claims.Role == "" {
		return nil, errors.New("incomplete claims")
	}

	return claims, nil
}

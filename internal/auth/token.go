// Package auth issues and verifies coach session tokens.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("session has expired")
	// ErrInvalidToken covers every other verification failure.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims are the session token claims. Admin reflects the coach at sign-in;
// the server re-reads the coach on every request.
type Claims struct {
	CoachID int64  `json:"coach_id"`
	Email   string `json:"email"`
	Admin   bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewManager creates a token manager.
func NewManager(secret, issuer string, ttl time.Duration) *Manager {
	return &Manager{signingKey: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for coach and its expiry.
func (m *Manager) Issue(coach core.Coach) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CoachID: coach.ID,
		Email:   coach.Email,
		Admin:   coach.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(coach.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.CoachID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

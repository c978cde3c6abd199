package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atlas-lms/atlas/internal/authz"
)

// ErrInvalidToken indicates a token that failed signature or claim checks.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims carries the identity and role facts embedded in access tokens.
// Roles are resolved once at login; the middleware rebuilds the principal
// from the token without any database lookup.
type Claims struct {
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	Superuser bool     `json:"superuser,omitempty"`
	jwt.RegisteredClaims
}

// TokenMaker issues and verifies HS256 access tokens.
type TokenMaker struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenMaker constructs a TokenMaker with the signing secret and token TTL.
func NewTokenMaker(secret string, ttl time.Duration) *TokenMaker {
	return &TokenMaker{secret: []byte(secret), ttl: ttl}
}

// Generate issues a signed token for the user.
func (m *TokenMaker) Generate(user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     user.Email,
		Roles:     user.Roles,
		Superuser: user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the token and returns its claims.
func (m *TokenMaker) Parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Principal builds the request principal from verified claims.
func (c *Claims) Principal() (*authz.Principal, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &authz.Principal{
		UserID:    id,
		Email:     c.Email,
		Superuser: c.Superuser,
		Roles:     authz.ResolveRoles(c.Roles),
	}, nil
}

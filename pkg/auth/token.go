// Package auth issues and verifies the signed bearer tokens used by the
// management API, and checks admin credentials.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 24 * time.Hour

// ErrInvalidToken is returned for every verification failure: malformed
// tokens, bad signatures, wrong algorithms, and expired tokens alike.
// Callers must not leak which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the fields carried by an issued token.
type Claims struct {
	// Subject is the username the token was issued to.
	Subject string
	// IssuedAt is when the token was created.
	IssuedAt time.Time
	// ExpiresAt is when the token stops being accepted.
	ExpiresAt time.Time
}

// Service signs and verifies tokens with an HMAC-SHA256 secret.
// Tokens are not tracked after issuance; there is no revocation. A token
// stays valid until it expires even if the admin password changes.
type Service struct {
	secret []byte
	now    func() time.Time
}

// NewService creates a token service signing with the given secret.
func NewService(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue creates a signed token for the subject, valid for ttl.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a token string and returns its claims. Any failure,
// including expiry, yields ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	issuedAt, err := token.Claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, ErrInvalidToken
	}
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		Subject:   subject,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

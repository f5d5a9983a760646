// Package jwt выпускает и проверяет bearer токены dev-бэкенда.
// Идентификатор пользователя передается в стандартном claim sub.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken токен не прошел проверку подписи, срока или формата
var ErrInvalidToken = errors.New("invalid token")

// Service signs and validates HS256 tokens
type Service struct {
	now    func() time.Time
	issuer string
	secret []byte
	ttl    time.Duration
}

// Option настраивает Service
type Option func(*Service)

// WithClock подменяет часы (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a token service. A zero ttl issues tokens without exp.
func NewService(secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "jobtrail",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a signed token whose subject is userID
func (s *Service) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}

	now := s.now()
	claims := gojwt.RegisteredClaims{
		Subject:  userID,
		Issuer:   s.issuer,
		IssuedAt: gojwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(s.ttl))
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Validate checks the signature and expiry of token and returns its subject
func (s *Service) Validate(token string) (string, error) {
	claims := &gojwt.RegisteredClaims{}
	parsed, err := gojwt.ParseWithClaims(token, claims,
		func(*gojwt.Token) (any, error) { return s.secret, nil },
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	return claims.Subject, nil
}

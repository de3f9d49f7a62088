package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

const DefaultTokenTTL = 72 * time.Hour

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewTokenService returns an error when secret is empty; callers treat that
// as a startup failure.
func NewTokenService(secret string, tokenTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token service: empty signing secret")
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), tokenTTL: tokenTTL, now: time.Now}, nil
}

// Issue signs a copy of claims. The payload is not checked against any
// identity; iat and exp are always overwritten.
func (s *TokenService) Issue(claims domain.Claims) (string, error) {
	now := s.now()
	mc := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(s.tokenTTL).Unix()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and checks its HS256 signature and expiry. Any failure
// is reported as domain.ErrUnauthorized wrapping the parser's error.
func (s *TokenService) Verify(token string) (domain.Claims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}
	return domain.Claims(claims), nil
}

package ports

import "github.com/medlab/diagnostic-booking/internal/core/domain"

// TokenIssuer signs caller-supplied claims into a bearer token.
type TokenIssuer interface {
	Issue(claims domain.Claims) (string, error)
}

// TokenVerifier checks a bearer token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}

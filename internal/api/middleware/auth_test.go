package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/service"
)

const secret = "secret"

func newVerifier(t *testing.T) *service.TokenService {
	t.Helper()
	ts, err := service.NewTokenService(secret, time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return ts
}

func run(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(newVerifier(t))(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed, err := newVerifier(t).Issue(domain.Claims{"email": "alice@x.com", "role": "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	called := false
	rec := run(t, "Bearer "+signed, func(c echo.Context) error {
		called = true
		if c.Get(EmailKey) != "alice@x.com" {
			t.Fatalf("email not set")
		}
		claims, ok := c.Get(ClaimsKey).(domain.Claims)
		if !ok || claims["role"] != "admin" {
			t.Fatalf("claims not set: %v", c.Get(ClaimsKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	if rec := run(t, "", mustNotRun(t)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, h := range []string{"Token abc", "Bearer", "Bearer   ", "abc"} {
		if rec := run(t, h, mustNotRun(t)); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", h, rec.Code)
		}
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "alice@x.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte("other"))

	if rec := run(t, "Bearer "+signed, mustNotRun(t)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "alice@x.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	})
	signed, _ := token.SignedString([]byte(secret))

	if rec := run(t, "Bearer "+signed, mustNotRun(t)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type failingVerifier struct{}

func (failingVerifier) Verify(string) (domain.Claims, error) {
	return nil, errors.New("boom")
}

func TestAuthMiddleware_VerifierErrorNeverReachesNext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x.y.z")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Auth(failingVerifier{})(mustNotRun(t))(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
	if he.Message != "unauthorized access" {
		t.Fatalf("unexpected message %v", he.Message)
	}
}

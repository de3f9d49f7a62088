package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
	"github.com/medlab/diagnostic-booking/internal/core/service"
)

const (
	jwtSecret = "router-secret"
	validID   = "65a1f0c2e4b0a1b2c3d4e5f6"
)

// recorder counts every service call so tests can prove a handler never ran.
type recorder struct{ calls atomic.Int64 }

func (r *recorder) hit() { r.calls.Add(1) }

type fakeUsers struct{ *recorder }

func (f fakeUsers) Register(context.Context, ports.RegisterUserInput) (*ports.RegisterUserResult, error) {
	f.hit()
	id := validID
	return &ports.RegisterUserResult{InsertedID: &id}, nil
}
func (f fakeUsers) List(context.Context) ([]domain.User, error) { f.hit(); return []domain.User{}, nil }
func (f fakeUsers) Get(_ context.Context, email string) (*domain.User, error) {
	f.hit()
	return &domain.User{Email: email, Role: domain.RoleAdmin}, nil
}
func (f fakeUsers) UpdateStatus(context.Context, string, string) (domain.UpdateResult, error) {
	f.hit()
	return domain.UpdateResult{}, nil
}
func (f fakeUsers) UpdateName(context.Context, string, string) (domain.UpdateResult, error) {
	f.hit()
	return domain.UpdateResult{}, nil
}
func (f fakeUsers) MakeAdmin(context.Context, string) (domain.UpdateResult, error) {
	f.hit()
	return domain.UpdateResult{}, nil
}

type fakeTests struct{ *recorder }

func (f fakeTests) List(context.Context) ([]domain.Test, error) { f.hit(); return []domain.Test{}, nil }
func (f fakeTests) Get(context.Context, string) (*domain.Test, error) {
	f.hit()
	return nil, nil
}
func (f fakeTests) Create(context.Context, domain.Test) (string, error) { f.hit(); return validID, nil }
func (f fakeTests) Update(context.Context, string, domain.TestPatch) (domain.UpdateResult, error) {
	f.hit()
	return domain.UpdateResult{}, nil
}
func (f fakeTests) Delete(context.Context, string) (domain.DeleteResult, error) {
	f.hit()
	return domain.DeleteResult{}, nil
}

type fakeBookings struct{ *recorder }

func (f fakeBookings) Book(context.Context, ports.CreateBookingInput) (*ports.BookingResult, error) {
	f.hit()
	return &ports.BookingResult{InsertedID: validID}, nil
}
func (f fakeBookings) Cancel(context.Context, string, string) (*ports.CancelResult, error) {
	f.hit()
	return &ports.CancelResult{}, nil
}
func (f fakeBookings) ListByEmail(context.Context, string) ([]domain.Booking, error) {
	f.hit()
	return []domain.Booking{}, nil
}
func (f fakeBookings) ListByService(context.Context, string) ([]domain.Booking, error) {
	f.hit()
	return []domain.Booking{}, nil
}
func (f fakeBookings) BookedTests(context.Context, string) ([]domain.Test, error) {
	f.hit()
	return []domain.Test{}, nil
}
func (f fakeBookings) Update(context.Context, string, map[string]any) (domain.UpdateResult, error) {
	f.hit()
	return domain.UpdateResult{}, nil
}

type fakePayments struct{ *recorder }

func (f fakePayments) CreateIntent(context.Context, float64, string) (string, error) {
	f.hit()
	return "secret", nil
}

type fixture struct {
	rec    *recorder
	tokens *service.TokenService
	server http.Handler
}

func newFixture(t *testing.T, mutate func(*Deps)) *fixture {
	t.Helper()
	tokens, err := service.NewTokenService(jwtSecret, time.Hour)
	require.NoError(t, err)

	rec := &recorder{}
	d := Deps{
		Users:    fakeUsers{rec},
		Tests:    fakeTests{rec},
		Bookings: fakeBookings{rec},
		Payments: fakePayments{rec},
		Issuer:   tokens,
		Verifier: tokens,
		Logger:   zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&d)
	}
	return &fixture{rec: rec, tokens: tokens, server: NewRouter(d)}
}

func (f *fixture) do(method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := f.tokens.Issue(domain.Claims{"email": email})
	require.NoError(t, err)
	return tok
}

type call struct {
	method, target, body string
}

var protectedCalls = []call{
	{http.MethodGet, "/users", ""},
	{http.MethodGet, "/user/a@x.com", ""},
	{http.MethodPatch, "/user/a@x.com", `{"status":"blocked"}`},
	{http.MethodPatch, "/user", `{"email":"a@x.com","name":"A"}`},
	{http.MethodPatch, "/users/admin/a@x.com", ""},
	{http.MethodGet, "/users/admin/a@x.com", ""},
	{http.MethodPost, "/tests", `{"name":"CBC","slots":5}`},
	{http.MethodPatch, "/tests/" + validID, `{"slots":3}`},
	{http.MethodDelete, "/tests/" + validID, ""},
	{http.MethodGet, "/results/a@x.com", ""},
	{http.MethodGet, "/bookings/a@x.com", ""},
	{http.MethodGet, "/reservations/" + validID, ""},
	{http.MethodDelete, "/reservations?service=" + validID + "&email=a@x.com", ""},
	{http.MethodPatch, "/reservations/" + validID, `{"status":"delivered"}`},
}

func expiredToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@x.com",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return tok
}

func forgedToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@x.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("not-the-secret"))
	require.NoError(t, err)
	return tok
}

func TestRouter_ProtectedRoutesRejectWithoutValidToken(t *testing.T) {
	f := newFixture(t, nil)

	tokens := map[string]string{
		"missing":   "",
		"expired":   expiredToken(t),
		"forged":    forgedToken(t),
		"malformed": "not-a-jwt",
	}
	for name, tok := range tokens {
		for _, c := range protectedCalls {
			rec := f.do(c.method, c.target, c.body, tok)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s token: %s %s", name, c.method, c.target)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized access", body["message"])
		}
	}
	assert.Zero(t, f.rec.calls.Load(), "no handler may run for an unauthenticated request")
}

func TestRouter_ProtectedRoutesAcceptValidToken(t *testing.T) {
	f := newFixture(t, nil)
	tok := f.token(t, "a@x.com")

	for _, c := range protectedCalls {
		rec := f.do(c.method, c.target, c.body, tok)
		assert.Equal(t, http.StatusOK, statusClass(rec.Code), "%s %s -> %d %s", c.method, c.target, rec.Code, rec.Body.String())
	}
	assert.Equal(t, int64(len(protectedCalls)), f.rec.calls.Load())
}

func statusClass(code int) int {
	if code >= 200 && code < 300 {
		return http.StatusOK
	}
	return code
}

func TestRouter_AdminSelfCheck(t *testing.T) {
	f := newFixture(t, nil)
	tok := f.token(t, "a@x.com")

	rec := f.do(http.MethodGet, "/users/admin/b@x.com", "", tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, f.rec.calls.Load())

	rec = f.do(http.MethodGet, "/users/admin/a@x.com", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var user domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "a@x.com", user.Email)
}

func TestRouter_OpenRoutes(t *testing.T) {
	f := newFixture(t, nil)

	open := []call{
		{http.MethodPost, "/users", `{"email":"a@x.com"}`},
		{http.MethodGet, "/tests", ""},
		{http.MethodGet, "/tests/" + validID, ""},
		{http.MethodPost, "/payment-intent", `{"price":25.5}`},
		{http.MethodPost, "/bookings", `{"serviceId":"` + validID + `","email":"a@x.com"}`},
	}
	for _, c := range open {
		rec := f.do(c.method, c.target, c.body, "")
		assert.Equal(t, http.StatusOK, statusClass(rec.Code), "%s %s -> %d %s", c.method, c.target, rec.Code, rec.Body.String())
	}

	rec := f.do(http.MethodGet, "/", "", "")
	assert.Equal(t, "Server status: Up", rec.Body.String())
}

func TestRouter_IssueThenUse(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodPost, "/jwt", `{"email":"a@x.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	rec = f.do(http.MethodGet, "/users", "", body["token"])
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PublicRoutesOverride(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.PublicRoutes = []string{"get /users", "garbage"}
	})

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/users", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/user/a@x.com", "", "").Code)
}

func TestRouter_RateLimit(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.RateLimitRPS = 1 })

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, f.do(http.MethodPost, "/jwt", `{"email":"a@x.com"}`, "").Code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)
	assert.Equal(t, http.StatusOK, codes[0])
}

func TestRouter_ErrorMapping(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Bookings = failingBookings{} })
	tok := f.token(t, "a@x.com")

	rec := f.do(http.MethodGet, "/reservations/"+validID, "", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/bookings", `{"serviceId":"`+validID+`","email":"a@x.com"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking "+validID+" was saved")

	rec = f.do(http.MethodDelete, "/reservations?service="+validID+"&email=a@x.com", "", tok)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodGet, "/bookings/a@x.com", "", tok)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error"}`, rec.Body.String())
}

type failingBookings struct{ fakeBookings }

func (failingBookings) ListByService(context.Context, string) ([]domain.Booking, error) {
	return nil, domain.ErrInvalidID
}
func (failingBookings) Book(context.Context, ports.CreateBookingInput) (*ports.BookingResult, error) {
	return &ports.BookingResult{InsertedID: validID}, &domain.SlotAdjustmentError{
		Op: "booking", TestID: validID, BookingID: validID, Delta: -1, Err: context.DeadlineExceeded,
	}
}
func (failingBookings) Cancel(context.Context, string, string) (*ports.CancelResult, error) {
	return nil, domain.ErrNoSlotsAvailable
}
func (failingBookings) BookedTests(context.Context, string) ([]domain.Test, error) {
	return nil, context.Canceled
}

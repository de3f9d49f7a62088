package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

type stubGateway struct {
	last   ports.PaymentIntentRequest
	calls  int
	secret string
	err    error
}

func (g *stubGateway) CreatePaymentIntent(_ context.Context, req ports.PaymentIntentRequest) (string, error) {
	g.calls++
	g.last = req
	if g.err != nil {
		return "", g.err
	}
	return g.secret, nil
}

func TestPaymentService_CreateIntent(t *testing.T) {
	gw := &stubGateway{secret: "pi_123_secret_abc"}
	svc := NewPaymentService(gw, "", discardLogger)

	secret, err := svc.CreateIntent(context.Background(), 25.50, "idem-1")
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if secret != "pi_123_secret_abc" {
		t.Fatalf("unexpected secret %q", secret)
	}
	if gw.last.Amount != 2550 || gw.last.Currency != "usd" {
		t.Fatalf("expected 2550 usd, got %d %s", gw.last.Amount, gw.last.Currency)
	}
	if gw.last.IdempotencyKey != "idem-1" {
		t.Fatalf("idempotency key not forwarded: %q", gw.last.IdempotencyKey)
	}
}

func TestPaymentService_CreateIntent_RejectsNonPositive(t *testing.T) {
	gw := &stubGateway{}
	svc := NewPaymentService(gw, "usd", discardLogger)

	for _, p := range []float64{0, -1, 0.004, math.NaN(), math.Inf(1)} {
		if _, err := svc.CreateIntent(context.Background(), p, ""); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("price %v: expected ErrInvalidInput, got %v", p, err)
		}
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be called, got %d calls", gw.calls)
	}
}

func TestPaymentService_CreateIntent_GatewayError(t *testing.T) {
	boom := errors.New("card_declined")
	svc := NewPaymentService(&stubGateway{err: boom}, "EUR", discardLogger)

	if _, err := svc.CreateIntent(context.Background(), 10, ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped gateway error, got %v", err)
	}
}

func TestToMinorUnits(t *testing.T) {
	cases := map[float64]int64{
		25.50: 2550,
		19.99: 1999,
		0.1:   10,
		1.005: 100,
		100:   10000,
	}
	for in, want := range cases {
		if got := ToMinorUnits(in); got != want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", in, got, want)
		}
	}
}

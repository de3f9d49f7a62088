package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

const idempotencyScopeBooking = "booking"

// BookingOptions tunes the booking workflow.
type BookingOptions struct {
	// GuardSlots reserves the slot with a conditional update (slots >= 1)
	// before inserting the booking. Off by default: the booking is inserted
	// first and slots are decremented unconditionally, so they can go negative.
	GuardSlots bool
	// Idempotency is optional; nil disables Idempotency-Key handling.
	Idempotency ports.IdempotencyStore
}

// BookingService runs the booking and cancellation workflows. Each is two
// independent writes (reservation, then slot counters) with no transaction.
type BookingService struct {
	bookings ports.BookingRepository
	tests    ports.TestRepository
	opts     BookingOptions
	logger   zerolog.Logger
}

func NewBookingService(
	bookings ports.BookingRepository,
	tests ports.TestRepository,
	logger zerolog.Logger,
	opts BookingOptions,
) *BookingService {
	return &BookingService{bookings: bookings, tests: tests, opts: opts, logger: logger}
}

// Book inserts a reservation and moves one slot of the referenced test from
// slots to booked.
func (s *BookingService) Book(ctx context.Context, in ports.CreateBookingInput) (*ports.BookingResult, error) {
	if !domain.IsValidID(in.ServiceID) {
		return nil, domain.ErrInvalidID
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, domain.ErrInvalidInput
	}

	claimed, err := s.claim(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		ServiceID:   in.ServiceID,
		ServiceName: in.ServiceName,
		Email:       email,
		Name:        in.Name,
		Date:        in.Date,
		Price:       in.Price,
		Status:      domain.BookingPending,
		Meta:        in.Meta,
		CreatedAt:   time.Now().UTC(),
	}

	var res *ports.BookingResult
	if s.opts.GuardSlots {
		res, err = s.bookGuarded(ctx, b)
	} else {
		res, err = s.bookUnguarded(ctx, b)
	}
	// No booking was stored, so the key must not block a retry.
	if err != nil && res == nil && claimed {
		s.release(ctx, in.IdempotencyKey)
	}
	return res, err
}

// bookUnguarded inserts first, then decrements. If the decrement fails the
// booking stays and a SlotAdjustmentError is returned.
func (s *BookingService) bookUnguarded(ctx context.Context, b *domain.Booking) (*ports.BookingResult, error) {
	id, err := s.bookings.Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	res, err := s.tests.AdjustSlots(ctx, b.ServiceID, -1, false)
	if err != nil {
		s.logger.Error().Err(err).
			Str("booking_id", id).
			Str("test_id", b.ServiceID).
			Msg("booking saved but slot decrement failed")
		return &ports.BookingResult{InsertedID: id}, &domain.SlotAdjustmentError{
			Op: "booking", TestID: b.ServiceID, BookingID: id, Delta: -1, Err: err,
		}
	}
	if res.MatchedCount == 0 {
		s.logger.Warn().Str("booking_id", id).Str("test_id", b.ServiceID).Msg("booking references unknown test")
	}

	s.logger.Info().Str("booking_id", id).Str("test_id", b.ServiceID).Str("email", b.Email).Msg("booking created")
	return &ports.BookingResult{InsertedID: id, Slots: res}, nil
}

// bookGuarded reserves the slot with a conditional update, then inserts. A
// failed insert releases the slot again.
func (s *BookingService) bookGuarded(ctx context.Context, b *domain.Booking) (*ports.BookingResult, error) {
	res, err := s.tests.AdjustSlots(ctx, b.ServiceID, -1, true)
	if err != nil {
		return nil, fmt.Errorf("reserve slot: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrNoSlotsAvailable
	}

	id, err := s.bookings.Create(ctx, b)
	if err != nil {
		// The request context may already be done; the release must still run.
		relCtx := context.WithoutCancel(ctx)
		if _, relErr := s.tests.AdjustSlots(relCtx, b.ServiceID, 1, false); relErr != nil {
			s.logger.Error().Err(relErr).Str("test_id", b.ServiceID).Msg("slot release after failed booking insert failed")
			return nil, errors.Join(
				fmt.Errorf("create booking: %w", err),
				&domain.SlotAdjustmentError{Op: "booking", TestID: b.ServiceID, Delta: 1, Err: relErr},
			)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info().Str("booking_id", id).Str("test_id", b.ServiceID).Str("email", b.Email).Msg("booking created")
	return &ports.BookingResult{InsertedID: id, Slots: res}, nil
}

// Cancel deletes every reservation of (serviceID, email) and gives the
// deleted count back to the test's slots.
func (s *BookingService) Cancel(ctx context.Context, serviceID, email string) (*ports.CancelResult, error) {
	if !domain.IsValidID(serviceID) {
		return nil, domain.ErrInvalidID
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.ErrInvalidInput
	}

	del, err := s.bookings.DeleteByServiceAndEmail(ctx, serviceID, email)
	if err != nil {
		return nil, fmt.Errorf("delete reservations: %w", err)
	}
	out := &ports.CancelResult{Deleted: del}
	if del.DeletedCount == 0 {
		return out, nil
	}

	n := int(del.DeletedCount)
	res, err := s.tests.AdjustSlots(ctx, serviceID, n, false)
	if err != nil {
		s.logger.Error().Err(err).
			Str("test_id", serviceID).
			Int("deleted", n).
			Msg("reservations deleted but slot increment failed")
		return out, &domain.SlotAdjustmentError{Op: "cancellation", TestID: serviceID, Delta: n, Err: err}
	}
	out.Slots = res

	s.logger.Info().Str("test_id", serviceID).Str("email", email).Int("deleted", n).Msg("reservations cancelled")
	return out, nil
}

func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	return s.bookings.ListByEmail(ctx, normalizeEmail(email))
}

func (s *BookingService) ListByService(ctx context.Context, serviceID string) ([]domain.Booking, error) {
	if !domain.IsValidID(serviceID) {
		return nil, domain.ErrInvalidID
	}
	return s.bookings.ListByService(ctx, serviceID)
}

// BookedTests is a two-hop read: the email's bookings first, then one batched
// lookup of the tests they reference.
func (s *BookingService) BookedTests(ctx context.Context, email string) ([]domain.Test, error) {
	bookings, err := s.bookings.ListByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if !domain.IsValidID(b.ServiceID) {
			continue
		}
		if _, ok := seen[b.ServiceID]; ok {
			continue
		}
		seen[b.ServiceID] = struct{}{}
		ids = append(ids, b.ServiceID)
	}
	if len(ids) == 0 {
		return []domain.Test{}, nil
	}
	return s.tests.FindByIDs(ctx, ids)
}

func (s *BookingService) Update(ctx context.Context, id string, fields map[string]any) (domain.UpdateResult, error) {
	if !domain.IsValidID(id) {
		return domain.UpdateResult{}, domain.ErrInvalidID
	}
	if err := domain.ValidateMergeFields(fields); err != nil {
		return domain.UpdateResult{}, err
	}
	return s.bookings.Merge(ctx, id, fields)
}

// claim consults the idempotency store and reports whether this request now
// holds the key. Store errors are logged and the request goes ahead unclaimed.
func (s *BookingService) claim(ctx context.Context, key string) (bool, error) {
	if key == "" || s.opts.Idempotency == nil {
		return false, nil
	}
	first, err := s.opts.Idempotency.Claim(ctx, idempotencyScopeBooking, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency check failed, processing anyway")
		return false, nil
	}
	if !first {
		s.logger.Info().Str("idempotency_key", key).Msg("duplicate booking request rejected")
		return false, domain.ErrDuplicateRequest
	}
	return true, nil
}

func (s *BookingService) release(ctx context.Context, key string) {
	if err := s.opts.Idempotency.Release(context.WithoutCancel(ctx), idempotencyScopeBooking, key); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency key release failed")
	}
}

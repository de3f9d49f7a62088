package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrInvalidID    = errors.New("invalid id format")
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound = errors.New("user not found")
	ErrTestNotFound = errors.New("test not found")
	ErrUserExists   = errors.New("user already exists")

	ErrNoSlotsAvailable = errors.New("no slots available")
	ErrDuplicateRequest = errors.New("duplicate request")

	// ErrSlotAdjustment means a booking or cancellation write went through but
	// the matching slot counter update did not. The two writes are independent.
	ErrSlotAdjustment = errors.New("slot counters not adjusted")
)

// SlotAdjustmentError reports a reservation write that succeeded while the
// follow-up slot counter update on the referenced test failed. Nothing is
// rolled back; the error carries enough to reconcile by hand.
type SlotAdjustmentError struct {
	Op        string // "booking" or "cancellation"
	TestID    string
	BookingID string // set for bookings
	Delta     int    // the slots delta that was not applied
	Err       error
}

func (e *SlotAdjustmentError) Error() string {
	if e.BookingID != "" {
		return fmt.Sprintf("%s %s saved but slots of test %s not adjusted by %d: %v", e.Op, e.BookingID, e.TestID, e.Delta, e.Err)
	}
	return fmt.Sprintf("%s saved but slots of test %s not adjusted by %d: %v", e.Op, e.TestID, e.Delta, e.Err)
}

func (e *SlotAdjustmentError) Unwrap() []error {
	return []error{ErrSlotAdjustment, e.Err}
}

package handler

import (
	"encoding/json"
	"strings"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

// --- tokens ---

type tokenResponse struct {
	Token string `json:"token"`
}

// --- users ---

type createUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type createUserResponse struct {
	Message    string  `json:"message,omitempty"`
	InsertedID *string `json:"insertedId"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active blocked"`
}

type updateNameRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"  validate:"required"`
}

// --- tests ---

type createTestRequest struct {
	Name    string  `json:"name"    validate:"required"`
	Image   string  `json:"image"`
	Details string  `json:"details"`
	Price   float64 `json:"price"   validate:"gte=0"`
	Date    string  `json:"date"`
	Slots   int     `json:"slots"   validate:"gte=0"`
	Booked  int     `json:"booked"  validate:"gte=0"`
}

func (r createTestRequest) toDomain() domain.Test {
	return domain.Test{
		Name:    r.Name,
		Image:   r.Image,
		Details: r.Details,
		Price:   r.Price,
		Date:    r.Date,
		Slots:   r.Slots,
		Booked:  r.Booked,
	}
}

type updateTestRequest struct {
	Name    *string  `json:"name"    validate:"omitempty,min=1"`
	Image   *string  `json:"image"`
	Details *string  `json:"details"`
	Price   *float64 `json:"price"   validate:"omitempty,gte=0"`
	Date    *string  `json:"date"`
	Slots   *int     `json:"slots"   validate:"omitempty,gte=0"`
	Booked  *int     `json:"booked"  validate:"omitempty,gte=0"`
}

func (r updateTestRequest) toPatch() domain.TestPatch {
	return domain.TestPatch{
		Name:    r.Name,
		Image:   r.Image,
		Details: r.Details,
		Price:   r.Price,
		Date:    r.Date,
		Slots:   r.Slots,
		Booked:  r.Booked,
	}
}

type insertedResponse struct {
	InsertedID string `json:"insertedId"`
}

// --- bookings ---

// createBookingRequest takes any extra top-level keys as well; they end up in
// Meta next to the explicit meta object.
type createBookingRequest struct {
	ServiceID   string         `json:"serviceId"   validate:"required,len=24,hexadecimal"`
	ServiceName string         `json:"serviceName"`
	Email       string         `json:"email"       validate:"required,email"`
	Name        string         `json:"name"`
	Date        string         `json:"date"`
	Price       float64        `json:"price"       validate:"gte=0"`
	Meta        map[string]any `json:"meta"`

	extra map[string]any
}

var bookingRequestKeys = map[string]struct{}{
	"serviceId": {}, "serviceName": {}, "email": {}, "name": {}, "date": {}, "price": {}, "meta": {},
}

func (r *createBookingRequest) UnmarshalJSON(data []byte) error {
	type plain createBookingRequest
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if _, known := bookingRequestKeys[k]; known {
			continue
		}
		if r.extra == nil {
			r.extra = make(map[string]any)
		}
		r.extra[k] = v
	}
	return nil
}

// meta merges the extra keys under the explicit meta object. It returns
// domain.ErrInvalidInput for keys a document store cannot hold.
func (r *createBookingRequest) meta() (map[string]any, error) {
	if len(r.extra) == 0 {
		return r.Meta, nil
	}
	out := make(map[string]any, len(r.extra)+len(r.Meta))
	for k, v := range r.extra {
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, domain.ErrInvalidInput
		}
		out[k] = v
	}
	for k, v := range r.Meta {
		out[k] = v
	}
	return out, nil
}

type bookingResponse struct {
	Booking insertedResponse    `json:"booking"`
	Slots   domain.UpdateResult `json:"slots"`
}

type cancelResponse struct {
	Deleted domain.DeleteResult `json:"deleted"`
	Slots   domain.UpdateResult `json:"slots"`
}

// --- payments ---

type paymentIntentRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/api/metrics"
	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// BookingHandler handles bookings and reservations.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Create handles POST /bookings: inserts the booking, then moves one slot of
// the referenced test to booked. The two writes are not transactional.
//
// @Summary      Book a test
// @Description  Top-level keys outside the schema are stored inside meta; an explicit meta entry wins on conflict.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                false  "Rejects replays of the same key for one hour"
// @Param        body             body      createBookingRequest  true   "Booking"
// @Success      201              {object}  bookingResponse
// @Failure      400              {object}  messageResponse
// @Failure      409              {object}  messageResponse
// @Failure      500              {object}  messageResponse
// @Router       /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	meta, err := req.meta()
	if err != nil {
		return err
	}

	res, err := h.service.Book(c.Request().Context(), ports.CreateBookingInput{
		ServiceID:      req.ServiceID,
		ServiceName:    req.ServiceName,
		Email:          req.Email,
		Name:           req.Name,
		Date:           req.Date,
		Price:          req.Price,
		Meta:           meta,
		IdempotencyKey: idempotencyKey(c),
	})
	switch {
	case errors.Is(err, domain.ErrNoSlotsAvailable):
		metrics.BookingsRejectedTotal.WithLabelValues("no_slots").Inc()
	case errors.Is(err, domain.ErrDuplicateRequest):
		metrics.BookingsRejectedTotal.WithLabelValues("duplicate").Inc()
	}
	if res != nil && res.InsertedID != "" {
		metrics.BookingsCreatedTotal.Inc()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookingResponse{
		Booking: insertedResponse{InsertedID: res.InsertedID},
		Slots:   res.Slots,
	})
}

// Results handles GET /results/:email.
//
// @Summary      List an email's bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Email"
// @Success      200    {array}   domain.Booking
// @Failure      401    {object}  messageResponse
// @Router       /results/{email} [get]
func (h *BookingHandler) Results(c echo.Context) error {
	bookings, err := h.service.ListByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// BookedTests handles GET /bookings/:email.
//
// @Summary      List the tests an email has booked
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Email"
// @Success      200    {array}   domain.Test
// @Failure      401    {object}  messageResponse
// @Router       /bookings/{email} [get]
func (h *BookingHandler) BookedTests(c echo.Context) error {
	tests, err := h.service.BookedTests(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tests)
}

// Reservations handles GET /reservations/:id.
//
// @Summary      List bookings for a test
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Test id"
// @Success      200  {array}   domain.Booking
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /reservations/{id} [get]
func (h *BookingHandler) Reservations(c echo.Context) error {
	bookings, err := h.service.ListByService(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

// Cancel handles DELETE /reservations?service=&email=.
//
// @Summary      Cancel reservations
// @Description  Deletes every reservation of the email for the test and returns the slots.
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        service  query     string  true  "Test id"
// @Param        email    query     string  true  "Email"
// @Success      200      {object}  cancelResponse
// @Failure      400      {object}  messageResponse
// @Failure      401      {object}  messageResponse
// @Failure      500      {object}  messageResponse
// @Router       /reservations [delete]
func (h *BookingHandler) Cancel(c echo.Context) error {
	res, err := h.service.Cancel(c.Request().Context(), c.QueryParam("service"), c.QueryParam("email"))
	if res != nil {
		metrics.ReservationsCancelledTotal.Add(float64(res.Deleted.DeletedCount))
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cancelResponse{Deleted: res.Deleted, Slots: res.Slots})
}

// Update handles PATCH /reservations/:id.
//
// @Summary      Merge fields into a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Booking id"
// @Param        body  body      object  true  "Fields to set; _id, createdAt, $-prefixed keys and mistyped known fields are rejected"
// @Success      200   {object}  domain.UpdateResult
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /reservations/{id} [patch]
func (h *BookingHandler) Update(c echo.Context) error {
	var fields map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil || fields == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}

	res, err := h.service.Update(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

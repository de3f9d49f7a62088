package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// TestHandler serves the diagnostic test catalog.
type TestHandler struct {
	service ports.TestService
}

func NewTestHandler(service ports.TestService) *TestHandler {
	return &TestHandler{service: service}
}

// List handles GET /tests.
//
// @Summary      List tests
// @Tags         tests
// @Produce      json
// @Success      200  {array}   domain.Test
// @Router       /tests [get]
func (h *TestHandler) List(c echo.Context) error {
	tests, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tests)
}

// Get handles GET /tests/:id. An unknown id yields 200 with a null body.
//
// @Summary      Get a test
// @Tags         tests
// @Produce      json
// @Param        id   path      string  true  "Test id (24 hex chars)"
// @Success      200  {object}  domain.Test
// @Failure      400  {object}  messageResponse
// @Router       /tests/{id} [get]
func (h *TestHandler) Get(c echo.Context) error {
	test, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, test)
}

// Create handles POST /tests.
//
// @Summary      Add a test
// @Tags         tests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTestRequest  true  "Test"
// @Success      201   {object}  insertedResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /tests [post]
func (h *TestHandler) Create(c echo.Context) error {
	var req createTestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := h.service.Create(c.Request().Context(), req.toDomain())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, insertedResponse{InsertedID: id})
}

// Update handles PATCH /tests/:id.
//
// @Summary      Update a test
// @Tags         tests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Test id"
// @Param        body  body      updateTestRequest  true  "Fields to change"
// @Success      200   {object}  domain.UpdateResult
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /tests/{id} [patch]
func (h *TestHandler) Update(c echo.Context) error {
	var req updateTestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /tests/:id.
//
// @Summary      Delete a test
// @Tags         tests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Test id"
// @Success      200  {object}  domain.DeleteResult
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /tests/{id} [delete]
func (h *TestHandler) Delete(c echo.Context) error {
	res, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /users. Registering an existing email is a no-op.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User"
// @Success      200   {object}  createUserResponse
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Register(c.Request().Context(), ports.RegisterUserInput{
		Email: req.Email,
		Name:  req.Name,
		Photo: req.Photo,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, createUserResponse{Message: res.Message, InsertedID: res.InsertedID})
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  messageResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /user/:email and GET /users/admin/:email. An unknown email
// yields 200 with a null body.
//
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  domain.User
// @Failure      401    {object}  messageResponse
// @Failure      403    {object}  messageResponse
// @Router       /user/{email} [get]
// @Router       /users/admin/{email} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateStatus handles PATCH /user/:email.
//
// @Summary      Set a user's account status
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string               true  "Email"
// @Param        body   body      updateStatusRequest  true  "Status"
// @Success      200    {object}  domain.UpdateResult
// @Failure      400    {object}  messageResponse
// @Failure      401    {object}  messageResponse
// @Router       /user/{email} [patch]
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.UpdateStatus(c.Request().Context(), c.Param("email"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// UpdateName handles PATCH /user.
//
// @Summary      Rename a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateNameRequest  true  "Email and new name"
// @Success      200   {object}  domain.UpdateResult
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /user [patch]
func (h *UserHandler) UpdateName(c echo.Context) error {
	var req updateNameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.UpdateName(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// MakeAdmin handles PATCH /users/admin/:email.
//
// @Summary      Grant the admin role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  domain.UpdateResult
// @Failure      401    {object}  messageResponse
// @Router       /users/admin/{email} [patch]
func (h *UserHandler) MakeAdmin(c echo.Context) error {
	res, err := h.service.MakeAdmin(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

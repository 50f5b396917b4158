package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Gabito0/yodlr-backend/internal/apperr"
	"github.com/Gabito0/yodlr-backend/internal/model"
	"github.com/Gabito0/yodlr-backend/internal/service"
)

// UserHandler bundles the user CRUD endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest is the admin-only user creation payload. Unlike
// self-service registration it may set the admin flag and initial state.
type CreateUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6"`
	FirstName string          `json:"firstName" validate:"required"`
	LastName  string          `json:"lastName" validate:"required"`
	IsAdmin   bool            `json:"isAdmin"`
	State     model.UserState `json:"state" validate:"omitempty,oneof=pending active"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Email           *string          `json:"email" validate:"omitempty,email"`
	FirstName       *string          `json:"firstName"`
	LastName        *string          `json:"lastName"`
	State           *model.UserState `json:"state" validate:"omitempty,oneof=pending active"`
	CurrentPassword *string          `json:"currentPassword"`
	NewPassword     *string          `json:"newPassword" validate:"omitempty,min=6"`
}

// ActivateRequest names the user to activate.
type ActivateRequest struct {
	ID uint `json:"id" validate:"required"`
}

// UserResponse wraps a single user record.
type UserResponse struct {
	User *model.User `json:"user"`
}

// UsersResponse wraps a user list.
type UsersResponse struct {
	Users []model.User `json:"users"`
}

// List godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UsersResponse
// @Failure 403 {object} apperr.Envelope
// @Router /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UsersResponse{Users: users})
}

// Create godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} UserResponse
// @Failure 400 {object} apperr.Envelope
// @Failure 403 {object} apperr.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperr.BadRequest("Invalid data: %v", err)
	}

	user, err := h.svc.Add(c.Request().Context(), req.Email, req.Password, req.FirstName, req.LastName, req.IsAdmin, req.State)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UserResponse{User: user})
}

// Get godoc
// @Summary Get a user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 403 {object} apperr.Envelope
// @Failure 404 {object} apperr.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// Update godoc
// @Summary Partially update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param patch body UpdateUserRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} apperr.Envelope
// @Failure 401 {object} apperr.Envelope
// @Failure 403 {object} apperr.Envelope
// @Failure 404 {object} apperr.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperr.BadRequest("Invalid data: %v", err)
	}

	user, err := h.svc.Update(c.Request().Context(), id, service.UpdatePatch{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		State:           req.State,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// Activate godoc
// @Summary Activate a pending user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ActivateRequest true "User to activate"
// @Success 200 {object} UserResponse
// @Failure 400 {object} apperr.Envelope
// @Failure 403 {object} apperr.Envelope
// @Failure 404 {object} apperr.Envelope
// @Router /users/activate [patch]
func (h *UserHandler) Activate(c echo.Context) error {
	var req ActivateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperr.BadRequest("Invalid data: %v", err)
	}

	user, err := h.svc.Activate(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// Delete godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} apperr.Envelope
// @Failure 404 {object} apperr.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.BadRequest("invalid id")
	}
	return uint(id), nil
}

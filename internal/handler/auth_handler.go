package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Gabito0/yodlr-backend/internal/apperr"
	"github.com/Gabito0/yodlr-backend/internal/auth"
	"github.com/Gabito0/yodlr-backend/internal/service"
)

// AuthHandler handles token issuance and self-service registration.
type AuthHandler struct {
	users service.UserService
	codec *auth.TokenCodec
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users service.UserService, codec *auth.TokenCodec) *AuthHandler {
	return &AuthHandler{users: users, codec: codec}
}

// TokenRequest represents a login request.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a self-service registration request.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Token godoc
// @Summary Authenticate and issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} apperr.Envelope
// @Failure 401 {object} apperr.Envelope
// @Router /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperr.BadRequest("Email and password are required")
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := h.codec.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} apperr.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperr.BadRequest("Invalid data: %v", err)
	}

	user, err := h.users.Register(c.Request().Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return err
	}

	token, err := h.codec.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

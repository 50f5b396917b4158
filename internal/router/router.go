package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Gabito0/yodlr-backend/internal/apperr"
	"github.com/Gabito0/yodlr-backend/internal/auth"
	"github.com/Gabito0/yodlr-backend/internal/handler"
)

// Register wires routes and middleware. Authentication runs globally and is
// best-effort; per-route guards enforce admin or ownership where required.
func Register(
	e *echo.Echo,
	codec *auth.TokenCodec,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(auth.Middleware(codec))

	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/auth/token", authHandler.Token)
	e.POST("/auth/register", authHandler.Register)

	// User management
	users := e.Group("/users")
	users.GET("", userHandler.List, auth.RequireAdmin)
	users.POST("", userHandler.Create, auth.RequireAdmin)
	users.PATCH("/activate", userHandler.Activate, auth.RequireAdmin)
	users.PUT("/activate", userHandler.Activate, auth.RequireAdmin)
	users.GET("/:id", userHandler.Get, auth.RequireSelfOrAdmin)
	users.PUT("/:id", userHandler.Update, auth.RequireSelfOrAdmin)
	users.DELETE("/:id", userHandler.Delete, auth.RequireSelfOrAdmin)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

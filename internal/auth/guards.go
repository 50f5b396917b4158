package auth

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Gabito0/yodlr-backend/internal/apperr"
)

// RequireAdmin rejects the request with a 403 unless an identity is attached
// and it is an admin.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := CurrentClaims(c)
		if !ok || !claims.IsAdmin {
			return apperr.Forbidden("Unauthorized")
		}
		return next(c)
	}
}

// RequireSelfOrAdmin rejects the request with a 403 unless an identity is
// attached and it is either an admin or the owner of the resource named by
// the :id path parameter. The parameter is compared numerically; a
// non-numeric id never matches.
func RequireSelfOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := CurrentClaims(c)
		if !ok {
			return apperr.Forbidden("Unauthorized")
		}
		if claims.IsAdmin {
			return next(c)
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || claims.UserID != uint(id) {
			return apperr.Forbidden("Unauthorized")
		}
		return next(c)
	}
}

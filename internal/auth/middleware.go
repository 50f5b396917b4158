package auth

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ContextKey is the echo context key under which verified claims are stored.
const ContextKey = "user"

// Middleware returns best-effort authentication middleware. A valid
// `Authorization: Bearer <token>` header (scheme match is case-insensitive)
// attaches the decoded claims to the request context; a missing or invalid
// token is not an error and the request simply proceeds with no identity.
// Downstream guards decide whether an identity is required.
func Middleware(codec *TokenCodec) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return codec.Verify(auth)
		},
		// swallow extraction and verification failures
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

// CurrentClaims returns the claims attached by Middleware, if any.
func CurrentClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKey).(*Claims)
	return claims, ok
}

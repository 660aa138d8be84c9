package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// Context keys set by FirebaseAuthMiddleware.
const (
	ContextKeyUID    = "firebaseUID"
	ContextKeyBearer = "bearerToken"
)

// FirebaseAuthMiddleware creates an Echo middleware that verifies Firebase
// ID tokens from the Authorization header. The verified UID and the raw
// bearer token (needed for platform API passthroughs) are stored on the
// context.
func FirebaseAuthMiddleware(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			idToken := tokenParts[1]
			token, err := authClient.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			c.Set(ContextKeyUID, token.UID)
			c.Set(ContextKeyBearer, idToken)

			return next(c)
		}
	}
}

// UIDFromContext returns the authenticated user's UID, or "" when the
// request passed no valid token.
func UIDFromContext(c echo.Context) string {
	uid, _ := c.Get(ContextKeyUID).(string)
	return uid
}

// BearerFromContext returns the raw bearer token of the request.
func BearerFromContext(c echo.Context) string {
	bearer, _ := c.Get(ContextKeyBearer).(string)
	return bearer
}

package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kidsevents/marketplace_backend/internal/util"
)

const (
	headerAdminKey   = "X-Admin-Key"
	contextClaimsKey = "admin_claims"
)

// AdminCredentials holds the accepted operator credentials. Either field may
// be nil to disable that method.
type AdminCredentials struct {
	Tokens *util.JWTManager
	APIKey *util.APIKey
}

// RequireAdmin accepts an X-Admin-Key header or a bearer token whose role
// claim is admin.
func RequireAdmin(creds AdminCredentials) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key := strings.TrimSpace(c.Request().Header.Get(headerAdminKey)); key != "" {
				if creds.APIKey == nil || !creds.APIKey.Verify(key) {
					return c.JSON(http.StatusUnauthorized, util.Error("invalid admin key"))
				}
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			if creds.Tokens == nil {
				return c.JSON(http.StatusUnauthorized, util.Error("token authentication disabled"))
			}
			claims, err := creds.Tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid token"))
			}
			if !claims.IsAdmin() {
				return c.JSON(http.StatusForbidden, util.Error("admin privileges required"))
			}
			c.Set(contextClaimsKey, claims)
			return next(c)
		}
	}
}

func CurrentClaims(c echo.Context) (*util.Claims, bool) {
	claims, ok := c.Get(contextClaimsKey).(*util.Claims)
	return claims, ok
}

package middleware

import (
	"net/http"
	"strings"

	"dealhub/internal/model"
	"dealhub/pkg/jwtutil"
	"dealhub/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header and
// stores the identity fact {user_id, email, tenant_id, role} in the echo
// context. The core never issues or inspects credentials beyond this.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Extract the token
		tokenString := parts[1]

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("auth_tenant_id", claims.TenantID)
		c.Set("user_role", claims.Role)

		// Token is valid, proceed with the request
		return next(c)
	}
}

// OptionalAuth populates the identity from a Bearer token when one is
// present and valid, and lets the request through anonymously otherwise.
// Public engagement routes use it so signed-in callers still earn points
// without the route rejecting anonymous traffic.
func OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return next(c)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return next(c)
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			// A bad token on a public route degrades to anonymous.
			logger.FromContext(c).Warn("Ignoring invalid bearer token", zap.Error(err))
			return next(c)
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("auth_tenant_id", claims.TenantID)
		c.Set("user_role", claims.Role)

		return next(c)
	}
}

// RequireRole gates a route on the authenticated user's role.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("user_role").(string)
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			logger.FromContext(c).Warn("Insufficient role for route",
				zap.String("role", role),
				zap.String("path", c.Path()))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}
}

// CurrentUserID returns the authenticated user id from the context, 0 when
// the request is anonymous.
func CurrentUserID(c echo.Context) uint {
	id, _ := c.Get("user_id").(uint)
	return id
}

// IsAdmin reports whether the authenticated user is an admin.
func IsAdmin(c echo.Context) bool {
	role, _ := c.Get("user_role").(string)
	return role == model.RoleAdmin
}

package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/al-shaimon/zkart-backend/internal/apperror"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleVendor   Role = "VENDOR"
	RoleCustomer Role = "CUSTOMER"
)

// Principal is the authenticated caller, resolved once at the HTTP boundary.
// Services branch on Role instead of re-parsing tokens or comparing raw
// strings.
type Principal struct {
	Email string
	Role  Role
}

const principalKey = "principal"

// FromContext returns the Principal stored by the auth middleware.
func FromContext(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// Auth verifies the Bearer token and restricts the route to the given roles.
// Token issuance lives elsewhere; this only validates.
func Auth(secret string, roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return apperror.Unauthorized("Missing authorization token")
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return apperror.Unauthorized("Invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return apperror.Unauthorized("Invalid token claims")
			}
			email, _ := claims["email"].(string)
			roleClaim, _ := claims["role"].(string)
			if email == "" || roleClaim == "" {
				return apperror.Unauthorized("Invalid token claims")
			}

			principal := Principal{Email: email, Role: Role(roleClaim)}

			allowed := false
			for _, r := range roles {
				if principal.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				return apperror.Forbidden("You are not permitted to access this resource")
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

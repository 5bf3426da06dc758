package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// RBAC enforces role-based access control: the caller must hold at least one
// of allowedRoles. Must run after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(KeyRoles).([]string)
			for _, role := range roles {
				if _, ok := allowed[role]; ok {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
		}
	}
}

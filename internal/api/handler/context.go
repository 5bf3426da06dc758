package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/middleware"
)

// currentUsername returns the username injected by the Auth middleware.
func currentUsername(c echo.Context) string {
	username, _ := c.Get(middleware.KeyUsername).(string)
	return username
}

// csrfToken returns the token set by echo's CSRF middleware, or "" when the
// route is not protected.
func csrfToken(c echo.Context) string {
	token, _ := c.Get("csrf").(string)
	return token
}

// wantsJSON reports whether the client prefers a JSON response over a page.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

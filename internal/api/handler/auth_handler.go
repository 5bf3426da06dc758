package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/metrics"
	"github.com/99minutos/user-admin/internal/api/middleware"
	"github.com/99minutos/user-admin/internal/api/views"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type AuthHandler struct {
	authService  ports.AuthService
	users        ports.UserService
	tokenTTL     time.Duration
	secureCookie bool
}

// NewAuthHandler returns an AuthHandler. tokenTTL sets the session cookie
// lifetime and should match the token expiry.
func NewAuthHandler(authService ports.AuthService, users ports.UserService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		users:        users,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

// LoginForm handles GET /login.
//
// @Summary      Show the login form
// @Tags         auth
// @Produce      html
// @Success      200  {string}  string  "login page"
// @Router       /login [get]
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, views.Login, views.LoginPage{CSRF: csrfToken(c)})
}

// Login authenticates a user. Browsers get the session cookie and a redirect
// (admins to /admin, everyone else to /user); JSON clients get the token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Success      302   "redirect to /admin or /user"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUsernameNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			if wantsJSON(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
			}
			return c.Render(http.StatusUnauthorized, views.Login, views.LoginPage{
				Username: req.Username,
				Error:    domain.ErrInvalidCredentials.Error(),
				CSRF:     csrfToken(c),
			})
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, loginResponse{Token: token, User: user})
	}
	if user.HasRole(domain.RoleAdmin) {
		return c.Redirect(http.StatusFound, adminPath)
	}
	return c.Redirect(http.StatusFound, "/user")
}

// Logout revokes the current token and clears the session cookie.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204  "token revoked"
// @Success      302  "redirect to /login"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	jti, _ := c.Get(middleware.KeyTokenID).(string)
	exp, _ := c.Get(middleware.KeyExpiresAt).(time.Time)
	if err := h.authService.Logout(c.Request().Context(), jti, exp); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if wantsJSON(c) {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusFound, "/login")
}

// Profile handles GET /user, the authenticated user's own record.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Produce      html
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /user [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.users.Authenticate(c.Request().Context(), currentUsername(c))
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, user)
	}
	return c.Render(http.StatusOK, views.User, views.UserPage{User: user, CSRF: csrfToken(c)})
}

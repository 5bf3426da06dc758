package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/pkg/actor"
)

// CookieName is the cookie carrying the session token for browser clients.
const CookieName = "access_token"

// Context keys set by Auth.
const (
	KeyUsername  = "username"
	KeyRoles     = "roles"
	KeyTokenID   = "jti"
	KeyExpiresAt = "exp"
)

// PrincipalLoader reloads the token subject on every request.
type PrincipalLoader interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// Auth validates the JWT from the Authorization header or the session cookie,
// then loads the subject from users. Username and roles in the echo context come
// from the stored user, so deleted or demoted accounts lose access immediately.
// revoker may be nil.
//
// Browser requests without a usable token are redirected to /login; API
// requests get a 401.
func Auth(jwtSecret string, revoker ports.TokenRevoker, users PrincipalLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := tokenFromRequest(c)
			if err != nil {
				return reject(c, err)
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return reject(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid token"))
			}

			sub, _ := claims["sub"].(string)
			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || userID <= 0 {
				return reject(c, echo.NewHTTPError(http.StatusUnauthorized, "invalid token"))
			}

			jti, _ := claims["jti"].(string)
			if revoker != nil && jti != "" {
				revoked, err := revoker.IsRevoked(c.Request().Context(), jti)
				if err != nil {
					return err
				}
				if revoked {
					return reject(c, echo.NewHTTPError(http.StatusUnauthorized, "token revoked"))
				}
			}

			user, err := users.GetUser(c.Request().Context(), userID)
			if errors.Is(err, domain.ErrUserNotFound) {
				return reject(c, echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists"))
			}
			if err != nil {
				return err
			}

			var expiresAt time.Time
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				expiresAt = exp.Time
			}

			c.Set(KeyUsername, user.Username)
			c.Set(KeyRoles, user.RoleNames())
			c.Set(KeyTokenID, jti)
			c.Set(KeyExpiresAt, expiresAt)

			req := c.Request()
			c.SetRequest(req.WithContext(actor.WithUsername(req.Context(), user.Username)))

			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}

	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
}

func reject(c echo.Context, err error) error {
	if WantsHTML(c) {
		return c.Redirect(http.StatusFound, "/login")
	}
	return err
}

// WantsHTML reports whether the client asked for an HTML response.
func WantsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

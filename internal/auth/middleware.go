package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const IsAdminKey = "is_admin"

// Middleware verifies the admin session cookie when present. It never
// rejects: it only records the result so public handlers can branch
// (the admin listing includes inactive products, the public one does
// not).
func Middleware(sessions *Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				c.Set(IsAdminKey, false)
				return next(c)
			}

			if _, err := sessions.Verify(cookie.Value); err != nil {
				slog.Debug("rejecting admin session cookie", "error", err)
				clearSessionCookie(c)
				c.Set(IsAdminKey, false)
				return next(c)
			}

			c.Set(IsAdminKey, true)
			return next(c)
		}
	}
}

// RequireAdmin blocks unauthenticated requests: JSON 401 for API
// paths, redirect to the login page for everything else.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsAdmin(c) {
				return next(c)
			}
			if strings.HasPrefix(c.Path(), "/api/") {
				return echo.NewHTTPError(http.StatusUnauthorized, "admin session required")
			}
			return c.Redirect(http.StatusFound, "/admin/login")
		}
	}
}

// IsAdmin reports whether the request carries a valid admin session.
func IsAdmin(c echo.Context) bool {
	isAdmin, _ := c.Get(IsAdminKey).(bool)
	return isAdmin
}

// SetSessionCookie installs the admin session cookie.
func SetSessionCookie(c echo.Context, token string, maxAge int, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// ClearSessionCookie logs the admin out.
func ClearSessionCookie(c echo.Context) {
	clearSessionCookie(c)
}

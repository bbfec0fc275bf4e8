package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rsquare-id/rsquare/internal/auth"
)

// AdminHandler serves the password-gated admin area: login, logout,
// and the catalog manager page.
type AdminHandler struct {
	sessions     *auth.Sessions
	username     string
	passwordHash string
	secureCookie bool
}

func NewAdminHandler(sessions *auth.Sessions, username, passwordHash string, secureCookie bool) *AdminHandler {
	return &AdminHandler{
		sessions:     sessions,
		username:     username,
		passwordHash: passwordHash,
		secureCookie: secureCookie,
	}
}

// LoginPage renders the login form.
func (h *AdminHandler) LoginPage(c echo.Context) error {
	if auth.IsAdmin(c) {
		return c.Redirect(http.StatusFound, "/admin")
	}
	return c.Render(http.StatusOK, "admin_login", map[string]any{
		"Title": "Admin Login",
		"Error": c.QueryParam("error"),
	})
}

// Login verifies credentials and issues the signed session cookie.
// Verification happens server-side only; the cookie carries a signed
// expiring token, never a plain flag.
func (h *AdminHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	if username != h.username || auth.VerifyPassword(password, h.passwordHash) != nil {
		slog.Warn("rejected admin login", "username", username, "ip", c.RealIP())
		return c.Redirect(http.StatusFound, "/admin/login?error=invalid")
	}

	token := h.sessions.Issue()
	auth.SetSessionCookie(c, token, int(h.sessions.TTL().Seconds()), h.secureCookie)
	slog.Info("admin logged in", "ip", c.RealIP())
	return c.Redirect(http.StatusFound, "/admin")
}

// Logout clears the session cookie.
func (h *AdminHandler) Logout(c echo.Context) error {
	auth.ClearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/admin/login")
}

// Panel renders the catalog manager (list, toggles, reorder UI).
func (h *AdminHandler) Panel(c echo.Context) error {
	return c.Render(http.StatusOK, "admin_panel", map[string]any{
		"Title": "Kelola Template",
	})
}

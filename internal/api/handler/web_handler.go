package handler

import (
	"errors"
	"html"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-comercial/backoffice/internal/api/middleware"
	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/session"
)

// WebHandler serves the browser login flow on top of the same authentication
// gate as the REST API. Successful logins open a server-side session.
type WebHandler struct {
	authService ports.AuthService
	sessions    *session.Store
	secure      bool
	log         zerolog.Logger
}

// NewWebHandler creates a WebHandler. secure marks the session cookie as
// HTTPS-only.
func NewWebHandler(authService ports.AuthService, sessions *session.Store, secure bool, log zerolog.Logger) *WebHandler {
	return &WebHandler{authService: authService, sessions: sessions, secure: secure, log: log}
}

const loginPage = `<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>Iniciar sesion</title></head>
<body>
<main>
<h1>Iniciar sesion</h1>
{{notice}}
<form method="post" action="/login">
<label>Email <input type="email" name="username" required autofocus></label>
<label>Contrasena <input type="password" name="password" required></label>
<button type="submit">Entrar</button>
</form>
</main>
</body>
</html>
`

// LoginPage renders the login form with a notice for the query flags set by
// the other handlers.
func (h *WebHandler) LoginPage(c echo.Context) error {
	q := c.QueryParams()
	notice := ""
	switch {
	case q.Has("blocked"):
		notice = msgTooManyAttempts
	case q.Has("error"):
		notice = "Usuario o contrasena incorrectos."
	case q.Has("logout"):
		notice = "Sesion cerrada correctamente."
	}

	body := ""
	if notice != "" {
		body = `<p class="notice">` + html.EscapeString(notice) + `</p>`
	}
	return c.HTML(http.StatusOK, strings.Replace(loginPage, "{{notice}}", body, 1))
}

// LoginSubmit handles the login form post.
func (h *WebHandler) LoginSubmit(c echo.Context) error {
	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Identifier: c.FormValue("username"),
		Password:   c.FormValue("password"),
		Origin:     c.RealIP(),
	})
	switch {
	case errors.Is(err, domain.ErrTooManyAttempts):
		return c.Redirect(http.StatusFound, middleware.LoginPath+"?blocked")
	case errors.Is(err, domain.ErrBadCredentials):
		return c.Redirect(http.StatusFound, middleware.LoginPath+"?error")
	case err != nil:
		return err
	}

	name := ""
	if res.DisplayName != nil {
		name = *res.DisplayName
	}
	sess, err := h.sessions.Create(domain.Identity{LoginID: res.LoginID, Role: res.Role}, name)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(sess.ID, 0))
	h.log.Debug().Str("login_id", res.LoginID).Msg("web session opened")
	return c.Redirect(http.StatusFound, "/")
}

// Logout drops the session and expires the cookie.
func (h *WebHandler) Logout(c echo.Context) error {
	if s, ok := middleware.SessionFrom(c.Request().Context()); ok {
		h.sessions.Delete(s.ID)
	} else if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
		h.sessions.Delete(cookie.Value)
	}
	c.SetCookie(h.cookie("", -1))
	return c.Redirect(http.StatusFound, middleware.LoginPath+"?logout")
}

type homeResponse struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	Nombre string `json:"nombre,omitempty"`
}

// Home is the landing page for an authenticated browser session.
func (h *WebHandler) Home(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	resp := homeResponse{Email: id.LoginID, Role: id.Role.Authority()}
	if s, ok := middleware.SessionFrom(c.Request().Context()); ok {
		resp.Nombre = s.DisplayName
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *WebHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

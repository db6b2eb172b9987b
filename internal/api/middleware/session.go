package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/gestion-comercial/backoffice/internal/infrastructure/session"
)

// SessionCookie is the name of the browser session cookie.
const SessionCookie = "SESSION"

// Session resolves the SESSION cookie to its identity for browser routes.
// API routes are stateless and ignore the cookie; an identity already set by
// a bearer token takes precedence.
func Session(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if IsAPIPath(req.URL.Path) {
				return next(c)
			}
			if _, ok := IdentityFrom(req.Context()); ok {
				return next(c)
			}

			cookie, err := c.Cookie(SessionCookie)
			if err != nil {
				return next(c)
			}
			sess, ok := store.Get(cookie.Value)
			if !ok {
				return next(c)
			}

			ctx := WithSession(WithIdentity(req.Context(), sess.Identity), sess)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

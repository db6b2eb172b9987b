package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gestion-comercial/backoffice/internal/api/middleware"
	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// ctxIdentity returns the identity attached by the auth or session middleware.
// Routes that are public at the admission layer but still need a caller (such
// as /api/auth/me) use it as a fast-fail check.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c.Request().Context())
	if !ok || id.LoginID == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return id, nil
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-comercial/backoffice/internal/api/policy"
	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/pkg/metrics"
)

// LoginPath is where unauthenticated browser requests are sent.
const LoginPath = "/login"

// DenialResponse is the body of a refused API request.
type DenialResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// IsAPIPath reports whether p belongs to the REST surface. p is cleaned
// first, the same way the policies clean it before matching.
func IsAPIPath(p string) bool {
	p = policy.CleanPath(p)
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

// Admit applies route admission: requests under /api are checked against
// api, everything else against web. Refused API requests get a JSON 401 or
// 403; refused browser requests are redirected to the login page when
// anonymous and get a 403 otherwise.
func Admit(api, web *policy.Enforcer, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p := policy.CleanPath(req.URL.Path)

			enforcer := web
			if IsAPIPath(p) {
				enforcer = api
			}

			var idp *domain.Identity
			if id, ok := IdentityFrom(req.Context()); ok {
				idp = &id
			}

			decision, err := enforcer.Decide(idp, p)
			if err != nil {
				log.Error().Err(err).Str("path", p).Msg("route admission failed")
				decision = policy.Forbidden
			}
			if decision == policy.Allow {
				return next(c)
			}

			surface := string(enforcer.Surface())
			metrics.AdmissionDenialsTotal.WithLabelValues(surface, decision.String()).Inc()
			ev := log.Debug().Str("surface", surface).Str("path", p).Str("decision", decision.String())
			if idp != nil {
				ev = ev.Str("login_id", idp.LoginID).Str("role", string(idp.Role))
			}
			ev.Msg("request denied")

			if enforcer.Surface() == policy.SurfaceWeb {
				if decision == policy.Unauthenticated {
					return c.Redirect(http.StatusFound, LoginPath)
				}
				return echo.NewHTTPError(http.StatusForbidden, "acceso denegado")
			}

			if decision == policy.Unauthenticated {
				return c.JSON(http.StatusUnauthorized, denial(http.StatusUnauthorized,
					"No autorizado", "Debe proporcionar un token JWT valido para acceder a este recurso"))
			}
			return c.JSON(http.StatusForbidden, denial(http.StatusForbidden,
				"Prohibido", "No tiene permisos para acceder a este recurso"))
		}
	}
}

func denial(status int, errText, message string) DenialResponse {
	return DenialResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Status:    status,
		Error:     errText,
		Message:   message,
	}
}

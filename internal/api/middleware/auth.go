package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/pkg/metrics"
)

// Authenticate validates a bearer token on REST paths, when one is present,
// and attaches the identity it asserts to the request context. The browser
// surface authenticates by session only. It never rejects a request:
// a missing or unusable token leaves the request anonymous and route
// admission decides what an anonymous caller may reach.
func Authenticate(codec ports.TokenCodec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAPIPath(c.Request().URL.Path) {
				return next(c)
			}
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			id, err := codec.Validate(token)
			if err != nil {
				reason := rejectionReason(err)
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				log.Debug().
					Err(err).
					Str("reason", reason).
					Str("path", c.Request().URL.Path).
					Msg("bearer token rejected")
				return next(c)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, domain.ErrExpiredToken):
		return "expired"
	default:
		return "invalid"
	}
}

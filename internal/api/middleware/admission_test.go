package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-comercial/backoffice/internal/api/policy"
	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

// newAdmissionServer wires Admit in front of a catch-all handler. An
// X-Test-Role header stands in for an authenticated identity.
func newAdmissionServer(t *testing.T) *echo.Echo {
	t.Helper()
	api, err := policy.NewAPIEnforcer()
	require.NoError(t, err)
	web, err := policy.NewWebEnforcer()
	require.NoError(t, err)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role := c.Request().Header.Get("X-Test-Role"); role != "" {
				req := c.Request()
				id := domain.Identity{LoginID: "u@x.com", Role: domain.Role(role)}
				c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
			}
			return next(c)
		}
	})
	e.Use(Admit(api, web, zerolog.Nop()))
	e.Any("/*", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func serve(e *echo.Echo, path, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdmit_API(t *testing.T) {
	e := newAdmissionServer(t)

	tests := []struct {
		path, role string
		status     int
	}{
		{"/api/auth/login", "", http.StatusOK},
		{"/api/empleados", "ADMIN", http.StatusOK},
		{"/api/empleados", "EMPLEADO", http.StatusForbidden},
		{"/api/empleados", "", http.StatusUnauthorized},
		{"/api/clientes/3", "CLIENTE", http.StatusOK},
		{"/api/consultas/x", "CLIENTE", http.StatusForbidden},
		{"/api/facturas", "CLIENTE", http.StatusOK},
		{"/api/facturas", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		rec := serve(e, tt.path, tt.role)
		assert.Equal(t, tt.status, rec.Code, "%s as %q", tt.path, tt.role)
	}
}

func TestAdmit_APIUnauthorizedBody(t *testing.T) {
	e := newAdmissionServer(t)
	rec := serve(e, "/api/clientes", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body DenialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.NotEmpty(t, body.Timestamp)
	assert.NotEmpty(t, body.Error)
	assert.NotEmpty(t, body.Message)
}

func TestAdmit_Web(t *testing.T) {
	e := newAdmissionServer(t)

	rec := serve(e, "/clientes", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, "/empleados", "CLIENTE")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, p := range []string{"/login", "/css/site.css", "/health", "/metrics", "/swagger/index.html"} {
		rec = serve(e, p, "")
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}

	rec = serve(e, "/", "EMPLEADO")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIsAPIPath(t *testing.T) {
	assert.True(t, IsAPIPath("/api"))
	assert.True(t, IsAPIPath("/api/auth/login"))
	assert.False(t, IsAPIPath("/apis"))
	assert.False(t, IsAPIPath("/login"))
	assert.True(t, IsAPIPath("//api/empleados"))
	assert.True(t, IsAPIPath("/api/"))
	assert.False(t, IsAPIPath("/api/../empleados/x"))
}

func TestAdmit_SurfaceFollowsCleanedPath(t *testing.T) {
	e := newAdmissionServer(t)

	get := func(rawPath string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = rawPath
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// Matched as /api/empleados, so refused the REST way.
	rec := get("//api/empleados")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body DenialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.Status)

	// Matched as /empleados/x, so refused the browser way.
	rec = get("/api/../empleados/x")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-comercial/backoffice/internal/api/handler"
	"github.com/gestion-comercial/backoffice/internal/api/middleware"
	"github.com/gestion-comercial/backoffice/internal/api/policy"
	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/security"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/session"
)

type fakeAuthService struct {
	accounts map[string]ports.LoginResult
}

func (f *fakeAuthService) Login(_ context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	if in.Identifier == "locked@x.com" {
		return nil, domain.ErrTooManyAttempts
	}
	res, ok := f.accounts[in.Identifier]
	if !ok || in.Password != "secret" {
		return nil, domain.ErrBadCredentials
	}
	return &res, nil
}

type routerFixture struct {
	e     *echo.Echo
	codec *security.JWTCodec
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	codec, err := security.NewJWTCodec("router-test-secret", time.Hour)
	require.NoError(t, err)
	apiPolicy, err := policy.NewAPIEnforcer()
	require.NoError(t, err)
	webPolicy, err := policy.NewWebEnforcer()
	require.NoError(t, err)

	auth := &fakeAuthService{accounts: map[string]ports.LoginResult{
		"a@x.com": {Token: "tok", TokenType: "Bearer", Role: domain.RoleAdmin, LoginID: "a@x.com"},
		"c@x.com": {Token: "tok", TokenType: "Bearer", Role: domain.RoleClient, LoginID: "c@x.com"},
	}}

	e, err := NewRouter(Dependencies{
		Log:                zerolog.Nop(),
		AuthService:        auth,
		Codec:              codec,
		Sessions:           session.NewStore(10, time.Minute),
		APIPolicy:          apiPolicy,
		WebPolicy:          webPolicy,
		Readiness:          map[string]handler.Pinger{"store": func(context.Context) error { return nil }},
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		Registry:           prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return &routerFixture{e: e, codec: codec}
}

func (f *routerFixture) token(t *testing.T, p domain.Principal) string {
	t.Helper()
	tok, _, err := f.codec.Issue(p)
	require.NoError(t, err)
	return tok
}

// webLogin posts the login form and returns the session cookie.
func (f *routerFixture) webLogin(t *testing.T, username string) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := f.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	for _, p := range []string{"/health", "/health/ready", "/metrics", "/login", "/swagger/doc.json"} {
		rec := f.do(httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
}

func TestRouter_APILogin(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"ROLE_ADMIN"`)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.com","password":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Credenciales invalidas"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"locked@x.com","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = f.do(req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"Demasiados intentos fallidos. Cuenta bloqueada temporalmente."}`, rec.Body.String())
}

func TestRouter_APIAdmission(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, domain.EmployeePrincipal(domain.Employee{ID: 1, Email: "a@x.com", RoleName: "ADMIN"}))
	client := f.token(t, domain.ClientPrincipal(domain.Client{ID: 2, Email: "c@x.com"}))

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"me without token", "/api/auth/me", "", http.StatusUnauthorized},
		{"me with token", "/api/auth/me", client, http.StatusOK},
		{"anonymous protected", "/api/productos", "", http.StatusUnauthorized},
		{"client on employees", "/api/empleados/1", client, http.StatusForbidden},
		// Admitted, but no handler behind it.
		{"admin on employees", "/api/empleados/1", admin, http.StatusNotFound},
		{"garbage token", "/api/productos", "garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			rec := f.do(req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_APIDenialBody(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/consultas", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body middleware.DenialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Equal(t, "No autorizado", body.Error)
}

func TestRouter_WebSessionFlow(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	form := url.Values{"username": {"a@x.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = f.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	sessionCookie := cookies[0]

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@x.com"`)

	// The cookie is not a credential on the REST surface.
	req = httptest.NewRequest(http.MethodGet, "/api/productos", nil)
	req.AddCookie(sessionCookie)
	assert.Equal(t, http.StatusUnauthorized, f.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(sessionCookie)
	rec = f.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?logout", rec.Header().Get(echo.HeaderLocation))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie)
	assert.Equal(t, http.StatusFound, f.do(req).Code)
}

func TestRouter_WebForbidden(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/empleados", nil)
	req.AddCookie(f.webLogin(t, "c@x.com"))
	rec := f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_BearerTokenIgnoredOnBrowserSurface(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, domain.EmployeePrincipal(domain.Employee{ID: 1, Email: "a@x.com", RoleName: "ADMIN"}))

	for _, p := range []string{"/", "/empleados"} {
		req := httptest.NewRequest(http.MethodGet, p, nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+admin)
		rec := f.do(req)
		assert.Equal(t, http.StatusFound, rec.Code, p)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), p)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := f.do(req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

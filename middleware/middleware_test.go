package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho() (*echo.Echo, *utils.JWTManager) {
	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	return e, utils.NewJWTManager("test-secret", time.Hour)
}

func whoami(c echo.Context) error {
	caller := CallerFrom(c)
	if caller == nil {
		return c.String(http.StatusOK, "anonymous")
	}
	return c.String(http.StatusOK, caller.UserID+"|"+caller.Role)
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth_RequiredAndOptional(t *testing.T) {
	e, jwt := newTestEcho()
	auth := NewAuth(jwt)
	e.GET("/required", whoami, auth.Required())
	e.GET("/optional", whoami, auth.Optional())
	e.GET("/admin", whoami, auth.Required(), RequireAdmin)

	token, err := jwt.GenerateJWT("u1", "a@b.com", models.RoleCustomer)
	require.NoError(t, err)
	adminToken, err := jwt.GenerateJWT("a1", "admin@b.com", models.RoleAdmin)
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/required", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := do(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1|customer", rec.Body.String())
	})

	t.Run("token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/required", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		rec := do(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := do(e, httptest.NewRequest(http.MethodGet, "/required", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Missing authorization header"}`, rec.Body.String())
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/optional", nil)
		req.Header.Set(echo.HeaderAuthorization, "Token "+token)
		assert.Equal(t, http.StatusUnauthorized, do(e, req).Code)
	})

	t.Run("optional anonymous", func(t *testing.T) {
		rec := do(e, httptest.NewRequest(http.MethodGet, "/optional", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("forged token", func(t *testing.T) {
		other := utils.NewJWTManager("other-secret", time.Hour)
		forged, err := other.GenerateJWT("a1", "admin@b.com", models.RoleAdmin)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+forged)
		assert.Equal(t, http.StatusUnauthorized, do(e, req).Code)
	})

	t.Run("admin role claim", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, do(e, req).Code)

		req = httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminToken)
		rec := do(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a1|admin", rec.Body.String())
	})
}

func TestAuth_AdminPages(t *testing.T) {
	e, jwt := newTestEcho()
	auth := NewAuth(jwt)
	g := e.Group("/admin", auth.AdminPages("/admin/login.html"))
	g.GET("/*", func(c echo.Context) error { return c.String(http.StatusOK, "page") })

	rec := do(e, httptest.NewRequest(http.MethodGet, "/admin/login.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, httptest.NewRequest(http.MethodGet, "/admin/orders.html", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login.html", rec.Header().Get(echo.HeaderLocation))

	token, err := jwt.GenerateJWT("u1", "a@b.com", models.RoleCustomer)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/orders.html", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	assert.Equal(t, http.StatusForbidden, do(e, req).Code)

	adminToken, err := jwt.GenerateJWT("a1", "admin@b.com", models.RoleAdmin)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin/orders.html", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: adminToken})
	assert.Equal(t, http.StatusOK, do(e, req).Code)
}

func TestRateLimiter(t *testing.T) {
	e, _ := newTestEcho()
	rl := NewRateLimiter(1, 2)
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, rl.Middleware())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		assert.Equal(t, http.StatusNoContent, do(e, req).Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, http.StatusTooManyRequests, do(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusNoContent, do(e, req).Code)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 5)
	clock := time.Now()
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	rl.limiter("10.0.0.1")
	rl.limiter("10.0.0.2")
	require.Len(t, rl.ips, 2)

	clock = clock.Add(2 * time.Minute)
	rl.limiter("10.0.0.2")
	assert.Len(t, rl.ips, 2, "no sweep before the idle ttl elapses")

	clock = clock.Add(90 * time.Second)
	rl.limiter("10.0.0.3")
	assert.Len(t, rl.ips, 2)
	assert.NotContains(t, rl.ips, "10.0.0.1")
	assert.Contains(t, rl.ips, "10.0.0.2")
	assert.Contains(t, rl.ips, "10.0.0.3")
}

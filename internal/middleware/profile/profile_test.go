package profile

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, path string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	h := Middleware(Config{SkipPaths: []string{"/health/live"}})(func(c echo.Context) error {
		seen, _ = FromContext(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec, seen
}

func cookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "profile" {
			return ck
		}
	}
	return nil
}

func TestMiddleware_IssuesProfile(t *testing.T) {
	rec, id := serve(t, "/api/v1/cart")

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	ck := cookieFrom(rec)
	require.NotNil(t, ck)
	assert.Equal(t, id, ck.Value)
	assert.True(t, ck.HttpOnly)
}

func TestMiddleware_KeepsExistingProfile(t *testing.T) {
	existing := uuid.NewString()
	rec, id := serve(t, "/api/v1/cart", &http.Cookie{Name: "profile", Value: existing})

	assert.Equal(t, existing, id)
	assert.Equal(t, existing, cookieFrom(rec).Value)
}

func TestMiddleware_ReplacesMalformedProfile(t *testing.T) {
	_, id := serve(t, "/api/v1/cart", &http.Cookie{Name: "profile", Value: "../../etc"})

	assert.NotEqual(t, "../../etc", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestMiddleware_SkipPaths(t *testing.T) {
	rec, id := serve(t, "/health/live")

	assert.Empty(t, id)
	assert.Nil(t, cookieFrom(rec))
}

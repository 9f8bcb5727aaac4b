package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordedCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestCookieStore_Write(t *testing.T) {
	store := NewCookieStore(true)

	rr := httptest.NewRecorder()
	store.Write(rr, "encoded-session-value")

	cookie := recordedCookie(t, rr)
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "encoded-session-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, SessionCookieMaxAge, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestCookieStore_Write_DevInsecure(t *testing.T) {
	store := NewCookieStore(false)

	rr := httptest.NewRecorder()
	store.Write(rr, "encoded-session-value")

	cookie := recordedCookie(t, rr)
	assert.False(t, cookie.Secure)
}

func TestCookieStore_Read(t *testing.T) {
	store := NewCookieStore(false)

	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	_, ok := store.Read(req)
	assert.False(t, ok)

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "some-value"})
	value, ok := store.Read(req)
	require.True(t, ok)
	assert.Equal(t, "some-value", value)
}

func TestCookieStore_Delete(t *testing.T) {
	store := NewCookieStore(false)

	rr := httptest.NewRecorder()
	store.Delete(rr)

	cookie := recordedCookie(t, rr)
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)

	// deleting again is not an error
	store.Delete(httptest.NewRecorder())
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/drywaters/tasbih/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := session.TokenFrom(r.Context())
		_, _ = w.Write([]byte(token))
	})
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(time.Hour)
	t.Cleanup(store.Close)
	return store
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestSessionCreatesSession(t *testing.T) {
	store := newStore(t)
	h := Session(store, true)(tokenEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, cookie.Value, rec.Body.String())
	assert.True(t, store.Valid(cookie.Value))
}

func TestSessionReusesValidCookie(t *testing.T) {
	store := newStore(t)
	token, err := store.Create()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	Session(store, false)(tokenEcho()).ServeHTTP(rec, req)

	assert.Equal(t, token, rec.Body.String())
	assert.Nil(t, sessionCookie(t, rec))
	assert.Equal(t, 1, store.Len())
}

func TestSessionReplacesStaleCookie(t *testing.T) {
	store := newStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})
	rec := httptest.NewRecorder()
	Session(store, false)(tokenEcho()).ServeHTTP(rec, req)

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.NotEqual(t, "stale", cookie.Value)
	assert.Equal(t, cookie.Value, rec.Body.String())
}

func TestAuthRedirects(t *testing.T) {
	store := newStore(t)
	h := Auth(store, false)(tokenEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodPost, "/count", nil)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "expired"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
	cleared := sessionCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestAuthAllowsValidSession(t *testing.T) {
	store := newStore(t)
	token, err := store.Create()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	Auth(store, false)(tokenEcho()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, token, rec.Body.String())
}

func TestLoggerPassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/drywaters/tasbih/internal/config"
	"github.com/drywaters/tasbih/internal/session"
	"github.com/drywaters/tasbih/internal/slideshow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T, cfg *config.Config, imageNames ...string) *client {
	t.Helper()

	dir := t.TempDir()
	for _, name := range imageNames {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	images, err := slideshow.Scan(t.Context(), dir)
	require.NoError(t, err)

	sessions := session.NewStore(time.Hour)
	t.Cleanup(sessions.Close)

	srv := New(cfg, sessions, images, slideshow.NewRenderer(slideshow.MaxWidth, slideshow.MaxHeight))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func defaultConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		ImagesDir:        "images",
		LogLevel:         "info",
		LogFormat:        "text",
		SessionTTL:       time.Hour,
		AutoplayInterval: 5 * time.Second,
	}
}

func (c *client) do(method, path string, form url.Values, htmx bool) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) state() map[string]any {
	c.t.Helper()
	resp := c.do(http.MethodGet, "/api/state", nil, false)
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, defaultConfig())
	resp := c.do(http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaticAssets(t *testing.T) {
	c := newTestServer(t, defaultConfig())
	resp := c.do(http.MethodGet, "/static/app.css", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddTenThreeTimesThenReset(t *testing.T) {
	c := newTestServer(t, defaultConfig())

	resp := c.do(http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for i := 0; i < 3; i++ {
		resp := c.do(http.MethodPost, "/count", url.Values{"step": {"10"}}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode) // followed the 303 back to /
	}
	state := c.state()
	assert.EqualValues(t, 30, state["count"])
	assert.EqualValues(t, 30, state["total_count"])

	c.do(http.MethodPost, "/reset", url.Values{}, true)
	state = c.state()
	assert.EqualValues(t, 0, state["count"])
	assert.EqualValues(t, 30, state["total_count"])
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newTestServer(t, defaultConfig())
	c := a.do(http.MethodPost, "/count", url.Values{"step": {"1"}}, true)
	require.Equal(t, http.StatusOK, c.StatusCode)
	assert.EqualValues(t, 1, a.state()["count"])

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	b := &client{t: t, base: a.base, http: &http.Client{Jar: jar}}
	assert.EqualValues(t, 0, b.state()["count"])
}

func TestPreviousImageWrapsToLast(t *testing.T) {
	c := newTestServer(t, defaultConfig(), "a.png", "c.jpg", "b.jpeg", "readme.txt")

	c.do(http.MethodPost, "/slides/prev", url.Values{}, true)
	state := c.state()
	assert.EqualValues(t, 2, state["slide_index"])
	assert.True(t, strings.HasSuffix(state["current_image"].(string), "c.jpg"))
	assert.EqualValues(t, 3, state["image_count"])
}

func TestLoginRequired(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := defaultConfig()
	cfg.AccessKeyHash = string(hash)
	c := newTestServer(t, cfg)

	noFollow := *c.http
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	guest := &client{t: t, base: c.base, http: &noFollow}

	resp := guest.do(http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = guest.do(http.MethodPost, "/login", url.Values{"access_key": {"wrong"}}, false)
	assert.Equal(t, "/login?error=invalid_key", resp.Header.Get("Location"))

	resp = guest.do(http.MethodPost, "/login", url.Values{"access_key": {"open-sesame"}}, false)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	c.do(http.MethodPost, "/count", url.Values{"step": {"1"}}, true)
	assert.EqualValues(t, 1, c.state()["count"])

	resp = guest.do(http.MethodPost, "/logout", url.Values{}, false)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = guest.do(http.MethodGet, "/api/state", nil, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

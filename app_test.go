package portfolio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eringen/portfolio/actions"
)

const testCSRF = "test-csrf-token"

// fakeAPI is an in-process stand-in for the upstream REST API. Handlers are
// keyed by "METHOD /path"; every call is recorded.
type fakeAPI struct {
	mu      sync.Mutex
	routes  map[string]http.HandlerFunc
	calls   []string
	cookies map[string]string
	bodies  map[string][]byte
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		routes:  map[string]http.HandlerFunc{},
		cookies: map[string]string{},
		bodies:  map[string][]byte{},
	}
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.routes[pattern] = h
}

// json registers a fixed JSON response.
func (f *fakeAPI) json(pattern string, status int, body string) {
	f.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies[key] = body
	if ck, err := r.Cookie(actions.CookieName); err == nil {
		f.cookies[key] = ck.Value
	}
	h, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeAPI) cookie(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookies[key]
}

func newTestApp(t *testing.T, api http.Handler, opts ...Option) *App {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := SiteConfig{
		Name:          "Test Portfolio",
		URL:           "https://example.com",
		Author:        "Sam Rivera",
		APIBaseURL:    srv.URL,
		SessionSecret: "test-secret",
		StaticDir:     filepath.Join(dir, "public"),
		ContentDir:    filepath.Join(dir, "content"),
		PhotosPath:    filepath.Join(dir, "data", "photos.json"),
		InboxPath:     filepath.Join(dir, "data", "inbox.db"),
	}
	app := New(cfg, append([]Option{WithLogger(zerolog.Nop())}, opts...)...)
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { app.Close() })
	return app
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: actions.CookieName, Value: token}
}

// formRequest builds a CSRF-valid urlencoded form submission.
func formRequest(target string, form url.Values, cookies ...*http.Cookie) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", testCSRF)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: testCSRF})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func getRequest(target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func jsonRequest(target string, body any, cookies ...*http.Cookie) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(string(b)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

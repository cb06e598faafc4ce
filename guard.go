package portfolio

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/actions"
)

// Decision is the route guard's verdict for one request.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	default:
		return "allow"
	}
}

// GuardConfig describes which paths the route guard inspects and where it
// sends visitors. Matcher entries are exact paths, or a prefix ending in
// "/*" that also matches the prefix itself.
type GuardConfig struct {
	LoginPath         string
	DashboardPath     string
	ProtectedPrefixes []string
	Matcher           []string
}

// DefaultGuardConfig protects the dashboard and keeps signed-in users off the
// login page.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LoginPath:         PathLogin,
		DashboardPath:     actions.PathDashboard,
		ProtectedPrefixes: []string{actions.PathDashboard},
		Matcher:           []string{actions.PathDashboard + "/*", PathLogin, PathUnauthorized, PathProfile},
	}
}

// Decide is the guard's decision table. Only the cookie's presence matters;
// the upstream API is the sole judge of whether the token is still valid.
func (g GuardConfig) Decide(path string, hasCookie bool) Decision {
	path = normalizePath(path)
	if !g.matches(path) {
		return Allow
	}
	if path == g.LoginPath {
		if hasCookie {
			return RedirectDashboard
		}
		return Allow
	}
	if !hasCookie && g.protected(path) {
		return RedirectLogin
	}
	return Allow
}

func (g GuardConfig) matches(path string) bool {
	for _, m := range g.Matcher {
		if prefix, ok := strings.CutSuffix(m, "/*"); ok {
			if underPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == m {
			return true
		}
	}
	return false
}

func (g GuardConfig) protected(path string) bool {
	for _, p := range g.ProtectedPrefixes {
		if underPrefix(path, p) {
			return true
		}
	}
	return false
}

// underPrefix matches whole segments: /dashboard covers /dashboard/blogs but
// not /dashboards.
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}

// guardMiddleware applies Decide to every request with a 303 redirect.
func (a *App) guardMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch a.guard.Decide(c.Request().URL.Path, HasSession(c)) {
		case RedirectLogin:
			return c.Redirect(http.StatusSeeOther, a.guard.LoginPath)
		case RedirectDashboard:
			return c.Redirect(http.StatusSeeOther, a.guard.DashboardPath)
		}
		return next(c)
	}
}

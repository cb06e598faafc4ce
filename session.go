package portfolio

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/views"
)

// OutcomeKind discriminates what a login attempt asks the handler to do.
type OutcomeKind int

const (
	OutcomeRedirect OutcomeKind = iota + 1
	OutcomeError
)

// Outcome is the result of SetSession. A redirect is a normal outcome, not an
// error; the handler performs it and nothing runs afterwards.
type Outcome struct {
	Kind    OutcomeKind
	To      string
	Message string
}

// SetSession stores token as the httpOnly accessToken cookie and directs the
// visitor to the dashboard. The cookie has no expiry; the upstream API decides
// when the token stops working.
func (a *App) SetSession(c echo.Context, token string) Outcome {
	if token == "" {
		return Outcome{Kind: OutcomeError, Message: "Login response did not include an access token"}
	}
	c.SetCookie(&http.Cookie{
		Name:     actions.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	})
	return Outcome{Kind: OutcomeRedirect, To: a.guard.DashboardPath}
}

// ClearSession expires the accessToken cookie.
func (a *App) ClearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     actions.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Credential returns the caller's accessToken cookie, or the empty credential.
func Credential(c echo.Context) actions.Credential {
	ck, err := c.Cookie(actions.CookieName)
	if err != nil {
		return ""
	}
	return actions.Credential(ck.Value)
}

// HasSession reports whether a non-empty accessToken cookie is present.
func HasSession(c echo.Context) bool {
	return Credential(c) != ""
}

func (a *App) handleLoginPage(c echo.Context) error {
	return Render(c, views.Login(a.page(c, "Log in", ""), views.LoginData{}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	creds := actions.Credentials{
		Email:    strings.TrimSpace(c.FormValue("email")),
		Password: c.FormValue("password"),
	}
	if creds.Email == "" || creds.Password == "" {
		return RenderStatus(c, http.StatusBadRequest, views.Login(a.page(c, "Log in", ""),
			views.LoginData{Email: creds.Email, Error: "Email and password are required."}))
	}

	res := a.Actions.Login(c.Request().Context(), creds)
	if !res.Success {
		a.loginLimiter.Record(ip)
		a.Log.Info().Str("ip", ip).Str("reason", res.Error).Msg("login rejected")
		return RenderStatus(c, http.StatusUnauthorized, views.Login(a.page(c, "Log in", ""),
			views.LoginData{Email: creds.Email, Error: res.Error}))
	}

	out := a.SetSession(c, res.Data.AccessToken)
	if out.Kind == OutcomeError {
		return RenderStatus(c, http.StatusBadGateway, views.Login(a.page(c, "Log in", ""),
			views.LoginData{Email: creds.Email, Error: out.Message}))
	}
	return c.Redirect(http.StatusSeeOther, out.To)
}

func (a *App) handleLogout(c echo.Context) error {
	a.ClearSession(c)
	return c.Redirect(http.StatusSeeOther, a.guard.LoginPath)
}

func (a *App) handleProfileRedirect(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, actions.PathDashboardProfile)
}

func (a *App) handleUnauthorized(c echo.Context) error {
	return RenderStatus(c, http.StatusUnauthorized, views.Unauthorized(a.page(c, "Session expired", "")))
}

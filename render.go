package portfolio

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// page builds the chrome for a rendered page.
func (a *App) page(c echo.Context, title, description string) views.Page {
	return views.Page{
		Site: a.siteView(),
		Meta: views.PageMeta{
			Title:       title,
			Description: description,
			URL:         a.Config.URL + c.Request().URL.Path,
			OGType:      "website",
		},
		CSRF:   CsrfToken(c),
		Toasts: a.takeToasts(c),
		Authed: HasSession(c),
		Path:   c.Request().URL.Path,
	}
}

func (a *App) siteView() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Tagline:     a.Config.Tagline,
	}
}

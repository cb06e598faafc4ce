package portfolio

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func lastMod(dates ...string) string {
	for _, d := range dates {
		if t, ok := parseDate(d); ok {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func (a *App) renderSitemap(c echo.Context, blogs []actions.Blog, projects []actions.Project, notes []content.Note) error {
	base := a.Config.URL
	urls := []sitemapURL{{Loc: views.BuildURL(base)}}
	for _, section := range []string{"blogs", "projects", "notes", "gallery"} {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, section)})
	}
	for _, b := range blogs {
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "blogs", b.ID),
			LastMod: lastMod(b.UpdatedAt, b.CreatedAt),
		})
	}
	for _, p := range projects {
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "projects", p.ID),
			LastMod: lastMod(p.CreatedAt),
		})
	}
	for _, n := range notes {
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "notes", n.Slug),
			LastMod: lastMod(n.Date),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

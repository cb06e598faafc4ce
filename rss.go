package portfolio

import (
	"encoding/xml"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/views"
)

const feedItems = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`

	at time.Time
}

// parseDate accepts the upstream's RFC 3339 timestamps and the notes'
// plain dates.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// renderRSS writes one feed covering published blogs and notes, newest first.
func (a *App) renderRSS(c echo.Context, blogs []actions.Blog, notes []content.Note) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(blogs)+len(notes))
	add := func(title, link, desc, date string) {
		item := rssItem{Title: title, Link: link, Description: desc, GUID: link}
		if t, ok := parseDate(date); ok {
			item.PubDate = t.Format(time.RFC1123Z)
			item.at = t
		}
		items = append(items, item)
	}
	for _, b := range blogs {
		add(b.Title, views.BuildURL(base, "blogs", b.ID), b.Excerpt, b.CreatedAt)
	}
	for _, n := range notes {
		add(n.Title, views.BuildURL(base, "notes", n.Slug), n.Summary, n.Date)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].at.After(items[j].at) })
	if len(items) > feedItems {
		items = items[:feedItems]
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        views.BuildURL(base),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

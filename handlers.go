package portfolio

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/views"
)

const (
	homeProjects = 3
	homeBlogs    = 3
	homeNotes    = 5
	relatedBlogs = 3
)

// Public pages read upstream without the visitor's credential so cached
// responses are shared. A failed read leaves its section empty.

func (a *App) publicBlogs(ctx context.Context) []actions.Blog {
	res, err := a.Actions.ListBlogs(ctx, "")
	if err != nil || !res.Success {
		a.logRead("blogs", res.Error, err)
		return nil
	}
	if a.Config.ShowDrafts {
		return res.Data
	}
	var published []actions.Blog
	for _, b := range res.Data {
		if b.Published {
			published = append(published, b)
		}
	}
	return published
}

func (a *App) publicProjects(ctx context.Context) []actions.Project {
	res, err := a.Actions.ListProjects(ctx, "")
	if err != nil || !res.Success {
		a.logRead("projects", res.Error, err)
		return nil
	}
	return res.Data
}

func (a *App) logRead(what, msg string, err error) {
	ev := a.Log.Warn().Str("resource", what)
	if err != nil {
		ev = ev.Err(err)
	} else {
		ev = ev.Str("upstream", msg)
	}
	ev.Msg("public read failed")
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	owner := a.siteOwner()
	var (
		projects []actions.Project
		blogs    []actions.Blog
	)
	var g errgroup.Group
	g.Go(func() error {
		projects = featured(a.publicProjects(ctx), homeProjects)
		return nil
	})
	g.Go(func() error {
		blogs = a.publicBlogs(ctx)
		if len(blogs) > homeBlogs {
			blogs = blogs[:homeBlogs]
		}
		return nil
	})
	_ = g.Wait()

	notes := a.Library.List()
	if len(notes) > homeNotes {
		notes = notes[:homeNotes]
	}

	p := a.page(c, "", a.Config.Description)
	p.Meta.JSONLD = views.PersonJsonLD(p.Site, owner, a.Config.Skills)
	return Render(c, views.Home(p, views.HomeData{
		Owner:    owner,
		About:    a.Config.About,
		Skills:   a.Config.Skills,
		Projects: projects,
		Blogs:    blogs,
		Notes:    notes,
	}))
}

// featured prefers projects flagged featured, topping up with the rest.
func featured(all []actions.Project, n int) []actions.Project {
	out := make([]actions.Project, 0, n)
	for _, p := range all {
		if p.Featured && len(out) < n {
			out = append(out, p)
		}
	}
	for _, p := range all {
		if !p.Featured && len(out) < n {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) handleBlogs(c echo.Context) error {
	ctx := c.Request().Context()
	active := c.QueryParam("category")
	blogs := views.FilterByCategory(a.publicBlogs(ctx), active)

	var categories []actions.Category
	if res, err := a.Actions.ListCategories(ctx, ""); err == nil && res.Success {
		categories = res.Data
	}
	p := a.page(c, "Blog", "")
	p.Meta.JSONLD = views.WebsiteJsonLD(p.Site)
	return Render(c, views.Blogs(p, views.BlogsData{Blogs: blogs, Categories: categories, Active: active}))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	res, err := a.Actions.GetBlog(ctx, "", c.Param("id"))
	if err != nil {
		return err
	}
	if !res.Success {
		return upstreamPageError(res.Status)
	}
	blog := res.Data
	if !blog.Published && !a.Config.ShowDrafts {
		return RenderStatus(c, http.StatusNotFound, views.NotFound(a.page(c, "Not found", "")))
	}
	p := a.page(c, blog.Title, blog.Excerpt)
	p.Meta.OGType = "article"
	p.Meta.JSONLD = views.BlogPostingJsonLD(p.Site, blog)
	return Render(c, views.Blog(p, views.BlogData{
		Blog:    blog,
		Related: views.RelatedBlogs(blog, a.publicBlogs(ctx), relatedBlogs),
	}))
}

func (a *App) handleProjects(c echo.Context) error {
	return Render(c, views.Projects(a.page(c, "Projects", ""), views.ProjectsData{
		Projects: a.publicProjects(c.Request().Context()),
	}))
}

func (a *App) handleProject(c echo.Context) error {
	res, err := a.Actions.GetProject(c.Request().Context(), "", c.Param("id"))
	if err != nil {
		return err
	}
	if !res.Success {
		return upstreamPageError(res.Status)
	}
	return Render(c, views.Project(a.page(c, res.Data.Title, res.Data.Description), views.ProjectData{Project: res.Data}))
}

func (a *App) handleNotes(c echo.Context) error {
	return Render(c, views.Notes(a.page(c, "Notes", ""), views.NotesData{Notes: a.Library.List()}))
}

func (a *App) handleNote(c echo.Context) error {
	note, ok := a.Library.Get(c.Param("slug"))
	if !ok {
		return echo.ErrNotFound
	}
	p := a.page(c, note.Title, note.Summary)
	p.Meta.OGType = "article"
	return Render(c, views.Note(p, views.NoteData{Note: note}))
}

func (a *App) handleGallery(c echo.Context) error {
	list, err := a.Photos.List()
	if err != nil {
		return err
	}
	return Render(c, views.Gallery(a.page(c, "Gallery", ""), views.GalleryData{Photos: list}))
}

// upstreamPageError maps a failed detail read onto the 404 or error page.
func upstreamPageError(status int) error {
	if status == http.StatusNotFound {
		return echo.ErrNotFound
	}
	return echo.NewHTTPError(http.StatusBadGateway, "upstream status "+http.StatusText(status))
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	return a.renderSitemap(c, a.publicBlogs(ctx), a.publicProjects(ctx), a.Library.List())
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.publicBlogs(c.Request().Context()), a.Library.List())
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.Config.StaticDir, "favicon.svg"))
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(filepath.Join(a.Config.StaticDir, "robots.txt"))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.page(c, "Not found", "")))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("server error")
		_ = RenderStatus(c, code, views.ServerError(a.page(c, "Error", "")))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

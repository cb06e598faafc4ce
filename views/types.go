package views

import (
	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/inbox"
	"github.com/eringen/portfolio/photos"
)

// SiteConfig holds site-wide settings. Every handler passes this to templates
// so nothing is hardcoded.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	Tagline     string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}

// Toast is a one-shot flash message shown at the top of the next page.
type Toast struct {
	Kind string // "success" or "error"
	Text string
}

// Page is the chrome shared by every template.
type Page struct {
	Site   SiteConfig
	Meta   PageMeta
	CSRF   string
	Toasts []Toast
	Authed bool
	Path   string
}

// HomeData feeds the landing page.
type HomeData struct {
	Owner    actions.User
	About    string
	Skills   []string
	Projects []actions.Project
	Blogs    []actions.Blog
	Notes    []content.Note
}

type BlogsData struct {
	Blogs      []actions.Blog
	Categories []actions.Category
	Active     string
}

type BlogData struct {
	Blog    actions.Blog
	Related []actions.Blog
}

type ProjectsData struct {
	Projects []actions.Project
}

type ProjectData struct {
	Project actions.Project
}

type NotesData struct {
	Notes []content.Note
}

type NoteData struct {
	Note content.Note
}

type GalleryData struct {
	Photos []photos.Photo
}

type LoginData struct {
	Email string
	Error string
}

// OverviewData is the dashboard landing page. A negative count means the
// upstream call failed.
type OverviewData struct {
	Blogs      int
	Categories int
	Projects   int
	Photos     int
	Messages   int
	Owner      actions.User
}

type BlogListData struct {
	Blogs []actions.Blog
}

type BlogFormData struct {
	Blog       actions.Blog
	Categories []actions.Category
	IsNew      bool
}

type CategoryListData struct {
	Categories []actions.Category
}

type CategoryFormData struct {
	Category actions.Category
	IsNew    bool
}

type ProjectListData struct {
	Projects []actions.Project
}

type ProjectFormData struct {
	Project actions.Project
	IsNew   bool
}

type ProfileData struct {
	User actions.User
}

type MessagesData struct {
	Messages []inbox.Message
}

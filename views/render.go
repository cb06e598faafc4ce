package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/a-h/templ"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"pathEscape": PathEscape,
	"joinTags":   JoinTags,
	"date":       FormatDate,
	"jsonld":     func(s string) template.JS { return template.JS(s) },
	"active": func(current, prefix string) bool {
		return current == prefix || strings.HasPrefix(current, prefix+"/")
	},
	"negative": func(n int) bool { return n < 0 },
	"deleteArgs": func(action, csrf string) map[string]string {
		return map[string]string{"Action": action, "CSRF": csrf}
	},
}

// pages maps a page name (file name without .html) to its template set:
// the layout, the shared partials and the page's "content" block.
var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".html")
		out[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", f))
	}
	return out
}

type view struct {
	Page
	Data any
}

// page adapts a parsed template set to a templ.Component.
func page(name string, p Page, data any) templ.Component {
	t, ok := pages[name]
	if !ok {
		panic("views: unknown page " + name)
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, "layout", view{Page: p, Data: data})
	})
}

func Home(p Page, d HomeData) templ.Component         { return page("home", p, d) }
func Blogs(p Page, d BlogsData) templ.Component       { return page("blogs", p, d) }
func Blog(p Page, d BlogData) templ.Component         { return page("blog", p, d) }
func Projects(p Page, d ProjectsData) templ.Component { return page("projects", p, d) }
func Project(p Page, d ProjectData) templ.Component   { return page("project", p, d) }
func Notes(p Page, d NotesData) templ.Component       { return page("notes", p, d) }
func Note(p Page, d NoteData) templ.Component         { return page("note", p, d) }
func Gallery(p Page, d GalleryData) templ.Component   { return page("gallery", p, d) }
func Login(p Page, d LoginData) templ.Component       { return page("login", p, d) }
func Unauthorized(p Page) templ.Component             { return page("unauthorized", p, nil) }
func NotFound(p Page) templ.Component                 { return page("notfound", p, nil) }
func ServerError(p Page) templ.Component              { return page("error", p, nil) }
func Overview(p Page, d OverviewData) templ.Component { return page("dashboard", p, d) }
func BlogList(p Page, d BlogListData) templ.Component { return page("dashboard_blogs", p, d) }
func BlogForm(p Page, d BlogFormData) templ.Component { return page("dashboard_blog_form", p, d) }
func CategoryList(p Page, d CategoryListData) templ.Component {
	return page("dashboard_categories", p, d)
}
func CategoryForm(p Page, d CategoryFormData) templ.Component {
	return page("dashboard_category_form", p, d)
}
func ProjectList(p Page, d ProjectListData) templ.Component { return page("dashboard_projects", p, d) }
func ProjectForm(p Page, d ProjectFormData) templ.Component {
	return page("dashboard_project_form", p, d)
}
func Profile(p Page, d ProfileData) templ.Component      { return page("dashboard_profile", p, d) }
func GalleryAdmin(p Page, d GalleryData) templ.Component { return page("dashboard_gallery", p, d) }
func Messages(p Page, d MessagesData) templ.Component    { return page("dashboard_messages", p, d) }

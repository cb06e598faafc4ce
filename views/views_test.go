package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/inbox"
	"github.com/eringen/portfolio/photos"
)

func render(t *testing.T, cmp templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := cmp.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestEveryPageRenders(t *testing.T) {
	p := Page{Site: SiteConfig{Name: "Ada Dev", Author: "Ada"}, CSRF: "tok", Authed: true, Path: "/dashboard/blogs"}
	blog := actions.Blog{ID: "b 1", Title: "Hello <World>", Category: actions.Ref{ID: "c1", Name: "Go"}, Tags: []string{"go"}}
	project := actions.Project{ID: "p1", Title: "Site", Technologies: []string{"Go", "Echo"}, LiveURL: "https://example.com"}

	pagesUnderTest := map[string]templ.Component{
		"home":          Home(p, HomeData{Owner: actions.User{Name: "Ada"}, Skills: []string{"Go"}, Projects: []actions.Project{project}, Blogs: []actions.Blog{blog}}),
		"blogs":         Blogs(p, BlogsData{Blogs: []actions.Blog{blog}, Categories: []actions.Category{{ID: "c1", Name: "Go"}}, Active: "c1"}),
		"blog":          Blog(p, BlogData{Blog: blog}),
		"projects":      Projects(p, ProjectsData{Projects: []actions.Project{project}}),
		"project":       Project(p, ProjectData{Project: project}),
		"notes":         Notes(p, NotesData{Notes: []content.Note{{Slug: "n", Title: "N"}}}),
		"note":          Note(p, NoteData{Note: content.Note{Slug: "n", Title: "N", HTML: "<p>body</p>"}}),
		"gallery":       Gallery(p, GalleryData{Photos: []photos.Photo{{Src: "/a.jpg", Alt: "a"}}}),
		"login":         Login(p, LoginData{Error: "Invalid credentials"}),
		"unauthorized":  Unauthorized(p),
		"notfound":      NotFound(p),
		"error":         ServerError(p),
		"overview":      Overview(p, OverviewData{Blogs: 2, Categories: -1}),
		"blog list":     BlogList(p, BlogListData{Blogs: []actions.Blog{blog}}),
		"blog form":     BlogForm(p, BlogFormData{Blog: blog, Categories: []actions.Category{{ID: "c1", Name: "Go"}}}),
		"category list": CategoryList(p, CategoryListData{Categories: []actions.Category{{ID: "c1", Name: "Go"}}}),
		"category form": CategoryForm(p, CategoryFormData{Category: actions.Category{ID: "c1", Name: "Go"}}),
		"project list":  ProjectList(p, ProjectListData{Projects: []actions.Project{project}}),
		"project form":  ProjectForm(p, ProjectFormData{Project: project, IsNew: true}),
		"profile":       Profile(p, ProfileData{User: actions.User{Name: "Ada", Photo: "/me.jpg"}}),
		"gallery admin": GalleryAdmin(p, GalleryData{}),
		"messages":      Messages(p, MessagesData{Messages: []inbox.Message{{ID: 7, Name: "Bob", CreatedAt: time.Now()}}}),
	}
	for name, cmp := range pagesUnderTest {
		t.Run(name, func(t *testing.T) {
			out := render(t, cmp)
			if !strings.Contains(out, "<title>") {
				t.Errorf("page %s has no layout", name)
			}
		})
	}
}

func TestBlogListEscapesAndCarriesCSRF(t *testing.T) {
	out := render(t, BlogList(Page{CSRF: "tok123", Path: "/dashboard/blogs"}, BlogListData{
		Blogs: []actions.Blog{{ID: "b 1", Title: "<script>x</script>"}},
	}))
	if strings.Contains(out, "<script>x</script>") {
		t.Error("title was not escaped")
	}
	if !strings.Contains(out, "/dashboard/blogs/b%201/delete") {
		t.Error("delete action missing escaped id")
	}
	if !strings.Contains(out, `value="tok123"`) {
		t.Error("delete form missing csrf token")
	}
}

func TestBlogFormSelectsCategoryAndKeepsPhoto(t *testing.T) {
	out := render(t, BlogForm(Page{}, BlogFormData{
		Blog:       actions.Blog{ID: "b1", Category: actions.Ref{ID: "c2"}, Photo: "/old.jpg", Tags: []string{"a", "b"}},
		Categories: []actions.Category{{ID: "c1", Name: "One"}, {ID: "c2", Name: "Two"}},
	}))
	if !strings.Contains(out, `<option value="c2" selected>`) {
		t.Error("current category not selected")
	}
	if !strings.Contains(out, `name="current_photo" value="/old.jpg"`) {
		t.Error("current photo not carried")
	}
	if !strings.Contains(out, `value="a, b"`) {
		t.Error("tags not joined")
	}
}

func TestJSONLDIsRawScript(t *testing.T) {
	cfg := SiteConfig{Name: "Site", URL: "https://example.com", Author: "Ada"}
	out := render(t, Home(Page{Site: cfg, Meta: PageMeta{JSONLD: WebsiteJsonLD(cfg)}}, HomeData{}))
	if !strings.Contains(out, `"@type":"WebSite"`) {
		t.Errorf("JSON-LD not emitted raw:\n%s", out)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	ld := BlogPostingJsonLD(SiteConfig{Name: "Site", URL: "https://example.com"}, actions.Blog{ID: "b1", Title: "T", Tags: []string{"go", "web"}})
	var got map[string]any
	if err := json.Unmarshal([]byte(ld), &got); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if got["url"] != "https://example.com/blogs/b1/" {
		t.Errorf("url = %v, want %q", got["url"], "https://example.com/blogs/b1/")
	}
	if got["keywords"] != "go, web" {
		t.Errorf("keywords = %v", got["keywords"])
	}
}

func TestRelatedBlogs(t *testing.T) {
	current := actions.Blog{ID: "1", Tags: []string{"Go"}, Category: actions.Ref{ID: "c1"}}
	all := []actions.Blog{
		current,
		{ID: "2", Tags: []string{"go "}},
		{ID: "3", Category: actions.Ref{ID: "c1"}},
		{ID: "4", Tags: []string{"rust"}},
	}
	got := RelatedBlogs(current, all, 0)
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "3" {
		t.Errorf("RelatedBlogs = %+v", got)
	}
	if got := RelatedBlogs(current, all, 1); len(got) != 1 {
		t.Errorf("RelatedBlogs max 1 returned %d", len(got))
	}
}

func TestFormatDate(t *testing.T) {
	tests := map[string]string{
		"2024-03-05":               "Mar 5, 2024",
		"2024-03-05T10:00:00Z":     "Mar 5, 2024",
		"2024-03-05T10:00:00.123Z": "Mar 5, 2024",
		"soon":                     "soon",
	}
	for in, want := range tests {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

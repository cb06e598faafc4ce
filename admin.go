package portfolio

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/views"
)

var errMissingFields = errors.New("missing required fields")

// formErrorText maps form rejections to toast text.
var formErrorText = map[error]string{
	errMissingFields:  "Please fill in all required fields.",
	errMissingImage:   "No image file provided.",
	errUploadTooLarge: "File too large (max 10MB).",
	errNotAnImage:     "Only image uploads are accepted.",
}

const formErrorFallback = "Could not read the submitted form."

// failureText returns the toast text for a failed action, or "" on success.
// Transport failures are logged and reported with the generic network message.
func failureText[T any](a *App, c echo.Context, res actions.Result[T], err error) string {
	if err != nil {
		a.Log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("upstream request failed")
		return actions.NetworkErrorMessage
	}
	if !res.Success {
		return res.Message()
	}
	return ""
}

// finish ends a dashboard mutation with a toast and a redirect. An upstream
// 401 sends the visitor to /unauthorized instead.
func finish[T any](a *App, c echo.Context, res actions.Result[T], err error, success, okBack, failBack string) error {
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	if msg := failureText(a, c, res, err); msg != "" {
		a.flash(c, toastError, msg)
		return c.Redirect(http.StatusSeeOther, failBack)
	}
	a.flash(c, toastSuccess, success)
	return c.Redirect(http.StatusSeeOther, okBack)
}

// listPage builds the page for a dashboard read, carrying any failure as a toast.
func listPage[T any](a *App, c echo.Context, title string, res actions.Result[T], err error) views.Page {
	p := a.page(c, title, "")
	if msg := failureText(a, c, res, err); msg != "" {
		p.Toasts = append(p.Toasts, views.Toast{Kind: toastError, Text: msg})
	}
	return p
}

func (a *App) sessionExpired(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, PathUnauthorized)
}

func (a *App) rejectForm(c echo.Context, err error, back string) error {
	a.flash(c, toastError, toastText(a, c, err))
	return c.Redirect(http.StatusSeeOther, back)
}

func toastText(a *App, c echo.Context, err error) string {
	for sentinel, text := range formErrorText {
		if errors.Is(err, sentinel) {
			return text
		}
	}
	a.Log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("form rejected")
	return formErrorFallback
}

func (a *App) handleDashboard(c echo.Context) error {
	cred := Credential(c)
	data := views.OverviewData{Blogs: -1, Categories: -1, Projects: -1, Photos: -1, Messages: -1}
	var expired atomic.Bool

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		res, err := a.Actions.ListBlogs(ctx, cred)
		if err != nil {
			return err
		}
		expired.CompareAndSwap(false, res.Unauthorized())
		if res.Success {
			data.Blogs = len(res.Data)
		}
		return nil
	})
	g.Go(func() error {
		res, err := a.Actions.ListCategories(ctx, cred)
		if err != nil {
			return err
		}
		expired.CompareAndSwap(false, res.Unauthorized())
		if res.Success {
			data.Categories = len(res.Data)
		}
		return nil
	})
	g.Go(func() error {
		res, err := a.Actions.ListProjects(ctx, cred)
		if err != nil {
			return err
		}
		expired.CompareAndSwap(false, res.Unauthorized())
		if res.Success {
			data.Projects = len(res.Data)
		}
		return nil
	})
	g.Go(func() error {
		res, err := a.Actions.GetMe(ctx, cred)
		if err != nil {
			return err
		}
		expired.CompareAndSwap(false, res.Unauthorized())
		data.Owner = res.Data
		a.rememberOwner(res)
		return nil
	})
	g.Go(func() error {
		list, err := a.Photos.List()
		if err != nil {
			return err
		}
		data.Photos = len(list)
		return nil
	})
	g.Go(func() error {
		n, err := a.Inbox.Count()
		if err != nil {
			return err
		}
		data.Messages = n
		return nil
	})
	err := g.Wait()

	if expired.Load() {
		return a.sessionExpired(c)
	}
	p := a.page(c, "Dashboard", "")
	if err != nil {
		a.Log.Error().Err(err).Msg("dashboard overview incomplete")
		p.Toasts = append(p.Toasts, views.Toast{Kind: toastError, Text: "Some counts could not be loaded."})
	}
	return Render(c, views.Overview(p, data))
}

// Blogs

func blogInput(c echo.Context) (actions.BlogInput, error) {
	in := actions.BlogInput{
		Title:     strings.TrimSpace(c.FormValue("title")),
		Excerpt:   strings.TrimSpace(c.FormValue("excerpt")),
		Content:   c.FormValue("content"),
		Category:  c.FormValue("category"),
		Tags:      actions.SplitList(c.FormValue("tags")),
		Published: c.FormValue("published") != "",
	}
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		return in, errMissingFields
	}
	return in, nil
}

func (a *App) handleAdminBlogs(c echo.Context) error {
	res, err := a.Actions.ListBlogs(c.Request().Context(), Credential(c))
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	p := listPage(a, c, "Blogs", res, err)
	return Render(c, views.BlogList(p, views.BlogListData{Blogs: res.Data}))
}

func (a *App) categoriesFor(c echo.Context) []actions.Category {
	res, err := a.Actions.ListCategories(c.Request().Context(), Credential(c))
	if err != nil || !res.Success {
		return nil
	}
	return res.Data
}

func (a *App) handleAdminBlogNew(c echo.Context) error {
	return Render(c, views.BlogForm(a.page(c, "New blog", ""), views.BlogFormData{
		Categories: a.categoriesFor(c),
		IsNew:      true,
	}))
}

func (a *App) handleAdminBlogEdit(c echo.Context) error {
	res, err := a.Actions.GetBlog(c.Request().Context(), Credential(c), c.Param("id"))
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	if msg := failureText(a, c, res, err); msg != "" {
		a.flash(c, toastError, msg)
		return c.Redirect(http.StatusSeeOther, actions.PathDashboardBlogs)
	}
	return Render(c, views.BlogForm(a.page(c, "Edit blog", ""), views.BlogFormData{
		Blog:       res.Data,
		Categories: a.categoriesFor(c),
	}))
}

func (a *App) handleAdminBlogCreate(c echo.Context) error {
	back := actions.PathDashboardBlogs + "/new"
	in, err := blogInput(c)
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	photo, err := readUpload(c, "photo")
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	res, err := a.Actions.CreateBlog(c.Request().Context(), Credential(c), in, photo)
	return finish(a, c, res, err, "Blog created.", actions.PathDashboardBlogs, back)
}

func (a *App) handleAdminBlogUpdate(c echo.Context) error {
	id := c.Param("id")
	back := actions.PathDashboardBlogs + "/" + id
	in, err := blogInput(c)
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	photo, err := readUpload(c, "photo")
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	res, err := a.Actions.UpdateBlog(c.Request().Context(), Credential(c), id, in, photo, c.FormValue("current_photo"))
	return finish(a, c, res, err, "Blog updated.", actions.PathDashboardBlogs, back)
}

func (a *App) handleAdminBlogDelete(c echo.Context) error {
	res, err := a.Actions.DeleteBlog(c.Request().Context(), Credential(c), c.Param("id"))
	return finish(a, c, res, err, "Blog deleted.", actions.PathDashboardBlogs, actions.PathDashboardBlogs)
}

// Categories

func categoryInput(c echo.Context) (actions.CategoryInput, error) {
	in := actions.CategoryInput{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	if in.Name == "" {
		return in, errMissingFields
	}
	return in, nil
}

func (a *App) handleAdminCategories(c echo.Context) error {
	res, err := a.Actions.ListCategories(c.Request().Context(), Credential(c))
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	p := listPage(a, c, "Categories", res, err)
	return Render(c, views.CategoryList(p, views.CategoryListData{Categories: res.Data}))
}

func (a *App) handleAdminCategoryEdit(c echo.Context) error {
	res, err := a.Actions.GetCategory(c.Request().Context(), Credential(c), c.Param("id"))
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	if msg := failureText(a, c, res, err); msg != "" {
		a.flash(c, toastError, msg)
		return c.Redirect(http.StatusSeeOther, actions.PathDashboardCategories)
	}
	return Render(c, views.CategoryForm(a.page(c, "Edit category", ""), views.CategoryFormData{Category: res.Data}))
}

func (a *App) handleAdminCategoryCreate(c echo.Context) error {
	in, err := categoryInput(c)
	if err != nil {
		return a.rejectForm(c, err, actions.PathDashboardCategories)
	}
	res, err := a.Actions.CreateCategory(c.Request().Context(), Credential(c), in)
	return finish(a, c, res, err, "Category created.", actions.PathDashboardCategories, actions.PathDashboardCategories)
}

func (a *App) handleAdminCategoryUpdate(c echo.Context) error {
	id := c.Param("id")
	back := actions.PathDashboardCategories + "/" + id
	in, err := categoryInput(c)
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	res, err := a.Actions.UpdateCategory(c.Request().Context(), Credential(c), id, in)
	return finish(a, c, res, err, "Category updated.", actions.PathDashboardCategories, back)
}

func (a *App) handleAdminCategoryDelete(c echo.Context) error {
	res, err := a.Actions.DeleteCategory(c.Request().Context(), Credential(c), c.Param("id"))
	return finish(a, c, res, err, "Category deleted.", actions.PathDashboardCategories, actions.PathDashboardCategories)
}

// Projects

func projectInput(c echo.Context) (actions.ProjectInput, error) {
	in := actions.ProjectInput{
		Title:        strings.TrimSpace(c.FormValue("title")),
		Description:  strings.TrimSpace(c.FormValue("description")),
		Technologies: actions.SplitList(c.FormValue("technologies")),
		LiveURL:      strings.TrimSpace(c.FormValue("live_url")),
		GithubURL:    strings.TrimSpace(c.FormValue("github_url")),
		Featured:     c.FormValue("featured") != "",
	}
	if in.Title == "" || in.Description == "" {
		return in, errMissingFields
	}
	return in, nil
}

func (a *App) handleAdminProjects(c echo.Context) error {
	res, err := a.Actions.ListProjects(c.Request().Context(), Credential(c))
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	p := listPage(a, c, "Projects", res, err)
	return Render(c, views.ProjectList(p, views.ProjectListData{Projects: res.Data}))
}

func (a *App) handleAdminProjectNew(c echo.Context) error {
	return Render(c, views.ProjectForm(a.page(c, "New project", ""), views.ProjectFormData{IsNew: true}))
}

func (a *App) handleAdminProjectEdit(c echo.Context) error {
	res, err := a.Actions.GetProject(c.Request().Context(), Credential(c), c.Param("id"))
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	if msg := failureText(a, c, res, err); msg != "" {
		a.flash(c, toastError, msg)
		return c.Redirect(http.StatusSeeOther, actions.PathDashboardProjects)
	}
	return Render(c, views.ProjectForm(a.page(c, "Edit project", ""), views.ProjectFormData{Project: res.Data}))
}

func (a *App) handleAdminProjectCreate(c echo.Context) error {
	back := actions.PathDashboardProjects + "/new"
	in, err := projectInput(c)
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	photo, err := readUpload(c, "photo")
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	res, err := a.Actions.CreateProject(c.Request().Context(), Credential(c), in, photo)
	return finish(a, c, res, err, "Project created.", actions.PathDashboardProjects, back)
}

func (a *App) handleAdminProjectUpdate(c echo.Context) error {
	id := c.Param("id")
	back := actions.PathDashboardProjects + "/" + id
	in, err := projectInput(c)
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	photo, err := readUpload(c, "photo")
	if err != nil {
		return a.rejectForm(c, err, back)
	}
	res, err := a.Actions.UpdateProject(c.Request().Context(), Credential(c), id, in, photo, c.FormValue("current_photo"))
	return finish(a, c, res, err, "Project updated.", actions.PathDashboardProjects, back)
}

func (a *App) handleAdminProjectDelete(c echo.Context) error {
	res, err := a.Actions.DeleteProject(c.Request().Context(), Credential(c), c.Param("id"))
	return finish(a, c, res, err, "Project deleted.", actions.PathDashboardProjects, actions.PathDashboardProjects)
}

// Profile

func (a *App) handleAdminProfile(c echo.Context) error {
	res, err := a.Actions.GetMe(c.Request().Context(), Credential(c))
	if res.Unauthorized() {
		return a.sessionExpired(c)
	}
	a.rememberOwner(res)
	p := listPage(a, c, "Profile", res, err)
	return Render(c, views.Profile(p, views.ProfileData{User: res.Data}))
}

func (a *App) handleAdminProfileUpdate(c echo.Context) error {
	in := actions.ProfileInput{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Phone:   strings.TrimSpace(c.FormValue("phone")),
		Address: strings.TrimSpace(c.FormValue("address")),
		Bio:     strings.TrimSpace(c.FormValue("bio")),
	}
	if in.Name == "" {
		return a.rejectForm(c, errMissingFields, actions.PathDashboardProfile)
	}
	photo, err := readUpload(c, "photo")
	if err != nil {
		return a.rejectForm(c, err, actions.PathDashboardProfile)
	}
	res, err := a.Actions.UpdateProfile(c.Request().Context(), Credential(c), in, photo, c.FormValue("current_photo"))
	a.rememberOwner(res)
	return finish(a, c, res, err, "Profile updated.", actions.PathDashboardProfile, actions.PathDashboardProfile)
}

// rememberOwner keeps the signed-in user's profile for the public home page,
// which has no credential to read /user/me with.
func (a *App) rememberOwner(res actions.Result[actions.User]) {
	if res.Success && res.Data.Name != "" {
		a.owner.Store(&actions.User{Name: res.Data.Name, Bio: res.Data.Bio, Photo: res.Data.Photo})
	}
}

// siteOwner returns the last profile seen by the dashboard, or one built
// from the site configuration.
func (a *App) siteOwner() actions.User {
	if u := a.owner.Load(); u != nil {
		return *u
	}
	return actions.User{Name: a.Config.Author, Bio: a.Config.About}
}

// Messages

func (a *App) handleAdminMessages(c echo.Context) error {
	msgs, err := a.Inbox.List(0)
	if err != nil {
		return err
	}
	return Render(c, views.Messages(a.page(c, "Messages", ""), views.MessagesData{Messages: msgs}))
}

func (a *App) handleAdminMessageDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.ErrNotFound
	}
	if err := a.Inbox.Delete(id); err != nil {
		return err
	}
	a.flash(c, toastSuccess, "Message deleted.")
	return c.Redirect(http.StatusSeeOther, "/dashboard/messages")
}

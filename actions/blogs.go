package actions

import (
	"context"
	"net/http"
	"net/url"
)

// Page paths rendered from upstream data. Mutations revalidate the admin
// listing and the public listing of the affected resource.
const (
	PathHome                = "/"
	PathBlogs               = "/blogs"
	PathProjects            = "/projects"
	PathDashboard           = "/dashboard"
	PathDashboardBlogs      = "/dashboard/blogs"
	PathDashboardCategories = "/dashboard/categories"
	PathDashboardProjects   = "/dashboard/projects"
	PathDashboardProfile    = "/dashboard/profile"
)

var (
	blogPaths     = []string{PathDashboardBlogs, PathBlogs}
	categoryPaths = []string{PathDashboardCategories, PathBlogs}
	projectPaths  = []string{PathDashboardProjects, PathProjects}
	profilePaths  = []string{PathDashboardProfile, PathHome}
)

func blogPath(id string) string {
	return "/blogs/" + url.PathEscape(id)
}

// ListBlogs returns every blog visible to cred.
func (c *Client) ListBlogs(ctx context.Context, cred Credential) (Result[[]Blog], error) {
	r, _ := jsonRequest(http.MethodGet, "/blogs", cred, nil)
	r.ttl, r.tags = c.listTTL, blogPaths
	return call[[]Blog](ctx, c, r)
}

// GetBlog returns a single blog.
func (c *Client) GetBlog(ctx context.Context, cred Credential, id string) (Result[Blog], error) {
	r, _ := jsonRequest(http.MethodGet, blogPath(id), cred, nil)
	r.ttl, r.tags = c.detailTTL, blogPaths
	return call[Blog](ctx, c, r)
}

// CreateBlog uploads a new blog with an optional cover photo.
func (c *Client) CreateBlog(ctx context.Context, cred Credential, in BlogInput, photo *Upload) (Result[Blog], error) {
	in.Tags = CleanList(in.Tags)
	in.DeletePhoto = ""
	r, err := multipartRequest(http.MethodPost, "/blogs", cred, in, photo)
	if err != nil {
		return Result[Blog]{}, err
	}
	return mutate[Blog](ctx, c, r, blogPaths)
}

// UpdateBlog replaces a blog's metadata. When photo is non-nil the blog's
// currentPhoto is sent as deletePhoto so the API can discard the old asset;
// a nil photo keeps the current one.
func (c *Client) UpdateBlog(ctx context.Context, cred Credential, id string, in BlogInput, photo *Upload, currentPhoto string) (Result[Blog], error) {
	in.Tags = CleanList(in.Tags)
	in.DeletePhoto = replacedPhoto(photo, currentPhoto)
	r, err := multipartRequest(http.MethodPatch, blogPath(id), cred, in, photo)
	if err != nil {
		return Result[Blog]{}, err
	}
	return mutate[Blog](ctx, c, r, blogPaths)
}

// DeleteBlog removes a blog.
func (c *Client) DeleteBlog(ctx context.Context, cred Credential, id string) (Result[struct{}], error) {
	r, _ := jsonRequest(http.MethodDelete, blogPath(id), cred, nil)
	r.discard = true
	return mutate[struct{}](ctx, c, r, blogPaths)
}

func replacedPhoto(photo *Upload, current string) string {
	if photo == nil {
		return ""
	}
	return current
}

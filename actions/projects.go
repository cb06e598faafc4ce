package actions

import (
	"context"
	"net/http"
	"net/url"
)

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

// ListProjects returns all portfolio projects.
func (c *Client) ListProjects(ctx context.Context, cred Credential) (Result[[]Project], error) {
	r, _ := jsonRequest(http.MethodGet, "/projects", cred, nil)
	r.ttl, r.tags = c.listTTL, projectPaths
	return call[[]Project](ctx, c, r)
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, cred Credential, id string) (Result[Project], error) {
	r, _ := jsonRequest(http.MethodGet, projectPath(id), cred, nil)
	r.ttl, r.tags = c.detailTTL, projectPaths
	return call[Project](ctx, c, r)
}

// CreateProject uploads a new project with an optional screenshot.
func (c *Client) CreateProject(ctx context.Context, cred Credential, in ProjectInput, photo *Upload) (Result[Project], error) {
	in.Technologies = CleanList(in.Technologies)
	in.DeletePhoto = ""
	r, err := multipartRequest(http.MethodPost, "/projects", cred, in, photo)
	if err != nil {
		return Result[Project]{}, err
	}
	return mutate[Project](ctx, c, r, projectPaths)
}

// UpdateProject replaces a project's metadata. See UpdateBlog for how photo
// and currentPhoto interact.
func (c *Client) UpdateProject(ctx context.Context, cred Credential, id string, in ProjectInput, photo *Upload, currentPhoto string) (Result[Project], error) {
	in.Technologies = CleanList(in.Technologies)
	in.DeletePhoto = replacedPhoto(photo, currentPhoto)
	r, err := multipartRequest(http.MethodPatch, projectPath(id), cred, in, photo)
	if err != nil {
		return Result[Project]{}, err
	}
	return mutate[Project](ctx, c, r, projectPaths)
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, cred Credential, id string) (Result[struct{}], error) {
	r, _ := jsonRequest(http.MethodDelete, projectPath(id), cred, nil)
	r.discard = true
	return mutate[struct{}](ctx, c, r, projectPaths)
}

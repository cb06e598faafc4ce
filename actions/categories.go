package actions

import (
	"context"
	"net/http"
	"net/url"
)

func categoryPath(id string) string {
	return "/blog-categories/" + url.PathEscape(id)
}

// ListCategories returns all blog categories.
func (c *Client) ListCategories(ctx context.Context, cred Credential) (Result[[]Category], error) {
	r, _ := jsonRequest(http.MethodGet, "/blog-categories", cred, nil)
	r.ttl, r.tags = c.listTTL, categoryPaths
	return call[[]Category](ctx, c, r)
}

// GetCategory returns a single category.
func (c *Client) GetCategory(ctx context.Context, cred Credential, id string) (Result[Category], error) {
	r, _ := jsonRequest(http.MethodGet, categoryPath(id), cred, nil)
	r.ttl, r.tags = c.detailTTL, categoryPaths
	return call[Category](ctx, c, r)
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, cred Credential, in CategoryInput) (Result[Category], error) {
	r, err := jsonRequest(http.MethodPost, "/blog-categories", cred, in)
	if err != nil {
		return Result[Category]{}, err
	}
	return mutate[Category](ctx, c, r, categoryPaths)
}

// UpdateCategory renames or re-describes a category.
func (c *Client) UpdateCategory(ctx context.Context, cred Credential, id string, in CategoryInput) (Result[Category], error) {
	r, err := jsonRequest(http.MethodPatch, categoryPath(id), cred, in)
	if err != nil {
		return Result[Category]{}, err
	}
	return mutate[Category](ctx, c, r, categoryPaths)
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, cred Credential, id string) (Result[struct{}], error) {
	r, _ := jsonRequest(http.MethodDelete, categoryPath(id), cred, nil)
	r.discard = true
	return mutate[struct{}](ctx, c, r, categoryPaths)
}

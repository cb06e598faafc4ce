package actions

import (
	"context"
	"net/http"
)

// GetMe returns the profile of the credential's owner.
func (c *Client) GetMe(ctx context.Context, cred Credential) (Result[User], error) {
	r, _ := jsonRequest(http.MethodGet, "/user/me", cred, nil)
	r.ttl, r.tags = c.detailTTL, profilePaths
	return call[User](ctx, c, r)
}

// UpdateProfile changes the profile and optionally its photo.
func (c *Client) UpdateProfile(ctx context.Context, cred Credential, in ProfileInput, photo *Upload, currentPhoto string) (Result[User], error) {
	in.DeletePhoto = replacedPhoto(photo, currentPhoto)
	r, err := multipartRequest(http.MethodPatch, "/user/profile", cred, in, photo)
	if err != nil {
		return Result[User]{}, err
	}
	return mutate[User](ctx, c, r, profilePaths)
}

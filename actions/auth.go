package actions

import (
	"context"
	"net/http"
)

// NetworkErrorMessage is reported when a login request fails below HTTP.
const NetworkErrorMessage = "Network error. Please try again."

// Login exchanges credentials for a session token. No cookie is forwarded.
// Unlike the other actions it never returns an error: transport and decoding
// failures are folded into a KindNetwork result, and upstream rejections carry
// the API's message when one is given.
func (c *Client) Login(ctx context.Context, creds Credentials) Result[Session] {
	r, err := jsonRequest(http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return Err[Session](KindNetwork, NetworkErrorMessage, nil)
	}
	res, err := call[Session](ctx, c, r)
	if err != nil {
		c.log.Error().Err(err).Msg("login request failed")
		return Err[Session](KindNetwork, NetworkErrorMessage, nil)
	}
	if !res.Success {
		res.Error = res.Message()
		return res
	}
	if res.Data.AccessToken == "" {
		return Err[Session](KindHTTP, "Login response did not include an access token", nil)
	}
	return res
}

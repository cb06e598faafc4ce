// Package actions bridges dashboard and public page handlers to the upstream
// REST API. Every operation forwards the caller's credential as the
// accessToken cookie and reports upstream HTTP failures as a Result rather
// than an error. Only transport and decoding failures are returned as errors.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// CookieName is the session cookie forwarded to the upstream API.
const CookieName = "accessToken"

const (
	DefaultListTTL   = 60 * time.Second
	DefaultDetailTTL = time.Hour
)

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Cache stores successful upstream read bodies. Entries are tagged with the
// page paths that render them so a Revalidator can drop them together.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte, ttl time.Duration, tags ...string)
}

// Revalidator is told which page paths are stale after a mutation.
type Revalidator interface {
	Revalidate(paths ...string)
}

// Client calls the upstream REST API.
type Client struct {
	baseURL     string
	http        HTTPDoer
	cache       Cache
	revalidator Revalidator
	log         zerolog.Logger
	listTTL     time.Duration
	detailTTL   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h HTTPDoer) Option {
	return func(c *Client) { c.http = h }
}

// WithCache enables caching of list and detail reads.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithRevalidator receives the stale page paths after each successful mutation.
func WithRevalidator(r Revalidator) Option {
	return func(c *Client) { c.revalidator = r }
}

// WithLogger sets the logger used for upstream failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTTL sets how long list and detail reads may be served from the cache.
func WithTTL(list, detail time.Duration) Option {
	return func(c *Client) {
		c.listTTL = list
		c.detailTTL = detail
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      http.DefaultClient,
		log:       zerolog.Nop(),
		listTTL:   DefaultListTTL,
		detailTTL: DefaultDetailTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the upstream API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	path        string
	cred        Credential
	body        []byte
	contentType string

	// ttl > 0 makes a GET cacheable under tags.
	ttl  time.Duration
	tags []string

	// discard skips decoding the payload of a successful response.
	discard bool
}

func jsonRequest(method, path string, cred Credential, payload any) (request, error) {
	r := request{method: method, path: path, cred: cred, contentType: mimeJSON}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return request{}, fmt.Errorf("actions: encode %s body: %w", path, err)
		}
		r.body = b
	}
	return r, nil
}

const mimeJSON = "application/json"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartRequest places meta as a JSON "data" field next to an optional
// "photo" file part.
func multipartRequest(method, path string, cred Credential, meta any, photo *Upload) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return request{}, fmt.Errorf("actions: encode %s data field: %w", path, err)
	}
	if err := w.WriteField("data", string(metaJSON)); err != nil {
		return request{}, fmt.Errorf("actions: write data field: %w", err)
	}

	if photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, quoteEscaper.Replace(photo.Filename)))
		ct := photo.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("actions: create photo part: %w", err)
		}
		if _, err := part.Write(photo.Data); err != nil {
			return request{}, fmt.Errorf("actions: write photo part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("actions: finalize multipart: %w", err)
	}
	return request{
		method:      method,
		path:        path,
		cred:        cred,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, nil
}

func (c *Client) send(ctx context.Context, r request) (int, []byte, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("actions: build %s %s: %w", r.method, r.path, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.cred != "" {
		req.Header.Set("Cookie", CookieName+"="+string(r.cred))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("actions: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("actions: read %s %s: %w", r.method, r.path, err)
	}
	return resp.StatusCode, b, nil
}

func (r request) cacheKey() string {
	return r.method + " " + r.path + "\x00" + string(r.cred)
}

func call[T any](ctx context.Context, c *Client, r request) (Result[T], error) {
	cacheable := c.cache != nil && r.method == http.MethodGet && r.ttl > 0
	if cacheable {
		if body, ok := c.cache.Get(r.cacheKey()); ok {
			return decode[T](body)
		}
	}

	status, body, err := c.send(ctx, r)
	if err != nil {
		return Result[T]{}, err
	}
	if status < 200 || status > 299 {
		c.log.Warn().
			Str("method", r.method).
			Str("path", r.path).
			Int("status", status).
			Msg("upstream request failed")
		return HTTPError[T](status, parseDetails(body)), nil
	}
	if r.discard {
		var zero T
		return Ok(zero), nil
	}

	res, err := decode[T](body)
	if err != nil {
		return Result[T]{}, fmt.Errorf("actions: %s %s: %w", r.method, r.path, err)
	}
	if cacheable {
		c.cache.Set(r.cacheKey(), body, r.ttl, r.tags...)
	}
	return res, nil
}

// mutate runs r and, on success, revalidates the page paths in stale.
func mutate[T any](ctx context.Context, c *Client, r request, stale []string) (Result[T], error) {
	res, err := call[T](ctx, c, r)
	if err == nil && res.Success && c.revalidator != nil {
		c.revalidator.Revalidate(stale...)
	}
	return res, err
}

func decode[T any](body []byte) (Result[T], error) {
	var env struct {
		Data T `json:"data"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Ok(env.Data), nil
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Result[T]{}, fmt.Errorf("decode response: %w", err)
	}
	return Ok(env.Data), nil
}

// parseDetails returns the decoded error body, or nil when it is not JSON.
func parseDetails(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var details any
	if err := json.Unmarshal(body, &details); err != nil {
		return nil
	}
	return details
}

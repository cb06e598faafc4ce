package portfolio

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/chat"
	"github.com/eringen/portfolio/mail"
)

// SiteConfig holds all configuration for the portfolio server.
type SiteConfig struct {
	Name        string   // Site name (default "Portfolio")
	URL         string   // Canonical URL (default "http://localhost:3000")
	Description string   // Site description for RSS and meta tags
	Author      string   // Site owner, used in JSON-LD and the chat context
	Tagline     string   // One-line role shown in the hero
	About       string   // Fallback about text when the upstream profile has no bio
	Skills      []string // Skills listed on the home page

	Addr      string // Listen address (default ":3000")
	StaticDir string // User-owned static assets served under /public (default "public")

	APIBaseURL string        // Required: upstream REST API base URL
	ListTTL    time.Duration // Cache TTL for list reads (default 60s)
	DetailTTL  time.Duration // Cache TTL for detail reads (default 1h)

	SessionSecret string // Required: flash-message session secret
	CookieSecure  bool   // Set true for HTTPS
	ShowDrafts    bool   // List blogs whose published flag is false or absent

	ContentDir string // Markdown notes (default "content")
	PhotosPath string // Gallery JSON file (default "data/photos.json")
	InboxPath  string // Contact inbox SQLite path (default "data/inbox.db")

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ContactTo    string // Recipient of contact mail (default SMTPUser)

	OpenRouterKey   string
	OpenRouterModel string
	GeminiKey       string
	GeminiModel     string

	LogLevel  string // zerolog level (default "info")
	LogPretty bool   // Console output instead of JSON
}

// DefaultConfig returns a SiteConfig with every default applied.
func DefaultConfig() SiteConfig {
	var c SiteConfig
	c.setDefaults()
	return c
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.ListTTL == 0 {
		c.ListTTL = actions.DefaultListTTL
	}
	if c.DetailTTL == 0 {
		c.DetailTTL = actions.DefaultDetailTTL
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.PhotosPath == "" {
		c.PhotosPath = "data/photos.json"
	}
	if c.InboxPath == "" {
		c.InboxPath = "data/inbox.db"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks required settings and normalizes URLs.
func (c *SiteConfig) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("portfolio: SessionSecret is required")
	}
	if c.APIBaseURL == "" {
		return errors.New("portfolio: APIBaseURL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("portfolio: APIBaseURL must be an absolute URL")
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	c.URL = strings.TrimRight(c.URL, "/")
	if c.ListTTL < 0 || c.DetailTTL < 0 {
		return errors.New("portfolio: cache TTLs must not be negative")
	}
	return nil
}

func (c SiteConfig) mailConfig() mail.Config {
	return mail.Config{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUser,
		Password: c.SMTPPassword,
		To:       c.ContactTo,
	}
}

func (c SiteConfig) chatProfile() chat.Profile {
	return chat.Profile{
		Name:   c.Author,
		Title:  c.Tagline,
		About:  c.About,
		Skills: c.Skills,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithHTTPClient sets the client used for upstream API calls.
func WithHTTPClient(h actions.HTTPDoer) Option {
	return func(a *App) {
		a.httpClient = h
	}
}

// WithLogger replaces the logger built from LogLevel and LogPretty.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
		a.customLogger = true
	}
}

// WithChatProvider registers p under name. The built-in names are
// "openrouter" (served at /api/chat) and "gemini" (/api/chat/gemini).
func WithChatProvider(name string, p chat.Provider) Option {
	return func(a *App) {
		a.chat[name] = p
	}
}

// WithMailer replaces the SMTP sender used by the contact endpoint.
func WithMailer(s mail.Sender) Option {
	return func(a *App) {
		a.mailer = s
	}
}

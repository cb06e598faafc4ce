// Package portfolio serves a personal portfolio site: public pages for the
// owner's profile, projects, blog and notes, and a dashboard that edits the
// upstream REST API on the owner's behalf. The upstream API is the sole
// authority on sessions; this server only forwards the accessToken cookie.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/portfolio/actions"
	"github.com/eringen/portfolio/chat"
	"github.com/eringen/portfolio/content"
	"github.com/eringen/portfolio/inbox"
	"github.com/eringen/portfolio/mail"
	"github.com/eringen/portfolio/photos"
)

// Paths owned by this server rather than rendered from upstream data.
const (
	PathLogin        = "/login"
	PathLogout       = "/logout"
	PathProfile      = "/profile"
	PathUnauthorized = "/unauthorized"
)

const (
	providerOpenRouter = "openrouter"
	providerGemini     = "gemini"
)

// App is the central application. It wires together the action client,
// caches, stores, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Log     zerolog.Logger
	Actions *actions.Client
	Cache   *PageCache
	Photos  *photos.Store
	Inbox   *inbox.Store
	Library *content.Library

	guard          GuardConfig
	owner          atomic.Pointer[actions.User]
	httpClient     actions.HTTPDoer
	mailer         mail.Sender
	chat           map[string]chat.Provider
	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
	chatLimiter    *RateLimiter
	customRoutes   []func(*App)
	customLogger   bool
	initialized    bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Log:    zerolog.Nop(),
		guard:  DefaultGuardConfig(),
		chat:   make(map[string]chat.Provider),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, opens the stores and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}
	if !a.customLogger {
		log, err := NewLogger(os.Stderr, a.Config.LogLevel, a.Config.LogPretty)
		if err != nil {
			return err
		}
		a.Log = log
	}

	store, err := inbox.NewStore(a.Config.InboxPath)
	if err != nil {
		return fmt.Errorf("portfolio: init inbox: %w", err)
	}
	a.Inbox = store

	a.Library = content.NewLibrary(a.Config.ContentDir)
	if err := a.Library.Load(); err != nil {
		a.Log.Warn().Err(err).Str("dir", a.Config.ContentDir).Msg("content library not loaded")
	}

	a.Photos = photos.NewStore(a.Config.PhotosPath)
	a.Cache = NewPageCache()

	clientOpts := []actions.Option{
		actions.WithCache(a.Cache),
		actions.WithRevalidator(a.Cache),
		actions.WithLogger(a.Log.With().Str("component", "actions").Logger()),
		actions.WithTTL(a.Config.ListTTL, a.Config.DetailTTL),
	}
	if a.httpClient != nil {
		clientOpts = append(clientOpts, actions.WithHTTPClient(a.httpClient))
	}
	a.Actions = actions.New(a.Config.APIBaseURL, clientOpts...)

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.contactLimiter = NewRateLimiter(3, 10*time.Minute)
	a.chatLimiter = NewRateLimiter(20, time.Minute)

	if a.mailer == nil && a.Config.SMTPHost != "" {
		a.mailer = mail.NewSMTP(a.Config.mailConfig())
	}
	if err := a.initChat(ctx); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

func (a *App) initChat(ctx context.Context) error {
	if _, ok := a.chat[providerOpenRouter]; !ok && a.Config.OpenRouterKey != "" {
		a.chat[providerOpenRouter] = chat.NewOpenRouter(chat.OpenRouterConfig{
			APIKey:   a.Config.OpenRouterKey,
			Model:    a.Config.OpenRouterModel,
			SiteURL:  a.Config.URL,
			SiteName: a.Config.Name,
		}, nil)
	}
	if _, ok := a.chat[providerGemini]; !ok && a.Config.GeminiKey != "" {
		g, err := chat.NewGemini(ctx, a.Config.GeminiKey, a.Config.GeminiModel)
		if err != nil {
			return fmt.Errorf("portfolio: init gemini: %w", err)
		}
		a.chat[providerGemini] = g
	}
	return nil
}

// Start initializes the app and serves until ctx is cancelled, then shuts
// the server down gracefully. The content watcher runs alongside the server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info().Str("addr", a.Config.Addr).Msg("listening")
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	})

	if info, err := os.Stat(a.Config.ContentDir); err == nil && info.IsDir() {
		g.Go(func() error {
			if err := a.Library.Watch(gctx, 250*time.Millisecond, a.Log); err != nil {
				a.Log.Warn().Err(err).Msg("content watcher stopped")
			}
			return nil
		})
	}

	return g.Wait()
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets are served under /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/chat.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/blogs", a.handleBlogs)
	e.GET("/blogs/:id", a.handleBlog)
	e.GET("/projects", a.handleProjects)
	e.GET("/projects/:id", a.handleProject)
	e.GET("/notes", a.handleNotes)
	e.GET("/notes/:slug", a.handleNote)
	e.GET("/gallery", a.handleGallery)

	// Session routes
	e.GET(PathLogin, a.handleLoginPage)
	e.POST(PathLogin, a.handleLogin)
	e.POST(PathLogout, a.handleLogout)
	e.GET(PathProfile, a.handleProfileRedirect)
	e.GET(PathUnauthorized, a.handleUnauthorized)

	// Dashboard routes; the route guard has already required the cookie.
	d := e.Group(actions.PathDashboard)
	d.GET("", a.handleDashboard)
	d.GET("/blogs", a.handleAdminBlogs)
	d.GET("/blogs/new", a.handleAdminBlogNew)
	d.POST("/blogs", a.handleAdminBlogCreate)
	d.GET("/blogs/:id", a.handleAdminBlogEdit)
	d.POST("/blogs/:id", a.handleAdminBlogUpdate)
	d.POST("/blogs/:id/delete", a.handleAdminBlogDelete)
	d.GET("/categories", a.handleAdminCategories)
	d.POST("/categories", a.handleAdminCategoryCreate)
	d.GET("/categories/:id", a.handleAdminCategoryEdit)
	d.POST("/categories/:id", a.handleAdminCategoryUpdate)
	d.POST("/categories/:id/delete", a.handleAdminCategoryDelete)
	d.GET("/projects", a.handleAdminProjects)
	d.GET("/projects/new", a.handleAdminProjectNew)
	d.POST("/projects", a.handleAdminProjectCreate)
	d.GET("/projects/:id", a.handleAdminProjectEdit)
	d.POST("/projects/:id", a.handleAdminProjectUpdate)
	d.POST("/projects/:id/delete", a.handleAdminProjectDelete)
	d.GET("/profile", a.handleAdminProfile)
	d.POST("/profile", a.handleAdminProfileUpdate)
	d.GET("/gallery", a.handleAdminGallery)
	d.POST("/gallery", a.handleImageUpload)
	d.GET("/messages", a.handleAdminMessages)
	d.POST("/messages/:id/delete", a.handleAdminMessageDelete)

	// JSON API
	api := e.Group("/api")
	api.POST("/contact", a.handleContact)
	api.POST("/chat", a.handleChat(providerOpenRouter))
	api.POST("/chat/gemini", a.handleChat(providerGemini))
	api.GET("/photos", a.handlePhotoList)
	api.POST("/photos", a.handlePhotoAppend)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	for _, l := range []*RateLimiter{a.loginLimiter, a.contactLimiter, a.chatLimiter} {
		if l != nil {
			l.Stop()
		}
	}
	if a.Inbox != nil {
		return a.Inbox.Close()
	}
	return nil
}

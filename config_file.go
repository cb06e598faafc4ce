package portfolio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors SiteConfig but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Addr          string `toml:"addr"`
	StaticDir     string `toml:"static_dir"`
	APIBaseURL    string `toml:"api_url"`
	ListTTL       string `toml:"list_ttl"`
	DetailTTL     string `toml:"detail_ttl"`
	SessionSecret string `toml:"session_secret"`
	CookieSecure  *bool  `toml:"cookie_secure"`
	ShowDrafts    *bool  `toml:"show_drafts"`
	ContentDir    string `toml:"content_dir"`
	PhotosPath    string `toml:"photos_path"`
	InboxPath     string `toml:"inbox_path"`
	LogLevel      string `toml:"log_level"`
	LogPretty     *bool  `toml:"log_pretty"`

	Site FileSite `toml:"site"`
	SMTP FileSMTP `toml:"smtp"`
	Chat FileChat `toml:"chat"`
}

// FileSite is the [site] table.
type FileSite struct {
	Name        string   `toml:"name"`
	URL         string   `toml:"url"`
	Description string   `toml:"description"`
	Author      string   `toml:"author"`
	Tagline     string   `toml:"tagline"`
	About       string   `toml:"about"`
	Skills      []string `toml:"skills"`
}

// FileSMTP is the [smtp] table.
type FileSMTP struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	To       string `toml:"to"`
}

// FileChat is the [chat] table.
type FileChat struct {
	OpenRouterKey   string `toml:"openrouter_key"`
	OpenRouterModel string `toml:"openrouter_model"`
	GeminiKey       string `toml:"gemini_key"`
	GeminiModel     string `toml:"gemini_model"`
}

// DefaultConfigPath is read when no --config flag is given and the file exists.
const DefaultConfigPath = "portfolio.toml"

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ApplyFileConfig applies configuration from a file to cfg.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *SiteConfig, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("addr", fc.Addr, &cfg.Addr)
	s.setString("static-dir", fc.StaticDir, &cfg.StaticDir)
	s.setString("api-url", fc.APIBaseURL, &cfg.APIBaseURL)
	s.setString("session-secret", fc.SessionSecret, &cfg.SessionSecret)
	s.setString("content-dir", fc.ContentDir, &cfg.ContentDir)
	s.setString("photos-path", fc.PhotosPath, &cfg.PhotosPath)
	s.setString("inbox-path", fc.InboxPath, &cfg.InboxPath)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setBool("cookie-secure", fc.CookieSecure, &cfg.CookieSecure)
	s.setBool("show-drafts", fc.ShowDrafts, &cfg.ShowDrafts)
	s.setBool("log-pretty", fc.LogPretty, &cfg.LogPretty)

	if err := s.setDuration("list-ttl", fc.ListTTL, &cfg.ListTTL); err != nil {
		return err
	}
	if err := s.setDuration("detail-ttl", fc.DetailTTL, &cfg.DetailTTL); err != nil {
		return err
	}

	s.setString("site-name", fc.Site.Name, &cfg.Name)
	s.setString("site-url", fc.Site.URL, &cfg.URL)
	s.setString("", fc.Site.Description, &cfg.Description)
	s.setString("", fc.Site.Author, &cfg.Author)
	s.setString("", fc.Site.Tagline, &cfg.Tagline)
	s.setString("", fc.Site.About, &cfg.About)
	if len(fc.Site.Skills) > 0 {
		cfg.Skills = fc.Site.Skills
	}

	s.setString("", fc.SMTP.Host, &cfg.SMTPHost)
	s.setInt("", fc.SMTP.Port, &cfg.SMTPPort)
	s.setString("", fc.SMTP.User, &cfg.SMTPUser)
	s.setString("", fc.SMTP.Password, &cfg.SMTPPassword)
	s.setString("", fc.SMTP.To, &cfg.ContactTo)

	s.setString("", fc.Chat.OpenRouterKey, &cfg.OpenRouterKey)
	s.setString("", fc.Chat.OpenRouterModel, &cfg.OpenRouterModel)
	s.setString("", fc.Chat.GeminiKey, &cfg.GeminiKey)
	s.setString("", fc.Chat.GeminiModel, &cfg.GeminiModel)
	return nil
}

// ApplyEnvConfig applies PORTFOLIO_* environment variables to cfg.
// They override file config but are overridden by flags (checked via changed).
func ApplyEnvConfig(cfg *SiteConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("addr", os.Getenv("PORTFOLIO_ADDR"), &cfg.Addr)
	s.setString("static-dir", os.Getenv("PORTFOLIO_STATIC_DIR"), &cfg.StaticDir)
	s.setString("api-url", EnvOr("PORTFOLIO_API_URL", os.Getenv("API_BASE_URL")), &cfg.APIBaseURL)
	s.setString("session-secret", os.Getenv("PORTFOLIO_SESSION_SECRET"), &cfg.SessionSecret)
	s.setString("content-dir", os.Getenv("PORTFOLIO_CONTENT_DIR"), &cfg.ContentDir)
	s.setString("photos-path", os.Getenv("PORTFOLIO_PHOTOS_PATH"), &cfg.PhotosPath)
	s.setString("inbox-path", os.Getenv("PORTFOLIO_INBOX_PATH"), &cfg.InboxPath)
	s.setString("log-level", os.Getenv("PORTFOLIO_LOG_LEVEL"), &cfg.LogLevel)
	s.setBoolFromString("cookie-secure", os.Getenv("PORTFOLIO_COOKIE_SECURE"), &cfg.CookieSecure)
	s.setBoolFromString("show-drafts", os.Getenv("PORTFOLIO_SHOW_DRAFTS"), &cfg.ShowDrafts)
	s.setBoolFromString("log-pretty", os.Getenv("PORTFOLIO_LOG_PRETTY"), &cfg.LogPretty)

	if err := s.setDuration("list-ttl", os.Getenv("PORTFOLIO_LIST_TTL"), &cfg.ListTTL); err != nil {
		return err
	}
	if err := s.setDuration("detail-ttl", os.Getenv("PORTFOLIO_DETAIL_TTL"), &cfg.DetailTTL); err != nil {
		return err
	}

	s.setString("site-name", os.Getenv("PORTFOLIO_SITE_NAME"), &cfg.Name)
	s.setString("site-url", os.Getenv("PORTFOLIO_SITE_URL"), &cfg.URL)
	s.setString("", os.Getenv("PORTFOLIO_SITE_AUTHOR"), &cfg.Author)
	if v := os.Getenv("PORTFOLIO_SITE_SKILLS"); v != "" {
		cfg.Skills = splitComma(v)
	}

	s.setString("", os.Getenv("PORTFOLIO_SMTP_HOST"), &cfg.SMTPHost)
	if err := s.setIntFromString("", os.Getenv("PORTFOLIO_SMTP_PORT"), &cfg.SMTPPort); err != nil {
		return err
	}
	s.setString("", os.Getenv("PORTFOLIO_SMTP_USER"), &cfg.SMTPUser)
	s.setString("", os.Getenv("PORTFOLIO_SMTP_PASSWORD"), &cfg.SMTPPassword)
	s.setString("", os.Getenv("PORTFOLIO_CONTACT_TO"), &cfg.ContactTo)

	s.setString("", EnvOr("PORTFOLIO_OPENROUTER_KEY", os.Getenv("OPENROUTER_API_KEY")), &cfg.OpenRouterKey)
	s.setString("", os.Getenv("PORTFOLIO_OPENROUTER_MODEL"), &cfg.OpenRouterModel)
	s.setString("", EnvOr("PORTFOLIO_GEMINI_KEY", os.Getenv("GEMINI_API_KEY")), &cfg.GeminiKey)
	s.setString("", os.Getenv("PORTFOLIO_GEMINI_MODEL"), &cfg.GeminiModel)
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitComma(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
// Settings without a flag use the empty name, which is never marked changed.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if positive.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

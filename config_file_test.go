package portfolio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %v, want :3000", cfg.Addr)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %v, want 587", cfg.SMTPPort)
	}
	if cfg.ListTTL <= 0 || cfg.DetailTTL <= cfg.ListTTL {
		t.Errorf("TTLs = %v/%v, want positive with detail > list", cfg.ListTTL, cfg.DetailTTL)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		config     SiteConfig
		wantErr    bool
		wantAPIURL string
	}{
		{
			name:       "valid",
			config:     SiteConfig{SessionSecret: "s", APIBaseURL: "https://api.example.com/"},
			wantAPIURL: "https://api.example.com",
		},
		{
			name:    "missing secret",
			config:  SiteConfig{APIBaseURL: "https://api.example.com"},
			wantErr: true,
		},
		{
			name:    "missing api url",
			config:  SiteConfig{SessionSecret: "s"},
			wantErr: true,
		},
		{
			name:    "relative api url",
			config:  SiteConfig{SessionSecret: "s", APIBaseURL: "/api"},
			wantErr: true,
		},
		{
			name:    "negative ttl",
			config:  SiteConfig{SessionSecret: "s", APIBaseURL: "http://x", ListTTL: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.config.APIBaseURL != tt.wantAPIURL {
				t.Errorf("APIBaseURL = %v, want %v", tt.config.APIBaseURL, tt.wantAPIURL)
			}
		})
	}
}

const sampleTOML = `
addr = ":8080"
api_url = "https://api.example.com"
session_secret = "file-secret"
list_ttl = "30s"
cookie_secure = true
show_drafts = true

[site]
name = "Sam's Portfolio"
author = "Sam Rivera"
skills = ["Go", "TypeScript"]

[smtp]
host = "smtp.gmail.com"
port = 465

[chat]
gemini_key = "g-key"
`

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "portfolio.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestApplyFileConfig(t *testing.T) {
	fc, err := LoadFileConfig(writeTOML(t, sampleTOML))
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.Addr != ":8080" || cfg.APIBaseURL != "https://api.example.com" || cfg.SessionSecret != "file-secret" {
		t.Errorf("top-level keys not applied: %+v", cfg)
	}
	if cfg.ListTTL != 30*time.Second {
		t.Errorf("ListTTL = %v, want 30s", cfg.ListTTL)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure not applied")
	}
	if !cfg.ShowDrafts {
		t.Error("ShowDrafts not applied")
	}
	if cfg.Name != "Sam's Portfolio" || cfg.Author != "Sam Rivera" {
		t.Errorf("site table not applied: %q %q", cfg.Name, cfg.Author)
	}
	if diff := cmp.Diff([]string{"Go", "TypeScript"}, cfg.Skills); diff != "" {
		t.Errorf("Skills mismatch (-want +got):\n%s", diff)
	}
	if cfg.SMTPHost != "smtp.gmail.com" || cfg.SMTPPort != 465 {
		t.Errorf("smtp table not applied: %q %d", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.GeminiKey != "g-key" {
		t.Errorf("GeminiKey = %q", cfg.GeminiKey)
	}
	if cfg.StaticDir != "public" {
		t.Errorf("unset key overwrote default: StaticDir = %q", cfg.StaticDir)
	}
}

func TestApplyFileConfigRespectsChangedFlags(t *testing.T) {
	fc, err := LoadFileConfig(writeTOML(t, sampleTOML))
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Addr = ":9999"
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{"addr": true}); err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("flag value overwritten by file: %q", cfg.Addr)
	}
}

func TestApplyFileConfigBadDuration(t *testing.T) {
	fc, err := LoadFileConfig(writeTOML(t, `list_ttl = "soon"`))
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadFileConfigInvalidTOML(t *testing.T) {
	if _, err := LoadFileConfig(writeTOML(t, "addr = ")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("PORTFOLIO_ADDR", ":7000")
	t.Setenv("API_BASE_URL", "https://fallback.example.com")
	t.Setenv("PORTFOLIO_LOG_PRETTY", "true")
	t.Setenv("PORTFOLIO_SITE_SKILLS", "Go, SQL ,")
	t.Setenv("PORTFOLIO_SMTP_PORT", "2525")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{"addr": true}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.Addr != ":3000" {
		t.Errorf("changed flag overwritten by env: %q", cfg.Addr)
	}
	if cfg.APIBaseURL != "https://fallback.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if !cfg.LogPretty {
		t.Error("LogPretty not applied")
	}
	if diff := cmp.Diff([]string{"Go", "SQL"}, cfg.Skills); diff != "" {
		t.Errorf("Skills mismatch (-want +got):\n%s", diff)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("SMTPPort = %d", cfg.SMTPPort)
	}
	if cfg.OpenRouterKey != "or-key" {
		t.Errorf("OpenRouterKey = %q", cfg.OpenRouterKey)
	}
}

func TestApplyEnvConfigBadPort(t *testing.T) {
	t.Setenv("PORTFOLIO_SMTP_PORT", "many")
	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/eringen/portfolio"
)

// version is set at build time via ldflags.
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Personal portfolio site backed by a REST API",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the portfolio version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio %s %s/%s\n", getVersion(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newServeCmd() *cobra.Command {
	cfg := portfolio.DefaultConfig()
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site until interrupted",
		Example: `  portfolio serve --api-url https://api.example.com --session-secret $SECRET
  portfolio serve --config ./portfolio.toml --log-pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			file := cfgPath
			if file == "" {
				file = portfolio.DefaultConfigPath
			}
			if portfolio.FileExists(file) {
				fc, err := portfolio.LoadFileConfig(file)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := portfolio.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}
			if err := portfolio.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := portfolio.New(cfg)
			defer app.Close()
			return app.Start(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "path to TOML config (default ./"+portfolio.DefaultConfigPath+" when present)")
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	f.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "static assets served under /public")
	f.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "upstream REST API base URL")
	f.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "secret for the flash-message session")
	f.StringVar(&cfg.ContentDir, "content-dir", cfg.ContentDir, "markdown notes directory")
	f.StringVar(&cfg.PhotosPath, "photos-path", cfg.PhotosPath, "gallery JSON file")
	f.StringVar(&cfg.InboxPath, "inbox-path", cfg.InboxPath, "contact inbox SQLite database")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.BoolVar(&cfg.CookieSecure, "cookie-secure", cfg.CookieSecure, "mark cookies Secure (HTTPS)")
	f.BoolVar(&cfg.ShowDrafts, "show-drafts", cfg.ShowDrafts, "list blogs without published=true on public pages")
	f.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "human-readable console logs")
	f.DurationVar(&cfg.ListTTL, "list-ttl", cfg.ListTTL, "cache lifetime of upstream list reads")
	f.DurationVar(&cfg.DetailTTL, "detail-ttl", cfg.DetailTTL, "cache lifetime of upstream detail reads")
	f.StringVar(&cfg.Name, "site-name", cfg.Name, "site name")
	f.StringVar(&cfg.URL, "site-url", cfg.URL, "canonical site URL")
	return cmd
}

// Package cli implements the odex command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odex-dev/odex/pkg/buildinfo"
	"github.com/odex-dev/odex/pkg/cache"
	"github.com/odex-dev/odex/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "odex"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "odex",
		Short:        "Odex explores OData services as diagrams and queries",
		Long:         `Odex is a CLI tool for exploring OData services: it fetches $metadata, draws entity relationship diagrams with computed connection points, runs ad-hoc queries, and generates mock data.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.mockCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.servicesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/odex/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the configuration directory (~/.config/odex/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}

// resolveService turns a service argument into a URL, looking up profiles
// first: "trippin" resolves through profiles.toml, anything with a dot or
// scheme is treated as a URL directly.
func resolveService(arg string) (string, error) {
	if strings.Contains(arg, "://") || strings.Contains(arg, ".") {
		return arg, nil
	}

	profiles, err := loadProfiles()
	if err != nil {
		return "", err
	}
	if p, ok := profiles.Lookup(arg); ok {
		return p.URL, nil
	}
	return arg, nil
}

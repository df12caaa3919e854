// Package cli implements the stirlingforge command-line interface.
//
// This package provides commands for generating parametric engine designs,
// inspecting the derived-geometry formula graph, managing machine and
// material catalogs, browsing stored design snapshots, and serving the
// pipeline over HTTP. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Run the full design pipeline and report the result
//   - graph: Render the derived-geometry formula graph
//   - catalog: Seed and inspect machine/material catalogs
//   - designs: List, show, export, and browse stored snapshots
//   - serve: Expose the pipeline as an HTTP service
//   - cache: Manage the stage result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mvollan/stirlingforge/pkg/buildinfo"
	"github.com/mvollan/stirlingforge/pkg/cache"
	"github.com/mvollan/stirlingforge/pkg/errors"
	"github.com/mvollan/stirlingforge/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "stirlingforge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

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
		Use:          appName,
		Short:        "StirlingForge generates manufacturable Stirling engine designs",
		Long:         `StirlingForge is a parametric design generator for gamma-type Stirling engines. It derives the full engine geometry from a dozen top-level parameters, estimates thermodynamic performance, lays the parts out for inspection, and checks every component against your machine park.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.designsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(newCache(noCache), c.Logger)
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stirlingforge/).
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

// configDir returns the config directory using XDG standard (~/.config/stirlingforge/).
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

// defaultCatalogDir returns the default machine/material catalog directory.
// An empty string means no catalog is configured; the pipeline degrades to
// unknown manufacturability verdicts in that case.
func defaultCatalogDir() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "catalog")
}

// =============================================================================
// Parameter Input
// =============================================================================

// paramsFile is the TOML shape accepted by --params.
type paramsFile struct {
	Policy     string             `toml:"policy"`
	Parameters map[string]float64 `toml:"parameters"`
}

// loadParamsFile reads parameter overrides (and an optional layout policy)
// from a TOML file.
func loadParamsFile(path string) (paramsFile, error) {
	var f paramsFile
	data, err := os.ReadFile(path)
	if err != nil {
		return f, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parameter file %s", path)
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parameter file %s", path)
	}
	return f, nil
}

// parseSetFlags parses repeated --set name=value flags into an override map.
func parseSetFlags(sets []string) (map[string]float64, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(sets))
	for _, s := range sets {
		name, raw, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, errors.New(errors.ErrCodeInvalidOptions, "--set %q: want name=value", s)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "--set %s", name)
		}
		out[name] = v
	}
	return out, nil
}

// collectOverrides merges the --params file (if any) with --set flags.
// Explicit --set values win over file values.
func collectOverrides(paramsPath string, sets []string) (map[string]float64, string, error) {
	overrides := map[string]float64{}
	policy := ""
	if paramsPath != "" {
		f, err := loadParamsFile(paramsPath)
		if err != nil {
			return nil, "", err
		}
		for k, v := range f.Parameters {
			overrides[k] = v
		}
		policy = f.Policy
	}
	flagged, err := parseSetFlags(sets)
	if err != nil {
		return nil, "", err
	}
	for k, v := range flagged {
		overrides[k] = v
	}
	if len(overrides) == 0 {
		overrides = nil
	}
	return overrides, policy, nil
}

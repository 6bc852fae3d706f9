package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsenecal/netbox-notices/internal/config"
	"github.com/jsenecal/netbox-notices/internal/render"
	"github.com/jsenecal/netbox-notices/internal/storage"
)

var (
	cfgFile   string
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "noticesctl",
	Short: "noticesctl - maintenance and outage notification tool",
	Long:  `noticesctl manages notification templates and prepared notifications for maintenance and outage events.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Config errors surface from the subcommand itself; here a bad
		// config just means default logging
		if cfg, err := loadConfig(); err == nil {
			slog.SetDefault(setupLogger(cfg))
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("noticesctl version %s\n", version)
		if commit != "unknown" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if buildTime != "unknown" {
			fmt.Printf("  built:  %s\n", buildTime)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd, versionCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	fmt.Printf("Configuration is valid\n")
	fmt.Printf("  Base URL: %s\n", cfg.Server.BaseURL)
	fmt.Printf("  Storage: %s\n", cfg.Storage.Path)
	fmt.Printf("  Templates: %s\n", cfg.Templates.Dir)

	return nil
}

// loadConfig loads the config file, falling back to defaults when none is
// given
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

// setupLogger configures slog from the logging config
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// openStore opens notification storage from the configured path
func openStore() (*storage.BoltStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := storage.NewBoltStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification storage: %w", err)
	}
	return store, nil
}

// loadRenderer builds a renderer carrying the named templates from the
// configured templates directory. File stems become template slugs for
// inheritance lookups.
func loadRenderer(cfg *config.Config) (*render.Renderer, error) {
	named := map[string]string{}
	if cfg.Templates.Dir != "" {
		entries, err := os.ReadDir(cfg.Templates.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read templates dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := filepath.Ext(name)
			if ext != ".tmpl" && ext != ".txt" && ext != ".html" {
				continue
			}
			data, err := os.ReadFile(filepath.Join(cfg.Templates.Dir, name))
			if err != nil {
				return nil, fmt.Errorf("failed to read template %s: %w", name, err)
			}
			named[strings.TrimSuffix(name, ext)] = string(data)
		}
	}
	return render.NewRenderer(named), nil
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"mms/internal/core"
	"mms/internal/storage/config"

	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user declines a confirmation prompt.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.3.0"

	// Global flags
	configDir string
	dataDir   string
	verbose   bool
	noColor   bool
	plain     bool
)

var rootCmd = &cobra.Command{
	Use:   "mms",
	Short: "mms - keep a local mods directory in sync with a server branch",
	Long: `mms synchronizes a Minecraft mods directory against a branch published
by a mod sync server: it fetches the branch manifest, shows what would be
downloaded and deleted, and applies the confirmed plan.

Per-profile overrides (selected optional mods, files to keep) are
remembered between runs.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/mms)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/mms)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "plain progress output instead of the TUI")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error,
// 2 = user cancelled.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initService creates the core service from the global flags.
func initService() (*core.Service, error) {
	cfgDir := configDir
	if cfgDir == "" {
		var err error
		cfgDir, err = config.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}
	dtDir := dataDir
	if dtDir == "" {
		var err error
		dtDir, err = config.DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return core.NewService(core.ServiceConfig{
		ConfigDir: cfgDir,
		DataDir:   dtDir,
		Logger:    logger,
	})
}

// colorEnabled returns true if colored output should be used (respects
// --no-color and the NO_COLOR env var per https://no-color.org).
func colorEnabled() bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

func colorGreen(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiGreen + s + ansiReset
}

func colorRed(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiRed + s + ansiReset
}

func colorYellow(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiYellow + s + ansiReset
}

func main() {
	Execute()
}

// Package cli provides the nova command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/adapters/driven/config/file"
	"github.com/custodia-labs/nova/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nova/internal/app"
	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/ports/driven"
	"github.com/custodia-labs/nova/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	storePath  string
	configPath string
	verbose    bool
)

// memoryConfig as the --config value runs on defaults and environment
// overrides only, without reading or creating a config file.
const memoryConfig = ":memory:"

// noAppAnnotation marks commands that run without opening the store.
const noAppAnnotation = "nova/no-app"

// readOnlyAnnotation marks commands that never write, so the store they
// open must already exist.
const readOnlyAnnotation = "nova/read-only"

// ownedKey marks an App built by this process run, which must be closed.
type ownedKey struct{}

var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "Index and search your personal documents",
	Long: `Nova turns notes, web pages, text files and images into searchable
chunks, embeds them and stores them in a local vector index.

The command line, the MCP server, the HTTP service and the TUI all search
through the same store, so identical queries rank identically everywhere.`,
	SilenceUsage:       true,
	PersistentPreRunE:  openApp,
	PersistentPostRunE: closeApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", "", "vector store directory (default ~/.nova/vectors)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.nova/config.toml; \":memory:\" for defaults only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by `nova version`.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. An App already stored in ctx (see
// app.WithContext) is used instead of building one from settings.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func openApp(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[noAppAnnotation] == "true" {
		return nil
	}

	ctx := cmd.Root().Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a, ok := app.FromContext(ctx); ok {
		cmd.SetContext(app.WithContext(ctx, a))
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	settings.Store.MustExist = readOnly(cmd)

	a, err := app.New(settings)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	ctx = context.WithValue(app.WithContext(ctx, a), ownedKey{}, true)
	cmd.SetContext(ctx)
	return nil
}

// readOnly reports whether cmd only reads the store: it carries
// readOnlyAnnotation or runs with --read-only set.
func readOnly(cmd *cobra.Command) bool {
	if cmd.Annotations[readOnlyAnnotation] == "true" {
		return true
	}
	f := cmd.Flags().Lookup("read-only")
	return f != nil && f.Value.String() == "true"
}

func closeApp(cmd *cobra.Command, _ []string) error {
	if owned, _ := cmd.Context().Value(ownedKey{}).(bool); !owned {
		return nil
	}
	a, ok := app.FromContext(cmd.Context())
	if !ok {
		return nil
	}
	// The command's own context may already be cancelled (watch, serve);
	// the final flush must still run.
	return a.Close(context.WithoutCancel(cmd.Context()))
}

// openConfig opens the config file selected by --config.
func openConfig() (*file.ConfigStore, error) {
	if configPath == memoryConfig {
		return nil, fmt.Errorf("%w: config commands need a config file, not %s", domain.ErrInvalidInput, memoryConfig)
	}
	if configPath != "" {
		return file.OpenConfigFile(configPath)
	}
	return file.NewConfigStore("")
}

// loadSettings reads the config file and environment, then applies --store.
func loadSettings() (domain.Settings, error) {
	var cfg driven.ConfigStore = memory.NewConfigStore()
	if configPath != memoryConfig {
		fileCfg, err := openConfig()
		if err != nil {
			return domain.Settings{}, fmt.Errorf("loading config: %w", err)
		}
		cfg = fileCfg
	}

	dir, err := file.DefaultDir()
	if err != nil {
		dir = ""
	}

	settings, err := file.LoadSettings(cfg, os.Getenv, dir)
	if err != nil {
		return settings, err
	}
	if storePath != "" {
		settings.Store.Path = storePath
	}
	return settings, nil
}

// appFrom returns the App opened for cmd.
func appFrom(cmd *cobra.Command) (*app.App, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("store not opened")
	}
	a, ok := app.FromContext(ctx)
	if !ok {
		return nil, errors.New("store not opened")
	}
	return a, nil
}

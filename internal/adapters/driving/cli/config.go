package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/adapters/driven/ai"
	"github.com/custodia-labs/nova/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the values stored in the config file
(~/.nova/config.toml unless --config is given).

Environment variables override the file: NOVA_STORE, NOVA_EMBEDDING_PROVIDER
and OPENAI_API_KEY.`,
	Annotations: map[string]string{noAppAnnotation: "true"},
	RunE:        runConfigList,
}

var configListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List every configuration key and its value",
	Annotations: map[string]string{noAppAnnotation: "true"},
	RunE:        runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:         "get [key]",
	Short:       "Print one configuration value",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{noAppAnnotation: "true"},
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:         "set [key] [value]",
	Short:       "Store a configuration value",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{noAppAnnotation: "true"},
	RunE:        runConfigSet,
}

var configCheckCmd = &cobra.Command{
	Use:         "check",
	Short:       "Validate settings and ping the embedding provider",
	Annotations: map[string]string{noAppAnnotation: "true"},
	RunE:        runConfigCheck,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	cmd.Printf("Config file: %s\n\n", cfg.Path())
	for _, key := range file.Keys() {
		raw, ok := cfg.Get(key)
		if !ok {
			cmd.Printf("  %-32s (default)\n", key)
			continue
		}
		cmd.Printf("  %-32s %s\n", key, displayValue(key, raw))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, ok := file.KeyKind(key); !ok {
		return fmt.Errorf("unknown config key %q", key)
	}

	cfg, err := openConfig()
	if err != nil {
		return err
	}

	raw, ok := cfg.Get(key)
	if !ok {
		cmd.Println("(not set)")
		return nil
	}
	cmd.Println(displayValue(key, raw))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	value, err := file.ParseValue(key, raw)
	if err != nil {
		return err
	}

	cfg, err := openConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cmd.Printf("%s = %s\n", key, displayValue(key, value))
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	cmd.Println("Settings: ok")

	if err := ai.ValidateEmbeddingConfig(cmd.Context(), settings.Embedding); err != nil {
		return err
	}
	cmd.Printf("Embedding: %s reachable\n", settings.Embedding.Provider.Description())
	return nil
}

func displayValue(key string, v any) string {
	s := fmt.Sprint(v)
	if file.IsSecret(key) {
		return maskAPIKey(s)
	}
	return s
}

package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/core/domain"
)

var (
	addID      string
	addSource  string
	addHeading string

	removeSource bool

	statsJSON bool
)

var addCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a text record to the store",
	Long: `Adds one record and flushes it so it is searchable immediately.
Without --id the id is derived from the content, so adding the same text
twice replaces the earlier record.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove [id|path]...",
	Short: "Remove records from the store",
	Long: `Removes records by id. With --source each argument is a document path
and every chunk indexed from it is removed. Unknown ids are ignored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short:       "Show store statistics",
	Annotations: map[string]string{readOnlyAnnotation: "true"},
	RunE:        runStats,
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "record id (default derived from content)")
	addCmd.Flags().StringVar(&addSource, "source", "", "source recorded in metadata")
	addCmd.Flags().StringVar(&addHeading, "heading", "", "heading recorded in metadata")
	removeCmd.Flags().BoolVar(&removeSource, "source", false, "treat arguments as document paths")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(statsCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	meta := map[string]string{}
	if addSource != "" {
		meta[domain.MetaSource] = addSource
	}
	if addHeading != "" {
		meta[domain.MetaHeading] = addHeading
	}

	id, err := a.Store.Add(cmd.Context(), addID, args[0], meta)
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	result, err := a.Store.Flush(cmd.Context())
	if err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	for _, item := range result.Failed() {
		if item.ID == id {
			return fmt.Errorf("record %s was not indexed: %w", id, item.Err)
		}
	}

	cmd.Printf("Added %s\n", id)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	for _, arg := range args {
		if !removeSource {
			if err := a.Store.Remove(cmd.Context(), arg); err != nil {
				return fmt.Errorf("remove failed: %w", err)
			}
			cmd.Printf("Removed %s\n", arg)
			continue
		}

		source, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		n, err := a.Store.RemoveSource(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("remove failed: %w", err)
		}
		cmd.Printf("Removed %d records from %s\n", n, source)
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	stats, err := a.Store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Store:   %s (%s)\n", a.Settings.Store.Path, a.Settings.Store.Backend)
	cmd.Printf("Records: %d\n", stats.Records)
	cmd.Printf("Sources: %d\n", stats.Sources)
	cmd.Printf("Pending: %d\n", stats.Pending)
	return nil
}

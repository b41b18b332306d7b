package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/core/domain"
	"github.com/custodia-labs/nova/internal/core/services"
)

var (
	indexInclude    []string
	indexExclude    []string
	indexNoProgress bool
	indexJSON       bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a file or directory",
	Long: `Converts every supported file under path into chunks and writes them
to the vector store. Re-indexing a file replaces its previous chunks.

Hidden files and directories are ignored. Use --include and --exclude with
glob patterns (doublestar syntax, e.g. "**/*.md" or "archive/**") to select
files.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringSliceVar(&indexInclude, "include", nil, "only index files matching these patterns")
	indexCmd.Flags().StringSliceVar(&indexExclude, "exclude", nil, "skip files matching these patterns")
	indexCmd.Flags().BoolVar(&indexNoProgress, "no-progress", false, "disable the progress bar")
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	ix, err := a.NewIndexer(services.IndexerConfig{Include: indexInclude, Exclude: indexExclude})
	if err != nil {
		return err
	}

	report, err := ix.Index(cmd.Context(), args[0], newProgress(!indexNoProgress && !indexJSON))
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	if indexJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printIndexReport(cmd, report)
	return nil
}

func printIndexReport(cmd *cobra.Command, report *domain.IndexReport) {
	cmd.Println("Index Summary")
	cmd.Println("=============")
	cmd.Printf("  Files:      %d\n", report.Total)
	cmd.Printf("  Successful: %d\n", report.Successful)
	cmd.Printf("  Failed:     %d\n", report.Failed)
	cmd.Printf("  Skipped:    %d\n", report.Skipped)
	cmd.Printf("  Chunks:     %d (%d indexed)\n", report.Chunks, report.Flush.Indexed())

	if len(report.Extensions) > 0 {
		cmd.Println()
		cmd.Println("By extension:")
		for _, ext := range report.ExtensionNames() {
			s := report.Extensions[ext]
			cmd.Printf("  %-10s %d files: %d ok, %d failed, %d skipped", ext, s.Total, s.Successful, s.Failed, s.Skipped)
			if len(s.Handlers) > 0 {
				cmd.Printf(" [%s]", strings.Join(s.Handlers, ", "))
			}
			cmd.Println()
		}
	}

	if len(report.Errors) > 0 {
		cmd.Println()
		cmd.Println("Failures:")
		paths := make([]string, 0, len(report.Errors))
		for p := range report.Errors {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			cmd.Printf("  %s: %s\n", p, report.Errors[p])
		}
	}

	if failed := report.Flush.Failed(); len(failed) > 0 {
		cmd.Println()
		cmd.Printf("%d chunks could not be embedded and were dropped.\n", len(failed))
	}
}

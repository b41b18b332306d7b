package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/core/services"
)

var (
	watchInclude   []string
	watchExclude   []string
	watchDebounce  time.Duration
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index a directory and keep it up to date",
	Long: `Indexes dir, then watches it for changes. Created and modified files
are re-indexed and deleted files are removed from the store. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchInclude, "include", nil, "only index files matching these patterns")
	watchCmd.Flags().StringSliceVar(&watchExclude, "exclude", nil, "skip files matching these patterns")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", services.DefaultDebounce, "quiet period before applying changes")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the initial full index")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	ix, err := a.NewIndexer(services.IndexerConfig{Include: watchInclude, Exclude: watchExclude})
	if err != nil {
		return err
	}

	w, err := services.NewWatcher(ix, args[0], watchDebounce)
	if err != nil {
		return err
	}

	if !watchNoInitial {
		report, err := ix.Index(cmd.Context(), args[0], newProgress(true))
		if err != nil {
			return fmt.Errorf("initial index failed: %w", err)
		}
		cmd.Printf("Indexed %d of %d files (%d chunks)\n", report.Successful, report.Total, report.Chunks)
	}

	w.OnChange = func(c services.Change) {
		switch {
		case c.Err != nil:
			cmd.PrintErrf("%s %s: %v\n", c.Type, c.Path, c.Err)
		case c.Type == services.ChangeRemoved:
			cmd.Printf("removed %s (%d chunks)\n", c.Path, c.Chunks)
		default:
			cmd.Printf("indexed %s (%d chunks)\n", c.Path, c.Chunks)
		}
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", args[0])
	return w.Run(cmd.Context())
}

package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch an interactive search over the vector store.

Results rank exactly as "nova search" prints them.

Controls:
  enter      Search / expand the selected result
  ↑/k, ↓/j   Navigate results
  +, -       Change the number of results
  /          New search
  esc        Back to the query
  ?          Toggle help
  q          Quit`,
	Annotations: map[string]string{readOnlyAnnotation: "true"},
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Search: a.Search,
		Index:  a.Store,
		Limit:  a.Settings.Search.Limit,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

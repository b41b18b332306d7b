package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/core/domain"
)

var describeChunks bool

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Show the document a file converts to",
	Long: `Runs the handler that would index file and prints the resulting
document without writing to the store. For images this includes the vision
description and OCR text, which are cached for the next index run.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().BoolVar(&describeChunks, "chunks", false, "also list the chunks the document splits into")
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	handler, ok := a.Handlers.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Base(path))
	}

	doc, err := handler.Process(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("%s handler: %w", handler.Name(), err)
	}

	cmd.Printf("Handler: %s\n", handler.Name())
	if doc.Title != "" {
		cmd.Printf("Title:   %s\n", doc.Title)
	}
	if len(doc.Tags) > 0 {
		tags := append([]string(nil), doc.Tags...)
		sort.Strings(tags)
		cmd.Printf("Tags:    %v\n", tags)
	}
	cmd.Println()
	cmd.Println(doc.Content)

	if describeChunks {
		chunks := a.Chunker.Chunk(doc.Content, path)
		cmd.Println()
		cmd.Printf("%d chunks:\n", len(chunks))
		for _, c := range chunks {
			cmd.Printf("  [%d] %s (level %d): %s\n", c.Sequence, c.HeadingText, c.HeadingLevel, snippet(c.Text, 60))
		}
	}
	return nil
}

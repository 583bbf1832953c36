package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url>",
	Short: "Scrape a page and store its paragraphs in the corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	url := args[0]

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	stored, err := a.ingest.Ingest(cmd.Context(), url)
	if err != nil {
		a.logger.Error("ingest failed", zap.String("url", url), zap.Error(err))
		if stored > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d paragraphs before failing: %v\n", stored, err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d paragraphs from %s\n", stored, url)
	return nil
}

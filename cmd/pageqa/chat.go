package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactively ask questions over the ingested corpus",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

type asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	return chatLoop(cmd.Context(), a.answer, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
}

func chatLoop(ctx context.Context, svc asker, in io.Reader, out io.Writer, logger *zap.Logger) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "Ask a question (or type 'exit'): ")
		if !scanner.Scan() {
			// EOF terminates the session like an explicit exit
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			return nil
		}

		answer, err := svc.Ask(ctx, question)
		if err != nil {
			logger.Warn("question failed", zap.Error(err))
			fmt.Fprintf(out, "Error: %v\n\n", err)
			continue
		}

		fmt.Fprintf(out, "\n%s\n\n", answer)
	}
}

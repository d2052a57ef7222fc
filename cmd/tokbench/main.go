// Package main provides the entry point for the tokbench CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tokbench/cmd/tokbench/commands"
	"github.com/Sumatoshi-tech/tokbench/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tokbench",
		Short: "Tokbench - word-level tokenizer benchmark",
		Long: `Tokbench measures how often tokenizer output matches a ground-truth
vocabulary, per language, over large sentence corpora.

Commands:
  run        Run the benchmark pipeline (resumable)
  aggregate  Summarize committed results from the store
  vocab      Build a ground-truth vocabulary from a corpus
  sample     Extract a random sentence sample from a corpus`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewAggregateCommand())
	rootCmd.AddCommand(commands.NewVocabCommand())
	rootCmd.AddCommand(commands.NewSampleCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, version.String())
		},
	}
}

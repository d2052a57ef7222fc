package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tokbench/internal/config"
	"github.com/Sumatoshi-tech/tokbench/pkg/aggregate"
	"github.com/Sumatoshi-tech/tokbench/pkg/report"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/store"
)

// AggregateCommand summarizes committed results without running the pipeline.
type AggregateCommand struct {
	configPath string
	storePath  string
	languages  []string
	tokenizers []string
	format     string
	noColor    bool
}

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand() *cobra.Command {
	ac := &AggregateCommand{}

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Summarize committed benchmark results",
		Long: `Aggregate streams committed records from the store and prints per
(language, tokenizer) hit ratios. Safe to run while a benchmark is in
progress: only fully committed batches are visible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ac.execute(cmd)
		},
	}

	cmd.Flags().StringVarP(&ac.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&ac.storePath, "store", "", "aggregation store path (overrides config)")
	cmd.Flags().StringSliceVarP(&ac.languages, "languages", "l", nil, "languages to summarize (overrides config)")
	cmd.Flags().StringSliceVarP(&ac.tokenizers, "tokenizers", "t", nil, "tokenizer ids to summarize (overrides config)")
	cmd.Flags().StringVarP(&ac.format, "format", "f", report.FormatTable, "report format: table, json, yaml")
	cmd.Flags().BoolVar(&ac.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (ac *AggregateCommand) execute(cmd *cobra.Command) error {
	cfg, err := config.Load(ac.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("store") {
		cfg.Store.Path = ac.storePath
	}

	if cmd.Flags().Changed("languages") {
		cfg.Languages = ac.languages
	}

	if cmd.Flags().Changed("tokenizers") {
		cfg.Tokenizers = ac.tokenizers
	}

	langs := make([]script.Language, 0, len(cfg.Languages))

	for _, raw := range cfg.Languages {
		lang, parseErr := script.Parse(raw)
		if parseErr != nil {
			return parseErr
		}

		langs = append(langs, lang)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := aggregate.All(context.Background(), st, langs, cfg.Tokenizers)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	return report.Render(cmd.OutOrStdout(), report.Build(results), ac.format, ac.noColor)
}

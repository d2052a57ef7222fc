package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tokbench/internal/config"
	"github.com/Sumatoshi-tech/tokbench/pkg/corpus"
)

// ErrSampleArgs indicates missing required sample command arguments.
var ErrSampleArgs = errors.New("sample requires --in and --out")

// ErrSampleSize indicates a non-positive sample size.
var ErrSampleSize = errors.New("sample size must be positive")

// SampleCommand extracts a reproducible random sentence sample from a corpus.
type SampleCommand struct {
	configPath string
	inPath     string
	outPath    string
	size       int
	seed       int64
}

// NewSampleCommand creates the corpus sampling command.
func NewSampleCommand() *cobra.Command {
	sc := &SampleCommand{}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Extract a random sentence sample from a corpus",
		Long: `Sample draws n distinct line indices with a seeded generator and writes
the selected sentences to the output file in corpus order. The same seed
over the same corpus always yields the same sample.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sc.execute(cmd)
		},
	}

	cmd.Flags().StringVarP(&sc.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&sc.inPath, "in", "", "input corpus path")
	cmd.Flags().StringVarP(&sc.outPath, "out", "o", "", "output sample path")
	cmd.Flags().IntVarP(&sc.size, "n", "n", 0, "sample size (overrides config)")
	cmd.Flags().Int64Var(&sc.seed, "seed", 0, "sample seed (overrides config)")

	return cmd
}

func (sc *SampleCommand) execute(cmd *cobra.Command) error {
	if sc.inPath == "" || sc.outPath == "" {
		return ErrSampleArgs
	}

	cfg, err := config.Load(sc.configPath)
	if err != nil {
		return err
	}

	size := cfg.Pipeline.SampleSize
	if cmd.Flags().Changed("n") {
		size = sc.size
	}

	seed := cfg.Pipeline.SampleSeed
	if cmd.Flags().Changed("seed") {
		seed = sc.seed
	}

	if size <= 0 {
		return ErrSampleSize
	}

	total, err := corpus.Count(sc.inPath)
	if err != nil {
		return fmt.Errorf("count corpus lines: %w", err)
	}

	indices, err := corpus.SampleIndices(total, uint64(size), seed)
	if err != nil {
		return err
	}

	extractErr := corpus.Extract(sc.inPath, sc.outPath, indices)
	if extractErr != nil {
		return fmt.Errorf("extract sample: %w", extractErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sampled %s of %s sentences to %s\n",
		humanize.Comma(int64(len(indices))),
		humanize.Comma(int64(total)),
		sc.outPath)

	return nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tokbench/internal/config"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/tokenize"
	"github.com/Sumatoshi-tech/tokbench/pkg/vocab"
)

// ErrVocabArgs indicates missing required vocab command arguments.
var ErrVocabArgs = errors.New("vocab requires --lang, --corpus and --out")

// VocabCommand builds a ground-truth vocabulary file from a corpus.
type VocabCommand struct {
	configPath string
	lang       string
	corpusPath string
	outPath    string
	tokenizer  string
	dictPath   string
	encoding   string
}

// NewVocabCommand creates the vocabulary build command.
func NewVocabCommand() *cobra.Command {
	vc := &VocabCommand{}

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build a ground-truth vocabulary from a corpus",
		Long: `Vocab cleans and tokenizes a reference corpus, keeps tokens written in
the target script, and writes the distinct normalized words sorted, one
per line. An .lz4 output path is compressed transparently.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return vc.execute(cmd)
		},
	}

	cmd.Flags().StringVarP(&vc.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&vc.lang, "lang", "l", "", "target language")
	cmd.Flags().StringVar(&vc.corpusPath, "corpus", "", "reference corpus path")
	cmd.Flags().StringVarP(&vc.outPath, "out", "o", "", "output vocabulary path")
	cmd.Flags().StringVarP(&vc.tokenizer, "tokenizer", "t", tokenize.SpaceID, "tokenizer id used to split the corpus")
	cmd.Flags().StringVar(&vc.dictPath, "dict", "", "dictionary path for the maxmatch tokenizer")
	cmd.Flags().StringVar(&vc.encoding, "encoding", "", "BPE encoding for the tiktoken tokenizer")

	return cmd
}

func (vc *VocabCommand) execute(cmd *cobra.Command) error {
	if vc.lang == "" || vc.corpusPath == "" || vc.outPath == "" {
		return ErrVocabArgs
	}

	cfg, err := config.Load(vc.configPath)
	if err != nil {
		return err
	}

	lang, err := script.Parse(vc.lang)
	if err != nil {
		return err
	}

	tokCfg := tokenize.Config{
		DictPath: cfg.Tokenizer.DictPath,
		Encoding: cfg.Tokenizer.Encoding,
	}

	if vc.dictPath != "" {
		tokCfg.DictPath = vc.dictPath
	}

	if vc.encoding != "" {
		tokCfg.Encoding = vc.encoding
	}

	tok, err := tokenize.New(vc.tokenizer, tokCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := vocab.Build(ctx, vc.corpusPath, vc.outPath, lang, tok)
	if err != nil {
		return fmt.Errorf("build vocabulary: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s words from %s sentences (%s tokens, %s skipped) to %s\n",
		humanize.Comma(int64(stats.Words)),
		humanize.Comma(int64(stats.Sentences)),
		humanize.Comma(int64(stats.Tokens)),
		humanize.Comma(int64(stats.Skipped)),
		vc.outPath)

	return nil
}

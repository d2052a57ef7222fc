// Package commands implements CLI command handlers for tokbench.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tokbench/internal/config"
	"github.com/Sumatoshi-tech/tokbench/internal/observability"
	"github.com/Sumatoshi-tech/tokbench/internal/pipeline"
	"github.com/Sumatoshi-tech/tokbench/pkg/aggregate"
	"github.com/Sumatoshi-tech/tokbench/pkg/report"
	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/store"
	"github.com/Sumatoshi-tech/tokbench/pkg/tokenize"
	"github.com/Sumatoshi-tech/tokbench/pkg/version"
)

// metricsReadHeaderTimeout bounds slow-header scrapes on the metrics listener.
const metricsReadHeaderTimeout = 5 * time.Second

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	configPath string
	storePath  string
	batchSize  int
	workers    int
	resume     bool
	languages  []string
	tokenizers []string
	format     string
	noColor    bool
}

// NewRunCommand creates the benchmark run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark pipeline",
		Long: `Run the benchmark pipeline over the configured corpora.

Interrupting a run is safe: committed batches survive and a rerun with
resume enabled continues from the last checkpoint. Disabling resume
resets the store namespace for the selected pairs first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rc.execute(cmd)
		},
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&rc.storePath, "store", "", "aggregation store path (overrides config)")
	cmd.Flags().IntVar(&rc.batchSize, "batch-size", 0, "sentences per atomic commit (overrides config)")
	cmd.Flags().IntVar(&rc.workers, "workers", 0, "max concurrent pairs (overrides config)")
	cmd.Flags().BoolVar(&rc.resume, "resume", true, "resume from checkpoints")
	cmd.Flags().StringSliceVarP(&rc.languages, "languages", "l", nil, "languages to run (overrides config)")
	cmd.Flags().StringSliceVarP(&rc.tokenizers, "tokenizers", "t", nil, "tokenizer ids to run (overrides config)")
	cmd.Flags().StringVarP(&rc.format, "format", "f", report.FormatTable, "report format: table, json, yaml")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (rc *RunCommand) execute(cmd *cobra.Command) error {
	cfg, err := rc.loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := observability.Init(observabilityConfig(cfg))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("telemetry shutdown", slog.Any("error", shutdownErr))
		}
	}()

	stopMetrics := serveMetrics(cfg, providers)
	defer stopMetrics()

	metrics, err := observability.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create pipeline metrics: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	if !cfg.Pipeline.Resume {
		resetErr := resetPairs(ctx, st, opts)
		if resetErr != nil {
			return resetErr
		}
	}

	runner := pipeline.New(st, providers.Logger, metrics, opts)

	summary, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			providers.Logger.Info("run interrupted, checkpoints preserved")

			return err
		}

		return err
	}

	for _, failed := range summary.Failed() {
		providers.Logger.Warn("pair did not run",
			slog.String("lang", string(failed.Pair.Lang)),
			slog.String("tokenizer", failed.Pair.Tokenizer),
			slog.Any("error", failed.Err))
	}

	return rc.report(ctx, cmd, st, opts)
}

// loadConfig loads the config file and applies explicit flag overrides
// before validating the merged result.
func (rc *RunCommand) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rc.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("store") {
		cfg.Store.Path = rc.storePath
	}

	if cmd.Flags().Changed("batch-size") {
		cfg.Pipeline.BatchSize = rc.batchSize
	}

	if cmd.Flags().Changed("workers") {
		cfg.Pipeline.Workers = rc.workers
	}

	if cmd.Flags().Changed("resume") {
		cfg.Pipeline.Resume = rc.resume
	}

	if cmd.Flags().Changed("languages") {
		cfg.Languages = rc.languages
	}

	if cmd.Flags().Changed("tokenizers") {
		cfg.Tokenizers = rc.tokenizers
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// report aggregates the committed state and renders the summary.
func (rc *RunCommand) report(ctx context.Context, cmd *cobra.Command, st *store.Store, opts pipeline.Options) error {
	results, err := aggregate.All(ctx, st, opts.Languages, opts.Tokenizers)
	if err != nil {
		return err
	}

	return report.Render(cmd.OutOrStdout(), report.Build(results), rc.format, rc.noColor)
}

// observabilityConfig maps the app config onto the observability layer.
func observabilityConfig(cfg *config.Config) observability.Config {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version.Version
	obs.OTLPEndpoint = cfg.Metrics.OTLPEndpoint
	obs.OTLPInsecure = true
	obs.Prometheus = cfg.Metrics.Enabled
	obs.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obs.LogJSON = cfg.Logging.Format == "json"

	return obs
}

// serveMetrics starts the Prometheus scrape listener when enabled. The
// returned stop function shuts the listener down.
func serveMetrics(cfg *config.Config, providers observability.Providers) func() {
	if providers.MetricsHandler == nil {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", providers.MetricsHandler)

	srv := &http.Server{
		Addr:              cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := srv.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			providers.Logger.Warn("metrics listener", slog.Any("error", serveErr))
		}
	}()

	return func() {
		_ = srv.Close()
	}
}

// pipelineOptions maps the validated config onto runner options.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	langs := make([]script.Language, 0, len(cfg.Languages))
	corpora := make(map[script.Language]string, len(cfg.Languages))
	vocabs := make(map[script.Language]string, len(cfg.Languages))

	for _, raw := range cfg.Languages {
		lang, err := script.Parse(raw)
		if err != nil {
			return pipeline.Options{}, err
		}

		langs = append(langs, lang)
		corpora[lang] = cfg.Corpus.Corpora[raw]
		vocabs[lang] = cfg.Corpus.Vocabs[raw]
	}

	return pipeline.Options{
		Languages:   langs,
		Tokenizers:  cfg.Tokenizers,
		BatchSize:   cfg.Pipeline.BatchSize,
		Workers:     cfg.Pipeline.Workers,
		CorpusPaths: corpora,
		VocabPaths:  vocabs,
		TokenizerConfig: tokenize.Config{
			DictPath: cfg.Tokenizer.DictPath,
			Encoding: cfg.Tokenizer.Encoding,
		},
	}, nil
}

// resetPairs clears the store namespace for every selected pair so a
// non-resume run starts fresh.
func resetPairs(ctx context.Context, st *store.Store, opts pipeline.Options) error {
	for _, lang := range opts.Languages {
		for _, tok := range opts.Tokenizers {
			err := st.Reset(ctx, lang, tok)
			if err != nil {
				return fmt.Errorf("reset (%s, %s): %w", lang, tok, err)
			}
		}
	}

	return nil
}

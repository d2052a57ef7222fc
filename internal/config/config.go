package config

import (
	"errors"

	"github.com/Sumatoshi-tech/tokbench/pkg/script"
	"github.com/Sumatoshi-tech/tokbench/pkg/tokenize"
)

// Config is the top-level configuration struct for tokbench.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Languages  []string        `mapstructure:"languages"`
	Tokenizers []string        `mapstructure:"tokenizers"`
	Pipeline   PipelineConfig  `mapstructure:"pipeline"`
	Store      StoreConfig     `mapstructure:"store"`
	Corpus     CorpusConfig    `mapstructure:"corpus"`
	Tokenizer  TokenizerConfig `mapstructure:"tokenizer"`
	Logging    LoggingConfig   `mapstructure:"logging"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
}

// PipelineConfig holds pipeline resource knobs.
type PipelineConfig struct {
	BatchSize  int   `mapstructure:"batch_size"`
	Workers    int   `mapstructure:"workers"`
	Resume     bool  `mapstructure:"resume"`
	SampleSize int   `mapstructure:"sample_size"`
	SampleSeed int64 `mapstructure:"sample_seed"`
}

// StoreConfig holds aggregation store settings.
type StoreConfig struct {
	Path  string `mapstructure:"path"`
	Reset bool   `mapstructure:"reset"`
}

// CorpusConfig maps languages to corpus and vocabulary file paths.
type CorpusConfig struct {
	Corpora map[string]string `mapstructure:"corpora"`
	Vocabs  map[string]string `mapstructure:"vocabs"`
}

// TokenizerConfig holds per-tokenizer resource settings.
type TokenizerConfig struct {
	DictPath string `mapstructure:"dict_path"`
	Encoding string `mapstructure:"encoding"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds observability exporter settings.
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Listen       string `mapstructure:"listen"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Sentinel errors for configuration validation.
var (
	// ErrNoLanguages indicates the languages list is empty.
	ErrNoLanguages = errors.New("languages must not be empty")
	// ErrNoTokenizers indicates the tokenizers list is empty.
	ErrNoTokenizers = errors.New("tokenizers must not be empty")
	// ErrInvalidBatchSize indicates the batch size is not positive.
	ErrInvalidBatchSize = errors.New("pipeline.batch_size must be positive")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("pipeline.workers must be non-negative")
	// ErrInvalidSampleSize indicates the sample size is negative.
	ErrInvalidSampleSize = errors.New("pipeline.sample_size must be non-negative")
	// ErrMissingStorePath indicates the store path is empty.
	ErrMissingStorePath = errors.New("store.path must not be empty")
	// ErrMissingCorpus indicates a configured language lacks a corpus path.
	ErrMissingCorpus = errors.New("corpus.corpora is missing a configured language")
	// ErrMissingVocab indicates a configured language lacks a vocabulary path.
	ErrMissingVocab = errors.New("corpus.vocabs is missing a configured language")
	// ErrInvalidLogLevel indicates an unsupported logging level.
	ErrInvalidLogLevel = errors.New("logging.level must be one of debug, info, warn, error")
	// ErrInvalidLogFormat indicates an unsupported logging format.
	ErrInvalidLogFormat = errors.New("logging.format must be one of text, json")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	benchErr := c.validateBenchmark()
	if benchErr != nil {
		return benchErr
	}

	return c.validateAmbient()
}

func (c *Config) validateBenchmark() error {
	if len(c.Languages) == 0 {
		return ErrNoLanguages
	}

	if len(c.Tokenizers) == 0 {
		return ErrNoTokenizers
	}

	for _, lang := range c.Languages {
		_, err := script.Parse(lang)
		if err != nil {
			return err
		}

		if c.Corpus.Corpora[lang] == "" {
			return ErrMissingCorpus
		}

		if c.Corpus.Vocabs[lang] == "" {
			return ErrMissingVocab
		}
	}

	for _, id := range c.Tokenizers {
		if !knownTokenizer(id) {
			return tokenize.ErrUnknownTokenizer
		}
	}

	if c.Pipeline.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Pipeline.Workers < 0 {
		return ErrInvalidWorkers
	}

	if c.Pipeline.SampleSize < 0 {
		return ErrInvalidSampleSize
	}

	if c.Store.Path == "" {
		return ErrMissingStorePath
	}

	return nil
}

func (c *Config) validateAmbient() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	return nil
}

func knownTokenizer(id string) bool {
	for _, known := range tokenize.IDs() {
		if id == known {
			return true
		}
	}

	return false
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".tokbench"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for tokbench settings.
const envPrefix = "TOKBENCH"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Default pipeline settings.
const (
	DefaultBatchSize  = 1000
	DefaultWorkers    = 0
	DefaultResume     = true
	DefaultSampleSize = 0
	DefaultSampleSeed = 42
)

// Default store settings.
const (
	DefaultStorePath  = "tokbench.db"
	DefaultStoreReset = false
)

// Default tokenizer settings.
const (
	DefaultDictPath = ""
	DefaultEncoding = "cl100k_base"
)

// Default logging settings.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default metrics settings.
const (
	DefaultMetricsEnabled = false
	DefaultMetricsListen  = ":9464"
	DefaultOTLPEndpoint   = ""
)

// LoadConfig loads configuration from file, env vars, and defaults, then
// checks the full Validate contract. Use this for commands that run the
// pipeline.
func LoadConfig(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return cfg, nil
}

// Load loads configuration from file, env vars, and defaults without the
// semantic Validate pass. If configPath is non-empty, it is used as the
// explicit config file path. Otherwise, the config file is searched in CWD
// and $HOME. Missing config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	if used := viperCfg.ConfigFileUsed(); used != "" {
		schemaErr := validateFileSchema(used)
		if schemaErr != nil {
			return nil, schemaErr
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("languages", []string{})
	viperCfg.SetDefault("tokenizers", []string{})

	viperCfg.SetDefault("pipeline.batch_size", DefaultBatchSize)
	viperCfg.SetDefault("pipeline.workers", DefaultWorkers)
	viperCfg.SetDefault("pipeline.resume", DefaultResume)
	viperCfg.SetDefault("pipeline.sample_size", DefaultSampleSize)
	viperCfg.SetDefault("pipeline.sample_seed", DefaultSampleSeed)

	viperCfg.SetDefault("store.path", DefaultStorePath)
	viperCfg.SetDefault("store.reset", DefaultStoreReset)

	viperCfg.SetDefault("corpus.corpora", map[string]string{})
	viperCfg.SetDefault("corpus.vocabs", map[string]string{})

	viperCfg.SetDefault("tokenizer.dict_path", DefaultDictPath)
	viperCfg.SetDefault("tokenizer.encoding", DefaultEncoding)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("metrics.enabled", DefaultMetricsEnabled)
	viperCfg.SetDefault("metrics.listen", DefaultMetricsListen)
	viperCfg.SetDefault("metrics.otlp_endpoint", DefaultOTLPEndpoint)
}

package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"

	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/logger"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the vocabprep configuration
type Config struct {
	// Corpus describes the training text the vocabulary is built from.
	Corpus struct {
		// Path is the corpus file.
		Path string `json:"path" env:"CORPUS_PATH"`

		// Format selects the loader: "tokens", "headlines", "chars",
		// "labeled" or "tagged".
		Format string `json:"format" env:"CORPUS_FORMAT" validate:"required"`
	} `json:"corpus"`

	// Vocabulary contains vocabulary construction settings.
	Vocabulary struct {
		// MinTokenCount drops tokens seen fewer times than this.
		MinTokenCount int `json:"min_token_count" env:"MIN_TOKEN_COUNT"`

		// OutputPath is where the token\tid listing is written.
		OutputPath string `json:"output_path" env:"VOCAB_OUTPUT_PATH"`
	} `json:"vocabulary"`

	// Embedding contains pretrained embedding alignment settings.
	Embedding struct {
		// Path is the column-per-token pretrained embedding CSV. Alignment
		// is skipped when empty.
		Path string `json:"path" env:"EMBEDDING_PATH"`

		// OutputPath is where the aligned row-per-token table is written.
		OutputPath string `json:"output_path" env:"EMBEDDING_OUTPUT_PATH"`

		// Seed drives the generator for synthesized vectors. Zero means
		// a time-based seed.
		Seed uint64 `json:"seed" env:"EMBEDDING_SEED"`
	} `json:"embedding"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename  = ".vocabprepconfig"
	DefaultEnvPrefix       = "VOCABPREP"
	DefaultCorpusFormat    = "tokens"
	DefaultVocabOutputPath = "vocab.txt"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Corpus.Format = DefaultCorpusFormat
	config.Vocabulary.OutputPath = DefaultVocabOutputPath
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfigWithPath loads the configuration from a specific path. A
// missing file yields the defaults. Diagnostics go to stderr.
func LoadConfigWithPath(configPath string) (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider(DefaultEnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, errortypes.ConfigError(err, "failed to load configuration").
			WithField("path", configPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// Validate checks the settings the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Vocabulary.MinTokenCount < 0 {
		return errortypes.ConfigError(nil, "vocabulary.min_token_count must not be negative").
			WithField("min_token_count", c.Vocabulary.MinTokenCount)
	}
	if c.Embedding.Path != "" && c.Embedding.OutputPath == "" {
		return errortypes.ConfigError(nil, "embedding.output_path is required when embedding.path is set")
	}
	return nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errortypes.IOError(err, "failed to create directory").WithField("dir", dir)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return errortypes.ConfigError(err, "failed to save configuration").WithField("path", path)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// LastModified returns when the configuration was last loaded or saved.
func (c *Config) LastModified() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.lastModifiedAt
}

// LoggerConfig translates the logging section into a logger.Config writing
// to stderr.
func LoggerConfig(cfg *Config) *logger.Config {
	lc := logger.DefaultConfig()
	if cfg.Logging.Level != "" {
		lc.Level = logger.ParseLevel(cfg.Logging.Level)
	}
	lc.Format = logger.ParseFormat(cfg.Logging.Format)
	return lc
}

// GetLoggerFromConfig creates the application logger based on the configuration
func GetLoggerFromConfig(cfg *Config) *logger.Logger {
	return logger.New(LoggerConfig(cfg))
}

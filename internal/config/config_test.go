package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/logger"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Corpus.Format != DefaultCorpusFormat {
		t.Errorf("Corpus.Format = %q, want %q", cfg.Corpus.Format, DefaultCorpusFormat)
	}
	if cfg.Vocabulary.OutputPath != DefaultVocabOutputPath {
		t.Errorf("Vocabulary.OutputPath = %q, want %q", cfg.Vocabulary.OutputPath, DefaultVocabOutputPath)
	}
	if cfg.Vocabulary.MinTokenCount != 0 {
		t.Errorf("Vocabulary.MinTokenCount = %d, want 0", cfg.Vocabulary.MinTokenCount)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() error = %v", err)
	}
	if cfg.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", cfg.GetConfigPath(), path)
	}
	if cfg.Corpus.Format != DefaultCorpusFormat {
		t.Errorf("Expected defaults for missing file, got format %q", cfg.Corpus.Format)
	}
	if cfg.LastModified().IsZero() {
		t.Errorf("Expected LastModified to be set")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabprep.json")
	content := `{
  "corpus": {"path": "train.txt", "format": "labeled"},
  "vocabulary": {"min_token_count": 2, "output_path": "out/vocab.txt"},
  "embedding": {"path": "glove.csv", "output_path": "out/emb.csv", "seed": 7},
  "logging": {"level": "debug", "format": "json"}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() error = %v", err)
	}

	if cfg.Corpus.Path != "train.txt" || cfg.Corpus.Format != "labeled" {
		t.Errorf("Unexpected corpus section: %+v", cfg.Corpus)
	}
	if cfg.Vocabulary.MinTokenCount != 2 || cfg.Vocabulary.OutputPath != "out/vocab.txt" {
		t.Errorf("Unexpected vocabulary section: %+v", cfg.Vocabulary)
	}
	if cfg.Embedding.Seed != 7 || cfg.Embedding.OutputPath != "out/emb.csv" {
		t.Errorf("Unexpected embedding section: %+v", cfg.Embedding)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging section: %+v", cfg.Logging)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative threshold", func(c *Config) { c.Vocabulary.MinTokenCount = -1 }, true},
		{"embedding without output", func(c *Config) { c.Embedding.Path = "emb.csv" }, true},
		{"embedding with output", func(c *Config) {
			c.Embedding.Path = "emb.csv"
			c.Embedding.OutputPath = "aligned.csv"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errortypes.IsConfigError(err) {
				t.Errorf("Expected config error, got %v", err)
			}
		})
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := NewConfig()
	cfg.Vocabulary.MinTokenCount = 3
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}
	if cfg.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", cfg.GetConfigPath(), path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}
	if !strings.Contains(string(data), "min_token_count") {
		t.Errorf("Saved config missing vocabulary section: %s", data)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() error = %v", err)
	}
	cfg.Corpus.Path = "corpus.txt"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() after Save error = %v", err)
	}
	if loaded.Corpus.Path != "corpus.txt" {
		t.Errorf("Corpus.Path = %q, want corpus.txt", loaded.Corpus.Path)
	}
}

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		format     string
		wantLevel  logger.LogLevel
		wantFormat logger.LogFormat
	}{
		{"defaults", DefaultLogLevel, DefaultLogFormat, logger.INFO, logger.TEXT},
		{"debug json", "debug", "json", logger.DEBUG, logger.JSON},
		{"warn text", "warn", "text", logger.WARN, logger.TEXT},
		{"empty level keeps default", "", "", logger.INFO, logger.TEXT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Logging.Level = tt.level
			cfg.Logging.Format = tt.format

			lc := LoggerConfig(cfg)
			if lc.Level != tt.wantLevel {
				t.Errorf("Level = %v, want %v", lc.Level, tt.wantLevel)
			}
			if lc.Format != tt.wantFormat {
				t.Errorf("Format = %v, want %v", lc.Format, tt.wantFormat)
			}
		})
	}
}

func TestGetLoggerFromConfig(t *testing.T) {
	if GetLoggerFromConfig(NewConfig()) == nil {
		t.Errorf("Expected a logger")
	}
}

// Package vocabprep prepares text datasets for model training: it builds a
// frequency-ordered vocabulary from a corpus and aligns a pretrained word
// embedding to that vocabulary.
package vocabprep

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/localrivet/vocabprep/internal/config"
	"github.com/localrivet/vocabprep/internal/dataset"
	"github.com/localrivet/vocabprep/internal/embedding"
	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/metrics"
	"github.com/localrivet/vocabprep/internal/server"
	"github.com/localrivet/vocabprep/internal/telemetry"
	"github.com/localrivet/vocabprep/internal/util"
	"github.com/localrivet/vocabprep/internal/vocab"
)

// Config represents the configuration for the vocabprep pipeline.
type Config = config.Config

// Corpus is an ordered list of tokenized documents.
type Corpus = vocab.Corpus

// Vocabulary is an ordered token list with its inverse index.
type Vocabulary = vocab.Vocabulary

// Table is a token to vector embedding table.
type Table = embedding.Table

// Rand supplies the uniform draws used to synthesize embedding vectors.
type Rand = embedding.Rand

// PathExample pairs a score matrix with the path a decoder should find.
type PathExample = metrics.PathExample

// PathSearch finds a path through a score matrix.
type PathSearch = metrics.PathSearch

// Result summarizes a pipeline run.
type Result struct {
	RunID          string
	VocabularySize int
	Fingerprint    string
	EmbeddingRows  int
	Synthesized    int
}

// Pipeline runs corpus loading, vocabulary building and embedding alignment
// as configured.
type Pipeline struct {
	config  *Config
	logger  *slog.Logger
	rng     Rand
	metrics *telemetry.MetricsCollector
}

// PipelineOptions defines the options for creating a new Pipeline.
type PipelineOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
	Rand       Rand         // Generator for synthesized vectors. If nil, the configured seed is used.
}

// NewPipeline creates a Pipeline with the given options.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Debug("Using provided Config object for pipeline")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for pipeline", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, err
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil && cfg.Embedding.Seed != 0 {
		rng = embedding.NewRand(cfg.Embedding.Seed)
	}

	return &Pipeline{
		config:  cfg,
		logger:  logger,
		rng:     rng,
		metrics: telemetry.NewMetricsCollector(),
	}, nil
}

// DefaultConfig returns the default configuration for the vocabprep pipeline.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *Config {
	return p.config
}

// Metrics returns the collector the pipeline records into.
func (p *Pipeline) Metrics() *telemetry.MetricsCollector {
	return p.metrics
}

// LoadCorpus reads the configured corpus file.
func (p *Pipeline) LoadCorpus() (Corpus, error) {
	path := p.config.Corpus.Path
	if path == "" {
		return nil, errortypes.ConfigError(nil, "corpus.path is not set")
	}

	p.logger.Info("Loading corpus", "path", path, "format", p.config.Corpus.Format)
	var corpus Corpus
	err := p.metrics.Time(telemetry.MetricLoadCorpusTime, func() error {
		var loadErr error
		corpus, loadErr = dataset.LoadCorpusFile(path, dataset.Format(p.config.Corpus.Format))
		return loadErr
	})
	if err != nil {
		p.logger.Error("Failed to load corpus", "path", path, "error", err)
		return nil, err
	}

	p.metrics.IncrementCounter(telemetry.MetricCorpusDocuments, int64(len(corpus)))
	p.metrics.IncrementCounter(telemetry.MetricCorpusTokens, int64(corpus.NumTokens()))
	p.logger.Debug("Corpus loaded", "documents", len(corpus), "tokens", corpus.NumTokens())
	return corpus, nil
}

// BuildVocabulary builds the vocabulary of corpus with the configured
// minimum token count.
func (p *Pipeline) BuildVocabulary(corpus Corpus) (*Vocabulary, error) {
	var v *Vocabulary
	var distinct int
	err := p.metrics.Time(telemetry.MetricBuildTime, func() error {
		counts := vocab.CountTokens(corpus)
		distinct = counts.Len()

		var buildErr error
		v, buildErr = vocab.BuildFromCounts(counts, p.config.Vocabulary.MinTokenCount)
		return buildErr
	})
	if err != nil {
		p.logger.Error("Failed to build vocabulary", "error", err)
		return nil, err
	}

	kept := v.Len() - vocab.NumReserved
	p.metrics.IncrementCounter(telemetry.MetricVocabularyBuilds, 1)
	p.metrics.SetGauge(telemetry.MetricCorpusDistinctTokens, float64(distinct))
	p.metrics.SetGauge(telemetry.MetricTokensFiltered, float64(distinct-kept))
	p.metrics.SetGauge(telemetry.MetricVocabularySize, float64(v.Len()))

	p.logger.Info("Built vocabulary", "size", v.Len(), "distinct_tokens", distinct,
		"min_token_count", p.config.Vocabulary.MinTokenCount)
	return v, nil
}

// AlignEmbedding loads the configured pretrained embedding and aligns it to v.
func (p *Pipeline) AlignEmbedding(v *Vocabulary) (*Table, error) {
	path := p.config.Embedding.Path
	if path == "" {
		return nil, errortypes.ConfigError(nil, "embedding.path is not set")
	}

	p.logger.Info("Loading embedding", "path", path)
	var src *Table
	err := p.metrics.Time(telemetry.MetricLoadEmbeddingTime, func() error {
		var loadErr error
		src, loadErr = embedding.LoadCSVFile(path)
		return loadErr
	})
	if err != nil {
		p.logger.Error("Failed to load embedding", "path", path, "error", err)
		return nil, err
	}
	p.metrics.SetGauge(telemetry.MetricEmbeddingSourceRows, float64(src.Len()))
	p.metrics.SetGauge(telemetry.MetricEmbeddingDimensions, float64(src.Dim()))

	var aligned *Table
	err = p.metrics.Time(telemetry.MetricAlignTime, func() error {
		var alignErr error
		aligned, alignErr = embedding.Align(src, v, p.rng)
		return alignErr
	})
	if err != nil {
		p.logger.Error("Failed to align embedding", "error", err)
		return nil, err
	}

	synthesized := len(aligned.Synthesized())
	p.metrics.IncrementCounter(telemetry.MetricEmbeddingKnownRows, int64(aligned.Len()-synthesized))
	p.metrics.IncrementCounter(telemetry.MetricEmbeddingSynthesized, int64(synthesized))

	p.logger.Info("Aligned embedding", "rows", aligned.Len(), "synthesized", synthesized, "dim", aligned.Dim())
	return aligned, nil
}

// Run loads the corpus, builds and writes the vocabulary, and when an
// embedding path is configured aligns and writes the embedding.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	p.logger.Info("Starting pipeline run", "run_id", runID)

	corpus, err := p.LoadCorpus()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err := p.BuildVocabulary(corpus)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:          runID,
		VocabularySize: v.Len(),
		Fingerprint:    Fingerprint(v.Tokens()),
	}

	if out := p.config.Vocabulary.OutputPath; out != "" {
		err := p.metrics.Time(telemetry.MetricWriteTime, func() error {
			return vocab.WriteVocabularyFile(out, v)
		})
		if err != nil {
			p.logger.Error("Failed to write vocabulary", "path", out, "error", err)
			return nil, err
		}
		p.logger.Info("Wrote vocabulary", "path", out)
	}

	if p.config.Embedding.Path != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		aligned, err := p.AlignEmbedding(v)
		if err != nil {
			return nil, err
		}

		out := p.config.Embedding.OutputPath
		err = p.metrics.Time(telemetry.MetricWriteTime, func() error {
			return embedding.WriteCSVFile(out, aligned)
		})
		if err != nil {
			p.logger.Error("Failed to write aligned embedding", "path", out, "error", err)
			return nil, err
		}
		p.logger.Info("Wrote aligned embedding", "path", out)

		result.EmbeddingRows = aligned.Len()
		result.Synthesized = len(aligned.Synthesized())
	}

	p.metrics.RecordTimestamp(telemetry.MetricLastRun)
	p.logger.Info("Pipeline run complete", "run_id", runID)
	return result, nil
}

// BuildVocabulary builds a vocabulary from corpus, keeping tokens that occur
// at least minTokenCount times.
func BuildVocabulary(corpus Corpus, minTokenCount int) (*Vocabulary, error) {
	return vocab.Build(corpus, minTokenCount)
}

// AlignEmbedding restricts src to the tokens of v, synthesizing vectors for
// tokens src lacks. A nil v returns src unchanged.
func AlignEmbedding(src *Table, v *Vocabulary, rng Rand) (*Table, error) {
	return embedding.Align(src, v, rng)
}

// Fingerprint returns a short stable identifier of an ordered token list, so
// two vocabularies can be compared without diffing their files.
func Fingerprint(tokens []string) string {
	return util.Fingerprint(tokens)
}

// IgnoreClassAccuracy scores predicted labels position by position, skipping
// positions whose true label is ignore.
func IgnoreClassAccuracy(yTrue, yPred [][]int, ignore int) (float64, error) {
	return metrics.IgnoreClassAccuracy(yTrue, yPred, ignore)
}

// WholeSentenceAccuracy scores predicted labels sequence by sequence.
func WholeSentenceAccuracy(yTrue, yPred [][]int, ignore int) (float64, error) {
	return metrics.WholeSentenceAccuracy(yTrue, yPred, ignore)
}

// Argmax converts rows of class scores to class labels.
func Argmax(rows [][]float64) []int {
	return metrics.Argmax(rows)
}

// ArgmaxSequences converts a batch of score sequences to label sequences.
func ArgmaxSequences(batch [][][]float64) [][]int {
	return metrics.ArgmaxSequences(batch)
}

// PathSearchSuccess counts the examples for which search finds the expected
// path. It also returns the number of examples.
func PathSearchSuccess(search PathSearch, examples []PathExample) (int, int) {
	return metrics.PathSearchSuccess(search, examples)
}

// SaveBinaryPredictions writes "index,pos|neg" lines for binary predictions
// to path.
func SaveBinaryPredictions(path string, preds []int) error {
	return dataset.SaveBinaryPredictionsFile(path, preds)
}

// SaveSequencePredictions writes one label per line to path, separating
// sentences with a line holding a single space.
func SaveSequencePredictions(path string, preds [][]string) error {
	return dataset.SaveSequencePredictionsFile(path, preds)
}

// Server serves the pipeline operations as MCP tools over stdio.
type Server struct {
	toolServer server.ToolServer
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// NewServer creates a tool server sharing the pipeline's logger and metrics.
func (p *Pipeline) NewServer() (*Server, error) {
	p.logger.Info("Initializing vocab tool server component")
	toolServer := server.NewVocabToolServer(p.metrics, p.logger)
	if err := toolServer.Initialize(); err != nil {
		p.logger.Error("Failed to initialize MCP vocab tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "failed to initialize MCP vocab tool server component")
	}

	return &Server{
		toolServer: toolServer,
		metrics:    p.metrics,
		logger:     p.logger,
	}, nil
}

// Start serves tool calls until stdin closes.
func (s *Server) Start() error {
	s.logger.Info("Starting vocabprep tool server")
	return s.toolServer.Start()
}

// Stop stops the tool server and logs the collected metrics.
func (s *Server) Stop() error {
	s.logger.Info("Stopping vocabprep tool server")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}
	s.logger.Debug(s.metrics.GetReport())
	return nil
}

package server

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/localrivet/gomcp/server"

	"github.com/localrivet/vocabprep/internal/dataset"
	"github.com/localrivet/vocabprep/internal/embedding"
	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/telemetry"
	"github.com/localrivet/vocabprep/internal/tools"
	"github.com/localrivet/vocabprep/internal/util"
	"github.com/localrivet/vocabprep/internal/vocab"
)

// MCPVocabToolServer implements the ToolServer interface for building
// vocabularies, aligning embeddings and encoding text over MCP.
type MCPVocabToolServer struct {
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger
	mcpServer server.Server
}

// NewVocabToolServer creates a new MCPVocabToolServer instance. A nil
// logger falls back to slog.Default().
func NewVocabToolServer(metrics *telemetry.MetricsCollector, logger *slog.Logger) *MCPVocabToolServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MCPVocabToolServer{
		metrics: metrics,
		logger:  logger,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPVocabToolServer) Initialize() error {
	s.logger.Info("Initializing MCP Vocab Tool Server")

	if s.metrics == nil {
		return errortypes.ConfigError(errors.New("missing metrics collector"), "server initialization failed")
	}

	srv := server.NewServer("vocabprep")

	srv = srv.Tool(tools.ToolBuildVocabulary, "Build a vocabulary from a corpus file and optionally write it as token\\tid lines",
		s.handleBuildVocabulary)

	srv = srv.Tool(tools.ToolAlignEmbedding, "Align a pretrained embedding CSV to a vocabulary file",
		s.handleAlignEmbedding)

	srv = srv.Tool(tools.ToolEncodeText, "Encode text as token IDs using a vocabulary file",
		s.handleEncodeText)

	s.mcpServer = srv
	s.logger.Info("MCP Vocab Tool Server initialized successfully", "tool_count", 3)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPVocabToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(errors.New("server not initialized"), "cannot start server")
	}

	s.logger.Info("Starting MCP Vocab Tool Server")
	return s.mcpServer.AsStdio().Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPVocabToolServer) Stop() error {
	s.logger.Info("Stopping MCP Vocab Tool Server")
	// The server will exit when stdin is closed
	return nil
}

// fail logs err and returns its response code and message.
func (s *MCPVocabToolServer) fail(err error) (string, string) {
	errortypes.LogError(s.logger, err)
	resp := errorToResponse(err)
	return resp.Code, resp.Message
}

// handleBuildVocabulary handles the build_vocabulary MCP tool call.
func (s *MCPVocabToolServer) handleBuildVocabulary(ctx *server.Context, req tools.BuildVocabularyRequest) (tools.BuildVocabularyResponse, error) {
	s.logger.Info("Processing build_vocabulary request", "corpus_path", req.CorpusPath, "format", req.Format, "min_token_count", req.MinTokenCount)

	response := tools.BuildVocabularyResponse{
		Status: tools.StatusSuccess,
	}

	if req.CorpusPath == "" {
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(errortypes.ValidationError(nil, "corpus_path is required"))
		return response, nil
	}

	format := req.Format
	if format == "" {
		format = tools.DefaultFormat
	}

	var corpus vocab.Corpus
	err := s.metrics.Time(telemetry.MetricLoadCorpusTime, func() error {
		var loadErr error
		corpus, loadErr = dataset.LoadCorpusFile(req.CorpusPath, dataset.Format(format))
		return loadErr
	})
	if err != nil {
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(err)
		return response, nil
	}
	s.metrics.IncrementCounter(telemetry.MetricCorpusDocuments, int64(len(corpus)))
	s.metrics.IncrementCounter(telemetry.MetricCorpusTokens, int64(corpus.NumTokens()))

	var v *vocab.Vocabulary
	err = s.metrics.Time(telemetry.MetricBuildTime, func() error {
		var buildErr error
		v, buildErr = vocab.Build(corpus, req.MinTokenCount)
		return buildErr
	})
	if err != nil {
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(err)
		return response, nil
	}
	s.metrics.IncrementCounter(telemetry.MetricVocabularyBuilds, 1)
	s.metrics.SetGauge(telemetry.MetricVocabularySize, float64(v.Len()))

	if req.OutputPath != "" {
		s.logger.Debug("Writing vocabulary", "path", req.OutputPath)
		err = s.metrics.Time(telemetry.MetricWriteTime, func() error {
			return vocab.WriteVocabularyFile(req.OutputPath, v)
		})
		if err != nil {
			response.Status = tools.StatusError
			response.Code, response.Error = s.fail(err)
			return response, nil
		}
	}

	response.Size = v.Len()
	response.Fingerprint = util.Fingerprint(v.Tokens())
	s.logger.Info("Successfully built vocabulary", "size", response.Size, "fingerprint", response.Fingerprint)

	return response, nil
}

// handleAlignEmbedding handles the align_embedding MCP tool call.
func (s *MCPVocabToolServer) handleAlignEmbedding(ctx *server.Context, req tools.AlignEmbeddingRequest) (tools.AlignEmbeddingResponse, error) {
	s.logger.Info("Processing align_embedding request", "embedding_path", req.EmbeddingPath, "vocab_path", req.VocabPath)

	response := tools.AlignEmbeddingResponse{
		Status: tools.StatusSuccess,
	}

	if req.EmbeddingPath == "" || req.OutputPath == "" {
		err := errortypes.ValidationError(nil, "embedding_path and output_path are required").
			WithField("embedding_path", req.EmbeddingPath).
			WithField("output_path", req.OutputPath)
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(err)
		return response, nil
	}

	var src *embedding.Table
	err := s.metrics.Time(telemetry.MetricLoadEmbeddingTime, func() error {
		var loadErr error
		src, loadErr = embedding.LoadCSVFile(req.EmbeddingPath)
		return loadErr
	})
	if err != nil {
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(err)
		return response, nil
	}
	s.metrics.SetGauge(telemetry.MetricEmbeddingSourceRows, float64(src.Len()))
	s.metrics.SetGauge(telemetry.MetricEmbeddingDimensions, float64(src.Dim()))

	// Without a vocabulary the source table is written as is.
	var v *vocab.Vocabulary
	if req.VocabPath != "" {
		v, err = vocab.LoadFile(req.VocabPath)
		if err != nil {
			response.Status = tools.StatusError
			response.Code, response.Error = s.fail(err)
			return response, nil
		}
	}

	var rng embedding.Rand
	if req.Seed != 0 {
		rng = embedding.NewRand(req.Seed)
	}

	var aligned *embedding.Table
	err = s.metrics.Time(telemetry.MetricAlignTime, func() error {
		var alignErr error
		aligned, alignErr = embedding.Align(src, v, rng)
		return alignErr
	})
	if err != nil {
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(err)
		return response, nil
	}

	synthesized := len(aligned.Synthesized())
	s.metrics.IncrementCounter(telemetry.MetricEmbeddingKnownRows, int64(aligned.Len()-synthesized))
	s.metrics.IncrementCounter(telemetry.MetricEmbeddingSynthesized, int64(synthesized))

	err = s.metrics.Time(telemetry.MetricWriteTime, func() error {
		return embedding.WriteCSVFile(req.OutputPath, aligned)
	})
	if err != nil {
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(err)
		return response, nil
	}

	response.Rows = aligned.Len()
	response.Synthesized = synthesized
	s.logger.Info("Successfully aligned embedding", "rows", response.Rows, "synthesized", response.Synthesized)

	return response, nil
}

// handleEncodeText handles the encode_text MCP tool call.
func (s *MCPVocabToolServer) handleEncodeText(ctx *server.Context, req tools.EncodeTextRequest) (tools.EncodeTextResponse, error) {
	s.logger.Info("Processing encode_text request", "vocab_path", req.VocabPath, "text_length", len(req.Text))

	response := tools.EncodeTextResponse{
		Status: tools.StatusSuccess,
	}

	v, err := vocab.LoadFile(req.VocabPath)
	if err != nil {
		response.Status = tools.StatusError
		response.Code, response.Error = s.fail(err)
		return response, nil
	}

	doc := vocab.Document(strings.Fields(strings.ToLower(req.Text)))
	response.IDs = v.Encode(doc, req.Wrap)
	s.logger.Debug("Encoded text", "tokens", len(doc))

	return response, nil
}

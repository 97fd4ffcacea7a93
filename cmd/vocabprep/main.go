package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/localrivet/vocabprep"
	"github.com/localrivet/vocabprep/internal/config"
	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/logger"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	serve := flag.Bool("serve", false, "serve the pipeline as MCP tools over stdio")
	writeConfig := flag.Bool("write-config", false, "write the resolved configuration to the config path and exit")
	flag.Parse()

	// Initialize logging first thing
	appLogger := logger.New(logger.DefaultConfig())
	logger.SetDefaultLogger(appLogger)

	appLogger.Info("vocabprep - Starting...")

	cfg, err := config.InitGlobal(*configPath)
	if err != nil {
		errortypes.LogError(appLogger.Slog(), err)
		appLogger.Fatal("Failed to load configuration")
	}

	// Configure logging based on config
	appLogger = config.GetLoggerFromConfig(cfg)
	logger.SetDefaultLogger(appLogger)
	appLogger.Debug("Log level set to %s", cfg.Logging.Level)

	if *writeConfig {
		if err := cfg.Save(); err != nil {
			errortypes.LogError(appLogger.Slog(), err)
			appLogger.Fatal("Failed to write configuration")
		}
		appLogger.Info("Wrote configuration to %s", cfg.GetConfigPath())
		return
	}

	pipelineLogger := appLogger.WithContext("pipeline")
	pipeline, err := vocabprep.NewPipeline(vocabprep.PipelineOptions{
		Config: cfg,
		Logger: pipelineLogger.Slog(),
	})
	if err != nil {
		errortypes.LogError(pipelineLogger.Slog(), err)
		appLogger.Fatal("Failed to create pipeline")
	}

	if *serve {
		runServer(pipeline, appLogger)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Run(ctx)
	if err != nil {
		errortypes.LogError(pipelineLogger.Slog(), err)
		appLogger.Fatal("Pipeline failed")
	}

	appLogger.WithFields(map[string]interface{}{
		"run_id":          result.RunID,
		"vocabulary_size": result.VocabularySize,
		"fingerprint":     result.Fingerprint,
		"embedding_rows":  result.EmbeddingRows,
		"synthesized":     result.Synthesized,
	}).Info("Pipeline finished")
	appLogger.Debug(pipeline.Metrics().GetReport())
}

// runServer serves the MCP tools until stdin closes or a signal arrives.
func runServer(pipeline *vocabprep.Pipeline, log *logger.Logger) {
	srvLogger := log.WithContext("server")

	srv, err := pipeline.NewServer()
	if err != nil {
		errortypes.LogError(srvLogger.Slog(), err)
		log.Fatal("Failed to initialize MCP server")
	}

	// Handle graceful shutdown
	setupSignalHandler(srv, log)

	srvLogger.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		errortypes.LogError(srvLogger.Slog(), errortypes.InternalError(err, "MCP server failed"))
		log.Fatal("Failed to start MCP server")
	}
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(srv *vocabprep.Server, log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		if err := srv.Stop(); err != nil {
			errortypes.LogError(log.Slog(), err)
		}

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}

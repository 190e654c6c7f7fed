package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docrank/internal/api"
	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/embedding"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/pathstore"
	"github.com/dgallion1/docrank/internal/pipeline"
)

func main() {
	_ = godotenv.Load(".env")
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the embedder once; it is shared by every worker.
	provider, err := embedding.NewProvider(embedding.ProviderConfig{
		Provider:   cfg.Embedder,
		Model:      cfg.EmbeddingModel,
		CacheDir:   cfg.EmbeddingCacheDir,
		BaseURL:    cfg.EmbeddingBaseURL,
		APIKey:     cfg.EmbeddingAPIKey,
		BatchSize:  cfg.EmbeddingBatchSize,
		Timeout:    cfg.EmbeddingTimeout,
		HashingDim: cfg.HashingDim,
	}, log)
	if err != nil {
		log.Error("embedder init failed", "embedder", cfg.Embedder, "error", err)
		os.Exit(1)
	}
	emb := embedding.WithStats(provider, embedding.NewLatencyStats(15*time.Minute))
	log.Info("embedder ready", "provider", emb.Name(), "dimension", emb.Dimension())

	// Optional report archive.
	var ps *pathstore.Client
	var archive pipeline.ReportArchive
	if cfg.PathstoreURL != "" {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		archive = ps
	}

	// Initialize pipeline.
	analyzer := pipeline.NewAnalyzer(emb, pipeline.AnalyzerConfig{
		TopSections:           cfg.TopSections,
		TopSubsections:        cfg.TopSubsections,
		SubsectionsPerSection: cfg.SubsectionsPerSection,
		Parser:                parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, log)
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, analyzer, archive, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, ps, emb, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()

		if err := emb.Close(); err != nil {
			log.Warn("embedder close failed", "error", err)
		}
		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting docrank", "port", cfg.Port, "embedder", cfg.Embedder, "archive", ps != nil)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

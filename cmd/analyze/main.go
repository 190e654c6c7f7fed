// Command analyze ranks the sections of a directory of PDFs for a persona
// and writes the report as JSON.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/embedding"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/persona"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/report"
)

var version = "dev"

// options are the command-line overrides. Empty values keep the
// configured setting.
type options struct {
	input   string
	output  string
	persona string
	job     string
	config  string
}

func main() {
	_ = godotenv.Load(".env")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank PDF sections for a persona and task",
		Long: `analyze reads every PDF in the input directory, splits each into titled
sections, ranks them against "Persona: <persona>. Task: <job>" and writes the
top sections and excerpts to <output>/challenge1b_output.json.

When no persona or job is configured they are inferred from the filenames.

Examples:
  # Use INPUT_DIR and OUTPUT_DIR from the environment
  analyze

  # Explicit directories and persona
  analyze --input ./pdfs --output ./out --persona "Travel Planner" --job "Plan a 4-day trip"`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil))
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "directory of PDFs (default $INPUT_DIR)")
	cmd.Flags().StringVar(&opts.output, "output", "", "directory the report is written to (default $OUTPUT_DIR)")
	cmd.Flags().StringVar(&opts.persona, "persona", "", "persona description (default $PERSONA, then inferred)")
	cmd.Flags().StringVar(&opts.job, "job", "", "job to be done (default $JOB_TO_BE_DONE, then inferred)")
	cmd.Flags().StringVar(&opts.config, "config", "", "YAML config file (default $CONFIG_FILE or ./docrank.yaml)")
	return cmd
}

func loadConfig(opts options) (config.Config, error) {
	if opts.config != "" {
		if err := os.Setenv("CONFIG_FILE", opts.config); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if opts.input != "" {
		cfg.InputDir = opts.input
	}
	if opts.output != "" {
		cfg.OutputDir = opts.output
	}
	if opts.persona != "" {
		cfg.Persona = opts.persona
	}
	if opts.job != "" {
		cfg.JobToBeDone = opts.job
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, opts options, log *slog.Logger, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	paths, err := pipeline.ListPDFs(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found in %s", cfg.InputDir)
	}

	profile := persona.Resolve(paths, cfg.Persona, cfg.JobToBeDone)
	log.Info("starting analysis",
		"documents", len(paths),
		"persona", profile.Persona,
		"job_to_be_done", profile.Job,
	)

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
		return fmt.Errorf("embedder: %w", err)
	}
	defer provider.Close()

	analyzer := pipeline.NewAnalyzer(provider, pipeline.AnalyzerConfig{
		TopSections:           cfg.TopSections,
		TopSubsections:        cfg.TopSubsections,
		SubsectionsPerSection: cfg.SubsectionsPerSection,
		Parser:                parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, log)
	rep := analyzer.AnalyzePaths(ctx, paths, profile.Persona, profile.Job)

	outPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	if err := report.Save(outPath, rep); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	log.Info("report written",
		"path", outPath,
		"sections", len(rep.ExtractedSections),
		"subsections", len(rep.SubsectionAnalysis),
	)
	fmt.Fprintln(out, outPath)
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when CONFIG_FILE is unset and the file exists.
const DefaultConfigFile = "docrank.yaml"

type Config struct {
	Port string `yaml:"port"`

	// Auth
	DocrankAPIKey string `yaml:"api_key"`

	// Batch mode
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`
	OutputFile  string `yaml:"output_file"`
	Persona     string `yaml:"persona"`
	JobToBeDone string `yaml:"job_to_be_done"`

	// Embeddings
	Embedder           string        `yaml:"embedder"`
	EmbeddingModel     string        `yaml:"embedding_model"`
	EmbeddingCacheDir  string        `yaml:"embedding_cache_dir"`
	EmbeddingBaseURL   string        `yaml:"embedding_base_url"`
	EmbeddingAPIKey    string        `yaml:"embedding_api_key"`
	EmbeddingBatchSize int           `yaml:"embedding_batch_size"`
	EmbeddingTimeout   time.Duration `yaml:"embedding_timeout"`
	HashingDim         int           `yaml:"hashing_dim"`

	// Ranking limits
	TopSections           int `yaml:"top_sections"`
	TopSubsections        int `yaml:"top_subsections"`
	SubsectionsPerSection int `yaml:"subsections_per_section"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	// Report archive
	PathstoreURL    string `yaml:"pathstore_url"`
	PathstoreAPIKey string `yaml:"pathstore_api_key"`
}

func defaults() Config {
	return Config{
		Port:                  "8090",
		InputDir:              "/app/input",
		OutputDir:             "/app/output",
		OutputFile:            "challenge1b_output.json",
		Embedder:              "fastembed",
		EmbeddingBatchSize:    32,
		EmbeddingTimeout:      60 * time.Second,
		HashingDim:            384,
		TopSections:           5,
		TopSubsections:        5,
		SubsectionsPerSection: 2,
		WorkerCount:           4,
		MaxQueueSize:          100,
		MaxUploadBytes:        52428800, // 50MB
		JobTTL:                1 * time.Hour,
		PDFFallbackPdftotext:  true,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (or docrank.yaml when present), then the environment.
func Load() (Config, error) {
	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	required := path != ""
	if !required {
		path = DefaultConfigFile
	}
	if err := loadFile(path, &cfg); err != nil {
		if required || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.DocrankAPIKey = envOr("DOCRANK_API_KEY", cfg.DocrankAPIKey)

	cfg.InputDir = envOr("INPUT_DIR", cfg.InputDir)
	cfg.OutputDir = envOr("OUTPUT_DIR", cfg.OutputDir)
	cfg.OutputFile = envOr("OUTPUT_FILE", cfg.OutputFile)
	cfg.Persona = envOr("PERSONA", cfg.Persona)
	cfg.JobToBeDone = envOr("JOB_TO_BE_DONE", cfg.JobToBeDone)

	cfg.Embedder = envOr("EMBEDDER", cfg.Embedder)
	cfg.EmbeddingModel = envOr("EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.EmbeddingCacheDir = envOr("EMBEDDING_CACHE_DIR", cfg.EmbeddingCacheDir)
	cfg.EmbeddingBaseURL = envOr("EMBEDDING_BASE_URL", cfg.EmbeddingBaseURL)
	cfg.EmbeddingAPIKey = envOr("EMBEDDING_API_KEY", cfg.EmbeddingAPIKey)
	cfg.EmbeddingBatchSize = envInt("EMBEDDING_BATCH_SIZE", cfg.EmbeddingBatchSize)
	cfg.EmbeddingTimeout = envDuration("EMBEDDING_TIMEOUT", cfg.EmbeddingTimeout)
	cfg.HashingDim = envInt("HASHING_DIM", cfg.HashingDim)

	cfg.TopSections = envInt("TOP_SECTIONS", cfg.TopSections)
	cfg.TopSubsections = envInt("TOP_SUBSECTIONS", cfg.TopSubsections)
	cfg.SubsectionsPerSection = envInt("SUBSECTIONS_PER_SECTION", cfg.SubsectionsPerSection)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	cfg.PathstoreURL = envOr("PATHSTORE_URL", cfg.PathstoreURL)
	cfg.PathstoreAPIKey = envOr("PATHSTORE_API_KEY", cfg.PathstoreAPIKey)

	d := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}
	if cfg.EmbeddingBatchSize <= 0 {
		cfg.EmbeddingBatchSize = d.EmbeddingBatchSize
	}
	if cfg.EmbeddingTimeout <= 0 {
		cfg.EmbeddingTimeout = d.EmbeddingTimeout
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks settings shared by the CLI and the server.
func (c Config) Validate() error {
	switch c.Embedder {
	case "fastembed", "hashing":
	case "openai":
		if c.EmbeddingBaseURL == "" {
			return fmt.Errorf("EMBEDDING_BASE_URL is required for the openai embedder")
		}
	default:
		return fmt.Errorf("EMBEDDER must be fastembed, openai or hashing, got %q", c.Embedder)
	}
	if c.TopSections <= 0 {
		return fmt.Errorf("TOP_SECTIONS must be positive")
	}
	if c.TopSubsections <= 0 {
		return fmt.Errorf("TOP_SUBSECTIONS must be positive")
	}
	if c.SubsectionsPerSection <= 0 {
		return fmt.Errorf("SUBSECTIONS_PER_SECTION must be positive")
	}
	if c.Embedder == "hashing" && c.HashingDim <= 0 {
		return fmt.Errorf("HASHING_DIM must be positive")
	}
	return nil
}

// ValidateServer checks everything Validate does plus the API key.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocrankAPIKey == "" {
		return fmt.Errorf("DOCRANK_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

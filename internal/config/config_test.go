package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "DOCRANK_API_KEY", "INPUT_DIR", "OUTPUT_DIR", "OUTPUT_FILE",
	"PERSONA", "JOB_TO_BE_DONE", "EMBEDDER", "EMBEDDING_MODEL", "EMBEDDING_CACHE_DIR",
	"EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "EMBEDDING_BATCH_SIZE", "EMBEDDING_TIMEOUT",
	"HASHING_DIM", "TOP_SECTIONS", "TOP_SUBSECTIONS", "SUBSECTIONS_PER_SECTION",
	"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "JOB_TTL",
	"PDF_FALLBACK_PDFTOTEXT", "PATHSTORE_URL", "PATHSTORE_API_KEY",
}

// cleanEnv blanks every key Load reads and moves into an empty directory so
// no docrank.yaml is picked up.
func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "/app/input", cfg.InputDir)
	assert.Equal(t, "/app/output", cfg.OutputDir)
	assert.Equal(t, "challenge1b_output.json", cfg.OutputFile)
	assert.Equal(t, "fastembed", cfg.Embedder)
	assert.Equal(t, 5, cfg.TopSections)
	assert.Equal(t, 5, cfg.TopSubsections)
	assert.Equal(t, 2, cfg.SubsectionsPerSection)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.True(t, cfg.PDFFallbackPdftotext)
	assert.Empty(t, cfg.PathstoreURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("EMBEDDER", "hashing")
	t.Setenv("TOP_SECTIONS", "10")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("MAX_QUEUE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hashing", cfg.Embedder)
	assert.Equal(t, 10, cfg.TopSections)
	assert.Equal(t, 30*time.Minute, cfg.JobTTL)
	assert.False(t, cfg.PDFFallbackPdftotext)
	assert.Equal(t, 4, cfg.WorkerCount, "non-positive falls back to default")
	assert.Equal(t, 100, cfg.MaxQueueSize, "unparseable falls back")
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := cleanEnv(t)
	yml := `
persona: Travel Planner
embedder: openai
embedding_base_url: http://localhost:11434/v1
top_sections: 7
job_ttl: 2h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yml), 0o644))
	t.Setenv("TOP_SECTIONS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Travel Planner", cfg.Persona)
	assert.Equal(t, "openai", cfg.Embedder)
	assert.Equal(t, 2*time.Hour, cfg.JobTTL)
	assert.Equal(t, 3, cfg.TopSections, "env wins over file")
	assert.Equal(t, "/app/input", cfg.InputDir, "unset keys keep defaults")
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	cleanEnv(t)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err, "an explicit file must exist")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("top_sections: [oops"), 0o644))
	t.Setenv("CONFIG_FILE", bad)
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := defaults()
	assert.NoError(t, ok.Validate())

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"unknown embedder", func(c *Config) { c.Embedder = "word2vec" }},
		{"openai without url", func(c *Config) { c.Embedder = "openai" }},
		{"zero sections", func(c *Config) { c.TopSections = 0 }},
		{"zero subsections", func(c *Config) { c.TopSubsections = 0 }},
		{"zero per section", func(c *Config) { c.SubsectionsPerSection = 0 }},
		{"hashing without dim", func(c *Config) { c.Embedder = "hashing"; c.HashingDim = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mod(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateServer(t *testing.T) {
	c := defaults()
	assert.Error(t, c.ValidateServer())

	c.DocrankAPIKey = "secret"
	assert.NoError(t, c.ValidateServer())

	c.Embedder = "bogus"
	assert.Error(t, c.ValidateServer())
}

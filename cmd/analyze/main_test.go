package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docrank/internal/report"
)

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// offlineEnv selects the hashing embedder and isolates the test from any
// ambient configuration.
func offlineEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "PERSONA", "JOB_TO_BE_DONE", "OUTPUT_FILE", "TOP_SECTIONS"} {
		t.Setenv(k, "")
	}
	t.Setenv("EMBEDDER", "hashing")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Chdir(t.TempDir())
}

func TestRun_NoPDFs(t *testing.T) {
	offlineEnv(t)
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("hello"), 0o644))

	err := run(context.Background(), options{input: in, output: t.TempDir()}, quietLog(), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF files found")
}

func TestRun_MissingInputDir(t *testing.T) {
	offlineEnv(t)
	err := run(context.Background(), options{input: filepath.Join(t.TempDir(), "nope")}, quietLog(), io.Discard)
	assert.Error(t, err)
}

func TestRun_UnreadablePDFsStillWriteReport(t *testing.T) {
	offlineEnv(t)
	in, out := t.TempDir(), t.TempDir()
	for _, name := range []string{"Paris hotels.pdf", "trip.PDF"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte("not really a pdf"), 0o644))
	}

	var stdout bytes.Buffer
	err := run(context.Background(), options{input: in, output: out, job: "Plan a trip"}, quietLog(), &stdout)
	require.NoError(t, err)

	path := filepath.Join(out, "challenge1b_output.json")
	assert.Equal(t, path, strings.TrimSpace(stdout.String()))

	rep, err := report.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris hotels.pdf", "trip.PDF"}, rep.Metadata.InputDocuments)
	assert.Equal(t, "Travel Planner", rep.Metadata.Persona, "persona inferred from filenames")
	assert.Equal(t, "Plan a trip", rep.Metadata.JobToBeDone)
	assert.Empty(t, rep.ExtractedSections)
	assert.Empty(t, rep.SubsectionAnalysis)
}

func TestRun_InvalidConfig(t *testing.T) {
	offlineEnv(t)
	t.Setenv("EMBEDDER", "word2vec")
	err := run(context.Background(), options{input: t.TempDir()}, quietLog(), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"input", "output", "persona", "job", "config"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

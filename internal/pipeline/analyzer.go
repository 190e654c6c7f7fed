package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docrank/internal/chunker"
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/embedding"
	"github.com/dgallion1/docrank/internal/extract"
	"github.com/dgallion1/docrank/internal/metrics"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/rank"
	"github.com/dgallion1/docrank/internal/report"
)

// Input is one document of a collection. Open is called once and the
// reader is closed before the next input is opened.
type Input struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileInput reads a document from disk.
func FileInput(path string) Input {
	return Input{
		Name: path,
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesInput serves a document already held in memory.
func BytesInput(name string, data []byte) Input {
	return Input{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// AnalyzerConfig bounds the report.
type AnalyzerConfig struct {
	TopSections           int
	TopSubsections        int
	SubsectionsPerSection int
	Parser                parser.Options
}

// DefaultAnalyzerConfig returns five sections, five subsections and two
// candidates per section.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		TopSections:           5,
		TopSubsections:        5,
		SubsectionsPerSection: 2,
		Parser:                parser.Options{FallbackPdftotext: true},
	}
}

// Hooks observe an analysis while it runs. Nil hooks are skipped.
type Hooks struct {
	// DocumentDone fires after each input with the number of sections found
	// and the error that stopped parsing, if any.
	DocumentDone func(name string, sections int, err error)
	// Ranking fires once every input has been parsed.
	Ranking func(sections int)
}

// Analyzer turns a collection of documents into a ranked report.
type Analyzer struct {
	sections    *rank.Ranker
	subsections *rank.Ranker
	cfg         AnalyzerConfig
	log         *slog.Logger
	now         func() time.Time
}

func NewAnalyzer(emb embedding.Embedder, cfg AnalyzerConfig, log *slog.Logger) *Analyzer {
	d := DefaultAnalyzerConfig()
	if cfg.TopSections <= 0 {
		cfg.TopSections = d.TopSections
	}
	if cfg.TopSubsections <= 0 {
		cfg.TopSubsections = d.TopSubsections
	}
	if cfg.SubsectionsPerSection <= 0 {
		cfg.SubsectionsPerSection = d.SubsectionsPerSection
	}
	r := rank.New(emb, log)
	return &Analyzer{
		sections:    r.WithStage("sections"),
		subsections: r.WithStage("subsections"),
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for report timestamps.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// ExtractSections parses one input and splits it into sections. It never
// fails: a document that cannot be read or parsed yields no sections.
func (a *Analyzer) ExtractSections(in Input) []doctree.Section {
	secs, _ := a.extractSections(in)
	return secs
}

func (a *Analyzer) extractSections(in Input) ([]doctree.Section, error) {
	m := metrics.Get()
	log := a.log.With("document", filepath.Base(in.Name))

	secs, err := a.parseSections(in)
	if err != nil {
		log.Error("document skipped", "error", err)
		m.DocumentsTotal.WithLabelValues("failed").Inc()
		return []doctree.Section{}, err
	}

	m.DocumentsTotal.WithLabelValues("ok").Inc()
	m.SectionsExtracted.Add(float64(len(secs)))
	log.Info("extracted sections", "sections", len(secs))
	return secs, nil
}

func (a *Analyzer) parseSections(in Input) ([]doctree.Section, error) {
	p, err := parser.ForFile(in.Name, a.cfg.Parser)
	if err != nil {
		return nil, err
	}
	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	doc, err := p.Parse(rc, in.Name)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	secs := extract.Sections(doc)
	if secs == nil {
		secs = []doctree.Section{}
	}
	return secs, nil
}

// Analyze ranks every section of inputs against persona and job.
func (a *Analyzer) Analyze(ctx context.Context, inputs []Input, persona, job string) *report.Report {
	return a.Run(ctx, inputs, persona, job, Hooks{})
}

// AnalyzePaths is Analyze over files on disk.
func (a *Analyzer) AnalyzePaths(ctx context.Context, paths []string, persona, job string) *report.Report {
	inputs := make([]Input, len(paths))
	for i, p := range paths {
		inputs[i] = FileInput(p)
	}
	return a.Analyze(ctx, inputs, persona, job)
}

// Run is Analyze with progress hooks.
func (a *Analyzer) Run(ctx context.Context, inputs []Input, persona, job string, hooks Hooks) *report.Report {
	start := time.Now()
	defer func() {
		metrics.Get().AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = filepath.Base(in.Name)
	}

	var all []doctree.Section
	for _, in := range inputs {
		secs, err := a.extractSections(in)
		if hooks.DocumentDone != nil {
			hooks.DocumentDone(filepath.Base(in.Name), len(secs), err)
		}
		all = append(all, secs...)
	}
	if hooks.Ranking != nil {
		hooks.Ranking(len(all))
	}

	query := rank.Query(persona, job)
	ranked := rank.Rank(ctx, a.sections, query, all, rank.SectionText)

	top := make([]doctree.Section, len(ranked))
	for i, r := range ranked {
		top[i] = r.Item
	}

	subs := chunker.Subsections(top, chunker.Config{
		MaxSections: a.cfg.TopSections,
		PerSection:  a.cfg.SubsectionsPerSection,
	})
	rankedSubs := rank.Rank(ctx, a.subsections, query, subs, rank.SubsectionText)

	// Stamped once ranking is done.
	out := report.New(names, persona, job, a.now())
	for i, sec := range top[:min(a.cfg.TopSections, len(top))] {
		out.ExtractedSections = append(out.ExtractedSections, report.ExtractedSection{
			Document:       sec.Document,
			SectionTitle:   sec.Title,
			ImportanceRank: i + 1,
			PageNumber:     sec.Page,
		})
	}

	for _, r := range rankedSubs[:min(a.cfg.TopSubsections, len(rankedSubs))] {
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, report.SubsectionExcerpt{
			Document:    r.Item.Document,
			RefinedText: r.Item.Text,
			PageNumber:  r.Item.Page,
		})
	}

	a.log.Info("analysis complete",
		"documents", len(inputs),
		"sections", len(all),
		"subsections", len(subs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out
}

// ListPDFs returns the PDFs directly inside dir in directory order. The
// suffix check ignores case.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsPDF(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docrank/internal/metrics"
	"github.com/dgallion1/docrank/internal/report"
)

// ReportArchive keeps finished reports beyond the job TTL.
type ReportArchive interface {
	PutReport(ctx context.Context, id string, r *report.Report) error
}

// Worker processes a single analysis job.
type Worker struct {
	analyzer *Analyzer
	archive  ReportArchive
	log      *slog.Logger
}

// NewWorker returns a worker. archive may be nil.
func NewWorker(analyzer *Analyzer, archive ReportArchive, log *slog.Logger) *Worker {
	return &Worker{
		analyzer: analyzer,
		archive:  archive,
		log:      log,
	}
}

// Process runs the full analysis for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	m := metrics.Get()

	uploads := job.Uploads()
	inputs := make([]Input, len(uploads))
	for i, u := range uploads {
		inputs[i] = BytesInput(u.Name, u.Data)
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	failed := 0
	hooks := Hooks{
		DocumentDone: func(name string, sections int, err error) {
			if err != nil {
				failed++
				job.AddError(fmt.Sprintf("%s: %s", name, err))
			}
			job.DocumentParsed(sections)
		},
		// Phase 2: Rank
		Ranking: func(sections int) {
			job.SetStatus(StatusRanking, "ranking")
			log.Info("ranking sections", "sections", sections)
		},
	}

	rep := w.analyzer.Run(ctx, inputs, job.Persona, job.JobToBeDone, hooks)

	if err := ctx.Err(); err != nil {
		log.Warn("analysis cancelled", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		m.JobsTotal.WithLabelValues(string(StatusFailed)).Inc()
		return
	}
	if len(inputs) > 0 && failed == len(inputs) {
		log.Error("no document could be parsed", "documents", len(inputs))
		job.SetStatus(StatusFailed, "parsing")
		m.JobsTotal.WithLabelValues(string(StatusFailed)).Inc()
		return
	}

	job.Complete(rep)
	m.JobsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	log.Info("analysis complete",
		"sections", len(rep.ExtractedSections),
		"subsections", len(rep.SubsectionAnalysis),
	)

	// Phase 3: Archive
	if w.archive == nil {
		return
	}
	if err := w.archive.PutReport(ctx, job.ID, rep); err != nil {
		log.Warn("report archive failed", "error", err)
		return
	}
	log.Info("report archived")
}

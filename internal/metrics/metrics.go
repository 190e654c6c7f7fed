// Package metrics holds the Prometheus collectors shared by the pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for document analysis.
type Metrics struct {
	DocumentsTotal    *prometheus.CounterVec
	SectionsExtracted prometheus.Counter
	EmbedFailures     *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	JobsTotal         *prometheus.CounterVec
}

// Get returns the process-wide metrics, registering them with the default
// registry on first use.
//
// Metrics:
//   - docrank_documents_total{status} - documents parsed ("ok", "failed")
//   - docrank_sections_extracted_total - sections emitted by the extractor
//   - docrank_embed_failures_total{stage} - ranking calls that fell back to zero scores
//   - docrank_analysis_duration_seconds - wall time of one collection analysis
//   - docrank_jobs_total{status} - finished API jobs by terminal status
func Get() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			DocumentsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "docrank_documents_total",
					Help: "Total number of documents processed",
				},
				[]string{"status"},
			),
			SectionsExtracted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "docrank_sections_extracted_total",
				Help: "Total number of sections extracted from documents",
			}),
			EmbedFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "docrank_embed_failures_total",
					Help: "Total number of ranking passes that failed to embed",
				},
				[]string{"stage"}, // "sections" or "subsections"
			),
			AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "docrank_analysis_duration_seconds",
				Help:    "Duration of a full collection analysis in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			}),
			JobsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "docrank_jobs_total",
					Help: "Total number of analysis jobs by terminal status",
				},
				[]string{"status"},
			),
		}
	})
	return globalMetrics
}

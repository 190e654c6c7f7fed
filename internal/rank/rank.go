// Package rank orders sections and excerpts by embedding similarity to a
// persona-and-task query.
package rank

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/embedding"
	"github.com/dgallion1/docrank/internal/metrics"
)

const (
	sectionContentRunes = 800
	subsectionRunes     = 500
)

// Query builds the ranking query shared by both ranking stages.
func Query(persona, job string) string {
	return fmt.Sprintf("Persona: %s. Task: %s", persona, job)
}

// SectionText is the text embedded for a section.
func SectionText(s doctree.Section) string {
	return fmt.Sprintf("Title: %s. Content: %s", s.Title, truncateRunes(s.Content, sectionContentRunes))
}

// SubsectionText is the text embedded for a subsection.
func SubsectionText(s doctree.Subsection) string {
	return truncateRunes(s.Text, subsectionRunes)
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Scored pairs an item with its relevance score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// Ranker scores texts against a query with an embedder.
type Ranker struct {
	emb   embedding.Embedder
	log   *slog.Logger
	stage string
}

func New(emb embedding.Embedder, log *slog.Logger) *Ranker {
	return &Ranker{emb: emb, log: log, stage: "default"}
}

// WithStage returns a copy whose failures are logged and counted under
// stage.
func (r *Ranker) WithStage(stage string) *Ranker {
	c := *r
	c.stage = stage
	return &c
}

// Score embeds the query once and the texts in one batch, returning the
// cosine similarity of each text to the query.
func (r *Ranker) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	qv, err := r.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(qv))
	}

	vecs, err := r.emb.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed items: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed items: expected %d vectors, got %d", len(texts), len(vecs))
	}

	scores := make([]float64, len(vecs))
	for i, v := range vecs {
		if len(v) != len(qv[0]) {
			return nil, fmt.Errorf("embed items: dimension mismatch %d != %d", len(v), len(qv[0]))
		}
		scores[i] = Cosine(qv[0], v)
	}
	return scores, nil
}

// Rank scores items against query and returns them by descending score,
// ties kept in input order. If embedding fails every item scores 0 and the
// input order is returned unchanged. An empty input never reaches the
// embedder.
func Rank[T any](ctx context.Context, r *Ranker, query string, items []T, text func(T) string) []Scored[T] {
	out := make([]Scored[T], len(items))
	for i, it := range items {
		out[i].Item = it
	}
	if len(items) == 0 {
		return out
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = text(it)
	}

	scores, err := r.Score(ctx, query, texts)
	if err != nil {
		r.log.Warn("ranking fell back to input order", "stage", r.stage, "items", len(items), "error", err)
		metrics.Get().EmbedFailures.WithLabelValues(r.stage).Inc()
		return out
	}

	for i := range out {
		out[i].Score = scores[i]
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, c))
}

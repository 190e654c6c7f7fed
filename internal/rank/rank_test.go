package rank

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/metrics"
)

// tableEmbedder returns fixed vectors per text; unknown texts map to the
// zero vector.
type tableEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
	short   bool
}

func (e *tableEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, ok := e.vectors[t]
		if !ok {
			v = []float32{0, 0}
		}
		out = append(out, v)
	}
	if e.short && len(out) > 1 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func identity(s string) string { return s }

func TestRank_OrdersByCosine(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{
		"q":    {1, 0},
		"far":  {0, 1},
		"near": {0.9, 0.1},
		"mid":  {0.5, 0.5},
		"anti": {-1, 0},
	}}
	r := New(emb, quietLog())

	got := Rank(context.Background(), r, "q", []string{"far", "anti", "mid", "near"}, identity)
	require.Len(t, got, 4)

	var order []string
	for _, s := range got {
		order = append(order, s.Item)
	}
	assert.Equal(t, []string{"near", "mid", "far", "anti"}, order)
	assert.InDelta(t, -1.0, got[3].Score, 1e-9)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	assert.Equal(t, 2, emb.calls, "query and items are embedded in two calls")
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	emb := &tableEmbedder{vectors: map[string][]float32{
		"q": {1, 1}, "a": {1, 1}, "b": {1, 1}, "c": {1, 1}, "d": {0, 1},
	}}
	got := Rank(context.Background(), New(emb, quietLog()), "q", []string{"a", "d", "b", "c"}, identity)
	var order []string
	for _, s := range got {
		order = append(order, s.Item)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, order)
}

func TestRank_EmbedderFailureKeepsInputOrder(t *testing.T) {
	stage := "test-failure"
	before := testutil.ToFloat64(metrics.Get().EmbedFailures.WithLabelValues(stage))

	emb := &tableEmbedder{err: errors.New("model unavailable")}
	items := []string{"c", "a", "b"}
	got := Rank(context.Background(), New(emb, quietLog()).WithStage(stage), "q", items, identity)

	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, items[i], s.Item)
		assert.Zero(t, s.Score)
	}
	after := testutil.ToFloat64(metrics.Get().EmbedFailures.WithLabelValues(stage))
	assert.Equal(t, before+1, after)
}

func TestRank_WrongRowCountFallsBack(t *testing.T) {
	emb := &tableEmbedder{short: true, vectors: map[string][]float32{"q": {1, 0}, "a": {0, 1}, "b": {1, 0}}}
	got := Rank(context.Background(), New(emb, quietLog()), "q", []string{"a", "b"}, identity)
	assert.Equal(t, "a", got[0].Item)
	assert.Zero(t, got[0].Score)
	assert.Zero(t, got[1].Score)
}

func TestRank_EmptyNeverEmbeds(t *testing.T) {
	emb := &tableEmbedder{}
	got := Rank(context.Background(), New(emb, quietLog()), "q", []doctree.Section{}, SectionText)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Zero(t, emb.calls)
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "Persona: PhD Researcher. Task: Literature review", Query("PhD Researcher", "Literature review"))
}

func TestSectionText_TruncatesContentByRunes(t *testing.T) {
	s := doctree.Section{Title: "Überblick", Content: strings.Repeat("ä", 900)}
	text := SectionText(s)
	assert.True(t, strings.HasPrefix(text, "Title: Überblick. Content: "))
	content := strings.TrimPrefix(text, "Title: Überblick. Content: ")
	assert.Equal(t, 800, utf8.RuneCountInString(content))
}

func TestSubsectionText_TruncatesByRunes(t *testing.T) {
	assert.Equal(t, 500, utf8.RuneCountInString(SubsectionText(doctree.Subsection{Text: strings.Repeat("日", 700)})))
	assert.Equal(t, "short", SubsectionText(doctree.Subsection{Text: "short"}))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{3, 4}, []float32{6, 8}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 5}), 1e-9)
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 1}))
}

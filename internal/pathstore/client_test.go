package pathstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docrank/internal/report"
)

// fakeStore is an in-memory pathstore speaking the /kv API.
type fakeStore struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	auth  string
}

func newFakeStore(t *testing.T) (*fakeStore, *httptest.Server) {
	t.Helper()
	fs := &fakeStore{nodes: map[string]json.RawMessage{}}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (f *fakeStore) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = r.Header.Get("Authorization")

	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		var keys []string
		for k := range f.nodes {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		nodes := []map[string]any{}
		for _, k := range keys {
			nodes = append(nodes, map[string]any{"key_path": strings.ReplaceAll(k, "/", "."), "value": f.nodes[k]})
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	case r.Method == http.MethodGet:
		v, ok := f.nodes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
	case r.Method == http.MethodPut:
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodDelete:
		delete(f.nodes, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func sampleReport() *report.Report {
	r := report.New([]string{"a.pdf"}, "PhD Researcher", "Literature review",
		time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local))
	r.ExtractedSections = append(r.ExtractedSections, report.ExtractedSection{
		Document: "a.pdf", SectionTitle: "Introduction", ImportanceRank: 1, PageNumber: 1,
	})
	return r
}

func TestReportRoundTrip(t *testing.T) {
	fs, srv := newFakeStore(t)
	c := NewClient(srv.URL+"/", "ps-key")
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.PutReport(ctx, "job-1", sampleReport()))
	fs.mu.Lock()
	assert.Equal(t, "Bearer ps-key", fs.auth)
	fs.mu.Unlock()

	got, err := c.GetReport(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sampleReport(), got)

	list, err := c.ListReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "job-1", list[0].ID)
	assert.Equal(t, "PhD Researcher", list[0].Persona)
	assert.Equal(t, []string{"a.pdf"}, list[0].InputDocuments)

	require.NoError(t, c.DeleteReport(ctx, "job-1"))
	got, err = c.GetReport(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutNode_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "k").PutReport(context.Background(), "x", sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "abc", lastSegment("reports.abc"))
	assert.Equal(t, "abc", lastSegment("reports/abc"))
	assert.Equal(t, "abc", lastSegment("abc"))
}

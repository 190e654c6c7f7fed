package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleEmbedderStats(w http.ResponseWriter, r *http.Request) {
	if s.embedder == nil {
		jsonError(w, "embedder stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"provider":    s.embedder.Name(),
		"dimension":   s.embedder.Dimension(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.embedder.Snapshot(),
	})
}

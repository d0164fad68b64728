package api

import (
	"net/http"
)

// handleStats reports library and import queue counters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	pages := 0
	docs := s.lib.List()
	for _, c := range docs {
		pages += c.Len()
	}
	stats := map[string]any{
		"constellations": len(docs),
		"pages":          pages,
	}
	if s.orchestrator != nil {
		stats["queue_depth"] = s.orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, stats)
}

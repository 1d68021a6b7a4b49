// Package server - stats.go exposes aggregated metrics as JSON.
//
// GET /stats returns request, tool call and budget counters.
package server

import "net/http"

// handleStats returns aggregated metrics as JSON.
// Restricted to localhost to prevent external access to operational metrics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r.RemoteAddr) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.FullStats())
}

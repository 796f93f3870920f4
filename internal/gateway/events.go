package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEvents streams project snapshots as server-sent events. Each
// engine notification becomes one `project` event; the connection stays
// open until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshots, cancel := s.engine.Subscribe()
	defer cancel()

	// Replay the current state so late subscribers start in sync.
	if p, active := s.engine.Current(); active {
		writeEvent(w, "project", p)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case p, open := <-snapshots:
			if !open {
				return
			}
			writeEvent(w, "project", p)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/TimurManjosov/gobucket/internal/telemetry"
)

// handleStream serves the SSE change stream: one "change" event per
// definitions replacement, carrying the new ETag, plus periodic keepalive
// comments so idle proxies don't drop the connection.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := s.subs.subscribe()
	defer unsub()

	telemetry.SSEClients.Inc()
	defer telemetry.SSEClients.Dec()

	// initial event so the client learns the current ETag immediately
	fmt.Fprintf(w, "event: change\ndata: %s\n\n", s.ETag())
	flusher.Flush()

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case etag, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", etag)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"unify-server/src/stream"
)

const keepaliveInterval = 25 * time.Second

// StreamEvents serves the server-sent event feed of refresh statuses and
// data updates. The broker replays the last known status per source on
// connect, so a freshly loaded page sees current state immediately.
func StreamEvents(broker *stream.Broker, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		events, cancel := broker.Subscribe()
		defer cancel()

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-keepalive.C:
				// Comment line keeps proxies from closing the stream.
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case ev, open := <-events:
				if !open {
					return
				}
				payload, err := json.Marshal(ev.Data)
				if err != nil {
					logger.Error().Err(err).Str("event", ev.Name).Msg("failed to encode stream event")
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload)
				flusher.Flush()
			}
		}
	}
}

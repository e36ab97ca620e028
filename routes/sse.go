package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nutricalc/nutricalc-backend/jobs"
	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/observability"
)

// CatalogSSE streams catalog verification updates over Server-Sent Events.
func CatalogSSE(worker *jobs.VerifyWorker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if worker == nil {
			http.Error(w, "SSE not available", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		updateCh := make(chan jobs.CatalogUpdate, 10)
		worker.Subscribe(updateCh)
		observability.SSEClientConnected(1)
		logger.Info("SSE client connected")

		fmt.Fprintf(w, "event: connected\ndata: {\"status\": \"connected\"}\n\n")
		flusher.Flush()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				logger.Info("SSE client disconnected")
				worker.Unsubscribe(updateCh)
				observability.SSEClientConnected(-1)
				return
			case update := <-updateCh:
				data, err := json.Marshal(update)
				if err != nil {
					logger.Error("Failed to marshal catalog update", "error", err)
					continue
				}
				fmt.Fprintf(w, "event: catalog_update\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}

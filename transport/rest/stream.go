package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const keepAliveInterval = 25 * time.Second

// handleStream serves the per-code SSE stream. A subscriber passes its
// last-seen state_version as ?since=N; if the session has advanced, the
// current state is emitted immediately, then one event per mutation until
// the client disconnects.
func (that *Server) handleStream(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleStream")

	flusher, ok := writer.(http.Flusher)
	if !ok {
		that.writeError(writer, http.StatusInternalServerError, "internal", "Streaming is not supported.")
		return
	}

	sinceVersion, _ := strconv.ParseInt(req.URL.Query().Get("since"), 10, 64)

	updates, unsubscribe, err := that.game.Subscribe(req.Context(), req.PathValue("code"), sinceVersion)
	if err != nil {
		that.writeAppError(writer, err)
		return
	}
	defer unsubscribe()

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("X-Accel-Buffering", "no")
	writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-req.Context().Done():
			log.Debug("stream subscriber disconnected")
			return

		case session := <-updates:
			payload, err := json.Marshal(&response{
				OK:    true,
				State: that.statePayload(req.Context(), session),
			})
			if err != nil {
				log.Error("failed to marshal state event", "error", err)
				continue
			}

			fmt.Fprintf(writer, "event: state\ndata: %s\n\n", payload)
			flusher.Flush()

		case <-keepAlive.C:
			fmt.Fprint(writer, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yourusername/tablabaki/internal/agent"
)

// AutoplaySSE streams an agent-versus-agent run as Server-Sent Events.
// GET /api/games/{id}/autoplay/stream?white=...&black=...&max_turns=...&delay_ms=...
//
// Every event carries an AutoplayEvent; the event name is its type. A
// failure after the stream has started is sent as an "error" event.
func (h *Handlers) AutoplaySSE(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	query := r.URL.Query()

	white, err := agent.ParseDifficulty(query.Get("white"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}
	black, err := agent.ParseDifficulty(query.Get("black"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}
	opts := AutoplayOptions{
		White:    white,
		Black:    black,
		MaxTurns: parseIntParam(query.Get("max_turns"), DefaultAutoplayTurns),
		Delay:    time.Duration(parseIntParam(query.Get("delay_ms"), 0)) * time.Millisecond,
	}

	if _, err := h.svc.GetGame(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if h.pool != nil {
		if !h.pool.TryAcquireSlow() {
			writeError(w, http.StatusServiceUnavailable, "too many autoplay streams", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	rc := http.NewResponseController(w)
	// A stream outlives the server write timeout.
	rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	rc.Flush()

	emit := func(ev AutoplayEvent) error {
		if err := writeSSEEvent(w, ev.Type, ev); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := h.svc.Autoplay(r.Context(), id, opts, emit); err != nil {
		if r.Context().Err() != nil {
			return
		}
		h.logger.Warn("autoplay stream failed", "game_id", id, "error", err)
		writeSSEError(w, rc, err.Error())
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data any) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n", jsonData); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}

// writeSSEError writes an error event.
func writeSSEError(w http.ResponseWriter, rc *http.ResponseController, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	rc.Flush()
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil || val < 0 {
		return defaultVal
	}
	return val
}

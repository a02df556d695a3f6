package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/yourusername/tablabaki/pkg/match"
)

// Handlers holds the HTTP handlers and the game service.
type Handlers struct {
	svc     *Service
	version string
	pool    *WorkerPool
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(svc *Service, version string) *Handlers {
	return NewHandlersWithPool(svc, version, nil)
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(svc *Service, version string, pool *WorkerPool) *Handlers {
	return &Handlers{
		svc:     svc,
		version: version,
		pool:    pool,
		logger:  svc.logger,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// writeServiceError maps err to a status and code and logs server faults.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error(), code)
}

// decodeJSON reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// runFast runs fn in a fast pool slot when a pool is configured.
func (h *Handlers) runFast(r *http.Request, fn func() error) error {
	if h.pool == nil {
		return fn()
	}
	return h.pool.RunFast(r.Context(), fn)
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}
	if games, err := h.svc.ListGames(r.Context()); err == nil {
		resp.Games = len(games)
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListVariants handles GET /api/variants
func (h *Handlers) ListVariants(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Variants(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VariantsResponse{Variants: names})
}

// GetVariant handles GET /api/variants/{name}
func (h *Handlers) GetVariant(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.VariantDefinition(r.Context(), r.PathValue("name"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	st, err := h.svc.CreateGame(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// ListGames handles GET /api/games
func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.svc.ListGames(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]GameSummary{"games": games})
}

// GetGame handles GET /api/games/{id}
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DeleteGame handles DELETE /api/games/{id}
func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Game deleted"})
}

// Roll handles POST /api/games/{id}/roll
func (h *Handlers) Roll(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Roll(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Move handles POST /api/games/{id}/move
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	resp, err := h.svc.Move(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AIMove handles POST /api/games/{id}/ai-move
func (h *Handlers) AIMove(w http.ResponseWriter, r *http.Request) {
	var req AIMoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if d := r.URL.Query().Get("difficulty"); d != "" {
		req.Difficulty = d
	}
	var resp *AIMoveResponse
	err := h.runFast(r, func() error {
		var err error
		resp, err = h.svc.AIMove(r.Context(), r.PathValue("id"), req.Difficulty)
		return err
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetPlayer handles POST /api/games/{id}/player
func (h *Handlers) SetPlayer(w http.ResponseWriter, r *http.Request) {
	var req SetPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	st, err := h.svc.SetPlayer(r.Context(), r.PathValue("id"), req.Player)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    fmt.Sprintf("Starting player set to %s", *st.Board.CurrentPlayer),
		"game_state": st,
	})
}

// LegalMoves handles GET /api/games/{id}/legal-moves
func (h *Handlers) LegalMoves(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.LegalMoves(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Explain handles POST /api/games/{id}/explain
func (h *Handlers) Explain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	var resp *ExplainResponse
	err := h.runFast(r, func() error {
		var err error
		resp, err = h.svc.Explain(r.Context(), r.PathValue("id"), req)
		return err
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transcript handles GET /api/games/{id}/transcript. The default is
// MAT-style text; ?format=json returns the recorded actions.
func (h *Handlers) Transcript(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Transcript(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, transcriptJSON(m))
		return
	}
	var buf bytes.Buffer
	if err := match.ExportMAT(&buf, m); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// TranscriptAction is one action of a JSON transcript.
type TranscriptAction struct {
	Type   string     `json:"type"`
	Player string     `json:"player"`
	Dice   *[2]int    `json:"dice,omitempty"`
	Move   *LegalMove `json:"move,omitempty"`
}

// TranscriptResponse is the JSON form of GET /api/games/{id}/transcript.
type TranscriptResponse struct {
	GameID     string             `json:"game_id"`
	Variant    string             `json:"variant"`
	PositionID string             `json:"position_id"`
	Actions    []TranscriptAction `json:"actions"`
	Winner     *string            `json:"winner"`
	Result     string             `json:"result"`
}

func transcriptJSON(m *match.Match) TranscriptResponse {
	g := m.Games[0]
	resp := TranscriptResponse{
		GameID:     g.ID,
		Variant:    m.Variant,
		PositionID: g.PositionID,
		Actions:    make([]TranscriptAction, 0, len(g.Actions)),
		Winner:     colorPtr(g.Winner),
		Result:     g.Result.String(),
	}
	for _, a := range g.Actions {
		ta := TranscriptAction{Type: a.Type.String(), Player: a.Player.String()}
		switch a.Type {
		case match.ActionRoll:
			d := [2]int(a.Dice)
			ta.Dice = &d
		case match.ActionMove:
			lm := ToLegalMove(a.Move)
			ta.Move = &lm
		}
		resp.Actions = append(resp.Actions, ta)
	}
	return resp
}

// Package api exposes tablabaki games over HTTP/JSON, WebSocket and
// Server-Sent Events.
package api

import (
	"time"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/internal/positionid"
	"github.com/yourusername/tablabaki/pkg/engine"
)

// ============================================================================
// Request Types
// ============================================================================

// CreateGameRequest is the request body for POST /api/games.
type CreateGameRequest struct {
	Variant     string `json:"variant"`                // Defaults to "standard"
	GameID      string `json:"game_id,omitempty"`      // Generated when empty
	PositionID  string `json:"position_id,omitempty"`  // Start from this position instead of the variant layout
	FirstPlayer string `json:"first_player,omitempty"` // "white" (default) or "black"
}

// MoveRequest is the request body for POST /api/games/{id}/move. The mover
// is always the current player.
type MoveRequest struct {
	MoveType  string `json:"move_type"`            // "normal", "enter", "bear_off"
	FromPoint *int   `json:"from_point,omitempty"` // Absent for enter
	ToPoint   *int   `json:"to_point,omitempty"`   // Absent for bear_off
	DieValue  int    `json:"die_value,omitempty"`  // Inferred from the legal moves when 0
}

// AIMoveRequest is the request body for POST /api/games/{id}/ai-move.
type AIMoveRequest struct {
	Difficulty string `json:"difficulty,omitempty"` // "easy", "medium" (default), "hard"
}

// SetPlayerRequest is the request body for POST /api/games/{id}/player.
type SetPlayerRequest struct {
	Player string `json:"player"` // "white" or "black"
}

// ExplainRequest is the request body for POST /api/games/{id}/explain.
// Without a move it explains the rules and the position.
type ExplainRequest struct {
	Move *MoveRequest `json:"move,omitempty"`
}

// ============================================================================
// Response Types
// ============================================================================

// PointData is one point of the board.
type PointData struct {
	Number      int  `json:"number"`
	WhitePieces int  `json:"white_pieces"`
	BlackPieces int  `json:"black_pieces"`
	PinnedWhite bool `json:"pinned_white,omitempty"`
	PinnedBlack bool `json:"pinned_black,omitempty"`
}

// BoardState is the board and turn state.
type BoardState struct {
	Points        []PointData `json:"points"`
	BarWhite      int         `json:"bar_white"`
	BarBlack      int         `json:"bar_black"`
	BorneOffWhite int         `json:"borne_off_white"`
	BorneOffBlack int         `json:"borne_off_black"`
	CurrentPlayer *string     `json:"current_player"`
	Dice          *[2]int     `json:"dice"`
	GameOver      bool        `json:"game_over"`
	Winner        *string     `json:"winner"`
}

// LegalMove is a move in wire form.
type LegalMove struct {
	MoveType  string `json:"move_type"`
	FromPoint *int   `json:"from_point"`
	ToPoint   *int   `json:"to_point"`
	DieValue  int    `json:"die_value"`
	Notation  string `json:"notation"`
}

// GameState is the full view of a game.
type GameState struct {
	GameID        string      `json:"game_id"`
	Variant       string      `json:"variant"`
	Board         BoardState  `json:"board"`
	LegalMoves    []LegalMove `json:"legal_moves"`
	AvailableDice []int       `json:"available_dice"`
	CanRoll       bool        `json:"can_roll"`
	PositionID    string      `json:"position_id"`
}

// GameSummary is one entry of GET /api/games.
type GameSummary struct {
	GameID        string    `json:"game_id"`
	Variant       string    `json:"variant"`
	CurrentPlayer *string   `json:"current_player"`
	GameOver      bool      `json:"game_over"`
	Winner        *string   `json:"winner"`
	Turns         int       `json:"turns"`
	CreatedAt     time.Time `json:"created_at"`
}

// RollResponse is returned by POST /api/games/{id}/roll.
type RollResponse struct {
	Dice       [2]int      `json:"dice"`
	LegalMoves []LegalMove `json:"legal_moves"`
	GameState  GameState   `json:"game_state"`
	Message    string      `json:"message,omitempty"`
}

// MoveResponse is returned by POST /api/games/{id}/move.
type MoveResponse struct {
	Success      bool      `json:"success"`
	Explanations []string  `json:"explanations"`
	TurnEnded    bool      `json:"turn_ended"`
	GameState    GameState `json:"game_state"`
}

// AIMoveResponse is returned by POST /api/games/{id}/ai-move.
type AIMoveResponse struct {
	Success      bool       `json:"success"`
	Move         *LegalMove `json:"move,omitempty"`
	Explanations []string   `json:"explanations,omitempty"`
	TurnEnded    bool       `json:"turn_ended"`
	Message      string     `json:"message,omitempty"`
	GameState    GameState  `json:"game_state"`
}

// ScoredMove is a move with the agent's score.
type ScoredMove struct {
	Move  LegalMove `json:"move"`
	Score float64   `json:"score"`
}

// ReviewResponse is the agent's rating of a move.
type ReviewResponse struct {
	Skill     string       `json:"skill"`      // "None", "Doubtful", "Bad", "Very Bad"
	SkillAbbr string       `json:"skill_abbr"` // "", "?!", "?", "??"
	Loss      float64      `json:"loss"`       // Relative score loss against the best move
	Rank      int          `json:"rank"`       // 0 when the move is not legal
	BestMove  *LegalMove   `json:"best_move,omitempty"`
	IsForced  bool         `json:"is_forced"`
	TopMoves  []ScoredMove `json:"top_moves"`
}

// ExplainResponse is returned by POST /api/games/{id}/explain.
type ExplainResponse struct {
	Rules        []string        `json:"rules"`
	Position     string          `json:"position"`
	PositionID   string          `json:"position_id"`
	Move         *LegalMove      `json:"move,omitempty"`
	Valid        bool            `json:"valid"`
	Explanations []string        `json:"explanations,omitempty"`
	Review       *ReviewResponse `json:"review,omitempty"`
}

// LegalMovesResponse is returned by GET /api/games/{id}/legal-moves.
type LegalMovesResponse struct {
	LegalMoves []LegalMove `json:"legal_moves"`
	Dice       *[2]int     `json:"dice"`
	Message    string      `json:"message,omitempty"`
}

// VariantsResponse is returned by GET /api/variants.
type VariantsResponse struct {
	Variants []string `json:"variants"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`          // Error message
	Code  string `json:"code,omitempty"` // Error code
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string     `json:"status"`         // "ok"
	Version string     `json:"version"`        // Server version
	Games   int        `json:"games"`          // Live games
	Pool    *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}

// ============================================================================
// Helper Functions
// ============================================================================

func colorPtr(c engine.Color) *string {
	if !c.Valid() {
		return nil
	}
	s := c.String()
	return &s
}

func intPtr(v int) *int {
	if v == engine.NoPoint {
		return nil
	}
	return &v
}

// ToLegalMove converts an engine move to its wire form.
func ToLegalMove(m engine.Move) LegalMove {
	return LegalMove{
		MoveType:  m.Kind.String(),
		FromPoint: intPtr(m.From),
		ToPoint:   intPtr(m.To),
		DieValue:  m.Die,
		Notation:  m.Notation(),
	}
}

func toLegalMoves(moves []engine.Move) []LegalMove {
	out := make([]LegalMove, len(moves))
	for i, m := range moves {
		out[i] = ToLegalMove(m)
	}
	return out
}

func toScored(moves []agent.ScoredMove) []ScoredMove {
	out := make([]ScoredMove, len(moves))
	for i, s := range moves {
		out[i] = ScoredMove{Move: ToLegalMove(s.Move), Score: s.Score}
	}
	return out
}

// stateOf renders a game. Callers must hold the session lock.
func stateOf(id string, g *engine.Game) GameState {
	snap := g.Snapshot()
	points := make([]PointData, len(snap.Points))
	for i, p := range snap.Points {
		points[i] = PointData{
			Number:      p.Position,
			WhitePieces: p.White,
			BlackPieces: p.Black,
			PinnedWhite: p.PinnedWhite,
			PinnedBlack: p.PinnedBlack,
		}
	}
	var dice *[2]int
	if snap.Dice.Rolled() {
		d := [2]int(snap.Dice)
		dice = &d
	}
	available := snap.Available
	if available == nil {
		available = []int{}
	}
	return GameState{
		GameID:  id,
		Variant: snap.Variant,
		Board: BoardState{
			Points:        points,
			BarWhite:      snap.Bar[engine.White],
			BarBlack:      snap.Bar[engine.Black],
			BorneOffWhite: snap.BorneOff[engine.White],
			BorneOffBlack: snap.BorneOff[engine.Black],
			CurrentPlayer: colorPtr(snap.Turn),
			Dice:          dice,
			GameOver:      snap.GameOver,
			Winner:        colorPtr(snap.Winner),
		},
		LegalMoves:    toLegalMoves(snap.LegalMoves),
		AvailableDice: available,
		CanRoll:       !snap.GameOver && !snap.Dice.Rolled(),
		PositionID:    positionid.Encode(g.Board()),
	}
}

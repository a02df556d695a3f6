package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/internal/positionid"
	"github.com/yourusername/tablabaki/pkg/engine"
	"github.com/yourusername/tablabaki/pkg/match"
	"github.com/yourusername/tablabaki/pkg/variant"
)

// DefaultVariant is used when a create request names none.
const DefaultVariant = "standard"

// Service implements the game operations shared by the HTTP, WebSocket
// and SSE front ends.
type Service struct {
	store    Store
	variants *variant.Store
	logger   *slog.Logger
	roller   func() engine.Roller
	agents   func(agent.Difficulty) *agent.Agent
	newID    func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStore replaces the default MemoryStore.
func WithStore(st Store) ServiceOption {
	return func(s *Service) { s.store = st }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithRollerFactory sets the dice source for new games.
func WithRollerFactory(f func() engine.Roller) ServiceOption {
	return func(s *Service) { s.roller = f }
}

// WithAgentFactory sets how agents are built for AI moves and autoplay.
func WithAgentFactory(f func(agent.Difficulty) *agent.Agent) ServiceOption {
	return func(s *Service) { s.agents = f }
}

// WithIDGenerator sets the generator for game IDs.
func WithIDGenerator(f func() string) ServiceOption {
	return func(s *Service) { s.newID = f }
}

// NewService creates a game service over the given variant catalog.
func NewService(variants *variant.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:    NewMemoryStore(),
		variants: variants,
		logger:   slog.Default(),
		roller:   engine.RandomRoller,
		agents:   func(d agent.Difficulty) *agent.Agent { return agent.New(d) },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variants lists the variant catalog.
func (s *Service) Variants(ctx context.Context) ([]string, error) {
	return s.variants.List(ctx)
}

// VariantDefinition returns a variant's JSON document.
func (s *Service) VariantDefinition(ctx context.Context, name string) ([]byte, error) {
	return s.variants.Raw(ctx, name)
}

// CreateGame starts a new game from the variant layout or a position ID.
func (s *Service) CreateGame(ctx context.Context, req CreateGameRequest) (*GameState, error) {
	name := req.Variant
	if name == "" {
		name = DefaultVariant
	}
	rs, layout, err := s.variants.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	first := engine.White
	if req.FirstPlayer != "" {
		if first, err = engine.ParseColor(req.FirstPlayer); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	g, err := engine.NewGame(rs, engine.WithRoller(s.roller()), engine.WithFirstColor(first))
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	if req.PositionID != "" {
		var totals [2]int
		for _, c := range engine.Colors {
			if totals[c] = layout.Total(c); totals[c] == 0 {
				totals[c] = engine.DefaultCheckers
			}
		}
		b, err := positionid.Decode(req.PositionID, rs.Params.Points, rs.Params.Directions, totals)
		if err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
		if err := g.StartFrom(b); err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
	} else if err := g.Start(layout); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	id := req.GameID
	if id == "" {
		id = s.newID()
	}
	sess := newSession(id, name, positionid.Encode(g.Board()), g)
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("game created", "game_id", id, "variant", name, "position_id", sess.StartPosition)

	st := stateOf(id, g)
	return &st, nil
}

// GetGame returns the current state of a game.
func (s *Service) GetGame(ctx context.Context, id string) (*GameState, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var st GameState
	sess.do(func(g *engine.Game) error {
		st = stateOf(id, g)
		return nil
	})
	return &st, nil
}

// ListGames summarizes every live game.
func (s *Service) ListGames(ctx context.Context) ([]GameSummary, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GameSummary, 0, len(sessions))
	for _, sess := range sessions {
		sess.do(func(g *engine.Game) error {
			out = append(out, GameSummary{
				GameID:        sess.ID,
				Variant:       sess.Variant,
				CurrentPlayer: colorPtr(g.Turn()),
				GameOver:      g.GameOver(),
				Winner:        colorPtr(g.Winner()),
				Turns:         len(g.History()),
				CreatedAt:     sess.Created,
			})
			return nil
		})
	}
	return out, nil
}

// DeleteGame removes a game and closes its subscriptions.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("game deleted", "game_id", id)
	return nil
}

// Roll rolls for the current player. With no legal move the turn passes
// to the opponent straight away.
func (s *Service) Roll(ctx context.Context, id string) (*RollResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var resp RollResponse
	err = sess.do(func(g *engine.Game) error {
		if g.GameOver() {
			return ErrGameOver
		}
		d, err := g.Roll()
		if err != nil {
			return fmt.Errorf("roll: %w", err)
		}
		resp.Dice = d
		moves := g.LegalMoves()
		resp.LegalMoves = toLegalMoves(moves)
		if len(moves) == 0 {
			g.SwitchTurn()
			resp.Message = "No legal moves; turn passed to opponent."
		}
		resp.GameState = stateOf(id, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sess.publish(resp.GameState)
	return &resp, nil
}

// Move applies a move for the current player and ends the turn when no
// die or no legal move remains.
func (s *Service) Move(ctx context.Context, id string, req MoveRequest) (*MoveResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var resp MoveResponse
	err = sess.do(func(g *engine.Game) error {
		if err := checkPlayable(g); err != nil {
			return err
		}
		m, err := buildMove(g, req)
		if err != nil {
			return err
		}
		expl, err := g.MakeMove(m)
		if err != nil {
			return fmt.Errorf("move: %w", err)
		}
		resp.Success = true
		resp.Explanations = expl
		resp.TurnEnded = endTurn(g)
		resp.GameState = stateOf(id, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sess.publish(resp.GameState)
	return &resp, nil
}

// AIMove lets the agent play one move for the current player.
func (s *Service) AIMove(ctx context.Context, id, difficulty string) (*AIMoveResponse, error) {
	d, err := agent.ParseDifficulty(difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var resp AIMoveResponse
	err = sess.do(func(g *engine.Game) error {
		if err := checkPlayable(g); err != nil {
			return err
		}
		m, ok := s.agents(d).SelectMove(g)
		if !ok {
			g.SwitchTurn()
			resp.Message = "No legal moves available"
			resp.TurnEnded = true
			resp.GameState = stateOf(id, g)
			return nil
		}
		expl, err := g.MakeMove(m)
		if err != nil {
			return fmt.Errorf("ai move: %w", err)
		}
		lm := ToLegalMove(m)
		resp.Success = true
		resp.Move = &lm
		resp.Explanations = expl
		resp.TurnEnded = endTurn(g)
		resp.GameState = stateOf(id, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("ai move", "game_id", id, "difficulty", d.String(), "success", resp.Success)
	sess.publish(resp.GameState)
	return &resp, nil
}

// SetPlayer chooses who moves next. Only allowed between turns.
func (s *Service) SetPlayer(ctx context.Context, id, player string) (*GameState, error) {
	c, err := engine.ParseColor(player)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var st GameState
	err = sess.do(func(g *engine.Game) error {
		if g.GameOver() {
			return ErrGameOver
		}
		if err := g.SetTurn(c); err != nil {
			return err
		}
		st = stateOf(id, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sess.publish(st)
	return &st, nil
}

// LegalMoves lists the current player's legal moves.
func (s *Service) LegalMoves(ctx context.Context, id string) (*LegalMovesResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := LegalMovesResponse{LegalMoves: []LegalMove{}}
	sess.do(func(g *engine.Game) error {
		d, rolled := g.Dice()
		if !rolled {
			resp.Message = "Roll dice first"
			return nil
		}
		dice := [2]int(d)
		resp.Dice = &dice
		resp.LegalMoves = toLegalMoves(g.LegalMoves())
		return nil
	})
	return &resp, nil
}

// Explain describes the rules and position and, when a move is given,
// runs it through the rule pipeline and rates it.
func (s *Service) Explain(ctx context.Context, id string, req ExplainRequest) (*ExplainResponse, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var resp ExplainResponse
	err = sess.do(func(g *engine.Game) error {
		b := g.Board()
		resp.Rules = g.Rules().Describe()
		resp.Position = b.String()
		resp.PositionID = positionid.Encode(b)
		if req.Move == nil {
			return nil
		}
		m, err := buildMove(g, *req.Move)
		if err != nil {
			return err
		}
		lm := ToLegalMove(m)
		resp.Move = &lm
		resp.Explanations = g.ExplainMove(m)
		for _, l := range g.LegalMoves() {
			if l == m {
				resp.Valid = true
				break
			}
		}
		if _, rolled := g.Dice(); rolled {
			resp.Review = toReview(s.agents(agent.Hard).ReviewMove(g, m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func toReview(r agent.Review) *ReviewResponse {
	out := &ReviewResponse{
		Skill:     r.Skill.String(),
		SkillAbbr: r.Skill.Abbr(),
		Loss:      r.Loss,
		Rank:      r.Rank,
		IsForced:  r.IsForced,
		TopMoves:  toScored(r.TopMoves),
	}
	if len(r.TopMoves) > 0 {
		best := ToLegalMove(r.BestMove)
		out.BestMove = &best
	}
	return out
}

// Transcript returns the game as a one-game match.
func (s *Service) Transcript(ctx context.Context, id string) (*match.Match, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var m *match.Match
	sess.do(func(g *engine.Game) error {
		p := g.Rules().Params
		m = match.NewMatch("white", "black", sess.Variant)
		m.Points = p.Points
		m.Directions = p.Directions
		m.Date = sess.Created.Format(time.DateOnly)
		tr := match.Record(1, g)
		tr.ID = sess.ID
		tr.PositionID = sess.StartPosition
		m.Games = append(m.Games, tr)
		return nil
	})
	return m, nil
}

// Subscribe follows a game's state changes.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.Subscribe()
	return ch, cancel, nil
}

func checkPlayable(g *engine.Game) error {
	if g.GameOver() {
		return ErrGameOver
	}
	if _, rolled := g.Dice(); !rolled {
		return ErrNoDice
	}
	return nil
}

// buildMove turns a request into a move for the current player. A missing
// die value is taken from the matching legal move.
func buildMove(g *engine.Game, req MoveRequest) (engine.Move, error) {
	kind, err := engine.ParseMoveKind(req.MoveType)
	if err != nil {
		return engine.Move{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	m := engine.Move{Color: g.Turn(), Kind: kind, Die: req.DieValue}
	if req.FromPoint != nil {
		m.From = *req.FromPoint
	}
	if req.ToPoint != nil {
		m.To = *req.ToPoint
	}
	if m.Die == 0 {
		// Only bear-offs can match more than one die. The smallest is the
		// exact bearing distance when that die is available.
		for _, l := range g.LegalMoves() {
			if l.Kind == m.Kind && l.From == m.From && l.To == m.To && (m.Die == 0 || l.Die < m.Die) {
				m.Die = l.Die
			}
		}
	}
	return m, nil
}

// endTurn passes the turn once the mover has no die or no legal move left.
func endTurn(g *engine.Game) bool {
	if g.GameOver() {
		return false
	}
	if !g.HasRemainingMoves() || len(g.LegalMoves()) == 0 {
		g.SwitchTurn()
		return true
	}
	return false
}

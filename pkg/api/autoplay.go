package api

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/pkg/engine"
)

// AutoplayOptions configures agent-versus-agent play on a live game.
type AutoplayOptions struct {
	White    agent.Difficulty
	Black    agent.Difficulty
	MaxTurns int           // Stop after this many turns, 0 for DefaultAutoplayTurns
	Delay    time.Duration // Pause between turns
}

// DefaultAutoplayTurns bounds an autoplay run.
const DefaultAutoplayTurns = 500

// AutoplayEvent is one step of an autoplay run.
type AutoplayEvent struct {
	Type         string     `json:"type"` // "roll", "move", "pass", "done"
	Turn         int        `json:"turn"`
	Player       string     `json:"player,omitempty"`
	Dice         *[2]int    `json:"dice,omitempty"`
	Move         *LegalMove `json:"move,omitempty"`
	Explanations []string   `json:"explanations,omitempty"`
	State        *GameState `json:"state,omitempty"`
}

// Autoplay lets agents play the game until it ends, MaxTurns turns have
// been played or ctx is done. emit is called outside the session lock for
// every event; an emit error stops the run. The last event is "done".
func (s *Service) Autoplay(ctx context.Context, id string, opts AutoplayOptions, emit func(AutoplayEvent) error) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultAutoplayTurns
	}
	agents := [2]*agent.Agent{s.agents(opts.White), s.agents(opts.Black)}
	s.logger.Info("autoplay started", "game_id", id, "white", opts.White.String(), "black", opts.Black.String())

	turns := 0
	for ; turns < opts.MaxTurns; turns++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var (
			events []AutoplayEvent
			state  GameState
			over   bool
		)
		err := sess.do(func(g *engine.Game) error {
			if g.GameOver() {
				over = true
				return nil
			}
			var err error
			events, err = playTurn(g, agents[g.Turn()], turns+1)
			state = stateOf(id, g)
			over = g.GameOver()
			return err
		})
		if err != nil {
			return fmt.Errorf("autoplay turn %d: %w", turns+1, err)
		}
		for _, ev := range events {
			if err := emit(ev); err != nil {
				return err
			}
		}
		if len(events) > 0 {
			sess.publish(state)
		}
		if over {
			break
		}
		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	var final GameState
	sess.do(func(g *engine.Game) error {
		final = stateOf(id, g)
		return nil
	})
	s.logger.Info("autoplay finished", "game_id", id, "turns", turns, "game_over", final.Board.GameOver)
	return emit(AutoplayEvent{Type: "done", Turn: turns, State: &final})
}

// playTurn plays the mover's whole turn, rolling first if needed.
func playTurn(g *engine.Game, a *agent.Agent, turn int) ([]AutoplayEvent, error) {
	player := g.Turn().String()
	var events []AutoplayEvent
	d, rolled := g.Dice()
	if !rolled {
		var err error
		if d, err = g.Roll(); err != nil {
			return nil, err
		}
	}
	dice := [2]int(d)
	events = append(events, AutoplayEvent{Type: "roll", Turn: turn, Player: player, Dice: &dice})

	for !g.GameOver() {
		m, ok := a.SelectMove(g)
		if !ok {
			break
		}
		expl, err := g.MakeMove(m)
		if err != nil {
			return events, err
		}
		lm := ToLegalMove(m)
		events = append(events, AutoplayEvent{Type: "move", Turn: turn, Player: player, Move: &lm, Explanations: expl})
	}
	if len(events) == 1 {
		events = append(events, AutoplayEvent{Type: "pass", Turn: turn, Player: player})
	}
	if !g.GameOver() {
		g.SwitchTurn()
	}
	return events, nil
}

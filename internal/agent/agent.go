// Package agent implements a heuristic move-selection policy.
//
// The agent scores each legal move with a weighted feature vector and picks
// according to its difficulty. It only reads the game through copies and
// never mutates engine state; callers apply the chosen move themselves.
package agent

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/tablabaki/pkg/engine"
)

// Difficulty selects how greedily the agent plays.
type Difficulty int

const (
	Easy   Difficulty = iota // Uniformly random legal move
	Medium                   // Best move, or one of the top three 30% of the time
	Hard                     // Always the best-scoring move
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty converts "easy", "medium" or "hard". An empty string
// means Medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "", "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

const (
	mediumRandomRate = 0.3
	mediumTopN       = 3
)

// RNG is the source of randomness. *rand.Rand from math/rand/v2 satisfies it.
type RNG interface {
	IntN(n int) int
	Float64() float64
}

// stdRNG delegates to the global math/rand/v2 source (auto-seeded).
type stdRNG struct{}

func (stdRNG) IntN(n int) int   { return rand.IntN(n) }
func (stdRNG) Float64() float64 { return rand.Float64() }

// Agent picks moves for one game at a time. It is not safe for concurrent
// use when built with a non-concurrent RNG.
type Agent struct {
	difficulty Difficulty
	weights    []float64
	rng        RNG
}

// Option configures an Agent.
type Option func(*Agent)

// WithRNG sets the randomness source.
func WithRNG(r RNG) Option {
	return func(a *Agent) { a.rng = r }
}

// WithSeed makes the agent's random choices reproducible.
func WithSeed(seed uint64) Option {
	return func(a *Agent) { a.rng = rand.New(rand.NewPCG(seed, seed+1)) }
}

// WithWeights overrides the feature weights (see Features).
func WithWeights(w Weights) Option {
	return func(a *Agent) { a.weights = w.vector() }
}

// New returns an agent of the given difficulty.
func New(d Difficulty, opts ...Option) *Agent {
	a := &Agent{
		difficulty: d,
		weights:    DefaultWeights().vector(),
		rng:        stdRNG{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Difficulty returns the agent's difficulty.
func (a *Agent) Difficulty() Difficulty { return a.difficulty }

// ScoredMove is a legal move and its heuristic score.
type ScoredMove struct {
	Move  engine.Move
	Score float64
}

// Rank scores every legal move in g, best first. Ties keep enumeration order.
func (a *Agent) Rank(g *engine.Game) []ScoredMove {
	moves := g.LegalMoves()
	if len(moves) == 0 {
		return nil
	}
	b := g.Board()
	params := g.Rules().Params
	scored := make([]ScoredMove, len(moves))
	for i, m := range moves {
		f := Features(b, params, m)
		scored[i] = ScoredMove{Move: m, Score: floats.Dot(a.weights, f[:])}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// SelectMove picks a move for the current mover. It reports false when no
// legal move exists.
func (a *Agent) SelectMove(g *engine.Game) (engine.Move, bool) {
	if a.difficulty == Easy {
		moves := g.LegalMoves()
		if len(moves) == 0 {
			return engine.Move{}, false
		}
		return moves[a.rng.IntN(len(moves))], true
	}

	ranked := a.Rank(g)
	if len(ranked) == 0 {
		return engine.Move{}, false
	}
	if a.difficulty == Medium && a.rng.Float64() < mediumRandomRate {
		top := min(mediumTopN, len(ranked))
		return ranked[a.rng.IntN(top)].Move, true
	}
	return ranked[0].Move, true
}

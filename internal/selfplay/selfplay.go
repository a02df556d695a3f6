// Package selfplay plays batches of agent-versus-agent games in parallel.
package selfplay

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/internal/positionid"
	"github.com/yourusername/tablabaki/pkg/engine"
	"github.com/yourusername/tablabaki/pkg/match"
	"github.com/yourusername/tablabaki/pkg/variant"
)

// DefaultMaxTurns stops a game that has not ended after this many turns.
const DefaultMaxTurns = 1000

// Options configures a batch.
type Options struct {
	Variant  string
	Games    int
	Workers  int
	White    agent.Difficulty
	Black    agent.Difficulty
	Seed     uint64 // Game i uses Seed+i; 0 picks a random base
	MaxTurns int
}

// Result is one played game.
type Result struct {
	Game       int
	Variant    string
	Winner     engine.Color // NoColor when the turn limit was hit
	Kind       match.GameResult
	Turns      int
	Moves      int
	Duration   time.Duration
	Transcript *match.Game
	Rows       []TurnRow
}

// Summary aggregates a batch.
type Summary struct {
	Games      int
	Wins       [2]int
	Unfinished int
	Results    map[match.GameResult]int
	MeanTurns  float64
	StdTurns   float64
	MeanMoves  float64
	Duration   time.Duration
}

// Run plays opts.Games games on at most opts.Workers goroutines and
// returns the results in game order. onResult, if set, is called for every
// finished game from a single goroutine at a time. The first failing game
// cancels the batch.
func Run(ctx context.Context, catalog *variant.Store, opts Options, onResult func(Result)) ([]Result, *Summary, error) {
	if opts.Games <= 0 {
		return nil, nil, fmt.Errorf("selfplay: games must be positive, got %d", opts.Games)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64() | 1
	}
	rs, layout, err := catalog.Load(ctx, opts.Variant)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	var (
		mu      sync.Mutex
		results = make([]Result, 0, opts.Games)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range opts.Games {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := PlayGame(gctx, rs, layout, opts, i+1)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			mu.Lock()
			defer mu.Unlock()
			results = append(results, res)
			if onResult != nil {
				onResult(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	slices.SortFunc(results, func(a, b Result) int { return a.Game - b.Game })
	sum := Summarize(results)
	sum.Duration = time.Since(start)
	return results, sum, nil
}

// PlayGame plays game number n of a batch. The dice and both agents are
// seeded from opts.Seed+n so a batch is reproducible.
func PlayGame(ctx context.Context, rs *engine.RuleSet, layout engine.Layout, opts Options, n int) (Result, error) {
	seed := opts.Seed + uint64(n)
	g, err := engine.NewGame(rs, engine.WithRoller(engine.SeededRoller(seed)))
	if err != nil {
		return Result{}, err
	}
	if err := g.Start(layout); err != nil {
		return Result{}, err
	}
	agents := [2]*agent.Agent{
		agent.New(opts.White, agent.WithSeed(seed*2)),
		agent.New(opts.Black, agent.WithSeed(seed*2+1)),
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	start := time.Now()
	res := Result{Game: n, Variant: rs.Variant, Winner: engine.NoColor}
	id := fmt.Sprintf("%s-%d-%d", rs.Variant, opts.Seed, n)
	for res.Turns < maxTurns && !g.GameOver() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		mover := g.Turn()
		dice, err := g.Roll()
		if err != nil {
			return Result{}, err
		}
		res.Turns++
		var notation []string
		for !g.GameOver() {
			m, ok := agents[mover].SelectMove(g)
			if !ok {
				break
			}
			if _, err := g.MakeMove(m); err != nil {
				return Result{}, fmt.Errorf("turn %d: %w", res.Turns, err)
			}
			notation = append(notation, m.Notation())
		}
		res.Moves += len(notation)
		res.Rows = append(res.Rows, TurnRow{
			GameID:     id,
			Variant:    rs.Variant,
			Turn:       int32(res.Turns),
			Color:      mover.String(),
			Die1:       int32(dice[0]),
			Die2:       int32(dice[1]),
			Moves:      notation,
			PositionID: positionid.Encode(g.Board()),
		})
		if !g.GameOver() {
			g.SwitchTurn()
		}
	}

	res.Transcript = match.Record(n, g)
	res.Transcript.ID = id
	if g.GameOver() {
		res.Winner = g.Winner()
		res.Kind = res.Transcript.Result
	}
	winner := ""
	if res.Winner.Valid() {
		winner = res.Winner.String()
	}
	for i := range res.Rows {
		res.Rows[i].Winner = winner
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Summarize aggregates results.
func Summarize(results []Result) *Summary {
	sum := &Summary{
		Games:   len(results),
		Results: make(map[match.GameResult]int),
	}
	if len(results) == 0 {
		return sum
	}
	turns := make([]float64, len(results))
	moves := make([]float64, len(results))
	for i, r := range results {
		turns[i] = float64(r.Turns)
		moves[i] = float64(r.Moves)
		if r.Winner.Valid() {
			sum.Wins[r.Winner]++
			sum.Results[r.Kind]++
		} else {
			sum.Unfinished++
		}
	}
	if len(turns) > 1 {
		sum.MeanTurns, sum.StdTurns = stat.MeanStdDev(turns, nil)
	} else {
		sum.MeanTurns = turns[0]
	}
	sum.MeanMoves = stat.Mean(moves, nil)
	return sum
}

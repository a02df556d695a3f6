package selfplay

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/internal/positionid"
	"github.com/yourusername/tablabaki/pkg/engine"
	"github.com/yourusername/tablabaki/pkg/variant"
)

func testOptions() Options {
	return Options{
		Variant: "hypergammon",
		Games:   6,
		Workers: 3,
		White:   agent.Easy,
		Black:   agent.Hard,
		Seed:    42,
	}
}

func TestRun(t *testing.T) {
	var calls atomic.Int32
	results, sum, err := Run(context.Background(), variant.NewEmbeddedStore(), testOptions(), func(Result) {
		calls.Add(1)
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(results) != 6 || calls.Load() != 6 {
		t.Fatalf("results = %d, callbacks = %d, want 6 each", len(results), calls.Load())
	}
	for i, r := range results {
		if r.Game != i+1 {
			t.Errorf("results[%d].Game = %d, want %d", i, r.Game, i+1)
		}
		if len(r.Rows) != r.Turns {
			t.Errorf("game %d: %d rows for %d turns", r.Game, len(r.Rows), r.Turns)
		}
		if r.Transcript == nil || r.Transcript.Turns() != r.Turns {
			t.Errorf("game %d: transcript does not match %d turns", r.Game, r.Turns)
		}
	}
	if sum.Games != 6 {
		t.Errorf("Games = %d, want 6", sum.Games)
	}
	if got := sum.Wins[engine.White] + sum.Wins[engine.Black] + sum.Unfinished; got != 6 {
		t.Errorf("wins + unfinished = %d, want 6", got)
	}
	if sum.MeanTurns <= 0 {
		t.Errorf("MeanTurns = %v, want positive", sum.MeanTurns)
	}
}

func TestPlayGameReproducible(t *testing.T) {
	rs, layout, err := variant.NewEmbeddedStore().Load(context.Background(), "hypergammon")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	opts := testOptions()
	a, err := PlayGame(context.Background(), rs, layout, opts, 3)
	if err != nil {
		t.Fatalf("PlayGame error: %v", err)
	}
	b, err := PlayGame(context.Background(), rs, layout, opts, 3)
	if err != nil {
		t.Fatalf("PlayGame error: %v", err)
	}
	if a.Turns != b.Turns || a.Winner != b.Winner {
		t.Fatalf("replay differs: %d turns %v vs %d turns %v", a.Turns, a.Winner, b.Turns, b.Winner)
	}
	for i := range a.Rows {
		if a.Rows[i].PositionID != b.Rows[i].PositionID {
			t.Fatalf("turn %d position %s, want %s", i+1, b.Rows[i].PositionID, a.Rows[i].PositionID)
		}
	}

	last := a.Rows[len(a.Rows)-1]
	if a.Winner.Valid() && last.Winner != a.Winner.String() {
		t.Errorf("row winner = %q, want %q", last.Winner, a.Winner)
	}
	if _, err := positionid.Decode(last.PositionID, rs.Params.Points, rs.Params.Directions, [2]int{3, 3}); err != nil {
		t.Errorf("final position does not decode: %v", err)
	}
}

func TestPlayGameTurnLimit(t *testing.T) {
	rs, layout, err := variant.NewEmbeddedStore().Load(context.Background(), "standard")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	opts := testOptions()
	opts.MaxTurns = 3
	res, err := PlayGame(context.Background(), rs, layout, opts, 1)
	if err != nil {
		t.Fatalf("PlayGame error: %v", err)
	}
	if res.Turns != 3 || res.Winner.Valid() {
		t.Errorf("Turns = %d Winner = %v, want 3 and none", res.Turns, res.Winner)
	}
	if res.Rows[0].Winner != "" {
		t.Errorf("row winner = %q, want empty", res.Rows[0].Winner)
	}
}

func TestRunErrors(t *testing.T) {
	store := variant.NewEmbeddedStore()

	opts := testOptions()
	opts.Games = 0
	if _, _, err := Run(context.Background(), store, opts, nil); err == nil {
		t.Error("expected error for zero games")
	}

	opts = testOptions()
	opts.Variant = "no-such-variant"
	if _, _, err := Run(context.Background(), store, opts, nil); !errors.Is(err, variant.ErrVariantNotFound) {
		t.Errorf("error = %v, want ErrVariantNotFound", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Run(ctx, store, testOptions(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Winner: engine.White, Turns: 10, Moves: 20},
		{Winner: engine.Black, Turns: 20, Moves: 30},
		{Winner: engine.NoColor, Turns: 30, Moves: 40},
	}
	sum := Summarize(results)
	if sum.Wins != [2]int{1, 1} || sum.Unfinished != 1 {
		t.Errorf("Wins = %v Unfinished = %d, want [1 1] and 1", sum.Wins, sum.Unfinished)
	}
	if sum.MeanTurns != 20 {
		t.Errorf("MeanTurns = %v, want 20", sum.MeanTurns)
	}
	if sum.StdTurns != 10 {
		t.Errorf("StdTurns = %v, want 10", sum.StdTurns)
	}
	if sum.MeanMoves != 30 {
		t.Errorf("MeanMoves = %v, want 30", sum.MeanMoves)
	}

	if one := Summarize(results[:1]); one.MeanTurns != 10 || one.StdTurns != 0 {
		t.Errorf("single game = %v/%v, want 10/0", one.MeanTurns, one.StdTurns)
	}
	if empty := Summarize(nil); empty.Games != 0 {
		t.Errorf("Games = %d, want 0", empty.Games)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	results, _, err := Run(context.Background(), variant.NewEmbeddedStore(), testOptions(), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	rows := Rows(results)
	out := filepath.Join(t.TempDir(), "nested", "selfplay.parquet")
	if err := WriteArchive(out, rows); err != nil {
		t.Fatalf("WriteArchive error: %v", err)
	}

	got, err := ReadArchive(out)
	if err != nil {
		t.Fatalf("ReadArchive error: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("read %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		w, g := rows[i], got[i]
		if g.GameID != w.GameID || g.Turn != w.Turn || g.Color != w.Color ||
			g.Die1 != w.Die1 || g.Die2 != w.Die2 || g.PositionID != w.PositionID || g.Winner != w.Winner {
			t.Fatalf("row %d = %+v, want %+v", i, g, w)
		}
		if !slices.Equal(g.Moves, w.Moves) && len(g.Moves)+len(w.Moves) > 0 {
			t.Fatalf("row %d moves = %v, want %v", i, g.Moves, w.Moves)
		}
	}
}

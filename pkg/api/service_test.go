package api

import (
	"context"
	"errors"
	"testing"

	"github.com/yourusername/tablabaki/internal/agent"
	"github.com/yourusername/tablabaki/internal/positionid"
	"github.com/yourusername/tablabaki/pkg/engine"
	"github.com/yourusername/tablabaki/pkg/variant"
)

func newTestService(roller func() engine.Roller) *Service {
	return NewService(variant.NewEmbeddedStore(),
		WithLogger(discardLogger()),
		WithRollerFactory(roller),
	)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	a := newSession("a", "standard", "", nil)
	b := newSession("b", "standard", "", nil)
	b.Created = a.Created

	if err := st.Put(ctx, b); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := st.Put(ctx, a); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := st.Put(ctx, a); !errors.Is(err, ErrGameExists) {
		t.Errorf("duplicate Put error = %v, want ErrGameExists", err)
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("List order = %v, want a, b", list)
	}

	if err := st.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := st.Get(ctx, "a"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Get after delete error = %v, want ErrGameNotFound", err)
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}

func TestSessionSubscribe(t *testing.T) {
	s := newSession("s", "standard", "", nil)
	ch, cancel := s.Subscribe()

	s.publish(GameState{GameID: "s"})
	if got := <-ch; got.GameID != "s" {
		t.Errorf("GameID = %q, want s", got.GameID)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after cancel")
	}

	ch2, _ := s.Subscribe()
	s.close()
	if _, ok := <-ch2; ok {
		t.Error("Expected closed channel after session close")
	}
	ch3, _ := s.Subscribe()
	if _, ok := <-ch3; ok {
		t.Error("Expected closed channel when subscribing to a closed session")
	}
}

func TestCreateGameFromPinnedPosition(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(scripted(1, 2))

	// A white blot on 7 pinned by a black checker.
	b := engine.NewBoard(engine.DefaultPoints, engine.DefaultDirections)
	b.Setup(engine.Layout{
		engine.White: {24: 14, 7: 1},
		engine.Black: {1: 14, 7: 1},
	})
	p, _ := b.Point(7)
	p.Pin(engine.White)
	id := positionid.Encode(b)

	st, err := svc.CreateGame(ctx, CreateGameRequest{Variant: "plakoto", GameID: "pinned", PositionID: id})
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if st.PositionID != id {
		t.Errorf("PositionID = %s, want %s", st.PositionID, id)
	}

	resp, err := svc.Roll(ctx, "pinned")
	if err != nil {
		t.Fatalf("Roll error: %v", err)
	}
	for _, m := range resp.LegalMoves {
		if m.FromPoint != nil && *m.FromPoint == 7 {
			t.Errorf("legal move %s starts from the pinned checker", m.Notation)
		}
	}
}

func TestMoveInfersExactBearOffDie(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(scripted(6, 5))

	b := engine.NewBoard(engine.DefaultPoints, engine.DefaultDirections)
	b.Setup(engine.Layout{engine.White: {5: 1, 3: 1}, engine.Black: {19: 15}})
	b.BearOff(engine.White, 13)
	if _, err := svc.CreateGame(ctx, CreateGameRequest{GameID: "bearoff", PositionID: positionid.Encode(b)}); err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if _, err := svc.Roll(ctx, "bearoff"); err != nil {
		t.Fatalf("Roll error: %v", err)
	}

	// Both the 6 and the 5 can bear off from 5; the 5 should be spent.
	resp, err := svc.Move(ctx, "bearoff", MoveRequest{MoveType: "bear_off", FromPoint: intPtr(5)})
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if got := resp.GameState.AvailableDice; len(got) != 1 || got[0] != 6 {
		t.Errorf("AvailableDice = %v, want [6]", got)
	}
	if resp.TurnEnded {
		t.Error("turn should continue with the 6")
	}
}

func TestRollPassesWhenBlocked(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(scripted(6, 6))

	// White is on the bar against a closed board.
	b := engine.NewBoard(engine.DefaultPoints, engine.DefaultDirections)
	b.Setup(engine.Layout{
		engine.White: {1: 14},
		engine.Black: {19: 2, 20: 2, 21: 2, 22: 2, 23: 2, 24: 2},
	})
	b.AddToBar(engine.White, 1)
	if _, err := svc.CreateGame(ctx, CreateGameRequest{GameID: "blocked", PositionID: positionid.Encode(b)}); err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}

	resp, err := svc.Roll(ctx, "blocked")
	if err != nil {
		t.Fatalf("Roll error: %v", err)
	}
	if len(resp.LegalMoves) != 0 {
		t.Errorf("LegalMoves = %v, want none", resp.LegalMoves)
	}
	if resp.Message == "" {
		t.Error("Expected pass message")
	}
	if p := resp.GameState.Board.CurrentPlayer; p == nil || *p != "black" {
		t.Errorf("CurrentPlayer = %v, want black", p)
	}
	if !resp.GameState.CanRoll {
		t.Error("Expected black to be able to roll")
	}
}

func TestAutoplayMaxTurns(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(func() engine.Roller { return engine.SeededRoller(1) })
	if _, err := svc.CreateGame(ctx, CreateGameRequest{GameID: "auto"}); err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}

	var events []AutoplayEvent
	err := svc.Autoplay(ctx, "auto", AutoplayOptions{White: agent.Easy, Black: agent.Easy, MaxTurns: 4}, func(ev AutoplayEvent) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Autoplay error: %v", err)
	}

	rolls := 0
	for _, ev := range events {
		if ev.Type == "roll" {
			rolls++
		}
	}
	if rolls != 4 {
		t.Errorf("rolls = %d, want 4", rolls)
	}
	last := events[len(events)-1]
	if last.Type != "done" || last.Turn != 4 || last.State == nil {
		t.Errorf("last event = %+v, want done after 4 turns", last)
	}

	summaries, _ := svc.ListGames(ctx)
	if len(summaries) != 1 || summaries[0].Turns != 4 {
		t.Errorf("summaries = %+v, want 4 turns played", summaries)
	}
}

func TestAutoplayStopsOnEmitError(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(func() engine.Roller { return engine.SeededRoller(2) })
	if _, err := svc.CreateGame(ctx, CreateGameRequest{GameID: "stop"}); err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	stop := errors.New("client gone")
	err := svc.Autoplay(ctx, "stop", AutoplayOptions{}, func(AutoplayEvent) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("Autoplay error = %v, want %v", err, stop)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = svc.Autoplay(cancelled, "stop", AutoplayOptions{}, func(AutoplayEvent) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Autoplay error = %v, want context.Canceled", err)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
	}{
		{ErrGameNotFound, "GAME_NOT_FOUND"},
		{variant.ErrVariantNotFound, "VARIANT_NOT_FOUND"},
		{ErrGameOver, "GAME_OVER"},
		{ErrNoDice, "NO_DICE"},
		{&engine.IllegalMoveError{}, "ILLEGAL_MOVE"},
		{&engine.StateError{Op: "roll", Reason: "x"}, "INVALID_STATE"},
		{ErrBusy, "SERVER_BUSY"},
		{errors.New("boom"), "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		if _, code := errorStatus(tc.err); code != tc.wantCode {
			t.Errorf("errorStatus(%v) code = %q, want %q", tc.err, code, tc.wantCode)
		}
	}
}

// Package match records played games as transcripts and reads and writes
// them in a MAT-style text format.
package match

import (
	"fmt"

	"github.com/yourusername/tablabaki/pkg/engine"
)

// Match is a series of games between two players under one variant.
type Match struct {
	White      string // Name of the white player (left column)
	Black      string // Name of the black player (right column)
	Variant    string
	Points     int               // Board size, used to render player-relative point numbers
	Directions engine.Directions // Movement direction per color
	Date       string            // YYYY-MM-DD
	Event      string
	Comment    string
	Games      []*Game
}

// Game is the transcript of a single game.
type Game struct {
	Number     int    // 1-indexed
	ID         string // Service game ID, if any
	PositionID string // Starting position, empty for the variant's layout
	Actions    []Action
	Winner     engine.Color // NoColor while in progress
	Result     GameResult
}

// ActionType represents the type of game action.
type ActionType int

const (
	ActionRoll ActionType = iota // Dice roll
	ActionMove                   // Checker move
	ActionPass                   // No legal move for the roll
)

func (t ActionType) String() string {
	return [...]string{"roll", "move", "pass"}[t]
}

// Action is one recorded event.
type Action struct {
	Type   ActionType
	Player engine.Color
	Dice   engine.Dice // ActionRoll
	Move   engine.Move // ActionMove
}

// GameResult indicates how a game ended.
type GameResult int

const (
	ResultInProgress GameResult = iota
	ResultSingle                // Loser bore off at least one checker
	ResultGammon                // Loser bore off nothing
	ResultBackgammon            // Gammon with a loser checker on the bar or in the winner's home
)

func (r GameResult) String() string {
	return [...]string{"in progress", "single", "gammon", "backgammon"}[r]
}

// Multiplier returns the points the result is worth.
func (r GameResult) Multiplier() int {
	switch r {
	case ResultSingle:
		return 1
	case ResultGammon:
		return 2
	case ResultBackgammon:
		return 3
	}
	return 0
}

// NewMatch creates a match on a standard board.
func NewMatch(white, black, variant string) *Match {
	return &Match{
		White:      white,
		Black:      black,
		Variant:    variant,
		Points:     engine.DefaultPoints,
		Directions: engine.DefaultDirections,
		Games:      make([]*Game, 0),
	}
}

// NewGame creates an empty, unfinished game.
func NewGame(number int) *Game {
	return &Game{
		Number:  number,
		Actions: make([]Action, 0),
		Winner:  engine.NoColor,
		Result:  ResultInProgress,
	}
}

// AddRoll adds a dice roll action to the game.
func (g *Game) AddRoll(player engine.Color, d engine.Dice) {
	g.Actions = append(g.Actions, Action{
		Type:   ActionRoll,
		Player: player,
		Dice:   d,
	})
}

// AddMove adds a move action to the game.
func (g *Game) AddMove(player engine.Color, m engine.Move) {
	g.Actions = append(g.Actions, Action{
		Type:   ActionMove,
		Player: player,
		Move:   m,
	})
}

// AddPass records that player could not move with the last roll.
func (g *Game) AddPass(player engine.Color) {
	g.Actions = append(g.Actions, Action{
		Type:   ActionPass,
		Player: player,
	})
}

// Finish marks the game won.
func (g *Game) Finish(winner engine.Color, result GameResult) {
	g.Winner = winner
	g.Result = result
}

// Finished reports whether the game has a winner.
func (g *Game) Finished() bool {
	return g.Winner.Valid()
}

// Turns returns the number of rolls recorded.
func (g *Game) Turns() int {
	n := 0
	for _, a := range g.Actions {
		if a.Type == ActionRoll {
			n++
		}
	}
	return n
}

// Classify rates a finished game from the final board.
func Classify(b *engine.Board, winner engine.Color) GameResult {
	if !winner.Valid() {
		return ResultInProgress
	}
	loser := winner.Opponent()
	if b.BorneOff(loser) > 0 {
		return ResultSingle
	}
	if b.Bar(loser) > 0 {
		return ResultBackgammon
	}
	lo, hi := b.HomeRange(winner)
	for pos := lo; pos <= hi; pos++ {
		if b.Pieces(pos, loser) > 0 {
			return ResultBackgammon
		}
	}
	return ResultGammon
}

// Record builds the transcript of g from its history. A roll that produced
// no move is recorded as a pass unless it is the roll still being played.
func Record(number int, g *engine.Game) *Game {
	out := NewGame(number)
	history := g.History()
	_, rolling := g.Dice()
	for i, seq := range history {
		out.AddRoll(seq.Color, seq.Dice)
		for _, m := range seq.Moves {
			out.AddMove(seq.Color, m)
		}
		current := i == len(history)-1 && rolling
		if len(seq.Moves) == 0 && !current {
			out.AddPass(seq.Color)
		}
	}
	if g.GameOver() {
		out.Finish(g.Winner(), Classify(g.Board(), g.Winner()))
	}
	return out
}

// Replay plays the transcript through a fresh engine game started from
// layout and returns it. Every move is validated by the rule pipeline.
func Replay(tr *Game, rs *engine.RuleSet, layout engine.Layout) (*engine.Game, error) {
	g, err := engine.NewGame(rs)
	if err != nil {
		return nil, err
	}
	if err := g.Start(layout); err != nil {
		return nil, err
	}
	return g, Continue(tr, g)
}

// Continue applies the transcript's actions to a started game.
func Continue(tr *Game, g *engine.Game) error {
	first := true
	for i, a := range tr.Actions {
		switch a.Type {
		case ActionRoll:
			if first {
				if g.Turn() != a.Player {
					if err := g.SetTurn(a.Player); err != nil {
						return replayErr(tr, i, err)
					}
				}
				first = false
			} else {
				g.SwitchTurn()
			}
			if g.Turn() != a.Player {
				return replayErr(tr, i, &engine.StateError{Op: "roll", Reason: "turns out of order"})
			}
			if err := g.SetDice(a.Dice); err != nil {
				return replayErr(tr, i, err)
			}
		case ActionMove:
			if _, err := g.MakeMove(a.Move); err != nil {
				return replayErr(tr, i, err)
			}
		case ActionPass:
			if len(g.LegalMoves()) > 0 {
				return replayErr(tr, i, &engine.StateError{Op: "pass", Reason: "a legal move exists"})
			}
		}
	}
	return nil
}

func replayErr(tr *Game, action int, err error) error {
	return fmt.Errorf("game %d action %d: %w", tr.Number, action+1, err)
}

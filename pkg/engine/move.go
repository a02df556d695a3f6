package engine

import (
	"fmt"
	"strings"
)

// NoPoint marks an absent origin or destination on a Move.
const NoPoint = 0

// MoveKind distinguishes the three atomic checker actions.
type MoveKind int

const (
	Normal  MoveKind = iota // Point to point
	Enter                   // Bar to point
	BearOff                 // Point to off the board
)

func (k MoveKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Enter:
		return "enter"
	case BearOff:
		return "bear_off"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseMoveKind converts "normal", "enter" or "bear_off" to a MoveKind.
func ParseMoveKind(s string) (MoveKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return Normal, nil
	case "enter":
		return Enter, nil
	case "bear_off", "bearoff", "off":
		return BearOff, nil
	}
	return 0, fmt.Errorf("invalid move kind %q", s)
}

// Move is one atomic action and the die value it consumes. From is NoPoint
// for Enter; To is NoPoint for BearOff. A combined move carries the sum of
// both dice in Die.
type Move struct {
	Color Color
	Kind  MoveKind
	From  int
	To    int
	Die   int
}

// NewMove builds a Move and checks that its fields match its kind.
func NewMove(c Color, kind MoveKind, from, to, die int) (Move, error) {
	m := Move{Color: c, Kind: kind, From: from, To: to, Die: die}
	if err := m.Validate(); err != nil {
		return Move{}, err
	}
	return m, nil
}

// MustMove is NewMove that panics on a malformed move.
func MustMove(c Color, kind MoveKind, from, to, die int) Move {
	m, err := NewMove(c, kind, from, to, die)
	if err != nil {
		panic(err)
	}
	return m
}

// Validate reports a *StructuralError when the move's shape is inconsistent.
func (m Move) Validate() error {
	switch m.Kind {
	case Normal:
		if m.From == NoPoint || m.To == NoPoint {
			return &StructuralError{Kind: m.Kind, Reason: "requires origin and destination"}
		}
	case Enter:
		if m.To == NoPoint {
			return &StructuralError{Kind: m.Kind, Reason: "requires destination"}
		}
	case BearOff:
		if m.From == NoPoint {
			return &StructuralError{Kind: m.Kind, Reason: "requires origin"}
		}
	default:
		return &StructuralError{Kind: m.Kind, Reason: "unknown kind"}
	}
	if !m.Color.Valid() {
		return &StructuralError{Kind: m.Kind, Reason: "requires a color"}
	}
	if m.Die <= 0 {
		return &StructuralError{Kind: m.Kind, Reason: "requires a positive die value"}
	}
	return nil
}

func (m Move) String() string {
	switch m.Kind {
	case Normal:
		return fmt.Sprintf("%s: %d -> %d (die: %d)", m.Color, m.From, m.To, m.Die)
	case Enter:
		return fmt.Sprintf("%s: Enter bar -> %d (die: %d)", m.Color, m.To, m.Die)
	case BearOff:
		return fmt.Sprintf("%s: Bear off from %d (die: %d)", m.Color, m.From, m.Die)
	}
	return fmt.Sprintf("%s: %s", m.Color, m.Kind)
}

// Notation renders the move in slash notation: "8/5", "bar/22", "3/off".
func (m Move) Notation() string {
	switch m.Kind {
	case Enter:
		return fmt.Sprintf("bar/%d", m.To)
	case BearOff:
		return fmt.Sprintf("%d/off", m.From)
	}
	return fmt.Sprintf("%d/%d", m.From, m.To)
}

// Dice is a roll of two dice. The zero value means "not rolled".
type Dice [2]int

// IsDouble reports whether both dice show the same value.
func (d Dice) IsDouble() bool {
	return d[0] != 0 && d[0] == d[1]
}

// Rolled reports whether d holds a roll.
func (d Dice) Rolled() bool {
	return d[0] != 0 && d[1] != 0
}

func (d Dice) String() string {
	return fmt.Sprintf("%d%d", d[0], d[1])
}

// MoveSequence is the ordered moves one color played with one roll. It is
// a transcript only; legality is always checked move by move.
type MoveSequence struct {
	Color Color
	Dice  Dice
	Moves []Move
}

func (s MoveSequence) String() string {
	parts := make([]string, len(s.Moves))
	for i, m := range s.Moves {
		parts[i] = m.Notation()
	}
	return fmt.Sprintf("%s rolled %s: %s", s.Color, s.Dice, strings.Join(parts, " "))
}

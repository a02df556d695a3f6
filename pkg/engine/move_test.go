package engine

import (
	"errors"
	"testing"
)

func TestNewMoveStructure(t *testing.T) {
	tests := []struct {
		name    string
		kind    MoveKind
		from    int
		to      int
		wantErr bool
	}{
		{"normal ok", Normal, 8, 5, false},
		{"normal missing origin", Normal, NoPoint, 5, true},
		{"normal missing destination", Normal, 8, NoPoint, true},
		{"enter ok", Enter, NoPoint, 22, false},
		{"enter missing destination", Enter, NoPoint, NoPoint, true},
		{"bear off ok", BearOff, 3, NoPoint, false},
		{"bear off missing origin", BearOff, NoPoint, NoPoint, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMove(White, tc.kind, tc.from, tc.to, 3)
			if tc.wantErr {
				var se *StructuralError
				if !errors.As(err, &se) {
					t.Errorf("NewMove error = %v, want *StructuralError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewMove unexpected error: %v", err)
			}
		})
	}
}

func TestMoveRequiresDieAndColor(t *testing.T) {
	if _, err := NewMove(White, Normal, 8, 5, 0); err == nil {
		t.Error("expected error for zero die")
	}
	if _, err := NewMove(NoColor, Normal, 8, 5, 3); err == nil {
		t.Error("expected error for missing color")
	}
}

func TestMoveNotation(t *testing.T) {
	tests := []struct {
		m    Move
		want string
	}{
		{MustMove(White, Normal, 8, 5, 3), "8/5"},
		{MustMove(White, Enter, NoPoint, 22, 3), "bar/22"},
		{MustMove(Black, BearOff, 20, NoPoint, 5), "20/off"},
	}
	for _, tc := range tests {
		if got := tc.m.Notation(); got != tc.want {
			t.Errorf("Notation() = %q, want %q", got, tc.want)
		}
	}
}

func TestParseMoveKind(t *testing.T) {
	for _, k := range []MoveKind{Normal, Enter, BearOff} {
		got, err := ParseMoveKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseMoveKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseMoveKind("jump"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestDice(t *testing.T) {
	if !(Dice{4, 4}).IsDouble() {
		t.Error("4-4 should be a double")
	}
	if (Dice{3, 5}).IsDouble() {
		t.Error("3-5 is not a double")
	}
	if (Dice{}).Rolled() {
		t.Error("zero Dice should not count as rolled")
	}
}

func TestMoveSequenceString(t *testing.T) {
	s := MoveSequence{
		Color: White,
		Dice:  Dice{3, 1},
		Moves: []Move{MustMove(White, Normal, 8, 5, 3), MustMove(White, Normal, 6, 5, 1)},
	}
	want := "white rolled 31: 8/5 6/5"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

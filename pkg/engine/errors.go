package engine

import (
	"fmt"
	"strings"
)

// StructuralError reports a malformed Move (kind and field presence disagree).
type StructuralError struct {
	Kind   MoveKind
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed %s move: %s", e.Kind, e.Reason)
}

// NotFoundError reports an unknown point position or missing variant data.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return e.What + " not found"
}

// IllegalMoveError is returned when the rule pipeline rejects a move.
// Explanations holds the per-rule explanation chain up to and including
// the rejecting rule.
type IllegalMoveError struct {
	Move         Move
	Rule         string
	Explanations []string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Move, strings.Join(e.Explanations, "; "))
}

// StateError reports an operation attempted in the wrong game state:
// no active mover, the wrong color's move, no dice rolled, game over.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return e.Op + ": " + e.Reason
}

func stateErr(op, format string, args ...any) *StateError {
	return &StateError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

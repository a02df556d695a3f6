// Package positionid encodes board positions as compact base64 strings.
//
// The format follows GNU Backgammon's position ID: for each color, points
// are walked in order of bearing distance (nearest to home first) followed
// by the bar, and each slot is written as one 1-bit per checker and a
// terminating 0-bit. The bit stream is packed LSB-first into bytes and
// base64 encoded without padding. On a standard 24-point board with 15
// checkers a side the result is the familiar 14-character gnubg ID.
//
// Borne-off checkers are not stored; Decode derives them from the expected
// checker totals. A board with pinned checkers gets a second base64 field
// after a colon: one bit per color and point, set where that color is
// pinned. Boards without pins encode exactly as gnubg does.
package positionid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/tablabaki/pkg/engine"
)

// StartingPositionID is the ID of the standard backgammon opening position.
const StartingPositionID = "4HPwATDgc/ABMA"

// ErrInvalidPositionID is returned when an ID cannot be decoded into a
// legal board.
var ErrInvalidPositionID = errors.New("invalid position ID")

// slots returns c's checker counts in encoding order: index d-1 holds the
// point at bearing distance d, index N holds the bar.
func slots(b *engine.Board, c engine.Color) []int {
	n := b.Size()
	out := make([]int, n+1)
	for pos := 1; pos <= n; pos++ {
		out[b.BearingDistance(c, pos)-1] = b.Pieces(pos, c)
	}
	out[n] = b.Bar(c)
	return out
}

// addBits sets n consecutive 1-bits starting at bitPos.
func addBits(key []byte, bitPos, n int) {
	for i := bitPos; i < bitPos+n; i++ {
		key[i/8] |= 1 << (i % 8)
	}
}

// Key packs a board into the raw position key bytes.
func Key(b *engine.Board) []byte {
	var counts [2][]int
	bits := 0
	for _, c := range engine.Colors {
		counts[c] = slots(b, c)
		for _, nc := range counts[c] {
			bits += nc + 1
		}
	}

	key := make([]byte, (bits+7)/8)
	bitPos := 0
	for _, c := range engine.Colors {
		for _, nc := range counts[c] {
			if nc > 0 {
				addBits(key, bitPos, nc)
			}
			bitPos += nc + 1
		}
	}
	return key
}

// pinSeparator splits the checker key from the optional pin field.
const pinSeparator = ":"

// pinKey packs b's pin flags, White's points then Black's. It returns nil
// when nothing is pinned.
func pinKey(b *engine.Board) []byte {
	n := b.Size()
	key := make([]byte, (2*n+7)/8)
	pinned := false
	for _, c := range engine.Colors {
		for pos := 1; pos <= n; pos++ {
			p, _ := b.Point(pos)
			if p.IsPinned(c) {
				addBits(key, int(c)*n+pos-1, 1)
				pinned = true
			}
		}
	}
	if !pinned {
		return nil
	}
	return key
}

// Encode returns the position ID of b.
func Encode(b *engine.Board) string {
	id := base64.RawStdEncoding.EncodeToString(Key(b))
	if pins := pinKey(b); pins != nil {
		id += pinSeparator + base64.RawStdEncoding.EncodeToString(pins)
	}
	return id
}

// Decode rebuilds a board with the given geometry from a position ID.
// totals are the checker counts each color owns; whatever the ID does not
// place on a point or the bar is treated as borne off.
func Decode(id string, points int, dirs engine.Directions, totals [2]int) (*engine.Board, error) {
	id, pinField, hasPins := strings.Cut(id, pinSeparator)
	key, err := base64.RawStdEncoding.DecodeString(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPositionID, err)
	}
	var pins []byte
	if hasPins {
		if pins, err = base64.RawStdEncoding.DecodeString(pinField); err != nil {
			return nil, fmt.Errorf("%w: pins: %v", ErrInvalidPositionID, err)
		}
	}

	b := engine.NewBoard(points, dirs)
	n := b.Size()
	var counts [2][]int
	for _, c := range engine.Colors {
		counts[c] = make([]int, n+1)
	}

	ci, slot := 0, 0
	for i := 0; i < len(key)*8; i++ {
		bit := key[i/8]>>(i%8)&1 == 1
		if ci == len(engine.Colors) {
			if bit {
				return nil, fmt.Errorf("%w: trailing checkers", ErrInvalidPositionID)
			}
			continue
		}
		if bit {
			counts[ci][slot]++
			continue
		}
		slot++
		if slot == n+1 {
			ci++
			slot = 0
		}
	}
	if ci != len(engine.Colors) {
		return nil, fmt.Errorf("%w: truncated", ErrInvalidPositionID)
	}

	layout := engine.Layout{}
	for _, c := range engine.Colors {
		layout[c] = map[int]int{}
		onBoard := 0
		for pos := 1; pos <= n; pos++ {
			if k := counts[c][b.BearingDistance(c, pos)-1]; k > 0 {
				layout[c][pos] = k
				onBoard += k
			}
		}
		onBoard += counts[c][n]
		if onBoard > totals[c] {
			return nil, fmt.Errorf("%w: %s has %d checkers, at most %d allowed", ErrInvalidPositionID, c, onBoard, totals[c])
		}
	}

	if err := b.Setup(layout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPositionID, err)
	}
	if err := applyPins(b, pins); err != nil {
		return nil, err
	}
	for _, c := range engine.Colors {
		b.AddToBar(c, counts[c][n])
		b.BearOff(c, totals[c]-b.PiecesOnBoard(c))
	}
	return b, nil
}

// applyPins restores pin flags. Both colors may share a point only when
// exactly one of them is pinned there.
func applyPins(b *engine.Board, pins []byte) error {
	n := b.Size()
	if len(pins) > 0 && len(pins) != (2*n+7)/8 {
		return fmt.Errorf("%w: pin field has %d bytes, want %d", ErrInvalidPositionID, len(pins), (2*n+7)/8)
	}
	bit := func(i int) bool { return len(pins) > 0 && pins[i/8]>>(i%8)&1 == 1 }

	for pos := 1; pos <= n; pos++ {
		p, _ := b.Point(pos)
		shared := p.Pieces(engine.White) > 0 && p.Pieces(engine.Black) > 0
		var pinned []engine.Color
		for _, c := range engine.Colors {
			if bit(int(c)*n + pos - 1) {
				pinned = append(pinned, c)
			}
		}
		switch {
		case len(pinned) == 0 && shared:
			return fmt.Errorf("%w: both colors on point %d", ErrInvalidPositionID, pos)
		case len(pinned) == 0:
		case len(pinned) == 2 || !shared:
			return fmt.Errorf("%w: bad pin on point %d", ErrInvalidPositionID, pos)
		default:
			p.Pin(pinned[0])
		}
	}
	for i := 2 * n; i < len(pins)*8; i++ {
		if bit(i) {
			return fmt.Errorf("%w: trailing pin bits", ErrInvalidPositionID)
		}
	}
	return nil
}

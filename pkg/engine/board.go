// Package engine implements a rule-driven backgammon game engine.
//
// The engine knows nothing about any particular variant. Movement direction,
// doubles handling, combined-dice policy and hit-or-pin behaviour all come
// from a RuleSet, which a loader (see pkg/variant) builds from a declarative
// variant description.
package engine

import (
	"fmt"
	"strings"
)

const (
	DefaultPoints   = 24 // Points on a standard board
	DefaultCheckers = 15 // Checkers per color on a standard board
	HomeSize        = 6  // Points in each color's home board
)

// Color identifies a side.
type Color int8

const (
	NoColor Color = -1
	White   Color = 0
	Black   Color = 1
)

// Colors lists both sides in a stable order.
var Colors = [2]Color{White, Black}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "none"
}

// Valid reports whether c is White or Black.
func (c Color) Valid() bool {
	return c == White || c == Black
}

// ParseColor converts "white" or "black" (any case) to a Color.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return NoColor, fmt.Errorf("invalid color %q", s)
}

// Directions holds the signed step (+1 or -1) each color moves along the
// point numbering. Index by Color.
type Directions [2]int

// DefaultDirections has White moving toward point 1 and Black toward point N.
var DefaultDirections = Directions{-1, 1}

// Point is a single board position and its occupants.
type Point struct {
	Position int
	pieces   [2]int
	pinned   [2]bool // pinned[c]: c's checkers here are held by an opponent pin
}

// Pieces returns the number of checkers of color c on the point.
func (p *Point) Pieces(c Color) int {
	if !c.Valid() {
		return 0
	}
	return p.pieces[c]
}

// IsBlocked reports whether the opponent holds the point with two or more checkers.
func (p *Point) IsBlocked(c Color) bool {
	return p.Pieces(c.Opponent()) >= 2
}

// IsBlot reports whether c has exactly one checker here.
func (p *Point) IsBlot(c Color) bool {
	return p.Pieces(c) == 1
}

// CanLand reports whether a checker of color c may land here.
func (p *Point) CanLand(c Color) bool {
	return !p.IsBlocked(c)
}

// IsPinned reports whether c's checkers on this point are pinned.
func (p *Point) IsPinned(c Color) bool {
	return c.Valid() && p.pinned[c] && p.pieces[c] > 0
}

// Empty reports whether no checker of either color is on the point.
func (p *Point) Empty() bool {
	return p.pieces[White] == 0 && p.pieces[Black] == 0
}

// Add places n checkers of color c on the point.
func (p *Point) Add(c Color, n int) {
	p.pieces[c] += n
}

// Remove takes up to n checkers of color c off the point. The count clamps
// at zero. When the last checker of c leaves, any pin c held over the
// opponent on this point is released.
func (p *Point) Remove(c Color, n int) {
	p.pieces[c] -= n
	if p.pieces[c] < 0 {
		p.pieces[c] = 0
	}
	if p.pieces[c] == 0 {
		p.pinned[c] = false
		p.pinned[c.Opponent()] = false
	}
}

// Pin marks c's checkers on this point as pinned.
func (p *Point) Pin(c Color) {
	p.pinned[c] = true
}

// Board holds point occupancy, the bar and borne-off counts.
type Board struct {
	size   int
	points []Point // index 0 unused
	bar    [2]int
	off    [2]int
	dirs   Directions
}

// NewBoard creates an empty board with n points (DefaultPoints if n <= 0)
// and the given movement directions.
func NewBoard(n int, dirs Directions) *Board {
	if n <= 0 {
		n = DefaultPoints
	}
	if dirs[White] == 0 && dirs[Black] == 0 {
		dirs = DefaultDirections
	}
	b := &Board{
		size:   n,
		points: make([]Point, n+1),
		dirs:   dirs,
	}
	for i := 1; i <= n; i++ {
		b.points[i].Position = i
	}
	return b
}

// Size returns the number of points.
func (b *Board) Size() int { return b.size }

// Direction returns the signed step for color c.
func (b *Board) Direction(c Color) int {
	if !c.Valid() {
		return 0
	}
	return b.dirs[c]
}

// Directions returns both colors' steps.
func (b *Board) Directions() Directions { return b.dirs }

// OnBoard reports whether pos is a valid point position.
func (b *Board) OnBoard(pos int) bool {
	return pos >= 1 && pos <= b.size
}

// Point returns the point at pos.
func (b *Board) Point(pos int) (*Point, error) {
	if !b.OnBoard(pos) {
		return nil, &NotFoundError{What: fmt.Sprintf("point %d", pos)}
	}
	return &b.points[pos], nil
}

// point is Point without the range check; callers guarantee pos is on board.
func (b *Board) point(pos int) *Point {
	return &b.points[pos]
}

// Pieces returns c's checker count at pos, or 0 when pos is off the board.
func (b *Board) Pieces(pos int, c Color) int {
	if !b.OnBoard(pos) {
		return 0
	}
	return b.points[pos].Pieces(c)
}

// Setup adds the checkers described by layout to the board.
func (b *Board) Setup(layout Layout) error {
	for c, positions := range layout {
		if !c.Valid() {
			return &NotFoundError{What: fmt.Sprintf("color %d", c)}
		}
		for pos, n := range positions {
			if !b.OnBoard(pos) {
				return &NotFoundError{What: fmt.Sprintf("point %d", pos)}
			}
			if n < 0 {
				return fmt.Errorf("negative checker count %d on point %d", n, pos)
			}
			b.points[pos].Add(c, n)
		}
	}
	return nil
}

// Bar returns the number of c's checkers on the bar.
func (b *Board) Bar(c Color) int { return b.bar[c] }

// AddToBar puts n of c's checkers on the bar.
func (b *Board) AddToBar(c Color, n int) { b.bar[c] += n }

// RemoveFromBar takes up to n of c's checkers off the bar, clamping at zero.
func (b *Board) RemoveFromBar(c Color, n int) {
	b.bar[c] -= n
	if b.bar[c] < 0 {
		b.bar[c] = 0
	}
}

// BearOff records n of c's checkers as borne off.
func (b *Board) BearOff(c Color, n int) { b.off[c] += n }

// BorneOff returns the number of c's checkers borne off.
func (b *Board) BorneOff(c Color) int { return b.off[c] }

// HomeRange returns the inclusive range of c's home board. A color moving
// toward point 1 is home on 1..6; one moving toward N is home on N-5..N.
func (b *Board) HomeRange(c Color) (lo, hi int) {
	if b.Direction(c) < 0 {
		return 1, HomeSize
	}
	return b.size - HomeSize + 1, b.size
}

// InHome reports whether pos lies in c's home board.
func (b *Board) InHome(c Color, pos int) bool {
	lo, hi := b.HomeRange(c)
	return pos >= lo && pos <= hi
}

// CanBearOff reports whether c has no checkers outside its home board and
// none on the bar.
func (b *Board) CanBearOff(c Color) bool {
	if b.bar[c] > 0 {
		return false
	}
	for pos := 1; pos <= b.size; pos++ {
		if b.points[pos].Pieces(c) > 0 && !b.InHome(c, pos) {
			return false
		}
	}
	return true
}

// BearingDistance is the number of steps a checker of color c on pos needs
// to leave the board.
func (b *Board) BearingDistance(c Color, pos int) int {
	if b.Direction(c) < 0 {
		return pos
	}
	return b.size - pos + 1
}

// FarthestDistance returns the largest bearing distance among c's occupied
// points, or 0 when c has no checker on a point.
func (b *Board) FarthestDistance(c Color) int {
	max := 0
	for pos := 1; pos <= b.size; pos++ {
		if b.points[pos].Pieces(c) == 0 {
			continue
		}
		if d := b.BearingDistance(c, pos); d > max {
			max = d
		}
	}
	return max
}

// EntryPoint returns the point a checker of color c enters on with the
// given die: die for a color moving up, N-die+1 for one moving down.
func (b *Board) EntryPoint(c Color, die int) int {
	if b.Direction(c) < 0 {
		return b.size - die + 1
	}
	return die
}

// Target returns the point reached from `from` after `steps` pips, and
// whether it is on the board.
func (b *Board) Target(c Color, from, steps int) (int, bool) {
	to := from + b.Direction(c)*steps
	return to, b.OnBoard(to)
}

// PiecesOnBoard returns c's checkers on points plus the bar.
func (b *Board) PiecesOnBoard(c Color) int {
	total := b.bar[c]
	for pos := 1; pos <= b.size; pos++ {
		total += b.points[pos].Pieces(c)
	}
	return total
}

// PiecesInHome returns c's checkers inside its home board.
func (b *Board) PiecesInHome(c Color) int {
	lo, hi := b.HomeRange(c)
	total := 0
	for pos := lo; pos <= hi; pos++ {
		total += b.points[pos].Pieces(c)
	}
	return total
}

// Checkers returns every checker c owns: points, bar and borne off.
func (b *Board) Checkers(c Color) int {
	return b.PiecesOnBoard(c) + b.off[c]
}

// PipCount returns the total pips c needs to bear everything off.
func (b *Board) PipCount(c Color) int {
	pips := b.bar[c] * (b.size + 1)
	for pos := 1; pos <= b.size; pos++ {
		pips += b.points[pos].Pieces(c) * b.BearingDistance(c, pos)
	}
	return pips
}

// Copy returns an independent deep copy of the board.
func (b *Board) Copy() *Board {
	nb := &Board{
		size:   b.size,
		points: make([]Point, len(b.points)),
		bar:    b.bar,
		off:    b.off,
		dirs:   b.dirs,
	}
	copy(nb.points, b.points)
	return nb
}

// String renders the board in two rows, top row descending from N.
func (b *Board) String() string {
	var sb strings.Builder
	rule := strings.Repeat("=", 50)
	half := b.size / 2

	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Bar - White: %d, Black: %d\n", b.bar[White], b.bar[Black])
	fmt.Fprintf(&sb, "Borne Off - White: %d, Black: %d\n", b.off[White], b.off[Black])
	sb.WriteString(strings.Repeat("-", 50) + "\n")

	top := make([]string, 0, b.size-half)
	for pos := b.size; pos > half; pos-- {
		top = append(top, b.cell(pos))
	}
	sb.WriteString(strings.Join(top, " ") + "\n")

	bottom := make([]string, 0, half)
	for pos := 1; pos <= half; pos++ {
		bottom = append(bottom, b.cell(pos))
	}
	sb.WriteString(strings.Join(bottom, " ") + "\n")
	sb.WriteString(rule)
	return sb.String()
}

func (b *Board) cell(pos int) string {
	p := &b.points[pos]
	s := fmt.Sprintf("%2d:W%dB%d", pos, p.pieces[White], p.pieces[Black])
	if p.IsPinned(White) || p.IsPinned(Black) {
		s += "*"
	}
	return s
}

// Layout describes an initial position: color -> point -> checker count.
type Layout map[Color]map[int]int

// Total returns the number of checkers layout places for c.
func (l Layout) Total(c Color) int {
	total := 0
	for _, n := range l[c] {
		total += n
	}
	return total
}

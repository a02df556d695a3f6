package engine

import "fmt"

// Game orchestrates a single game: dice, legal-move enumeration, move
// application, turn switching and win detection.
//
// A Game is not safe for concurrent use. Callers sharing one Game across
// goroutines must serialize every call.
type Game struct {
	rules  *RuleSet
	board  *Board
	roller Roller
	first  Color

	started bool
	turn    Color
	dice    Dice
	used    [2]bool // consumed slots on a non-double roll
	doubles int     // consumed uses on a double roll
	over    bool
	winner  Color
	totals  [2]int
	history []MoveSequence
}

// Option configures a Game.
type Option func(*Game)

// WithRoller sets the dice source. The default is RandomRoller.
func WithRoller(r Roller) Option {
	return func(g *Game) { g.roller = r }
}

// WithFirstColor sets which color moves first after Start. Default White.
func WithFirstColor(c Color) Option {
	return func(g *Game) { g.first = c }
}

// NewGame creates a game governed by rs.
func NewGame(rs *RuleSet, opts ...Option) (*Game, error) {
	if rs == nil {
		return nil, &NotFoundError{What: "variant rules"}
	}
	g := &Game{
		rules:  rs,
		roller: RandomRoller(),
		first:  White,
		turn:   NoColor,
		winner: NoColor,
		totals: [2]int{DefaultCheckers, DefaultCheckers},
	}
	for _, opt := range opts {
		opt(g)
	}
	if !g.first.Valid() {
		return nil, fmt.Errorf("invalid first color %v", g.first)
	}
	g.board = NewBoard(rs.Params.Points, rs.Params.Directions)
	return g, nil
}

// Start seeds the board from layout and hands the first turn out. Each
// color's checker total is the sum of its layout, or DefaultCheckers when
// the layout gives it none.
func (g *Game) Start(layout Layout) error {
	if len(layout) == 0 {
		return &NotFoundError{What: "initial layout"}
	}
	board := NewBoard(g.rules.Params.Points, g.rules.Params.Directions)
	if err := board.Setup(layout); err != nil {
		return err
	}
	var totals [2]int
	for _, c := range Colors {
		totals[c] = layout.Total(c)
		if totals[c] == 0 {
			totals[c] = DefaultCheckers
		}
	}
	g.begin(board, totals)
	return nil
}

// StartFrom begins a game from an arbitrary position. Checker totals are
// taken from the board itself.
func (g *Game) StartFrom(b *Board) error {
	if b == nil {
		return &NotFoundError{What: "initial board"}
	}
	if b.Size() != g.rules.Params.Points {
		return fmt.Errorf("board has %d points, variant %s needs %d", b.Size(), g.rules.Variant, g.rules.Params.Points)
	}
	var totals [2]int
	for _, c := range Colors {
		totals[c] = b.Checkers(c)
		if totals[c] == 0 {
			totals[c] = DefaultCheckers
		}
	}
	g.begin(b.Copy(), totals)
	return nil
}

func (g *Game) begin(b *Board, totals [2]int) {
	g.board = b
	g.totals = totals
	g.started = true
	g.turn = g.first
	g.clearDice()
	g.over = false
	g.winner = NoColor
	g.history = nil
}

// SetTurn chooses the color to move. Only allowed between turns.
func (g *Game) SetTurn(c Color) error {
	switch {
	case !g.started:
		return stateErr("set turn", "game not started")
	case g.over:
		return stateErr("set turn", "game is over")
	case g.dice.Rolled():
		return stateErr("set turn", "dice already rolled for %s", g.turn)
	case !c.Valid():
		return stateErr("set turn", "invalid color %v", c)
	}
	g.turn = c
	return nil
}

// Roll draws two dice for the current mover.
func (g *Game) Roll() (Dice, error) {
	if err := g.checkRoll("roll"); err != nil {
		return Dice{}, err
	}
	d := Dice{g.roller.Roll(), g.roller.Roll()}
	g.setDice(d)
	return d, nil
}

// SetDice installs a specific roll, for replays and scripted play.
func (g *Game) SetDice(d Dice) error {
	if err := g.checkRoll("set dice"); err != nil {
		return err
	}
	for _, v := range d {
		if v < 1 || v > 6 {
			return fmt.Errorf("set dice: die value %d out of range 1-6", v)
		}
	}
	g.setDice(d)
	return nil
}

func (g *Game) checkRoll(op string) error {
	switch {
	case !g.started:
		return stateErr(op, "game not started")
	case g.over:
		return stateErr(op, "game is over")
	case g.dice.Rolled():
		return stateErr(op, "dice already rolled")
	}
	return nil
}

func (g *Game) setDice(d Dice) {
	g.clearDice()
	g.dice = d
	g.history = append(g.history, MoveSequence{Color: g.turn, Dice: d})
}

func (g *Game) clearDice() {
	g.dice = Dice{}
	g.used = [2]bool{}
	g.doubles = 0
}

// AvailableDice lists the die values still usable this turn. A double
// yields one entry per remaining use.
func (g *Game) AvailableDice() []int {
	if !g.dice.Rolled() {
		return nil
	}
	if g.dice.IsDouble() {
		n := g.rules.Params.DoublesUses - g.doubles
		out := make([]int, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, g.dice[0])
		}
		return out
	}
	out := make([]int, 0, 2)
	for i, d := range g.dice {
		if !g.used[i] {
			out = append(out, d)
		}
	}
	return out
}

// HasRemainingMoves reports whether any die is still unused this turn.
func (g *Game) HasRemainingMoves() bool {
	return len(g.AvailableDice()) > 0
}

func (g *Game) context(avail []int) *Context {
	if avail == nil {
		avail = []int{}
	}
	return &Context{Dice: g.dice, Available: avail, Params: g.rules.Params}
}

// LegalMoves enumerates every move the current mover may make with the
// remaining dice. Candidates are proposed generously and each one is
// confirmed by the rule pipeline.
func (g *Game) LegalMoves() []Move {
	if !g.started || g.over || !g.turn.Valid() {
		return nil
	}
	avail := g.AvailableDice()
	if len(avail) == 0 {
		return nil
	}
	c := g.turn
	b := g.board
	params := g.rules.Params
	values := distinct(avail)
	combinable := !g.dice.IsDouble() && len(avail) == 2
	sum := 0
	if combinable {
		sum = avail[0] + avail[1]
	}

	var cands []Move
	if b.Bar(c) > 0 {
		for _, d := range values {
			if to := b.EntryPoint(c, d); b.OnBoard(to) {
				cands = append(cands, Move{Color: c, Kind: Enter, To: to, Die: d})
			}
		}
		if combinable && params.CombinedEnter && b.Bar(c) == 1 {
			if to := b.EntryPoint(c, sum); b.OnBoard(to) {
				cands = append(cands, Move{Color: c, Kind: Enter, To: to, Die: sum})
			}
		}
	} else {
		canBear := b.CanBearOff(c)
		for pos := 1; pos <= b.Size(); pos++ {
			p := b.point(pos)
			if p.Pieces(c) == 0 || p.IsPinned(c) {
				continue
			}
			for _, d := range values {
				if to, ok := b.Target(c, pos, d); ok {
					cands = append(cands, Move{Color: c, Kind: Normal, From: pos, To: to, Die: d})
				}
			}
			if combinable && params.CombinedNormal && !canBear {
				if to, ok := b.Target(c, pos, sum); ok {
					cands = append(cands, Move{Color: c, Kind: Normal, From: pos, To: to, Die: sum})
				}
			}
		}
		if canBear {
			lo, hi := b.HomeRange(c)
			for pos := lo; pos <= hi; pos++ {
				p := b.point(pos)
				if p.Pieces(c) == 0 || p.IsPinned(c) {
					continue
				}
				for _, d := range values {
					if g.canBearOffWith(c, pos, d) {
						cands = append(cands, Move{Color: c, Kind: BearOff, From: pos, Die: d})
					}
				}
				if combinable && params.CombinedBearOff && b.BearingDistance(c, pos) == sum {
					cands = append(cands, Move{Color: c, Kind: BearOff, From: pos, Die: sum})
				}
			}
		}
	}

	ctx := g.context(avail)
	moves := make([]Move, 0, len(cands))
	for _, m := range cands {
		if containsMove(moves, m) {
			continue
		}
		if g.rules.Validate(b, c, m, g.dice, ctx).Valid {
			moves = append(moves, m)
		}
	}
	return moves
}

// canBearOffWith applies the exact-or-farthest bear-off rule.
func (g *Game) canBearOffWith(c Color, pos, die int) bool {
	dist := g.board.BearingDistance(c, pos)
	if die == dist {
		return true
	}
	return die > dist && dist >= g.board.FarthestDistance(c)
}

// MakeMove validates and applies m. On success it returns the pipeline's
// explanations. A rejected move leaves the game untouched and returns a
// *StateError, *StructuralError or *IllegalMoveError.
func (g *Game) MakeMove(m Move) ([]string, error) {
	switch {
	case !g.started || !g.turn.Valid():
		return nil, stateErr("move", "no current player")
	case g.over:
		return nil, stateErr("move", "game is over")
	case m.Color != g.turn:
		return nil, stateErr("move", "not %s's turn", m.Color)
	case !g.dice.Rolled():
		return nil, stateErr("move", "no dice rolled")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	avail := g.AvailableDice()
	v := g.rules.Validate(g.board, m.Color, m, g.dice, g.context(avail))
	if !v.Valid {
		return v.Explanations, &IllegalMoveError{Move: m, Rule: v.Rule, Explanations: v.Explanations}
	}
	if !containsMove(g.LegalMoves(), m) {
		expl := append(v.Explanations, "legality: move is not among the legal moves for the remaining dice")
		return expl, &IllegalMoveError{Move: m, Rule: "legality", Explanations: expl}
	}

	g.apply(m)
	g.consume(m.Die, avail)
	if n := len(g.history); n > 0 {
		g.history[n-1].Moves = append(g.history[n-1].Moves, m)
	}
	if g.board.BorneOff(m.Color) >= g.totals[m.Color] {
		g.over = true
		g.winner = m.Color
	}
	return v.Explanations, nil
}

func (g *Game) apply(m Move) {
	b := g.board
	switch m.Kind {
	case Enter:
		b.RemoveFromBar(m.Color, 1)
		dest := b.point(m.To)
		g.resolveContact(dest, m.Color)
		dest.Add(m.Color, 1)
	case Normal:
		b.point(m.From).Remove(m.Color, 1)
		dest := b.point(m.To)
		g.resolveContact(dest, m.Color)
		dest.Add(m.Color, 1)
	case BearOff:
		b.point(m.From).Remove(m.Color, 1)
		b.BearOff(m.Color, 1)
	}
}

// resolveContact hits or pins a lone opposing checker on dest.
func (g *Game) resolveContact(dest *Point, mover Color) {
	opp := mover.Opponent()
	if !dest.IsBlot(opp) {
		return
	}
	switch g.rules.Params.Interaction {
	case Hit:
		dest.Remove(opp, 1)
		g.board.AddToBar(opp, 1)
	case Pin:
		dest.Pin(opp)
	}
}

// consume records die as used. On a non-double, a value equal to the sum
// of both unused dice consumes both.
func (g *Game) consume(die int, avail []int) {
	if g.dice.IsDouble() {
		if die == g.dice[0] {
			g.doubles++
		}
		return
	}
	if len(avail) == 2 && die == avail[0]+avail[1] {
		g.used = [2]bool{true, true}
		return
	}
	for i, d := range g.dice {
		if !g.used[i] && d == die {
			g.used[i] = true
			return
		}
	}
}

// SwitchTurn passes the turn to the opponent and clears the dice.
func (g *Game) SwitchTurn() {
	if g.turn.Valid() {
		g.turn = g.turn.Opponent()
	}
	g.clearDice()
}

// ExplainMove runs m through the rule pipeline against the current dice
// without applying it.
func (g *Game) ExplainMove(m Move) []string {
	if !g.dice.Rolled() {
		return []string{"No dice have been rolled"}
	}
	return g.rules.Validate(g.board, m.Color, m, g.dice, g.context(g.AvailableDice())).Explanations
}

// Rules returns the game's rule set.
func (g *Game) Rules() *RuleSet { return g.rules }

// Board returns an independent copy of the board for read-only or
// speculative use.
func (g *Game) Board() *Board { return g.board.Copy() }

// Started reports whether Start has been called.
func (g *Game) Started() bool { return g.started }

// Turn returns the color to move, or NoColor before Start.
func (g *Game) Turn() Color { return g.turn }

// Dice returns the current roll and whether one is active.
func (g *Game) Dice() (Dice, bool) { return g.dice, g.dice.Rolled() }

// GameOver reports whether a color has borne off all its checkers.
func (g *Game) GameOver() bool { return g.over }

// Winner returns the winning color, or NoColor.
func (g *Game) Winner() Color { return g.winner }

// TotalCheckers returns the number of checkers c must bear off to win.
func (g *Game) TotalCheckers(c Color) int { return g.totals[c] }

// History returns the move sequences played so far, one per roll.
func (g *Game) History() []MoveSequence {
	out := make([]MoveSequence, len(g.history))
	for i, s := range g.history {
		out[i] = MoveSequence{Color: s.Color, Dice: s.Dice, Moves: append([]Move(nil), s.Moves...)}
	}
	return out
}

// PointState is one point in a Snapshot.
type PointState struct {
	Position    int
	White       int
	Black       int
	PinnedWhite bool
	PinnedBlack bool
}

// Snapshot is a read-only view of the whole game.
type Snapshot struct {
	Variant    string
	Points     []PointState
	Bar        [2]int
	BorneOff   [2]int
	Totals     [2]int
	Turn       Color
	Dice       Dice
	Available  []int
	GameOver   bool
	Winner     Color
	LegalMoves []Move
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	b := g.board
	s := Snapshot{
		Variant:    g.rules.Variant,
		Points:     make([]PointState, b.Size()),
		Bar:        b.bar,
		BorneOff:   b.off,
		Totals:     g.totals,
		Turn:       g.turn,
		Dice:       g.dice,
		Available:  g.AvailableDice(),
		GameOver:   g.over,
		Winner:     g.winner,
		LegalMoves: g.LegalMoves(),
	}
	for pos := 1; pos <= b.Size(); pos++ {
		p := b.point(pos)
		s.Points[pos-1] = PointState{
			Position:    pos,
			White:       p.pieces[White],
			Black:       p.pieces[Black],
			PinnedWhite: p.IsPinned(White),
			PinnedBlack: p.IsPinned(Black),
		}
	}
	return s
}

func distinct(values []int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		seen := false
		for _, o := range out {
			if o == v {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}

func containsMove(moves []Move, m Move) bool {
	for _, o := range moves {
		if o == m {
			return true
		}
	}
	return false
}

package engine

import "fmt"

func pass(rule, format string, args ...any) Result {
	return Result{Valid: true, Rule: rule, Explanation: fmt.Sprintf(format, args...)}
}

func fail(rule, format string, args ...any) Result {
	return Result{Rule: rule, Explanation: fmt.Sprintf(format, args...)}
}

// MovementRule checks die usage, distance, direction and landability.
type MovementRule struct {
	Directions     Directions
	MustUseAllDice bool
}

func (r *MovementRule) Name() string { return "movement" }

func (r *MovementRule) Description() string {
	return fmt.Sprintf("Checkers move by the die value (white %+d, black %+d) and may not land on a point held by two or more opposing checkers",
		r.Directions[White], r.Directions[Black])
}

func (r *MovementRule) direction(b *Board, c Color) int {
	if c.Valid() && r.Directions[c] != 0 {
		return r.Directions[c]
	}
	return b.Direction(c)
}

func (r *MovementRule) Validate(b *Board, c Color, m Move, dice Dice, ctx *Context) Result {
	name := r.Name()
	dir := r.direction(b, c)

	var combined bool
	var da, db int
	if ctx.checksDice() && !ctx.hasDie(m.Die) {
		a, bb, ok := ctx.combined(m.Die)
		switch {
		case !ok:
			return fail(name, "Die value %d is not available (available: %v)", m.Die, ctx.Available)
		case !ctx.Params.AllowsCombined(m.Kind):
			return fail(name, "Combined dice may not be used for %s moves in this variant", m.Kind)
		}
		combined, da, db = true, a, bb
	}

	switch m.Kind {
	case Normal:
		if n := b.Bar(c); n > 0 {
			return fail(name, "Must enter checkers from the bar first (%d on bar)", n)
		}
		origin, err := b.Point(m.From)
		if err != nil {
			return fail(name, "Origin point %d is off the board", m.From)
		}
		if origin.Pieces(c) == 0 {
			return fail(name, "No %s checker on point %d", c, m.From)
		}
		if origin.IsPinned(c) {
			return fail(name, "Checker on point %d is pinned", m.From)
		}
		expected := m.From + dir*m.Die
		if m.To != expected {
			return fail(name, "Move distance doesn't match die value. Expected %d, got %d", expected, m.To)
		}
		dest, err := b.Point(m.To)
		if err != nil {
			return fail(name, "Point %d is off the board; bear off instead", m.To)
		}
		if !dest.CanLand(c) {
			return fail(name, "Point %d is blocked (has 2+ opponent pieces)", m.To)
		}
		if combined && !r.pathOpen(b, c, ctx.Params.Interaction, m.From, dir, da, db) {
			return fail(name, "No open intermediate point for combined move from %d", m.From)
		}
		return pass(name, "Move is valid")

	case Enter:
		n := b.Bar(c)
		if n == 0 {
			return fail(name, "No %s checkers on the bar", c)
		}
		expected := entryPoint(b.Size(), dir, m.Die)
		if m.To != expected {
			return fail(name, "Entry point for die %d is %d, got %d", m.Die, expected, m.To)
		}
		dest, err := b.Point(m.To)
		if err != nil {
			return fail(name, "Entry point %d is off the board", m.To)
		}
		if !dest.CanLand(c) {
			return fail(name, "Entry point %d is blocked (has 2+ opponent pieces)", m.To)
		}
		if combined {
			if n > 1 {
				return fail(name, "Combined entry needs a single checker on the bar (%d on bar)", n)
			}
			if !r.entryPathOpen(b, c, ctx.Params.Interaction, dir, da, db) {
				return fail(name, "No open intermediate point for combined entry to %d", m.To)
			}
		}
		return pass(name, "Entering from the bar on point %d", m.To)

	case BearOff:
		if n := b.Bar(c); n > 0 {
			return fail(name, "Must enter checkers from the bar first (%d on bar)", n)
		}
		return pass(name, "Bear-off distance checked by bearing-off rule")
	}
	return fail(name, "Unknown move kind %s", m.Kind)
}

// canStop reports whether c may land on pos as the intermediate stop of a
// combined move. It refuses the same points HittingRule refuses as a
// destination: blocked points, points where c is pinned, and with
// NoContact any point holding an opposing checker.
func canStop(b *Board, c Color, in Interaction, pos int) bool {
	if !b.OnBoard(pos) {
		return false
	}
	p := b.point(pos)
	if !p.CanLand(c) || p.IsPinned(c) {
		return false
	}
	return in != NoContact || p.Pieces(c.Opponent()) == 0
}

// pathOpen reports whether a combined move from `from` can stop on an open
// point after either die.
func (r *MovementRule) pathOpen(b *Board, c Color, in Interaction, from, dir, da, db int) bool {
	for _, d := range [2]int{da, db} {
		if canStop(b, c, in, from+dir*d) {
			return true
		}
	}
	return false
}

func (r *MovementRule) entryPathOpen(b *Board, c Color, in Interaction, dir, da, db int) bool {
	for _, d := range [2]int{da, db} {
		if canStop(b, c, in, entryPoint(b.Size(), dir, d)) {
			return true
		}
	}
	return false
}

func entryPoint(size, dir, die int) int {
	if dir < 0 {
		return size - die + 1
	}
	return die
}

// HittingRule explains contact with opposing checkers. With CanHit a lone
// opposing checker is sent to the bar; with PinInstead it is pinned; with
// neither, landing on any opposing checker is illegal.
type HittingRule struct {
	CanHit     bool
	PinInstead bool
}

func (r *HittingRule) Name() string { return "hitting" }

func (r *HittingRule) Description() string {
	switch {
	case r.CanHit:
		return "Landing on a lone opposing checker hits it and sends it to the bar"
	case r.PinInstead:
		return "Landing on a lone opposing checker pins it in place until the pinning checker leaves"
	}
	return "Checkers may not land on a point occupied by the opponent"
}

func (r *HittingRule) Validate(b *Board, c Color, m Move, dice Dice, ctx *Context) Result {
	name := r.Name()
	if m.Kind != Normal && m.Kind != Enter {
		return pass(name, "No hit")
	}
	dest, err := b.Point(m.To)
	if err != nil {
		return pass(name, "No hit")
	}
	opp := c.Opponent()
	if dest.IsPinned(c) {
		return fail(name, "Point %d is held by an opposing pin", m.To)
	}
	switch {
	case dest.Pieces(opp) == 0:
		return pass(name, "No hit")
	case !r.CanHit && !r.PinInstead:
		return fail(name, "Point %d is occupied by the opponent and hitting is not allowed", m.To)
	case dest.IsBlot(opp) && r.CanHit:
		return pass(name, "Will hit opponent blot on point %d", m.To)
	case dest.IsBlot(opp) && r.PinInstead:
		return pass(name, "Will pin opponent blot on point %d", m.To)
	}
	return pass(name, "No hit")
}

// BearingOffRule governs when and from where checkers may leave the board.
type BearingOffRule struct {
	Enabled        bool
	RequireAllHome bool
}

func (r *BearingOffRule) Name() string { return "bearing_off" }

func (r *BearingOffRule) Description() string {
	if !r.Enabled {
		return "Bearing off is not part of this variant"
	}
	return "Once every checker is home, checkers bear off with the exact roll, or a higher roll from the farthest occupied point"
}

func (r *BearingOffRule) Validate(b *Board, c Color, m Move, dice Dice, ctx *Context) Result {
	name := r.Name()
	if m.Kind != BearOff {
		return pass(name, "Not a bear-off move")
	}
	if !r.Enabled {
		return fail(name, "Bearing off not enabled in this variant")
	}
	if r.RequireAllHome && !b.CanBearOff(c) {
		return fail(name, "All pieces must be in home board before bearing off")
	}
	lo, hi := b.HomeRange(c)
	if !b.InHome(c, m.From) {
		return fail(name, "Can only bear off from points %d-%d", lo, hi)
	}
	origin := b.point(m.From)
	if origin.Pieces(c) == 0 {
		return fail(name, "No %s checker on point %d", c, m.From)
	}
	if origin.IsPinned(c) {
		return fail(name, "Checker on point %d is pinned", m.From)
	}

	dist := b.BearingDistance(c, m.From)
	if ctx.checksDice() && !ctx.hasDie(m.Die) {
		if a, bb, ok := ctx.combined(m.Die); ok {
			if m.Die != dist {
				return fail(name, "Combined dice must bear off exactly (point %d needs %d)", m.From, dist)
			}
			if !bearOffPathOpen(b, c, ctx.Params.Interaction, m.From, a, bb) {
				return fail(name, "No open intermediate point for combined bear-off from %d", m.From)
			}
			return pass(name, "Bearing off from %d with combined roll %d", m.From, m.Die)
		}
	}

	switch {
	case m.Die == dist:
		return pass(name, "Bearing off from %d with exact roll %d", m.From, m.Die)
	case m.Die > dist && dist >= b.FarthestDistance(c):
		return pass(name, "Bearing off from farthest point %d with higher roll %d", m.From, m.Die)
	case m.Die > dist:
		return fail(name, "Roll %d is higher than needed; a checker farther back must be borne off first", m.Die)
	}
	return fail(name, "Roll %d is too small to bear off from point %d (needs %d)", m.Die, m.From, dist)
}

func bearOffPathOpen(b *Board, c Color, in Interaction, from, da, db int) bool {
	for _, d := range [2]int{da, db} {
		if mid, ok := b.Target(c, from, d); ok && canStop(b, c, in, mid) {
			return true
		}
	}
	return false
}

// ForcedMoveRule records the variant's forced-move policy. The engine's
// enumeration already refuses moves with no legal continuation; this rule
// never rejects.
type ForcedMoveRule struct {
	MustUseAllDice bool
	MustUseHigher  bool
}

func (r *ForcedMoveRule) Name() string { return "forced_moves" }

func (r *ForcedMoveRule) Description() string {
	switch {
	case r.MustUseAllDice && r.MustUseHigher:
		return "Both dice must be used when possible; if only one can be used, the higher one"
	case r.MustUseAllDice:
		return "Both dice must be used when possible"
	}
	return "Dice may be left unused"
}

func (r *ForcedMoveRule) Validate(b *Board, c Color, m Move, dice Dice, ctx *Context) Result {
	return pass(r.Name(), "Forced move check passed")
}

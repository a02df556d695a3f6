package engine

import "fmt"

// Interaction is what happens when a checker lands on a lone opposing checker.
type Interaction int

const (
	Hit       Interaction = iota // Send the blot to the bar
	Pin                          // Trap the blot under the landing checker
	NoContact                    // Landing on any opposing checker is illegal
)

func (i Interaction) String() string {
	switch i {
	case Hit:
		return "hit"
	case Pin:
		return "pin"
	case NoContact:
		return "none"
	}
	return fmt.Sprintf("interaction(%d)", int(i))
}

// DefaultDoublesUses is how many moves a doubles roll grants by default.
const DefaultDoublesUses = 4

// Params are the variant-wide parameters the engine needs beyond the rule
// checks. A loader fills them once from the variant description.
type Params struct {
	Points          int
	Directions      Directions
	DoublesUses     int
	CombinedNormal  bool // Sum of both dice may move one checker point to point
	CombinedEnter   bool // Sum of both dice may enter a lone bar checker
	CombinedBearOff bool // Sum of both dice may bear a checker off exactly
	Interaction     Interaction
}

// DefaultParams returns standard backgammon parameters.
func DefaultParams() Params {
	return Params{
		Points:         DefaultPoints,
		Directions:     DefaultDirections,
		DoublesUses:    DefaultDoublesUses,
		CombinedNormal: true,
		Interaction:    Hit,
	}
}

// withDefaults fills zero-valued fields from DefaultParams.
func (p Params) withDefaults() Params {
	if p.Points <= 0 {
		p.Points = DefaultPoints
	}
	if p.Directions[White] == 0 && p.Directions[Black] == 0 {
		p.Directions = DefaultDirections
	}
	if p.DoublesUses <= 0 {
		p.DoublesUses = DefaultDoublesUses
	}
	return p
}

// AllowsCombined reports whether the variant lets a move of the given kind
// use the sum of both dice.
func (p Params) AllowsCombined(kind MoveKind) bool {
	switch kind {
	case Normal:
		return p.CombinedNormal
	case Enter:
		return p.CombinedEnter
	case BearOff:
		return p.CombinedBearOff
	}
	return false
}

// Context carries turn state the rules may consult. A nil Context, or one
// with nil Available, skips die availability checks.
type Context struct {
	Dice      Dice
	Available []int
	Params    Params
}

func (ctx *Context) checksDice() bool {
	return ctx != nil && ctx.Available != nil
}

func (ctx *Context) hasDie(die int) bool {
	for _, d := range ctx.Available {
		if d == die {
			return true
		}
	}
	return false
}

// combined returns the two unused dice whose sum is die, when die is a
// combined total on a non-double roll.
func (ctx *Context) combined(die int) (a, b int, ok bool) {
	if ctx == nil || ctx.Dice.IsDouble() || len(ctx.Available) != 2 {
		return 0, 0, false
	}
	a, b = ctx.Available[0], ctx.Available[1]
	return a, b, a+b == die
}

// Result is one rule's verdict on one move.
type Result struct {
	Valid       bool
	Explanation string
	Rule        string
}

// Rule is one independent legality check.
type Rule interface {
	Name() string
	Description() string
	Validate(b *Board, c Color, m Move, dice Dice, ctx *Context) Result
}

// Verdict is the outcome of running a move through a RuleSet.
type Verdict struct {
	Valid        bool
	Rule         string // name of the rejecting rule, empty when valid
	Reason       string // rejecting rule's explanation
	Explanations []string
}

// RuleSet is an ordered rule pipeline plus the variant's parameters.
type RuleSet struct {
	Variant string
	Params  Params
	Rules   []Rule
}

// NewRuleSet builds a RuleSet. Zero-valued params fall back to standard
// backgammon values.
func NewRuleSet(variant string, params Params, rules ...Rule) *RuleSet {
	return &RuleSet{
		Variant: variant,
		Params:  params.withDefaults(),
		Rules:   rules,
	}
}

// StandardRuleSet returns the rules of standard backgammon.
func StandardRuleSet() *RuleSet {
	p := DefaultParams()
	return NewRuleSet("standard", p,
		&MovementRule{Directions: p.Directions, MustUseAllDice: true},
		&HittingRule{CanHit: true},
		&BearingOffRule{Enabled: true, RequireAllHome: true},
		&ForcedMoveRule{MustUseAllDice: true, MustUseHigher: true},
	)
}

// Direction returns the movement step for color c.
func (rs *RuleSet) Direction(c Color) int {
	if !c.Valid() {
		return 0
	}
	return rs.Params.Directions[c]
}

// CanHit reports whether landing on a blot sends it to the bar.
func (rs *RuleSet) CanHit() bool { return rs.Params.Interaction == Hit }

// PinInstead reports whether landing on a blot pins it.
func (rs *RuleSet) PinInstead() bool { return rs.Params.Interaction == Pin }

// Validate runs every rule in order. The first rejection stops the
// pipeline; its explanation becomes the verdict's Reason.
func (rs *RuleSet) Validate(b *Board, c Color, m Move, dice Dice, ctx *Context) Verdict {
	explanations := make([]string, 0, len(rs.Rules))
	for _, rule := range rs.Rules {
		res := rule.Validate(b, c, m, dice, ctx)
		explanations = append(explanations, fmt.Sprintf("%s: %s", rule.Name(), res.Explanation))
		if !res.Valid {
			return Verdict{
				Rule:         rule.Name(),
				Reason:       res.Explanation,
				Explanations: explanations,
			}
		}
	}
	return Verdict{Valid: true, Explanations: explanations}
}

// Describe lists each rule as "name: description".
func (rs *RuleSet) Describe() []string {
	out := make([]string, len(rs.Rules))
	for i, rule := range rs.Rules {
		out[i] = fmt.Sprintf("%s: %s", rule.Name(), rule.Description())
	}
	return out
}

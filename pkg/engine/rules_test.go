package engine

import (
	"strings"
	"testing"
)

func ctxFor(d Dice, avail ...int) *Context {
	return &Context{Dice: d, Available: avail, Params: DefaultParams()}
}

func TestMovementRule(t *testing.T) {
	b := newStandardBoard(t)
	rule := &MovementRule{Directions: DefaultDirections}

	tests := []struct {
		name  string
		m     Move
		ctx   *Context
		valid bool
	}{
		{"exact distance", MustMove(White, Normal, 8, 5, 3), ctxFor(Dice{3, 1}, 3, 1), true},
		{"wrong distance", MustMove(White, Normal, 8, 4, 3), ctxFor(Dice{3, 1}, 3, 1), false},
		{"die not available", MustMove(White, Normal, 8, 3, 5), ctxFor(Dice{3, 1}, 3, 1), false},
		{"blocked point", MustMove(White, Normal, 13, 12, 1), ctxFor(Dice{3, 1}, 3, 1), false},
		{"empty origin", MustMove(White, Normal, 9, 6, 3), ctxFor(Dice{3, 1}, 3, 1), false},
		{"combined sum", MustMove(White, Normal, 8, 4, 4), ctxFor(Dice{3, 1}, 3, 1), true},
		{"nil context skips dice", MustMove(White, Normal, 8, 3, 5), nil, true},
		{"black moves up", MustMove(Black, Normal, 1, 4, 3), ctxFor(Dice{3, 5}, 3, 5), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := rule.Validate(b, tc.m.Color, tc.m, Dice{}, tc.ctx)
			if res.Valid != tc.valid {
				t.Errorf("Validate(%s) = %v (%s), want %v", tc.m, res.Valid, res.Explanation, tc.valid)
			}
		})
	}
}

func TestMovementRuleBarFirst(t *testing.T) {
	b := newStandardBoard(t)
	b.point(24).Remove(White, 1)
	b.AddToBar(White, 1)
	rule := &MovementRule{Directions: DefaultDirections}

	res := rule.Validate(b, White, MustMove(White, Normal, 8, 5, 3), Dice{3, 1}, ctxFor(Dice{3, 1}, 3, 1))
	if res.Valid {
		t.Fatal("normal move with a checker on the bar should be rejected")
	}
	if !strings.Contains(res.Explanation, "bar") {
		t.Errorf("explanation = %q, want mention of the bar", res.Explanation)
	}

	res = rule.Validate(b, White, MustMove(White, Enter, NoPoint, 22, 3), Dice{3, 1}, ctxFor(Dice{3, 1}, 3, 1))
	if !res.Valid {
		t.Errorf("entry on 22 rejected: %s", res.Explanation)
	}
}

func TestCombinedMoveNeedsOpenIntermediate(t *testing.T) {
	b := NewBoard(DefaultPoints, DefaultDirections)
	b.Setup(Layout{White: {10: 1}, Black: {7: 2, 1: 13}})
	rule := &MovementRule{Directions: DefaultDirections}

	// 3 then 2 stops on the blocked 7; 2 then 3 stops on the open 8.
	res := rule.Validate(b, White, MustMove(White, Normal, 10, 5, 5), Dice{3, 2}, ctxFor(Dice{3, 2}, 3, 2))
	if !res.Valid {
		t.Errorf("combined move through open 8 rejected: %s", res.Explanation)
	}

	b.point(8).Add(Black, 2)
	res = rule.Validate(b, White, MustMove(White, Normal, 10, 5, 5), Dice{3, 2}, ctxFor(Dice{3, 2}, 3, 2))
	if res.Valid {
		t.Error("combined move with both intermediates blocked should be rejected")
	}
}

func TestCombinedDisabledByParams(t *testing.T) {
	b := newStandardBoard(t)
	rule := &MovementRule{Directions: DefaultDirections}
	ctx := ctxFor(Dice{3, 1}, 3, 1)
	ctx.Params.CombinedNormal = false

	res := rule.Validate(b, White, MustMove(White, Normal, 8, 4, 4), Dice{3, 1}, ctx)
	if res.Valid {
		t.Error("combined normal move should be rejected when the variant disallows it")
	}
}

func TestHittingRule(t *testing.T) {
	b := NewBoard(DefaultPoints, DefaultDirections)
	b.Setup(Layout{White: {8: 2}, Black: {5: 1, 4: 1}})

	tests := []struct {
		name  string
		rule  *HittingRule
		valid bool
		want  string
	}{
		{"hit", &HittingRule{CanHit: true}, true, "hit"},
		{"pin", &HittingRule{PinInstead: true}, true, "pin"},
		{"no contact", &HittingRule{}, false, "not allowed"},
	}
	m := MustMove(White, Normal, 8, 5, 3)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.rule.Validate(b, White, m, Dice{3, 4}, nil)
			if res.Valid != tc.valid {
				t.Errorf("Valid = %v, want %v", res.Valid, tc.valid)
			}
			if !strings.Contains(res.Explanation, tc.want) {
				t.Errorf("Explanation = %q, want it to contain %q", res.Explanation, tc.want)
			}
		})
	}
}

func TestHittingRuleRejectsPinnedDestination(t *testing.T) {
	b := NewBoard(DefaultPoints, DefaultDirections)
	b.Setup(Layout{White: {8: 1, 5: 1}, Black: {5: 1}})
	b.point(5).Pin(White)

	res := (&HittingRule{PinInstead: true}).Validate(b, White, MustMove(White, Normal, 8, 5, 3), Dice{3, 1}, nil)
	if res.Valid {
		t.Error("landing on a point where the mover is pinned should be rejected")
	}
}

func TestBearingOffRule(t *testing.T) {
	b := NewBoard(DefaultPoints, DefaultDirections)
	b.Setup(Layout{White: {2: 1, 5: 1}, Black: {19: 15}})
	rule := &BearingOffRule{Enabled: true, RequireAllHome: true}

	tests := []struct {
		name  string
		from  int
		die   int
		valid bool
	}{
		{"six from farthest", 5, 6, true},
		{"six from nearer point", 2, 6, false},
		{"exact five", 5, 5, true},
		{"exact two", 2, 2, true},
		{"three from two", 2, 3, false},
		{"three from five", 5, 3, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := MustMove(White, BearOff, tc.from, NoPoint, tc.die)
			res := rule.Validate(b, White, m, Dice{}, nil)
			if res.Valid != tc.valid {
				t.Errorf("bear off %d with %d: Valid = %v (%s), want %v", tc.from, tc.die, res.Valid, res.Explanation, tc.valid)
			}
		})
	}
}

func TestBearingOffRuleRequiresAllHome(t *testing.T) {
	b := NewBoard(DefaultPoints, DefaultDirections)
	b.Setup(Layout{White: {2: 1, 9: 1}})
	res := (&BearingOffRule{Enabled: true, RequireAllHome: true}).Validate(b, White, MustMove(White, BearOff, 2, NoPoint, 2), Dice{}, nil)
	if res.Valid {
		t.Error("bear off with a checker outside home should be rejected")
	}

	res = (&BearingOffRule{Enabled: false}).Validate(b, White, MustMove(White, BearOff, 2, NoPoint, 2), Dice{}, nil)
	if res.Valid {
		t.Error("bear off should be rejected when disabled")
	}
}

func TestRuleSetShortCircuits(t *testing.T) {
	rs := StandardRuleSet()
	b := newStandardBoard(t)

	v := rs.Validate(b, White, MustMove(White, Normal, 8, 4, 3), Dice{3, 1}, ctxFor(Dice{3, 1}, 3, 1))
	if v.Valid {
		t.Fatal("expected rejection")
	}
	if v.Rule != "movement" {
		t.Errorf("Rule = %q, want movement", v.Rule)
	}
	if len(v.Explanations) != 1 {
		t.Errorf("got %d explanations, want 1 (pipeline stops at first failure)", len(v.Explanations))
	}

	v = rs.Validate(b, White, MustMove(White, Normal, 8, 5, 3), Dice{3, 1}, ctxFor(Dice{3, 1}, 3, 1))
	if !v.Valid {
		t.Fatalf("expected acceptance, got %v", v.Explanations)
	}
	if len(v.Explanations) != len(rs.Rules) {
		t.Errorf("got %d explanations, want %d", len(v.Explanations), len(rs.Rules))
	}
	if !strings.HasPrefix(v.Explanations[0], "movement: ") {
		t.Errorf("first explanation = %q, want movement prefix", v.Explanations[0])
	}
}

func TestNewRuleSetDefaults(t *testing.T) {
	rs := NewRuleSet("custom", Params{})
	if rs.Params.Points != DefaultPoints {
		t.Errorf("Points = %d, want %d", rs.Params.Points, DefaultPoints)
	}
	if rs.Params.DoublesUses != DefaultDoublesUses {
		t.Errorf("DoublesUses = %d, want %d", rs.Params.DoublesUses, DefaultDoublesUses)
	}
	if rs.Direction(White) != -1 || rs.Direction(Black) != 1 {
		t.Errorf("directions = %d/%d, want -1/+1", rs.Direction(White), rs.Direction(Black))
	}
	if len(rs.Describe()) != 0 {
		t.Error("empty rule set should describe no rules")
	}
}

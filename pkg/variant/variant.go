// Package variant loads declarative backgammon variant descriptions and
// turns them into an engine.RuleSet plus an initial engine.Layout.
package variant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/yourusername/tablabaki/pkg/engine"
)

var (
	ErrVariantNotFound = errors.New("variant not found")
	ErrInvalidVariant  = errors.New("invalid variant definition")
)

// Definition mirrors the JSON variant format. Optional sections are
// pointers so a missing section can be told apart from a zero one.
type Definition struct {
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Board         BoardSpec     `json:"board"`
	Movement      *MovementSpec `json:"movement,omitempty"`
	Dice          *DiceSpec     `json:"dice,omitempty"`
	CombinedMoves *CombinedSpec `json:"combined_moves,omitempty"`
	Hitting       *HittingSpec  `json:"hitting,omitempty"`
	BearingOff    *BearingSpec  `json:"bearing_off,omitempty"`
	ForcedMoves   *ForcedSpec   `json:"forced_moves,omitempty"`
}

type BoardSpec struct {
	Points       int                       `json:"points,omitempty"`
	InitialSetup map[string]map[string]int `json:"initial_setup"`
}

type MovementSpec struct {
	Direction      map[string]int `json:"direction,omitempty"`
	MustUseAllDice *bool          `json:"must_use_all_dice,omitempty"`
}

type DiceSpec struct {
	DoublesUses int `json:"doubles_uses,omitempty"`
}

type CombinedSpec struct {
	Normal  *bool `json:"normal,omitempty"`
	Enter   bool  `json:"enter,omitempty"`
	BearOff bool  `json:"bear_off,omitempty"`
}

type HittingSpec struct {
	CanHit     *bool `json:"can_hit,omitempty"`
	SendToBar  *bool `json:"send_to_bar,omitempty"`
	PinInstead bool  `json:"pin_instead,omitempty"`
}

type BearingSpec struct {
	Enabled         *bool `json:"enabled,omitempty"`
	AllInOuterBoard *bool `json:"all_in_outer_board,omitempty"`
}

type ForcedSpec struct {
	MustUseAllDice         *bool `json:"must_use_all_dice,omitempty"`
	MustUseHigherIfOnlyOne *bool `json:"must_use_higher_if_only_one,omitempty"`
}

// Parse decodes a JSON variant description. When the document carries no
// name, fallback is used.
func Parse(data []byte, fallback string) (*Definition, error) {
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVariant, err)
	}
	if d.Name == "" {
		d.Name = fallback
	}
	if d.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidVariant)
	}
	return &d, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Params derives the engine parameters the variant declares. Missing
// sections fall back to standard backgammon.
func (d *Definition) Params() (engine.Params, error) {
	p := engine.DefaultParams()
	if d.Board.Points > 0 {
		if d.Board.Points < 2*engine.HomeSize {
			return p, fmt.Errorf("%w: %s: board needs at least %d points, got %d",
				ErrInvalidVariant, d.Name, 2*engine.HomeSize, d.Board.Points)
		}
		p.Points = d.Board.Points
	}
	if d.Movement != nil {
		for name, dir := range d.Movement.Direction {
			c, err := engine.ParseColor(name)
			if err != nil {
				return p, fmt.Errorf("%w: %s: %v", ErrInvalidVariant, d.Name, err)
			}
			if dir != 1 && dir != -1 {
				return p, fmt.Errorf("%w: %s: %s direction must be 1 or -1, got %d", ErrInvalidVariant, d.Name, c, dir)
			}
			p.Directions[c] = dir
		}
		if p.Directions[engine.White] == p.Directions[engine.Black] {
			return p, fmt.Errorf("%w: %s: both colors move the same way", ErrInvalidVariant, d.Name)
		}
	}
	if d.Dice != nil && d.Dice.DoublesUses > 0 {
		p.DoublesUses = d.Dice.DoublesUses
	}
	if d.CombinedMoves != nil {
		p.CombinedNormal = boolOr(d.CombinedMoves.Normal, true)
		p.CombinedEnter = d.CombinedMoves.Enter
		p.CombinedBearOff = d.CombinedMoves.BearOff
	}
	if h := d.Hitting; h != nil {
		switch {
		case h.PinInstead:
			p.Interaction = engine.Pin
		case boolOr(h.CanHit, true) && boolOr(h.SendToBar, true):
			p.Interaction = engine.Hit
		default:
			p.Interaction = engine.NoContact
		}
	}
	return p, nil
}

// RuleSet builds the ordered rule pipeline: movement, hitting, bearing off,
// forced moves. Movement and bearing off are always present.
func (d *Definition) RuleSet() (*engine.RuleSet, error) {
	p, err := d.Params()
	if err != nil {
		return nil, err
	}

	mustUseAll := true
	if d.Movement != nil {
		mustUseAll = boolOr(d.Movement.MustUseAllDice, true)
	}
	rules := []engine.Rule{
		&engine.MovementRule{Directions: p.Directions, MustUseAllDice: mustUseAll},
		&engine.HittingRule{CanHit: p.Interaction == engine.Hit, PinInstead: p.Interaction == engine.Pin},
	}

	bearing := &engine.BearingOffRule{Enabled: true, RequireAllHome: true}
	if b := d.BearingOff; b != nil {
		bearing.Enabled = boolOr(b.Enabled, true)
		bearing.RequireAllHome = boolOr(b.AllInOuterBoard, true)
	}
	rules = append(rules, bearing)

	if f := d.ForcedMoves; f != nil {
		rules = append(rules, &engine.ForcedMoveRule{
			MustUseAllDice: boolOr(f.MustUseAllDice, true),
			MustUseHigher:  boolOr(f.MustUseHigherIfOnlyOne, true),
		})
	}
	return engine.NewRuleSet(d.Name, p, rules...), nil
}

// Layout converts the initial setup into an engine.Layout.
func (d *Definition) Layout() (engine.Layout, error) {
	if len(d.Board.InitialSetup) == 0 {
		return nil, fmt.Errorf("%w: %s: no initial setup", ErrInvalidVariant, d.Name)
	}
	points := d.Board.Points
	if points <= 0 {
		points = engine.DefaultPoints
	}
	layout := make(engine.Layout, 2)
	for name, positions := range d.Board.InitialSetup {
		c, err := engine.ParseColor(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVariant, d.Name, err)
		}
		m := make(map[int]int, len(positions))
		for key, n := range positions {
			pos, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: bad point %q", ErrInvalidVariant, d.Name, key)
			}
			if pos < 1 || pos > points {
				return nil, fmt.Errorf("%w: %s: point %d outside 1-%d", ErrInvalidVariant, d.Name, pos, points)
			}
			if n < 0 {
				return nil, fmt.Errorf("%w: %s: negative count on point %d", ErrInvalidVariant, d.Name, pos)
			}
			m[pos] += n
		}
		layout[c] = m
	}
	return layout, nil
}

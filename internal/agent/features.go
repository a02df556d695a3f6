package agent

import "github.com/yourusername/tablabaki/pkg/engine"

// Feature indices into the vector returned by Features.
const (
	FeatBearOff = iota
	FeatEnter
	FeatContact
	FeatProgress
	FeatSafePoint
	FeatDie
	numFeatures
)

// Weights are the per-feature multipliers.
type Weights struct {
	BearOff   float64
	Enter     float64
	Contact   float64 // hitting or pinning a lone opposing checker
	Progress  float64 // per pip advanced
	SafePoint float64 // making a point out of a blot
	Die       float64 // per pip of die used
}

// DefaultWeights favours bearing off, then entering, then hitting.
func DefaultWeights() Weights {
	return Weights{
		BearOff:   1000,
		Enter:     500,
		Contact:   300,
		Progress:  10,
		SafePoint: 50,
		Die:       5,
	}
}

func (w Weights) vector() []float64 {
	v := make([]float64, numFeatures)
	v[FeatBearOff] = w.BearOff
	v[FeatEnter] = w.Enter
	v[FeatContact] = w.Contact
	v[FeatProgress] = w.Progress
	v[FeatSafePoint] = w.SafePoint
	v[FeatDie] = w.Die
	return v
}

// Features extracts the feature vector of move m on board b (before m is
// applied).
func Features(b *engine.Board, p engine.Params, m engine.Move) [numFeatures]float64 {
	var f [numFeatures]float64
	f[FeatDie] = float64(m.Die)

	switch m.Kind {
	case engine.BearOff:
		f[FeatBearOff] = 1
		return f
	case engine.Enter:
		f[FeatEnter] = 1
	case engine.Normal:
		f[FeatProgress] = float64(b.BearingDistance(m.Color, m.From) - b.BearingDistance(m.Color, m.To))
	}

	dest, err := b.Point(m.To)
	if err != nil {
		return f
	}
	if p.Interaction != engine.NoContact && dest.IsBlot(m.Color.Opponent()) {
		f[FeatContact] = 1
	}
	if m.Kind == engine.Normal && dest.IsBlot(m.Color) {
		f[FeatSafePoint] = 1
	}
	return f
}

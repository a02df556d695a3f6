package engine

import "math/rand/v2"

// Roller produces die values in 1..6.
type Roller interface {
	Roll() int
}

// RollerFunc adapts a function to Roller.
type RollerFunc func() int

func (f RollerFunc) Roll() int { return f() }

// randomRoller delegates to math/rand/v2 (auto-seeded).
type randomRoller struct{}

func (randomRoller) Roll() int { return rand.IntN(6) + 1 }

// RandomRoller returns a Roller backed by the global math/rand/v2 source.
func RandomRoller() Roller { return randomRoller{} }

// seededRoller is deterministic for a given seed. Not safe for concurrent use.
type seededRoller struct {
	rng *rand.Rand
}

func (r *seededRoller) Roll() int { return r.rng.IntN(6) + 1 }

// SeededRoller returns a reproducible Roller.
func SeededRoller(seed uint64) Roller {
	return &seededRoller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// SequenceRoller replays the given values in order, cycling when exhausted.
// Useful for scripted games and tests.
func SequenceRoller(values ...int) Roller {
	i := 0
	return RollerFunc(func() int {
		v := values[i%len(values)]
		i++
		return v
	})
}

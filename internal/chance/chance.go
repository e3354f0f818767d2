// Package chance provides the injectable random source used by the
// probabilistic reflection and identity decisions.
package chance

import (
	"math/rand"
	"time"
)

// Source yields uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Roll reports whether a draw from src falls below p.
func Roll(src Source, p float64) bool {
	return src.Float64() < p
}

// NewSource returns a time-seeded source.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Fixed always returns the same draw.
type Fixed float64

// Float64 implements Source.
func (f Fixed) Float64() float64 { return float64(f) }

// Always and Never force Roll to true or false for any p in (0, 1].
var (
	Always Source = Fixed(0)
	Never  Source = Fixed(1)
)

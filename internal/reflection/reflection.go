// Package reflection decides when the agent records a reflection note.
package reflection

import (
	"math"

	"github.com/rcliao/persona-agent/internal/chance"
	"github.com/rcliao/persona-agent/internal/state"
)

// Note is the reflection stored under the "reflection" state key.
const Note = "reflection: stay grounded in user goals, remember stable preferences, " +
	"and keep responses concise and practical"

// Scheduler draws reflection decisions from Source.
type Scheduler struct {
	Source chance.Source
}

// Probability is the chance of reflecting this turn, capped at 0.55.
func Probability(g state.Goals) float64 {
	return math.Min(0.55, 0.08+0.25*g.Curiosity+0.2*g.RelationalDepthScore)
}

// ShouldReflect draws once against Probability(g).
func (s *Scheduler) ShouldReflect(g state.Goals) bool {
	return chance.Roll(s.Source, Probability(g))
}

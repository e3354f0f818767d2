package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcliao/persona-agent/internal/chance"
	"github.com/rcliao/persona-agent/internal/state"
)

func TestProbability(t *testing.T) {
	assert.InDelta(t, 0.08, Probability(state.Goals{}), 1e-9)
	// 0.08 + 0.125 + 0.04
	assert.InDelta(t, 0.245, Probability(state.DefaultGoals()), 1e-9)
	assert.InDelta(t, 0.55, Probability(state.Goals{Curiosity: 1, RelationalDepthScore: 1}), 1e-9)
}

func TestShouldReflectThreshold(t *testing.T) {
	g := state.DefaultGoals()

	s := &Scheduler{Source: chance.Fixed(0.244)}
	assert.True(t, s.ShouldReflect(g))

	s = &Scheduler{Source: chance.Fixed(0.246)}
	assert.False(t, s.ShouldReflect(g))

	s = &Scheduler{Source: chance.Fixed(0.56)}
	assert.False(t, s.ShouldReflect(state.Goals{Curiosity: 1, RelationalDepthScore: 1}))
}

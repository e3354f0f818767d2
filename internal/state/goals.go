package state

import "strings"

var (
	helpCues     = []string{"help", "how", "can you"}
	relationCues = []string{"i ", "my ", "feel", "family", "work"}
)

// Goals are the agent's behavioral priorities, each in [0, 1].
type Goals struct {
	Helpfulness          float64 `json:"helpfulness"`
	Curiosity            float64 `json:"curiosity"`
	RelationalDepthScore float64 `json:"relational_depth_score"`
}

// DefaultGoals are the priorities of a fresh agent.
func DefaultGoals() Goals {
	return Goals{Helpfulness: 0.5, Curiosity: 0.5, RelationalDepthScore: 0.2}
}

// Update returns the goals after reacting to message.
func (g Goals) Update(message string) Goals {
	text := strings.ToLower(message)
	asksHelp := strings.Contains(text, "?") || countCues(text, helpCues) > 0
	personal := countCues(text, relationCues) > 0

	next := g
	if asksHelp {
		next.Helpfulness += 0.06
	} else {
		next.Helpfulness -= 0.01
	}
	if len(strings.Fields(text)) > 6 {
		next.Curiosity += 0.03
	} else {
		next.Curiosity -= 0.01
	}
	if personal {
		next.RelationalDepthScore += 0.07
	} else {
		next.RelationalDepthScore += 0.01
	}

	next.Helpfulness = clamp01(next.Helpfulness)
	next.Curiosity = clamp01(next.Curiosity)
	next.RelationalDepthScore = clamp01(next.RelationalDepthScore)
	return next
}

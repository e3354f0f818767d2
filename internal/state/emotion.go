// Package state holds the agent's affect and goal value objects and their
// persisted snapshots.
package state

import (
	"math"
	"strings"
)

var (
	positiveCues = []string{"thanks", "great", "love", "good", "awesome"}
	negativeCues = []string{"bad", "hate", "angry", "upset", "annoyed"}
	personalCues = []string{"i am", "my", "me", "mine", "feel"}
)

// Emotion is the agent's affect: valence, arousal and intimacy in [0, 1].
type Emotion struct {
	Valence  float64 `json:"valence"`
	Arousal  float64 `json:"arousal"`
	Intimacy float64 `json:"intimacy"`
}

// DefaultEmotion is the affect of a fresh agent.
func DefaultEmotion() Emotion {
	return Emotion{Valence: 0.0, Arousal: 0.3, Intimacy: 0.0}
}

// Update returns the affect after reacting to message. Each cue counts once
// no matter how often it appears.
func (e Emotion) Update(message string) Emotion {
	text := strings.ToLower(message)
	pos := countCues(text, positiveCues)
	neg := countCues(text, negativeCues)
	personal := countCues(text, personalCues)

	return Emotion{
		Valence:  clamp01(e.Valence + 0.08*float64(pos-neg)),
		Arousal:  clamp01(e.Arousal + 0.05*float64(pos+neg) - 0.02),
		Intimacy: clamp01(e.Intimacy + 0.07*float64(personal)),
	}
}

// SamplingControls are the generation parameters derived from affect.
type SamplingControls struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// SamplingControls maps affect onto generation parameters. Higher arousal
// raises temperature, higher valence widens top_p, and intimacy lengthens
// replies relative to baseMaxTokens.
func (e Emotion) SamplingControls(baseMaxTokens int) SamplingControls {
	temperature := clamp(0.4+0.8*e.Arousal, 0.1, 1.4)
	topP := clamp(0.7+0.25*e.Valence, 0.5, 0.98)
	maxTokens := int(math.Round(float64(baseMaxTokens) * (0.7 + 0.6*e.Intimacy)))
	if maxTokens < 32 {
		maxTokens = 32
	}
	if maxTokens > 220 {
		maxTokens = 220
	}
	return SamplingControls{
		Temperature: round3(temperature),
		TopP:        round3(topP),
		MaxTokens:   maxTokens,
	}
}

func countCues(text string, cues []string) int {
	n := 0
	for _, c := range cues {
		if strings.Contains(text, c) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// clamp01 also maps NaN to 0 so a corrupt snapshot cannot poison later turns.
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

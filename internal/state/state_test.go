package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/persona-agent/internal/model"
	"github.com/rcliao/persona-agent/internal/store"
)

func TestEmotionUpdate(t *testing.T) {
	e := DefaultEmotion().Update("Thanks, this is GREAT great great")
	assert.InDelta(t, 0.16, e.Valence, 1e-9)
	assert.InDelta(t, 0.38, e.Arousal, 1e-9)
	assert.InDelta(t, 0.0, e.Intimacy, 1e-9)

	e = DefaultEmotion().Update("I am upset and I feel bad")
	// negative: upset, bad; personal: "i am", "feel"
	assert.InDelta(t, 0.0, e.Valence, 1e-9)
	assert.InDelta(t, 0.38, e.Arousal, 1e-9)
	assert.InDelta(t, 0.14, e.Intimacy, 1e-9)
}

func TestEmotionUpdateDoesNotMutateReceiver(t *testing.T) {
	e := DefaultEmotion()
	_ = e.Update("thanks, love it")
	assert.Equal(t, DefaultEmotion(), e)
}

func TestEmotionArousalDecaysToZero(t *testing.T) {
	e := DefaultEmotion()
	for i := 0; i < 100; i++ {
		e = e.Update("ok")
	}
	assert.Equal(t, 0.0, e.Arousal)
}

func TestSamplingControls(t *testing.T) {
	tests := []struct {
		name string
		e    Emotion
		base int
		want SamplingControls
	}{
		{"default", DefaultEmotion(), 80, SamplingControls{Temperature: 0.64, TopP: 0.7, MaxTokens: 56}},
		{"saturated", Emotion{Valence: 1, Arousal: 1, Intimacy: 1}, 80, SamplingControls{Temperature: 1.2, TopP: 0.95, MaxTokens: 104}},
		{"max tokens ceiling", Emotion{Intimacy: 1}, 300, SamplingControls{Temperature: 0.4, TopP: 0.7, MaxTokens: 220}},
		{"max tokens floor", Emotion{}, 10, SamplingControls{Temperature: 0.4, TopP: 0.7, MaxTokens: 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.SamplingControls(tt.base)
			assert.InDelta(t, tt.want.Temperature, got.Temperature, 1e-9)
			assert.InDelta(t, tt.want.TopP, got.TopP, 1e-9)
			assert.Equal(t, tt.want.MaxTokens, got.MaxTokens)
		})
	}
}

func TestGoalsUpdate(t *testing.T) {
	g := DefaultGoals().Update("Can you help me?")
	assert.InDelta(t, 0.56, g.Helpfulness, 1e-9)
	assert.InDelta(t, 0.49, g.Curiosity, 1e-9)
	assert.InDelta(t, 0.21, g.RelationalDepthScore, 1e-9)

	g = DefaultGoals().Update("my family has been keeping me busy this whole week")
	assert.InDelta(t, 0.49, g.Helpfulness, 1e-9)
	assert.InDelta(t, 0.53, g.Curiosity, 1e-9)
	assert.InDelta(t, 0.27, g.RelationalDepthScore, 1e-9)
}

func assertUnit(t testing.TB, name string, v float64) {
	t.Helper()
	if v < 0 || v > 1 {
		t.Fatalf("%s out of [0,1]: %v", name, v)
	}
}

func FuzzEmotionUpdate(f *testing.F) {
	for _, seed := range []string{"", "thanks great love good awesome", "bad hate angry upset annoyed", "I am my me mine feel", "?!\x00\xff"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, msg string) {
		for _, start := range []Emotion{DefaultEmotion(), {}, {Valence: 1, Arousal: 1, Intimacy: 1}} {
			e := start
			for i := 0; i < 20; i++ {
				e = e.Update(msg)
				assertUnit(t, "valence", e.Valence)
				assertUnit(t, "arousal", e.Arousal)
				assertUnit(t, "intimacy", e.Intimacy)
			}
			c := e.SamplingControls(80)
			if c.Temperature < 0.1 || c.Temperature > 1.4 || c.TopP < 0.5 || c.TopP > 0.98 || c.MaxTokens < 32 || c.MaxTokens > 220 {
				t.Fatalf("controls out of range: %+v", c)
			}
		}
	})
}

func FuzzGoalsUpdate(f *testing.F) {
	for _, seed := range []string{"", "how can you help?", "my family and work make me feel tired every single day", "ok"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, msg string) {
		for _, start := range []Goals{DefaultGoals(), {}, {Helpfulness: 1, Curiosity: 1, RelationalDepthScore: 1}} {
			g := start
			for i := 0; i < 20; i++ {
				g = g.Update(msg)
				assertUnit(t, "helpfulness", g.Helpfulness)
				assertUnit(t, "curiosity", g.Curiosity)
				assertUnit(t, "relational_depth_score", g.RelationalDepthScore)
			}
		}
	})
}

func TestSnapshotLoadDefaults(t *testing.T) {
	snap, err := Load(context.Background(), store.NewMemStore())
	require.NoError(t, err)
	assert.Equal(t, Default(), snap)
}

func TestSnapshotSaveLoad(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	want := Snapshot{
		Emotion: Emotion{Valence: 0.25, Arousal: 0.5, Intimacy: 0.75},
		Goals:   Goals{Helpfulness: 0.1, Curiosity: 0.2, RelationalDepthScore: 0.3},
	}
	require.NoError(t, Save(ctx, st, want))

	raw, err := st.GetState(ctx, model.StateGoals, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"helpfulness":0.1,"curiosity":0.2,"relational_depth_score":0.3}`, raw)

	got, err := Load(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotLoadMalformed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	require.NoError(t, st.SetState(ctx, model.StateEmotion, "{not json"))

	_, err := Load(ctx, st)
	assert.ErrorContains(t, err, "load emotion state")
}

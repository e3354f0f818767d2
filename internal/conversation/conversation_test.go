package conversation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rcliao/persona-agent/internal/chance"
	"github.com/rcliao/persona-agent/internal/generate"
	"github.com/rcliao/persona-agent/internal/identity"
	"github.com/rcliao/persona-agent/internal/model"
	"github.com/rcliao/persona-agent/internal/reflection"
	"github.com/rcliao/persona-agent/internal/state"
	"github.com/rcliao/persona-agent/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const seedIdentity = "You are a concise, warm assistant focused on useful and honest conversation.\n"

type stubGenerator struct {
	out  string
	err  error
	reqs []generate.Request
}

func (g *stubGenerator) Complete(_ context.Context, req generate.Request) (string, error) {
	g.reqs = append(g.reqs, req)
	return g.out, g.err
}

type fixture struct {
	store *store.MemStore
	gen   *stubGenerator
	opts  Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	docPath := filepath.Join(dir, "agent", "identity_core.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(docPath), 0o755))
	require.NoError(t, os.WriteFile(docPath, []byte(seedIdentity), 0o644))

	st := store.NewMemStore()
	gen := &stubGenerator{out: "Sounds good."}
	return &fixture{
		store: st,
		gen:   gen,
		opts: Options{
			Store:            st,
			Generator:        gen,
			IdentityPath:     docPath,
			ChangelogPath:    filepath.Join(dir, "logs", "changes.log"),
			ReflectionSource: chance.Never,
			EvolutionSource:  chance.Never,
			Now:              func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) },
			Log:              zerolog.Nop(),
		},
	}
}

func (f *fixture) agent(t *testing.T) *Agent {
	t.Helper()
	a, err := New(context.Background(), f.opts)
	require.NoError(t, err)
	return a
}

func TestReplyFirstTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gen.out = "Assistant: Nice to meet you, Alice!"
	a := f.agent(t)

	reply, err := a.Reply(ctx, "Hi, my name is Alice and I live in Nairobi.")
	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you, Alice!", reply)

	facts, err := f.store.IdentityFacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Alice", "location": "Nairobi"}, model.FactMap(facts))

	require.Len(t, f.gen.reqs, 1)
	req := f.gen.reqs[0]
	assert.Contains(t, req.Prompt, "Known about user:\n- location: Nairobi\n- name: Alice\n")
	assert.Contains(t, req.Prompt, "No recent exchange history.")
	assert.True(t, strings.HasSuffix(req.Prompt, "User: Hi, my name is Alice and I live in Nairobi.\nAssistant:"))
	assert.Equal(t, 0.624, req.Temperature)
	assert.Equal(t, 0.7, req.TopP)
	assert.Equal(t, 63, req.MaxTokens)
	assert.Equal(t, []string{"\nUser:"}, req.Stop)

	recent, err := f.store.RecentExchanges(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Hi, my name is Alice and I live in Nairobi.", recent[0].UserMessage)
	assert.Equal(t, "Nice to meet you, Alice!", recent[0].AssistantReply)
}

func TestReplyUsesShortTermWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.agent(t)

	for _, msg := range []string{"one", "two", "three", "four"} {
		_, err := a.Reply(ctx, msg)
		require.NoError(t, err)
	}
	_, err := a.Reply(ctx, "five")
	require.NoError(t, err)

	last := f.gen.reqs[len(f.gen.reqs)-1].Prompt
	assert.NotContains(t, last, "User: one\n")
	assert.Contains(t, last, "User: two\nAssistant: Sounds good.\nUser: three")
	assert.Contains(t, last, "User: four\nAssistant: Sounds good.")
}

func TestReplyGeneratorFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gen.err = errors.New("connection refused")
	a := f.agent(t)

	reply, err := a.Reply(ctx, "How do I fix my bike?")
	require.NoError(t, err)
	assert.Equal(t, ErrorReplyFallback, reply)

	recent, err := f.store.RecentExchanges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ErrorReplyFallback, recent[0].AssistantReply)
}

func TestReplyWithoutGenerator(t *testing.T) {
	f := newFixture(t)
	f.opts.Generator = nil
	a := f.agent(t)

	reply, err := a.Reply(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, ErrorReplyFallback, reply)
}

func TestReplyUnavailableGenerator(t *testing.T) {
	f := newFixture(t)
	f.opts.Generator = generate.Unavailable{}
	a := f.agent(t)

	reply, err := a.Reply(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, ErrorReplyFallback, reply)
}

func TestReplyEmptyOutput(t *testing.T) {
	f := newFixture(t)
	f.gen.out = " User: Assistant:  \n"
	a := f.agent(t)

	reply, err := a.Reply(context.Background(), "hmm")
	require.NoError(t, err)
	assert.Equal(t, EmptyReplyFallback, reply)
}

func TestReplySummarizesEveryTenTurns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.agent(t)

	for i := 0; i < 11; i++ {
		_, err := a.Reply(ctx, "tell me more")
		require.NoError(t, err)
	}

	sums := f.store.Summaries()
	require.Len(t, sums, 1)
	assert.Equal(t, 10, sums[0].TurnEnd)
	assert.True(t, strings.HasPrefix(sums[0].Summary, "Recent trajectory:\n"))

	_, err := a.Reply(ctx, "and then?")
	require.NoError(t, err)
	last := f.gen.reqs[len(f.gen.reqs)-1].Prompt
	assert.Contains(t, last, "Long-term summary:\nRecent trajectory:\n- User: tell me more | Assistant: Sounds good.")
}

func TestReplyPersistsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.agent(t)

	_, err := a.Reply(ctx, "Thanks, that was great! Can you help with my family trip?")
	require.NoError(t, err)
	after := a.State()
	assert.NotEqual(t, state.Default(), after)
	assert.Greater(t, after.Emotion.Valence, 0.0)
	assert.Greater(t, after.Goals.Helpfulness, 0.5)

	raw, err := f.store.GetState(ctx, model.StateGoals, "")
	require.NoError(t, err)
	assert.Contains(t, raw, `"relational_depth_score"`)

	again, err := New(ctx, f.opts)
	require.NoError(t, err)
	assert.Equal(t, after, again.State())
}

func TestNewMalformedSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.SetState(ctx, model.StateEmotion, "{not json"))

	_, err := New(ctx, f.opts)
	assert.ErrorContains(t, err, "load emotion state")
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestReplyRecordsReflection(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	a := f.agent(t)
	_, err := a.Reply(ctx, "hello")
	require.NoError(t, err)
	note, err := f.store.GetState(ctx, model.StateReflection, "")
	require.NoError(t, err)
	assert.Empty(t, note)

	f = newFixture(t)
	f.opts.ReflectionSource = chance.Always
	a = f.agent(t)
	_, err = a.Reply(ctx, "hello")
	require.NoError(t, err)
	note, err = f.store.GetState(ctx, model.StateReflection, "")
	require.NoError(t, err)
	assert.Equal(t, reflection.Note, note)
}

func TestReplyEvolvesIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.opts.EvolutionSource = chance.Always
	a := f.agent(t)

	_, err := a.Reply(ctx, "I feel like my work is getting better")
	require.NoError(t, err)

	doc, err := os.ReadFile(f.opts.IdentityPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), strings.TrimSpace(identity.AdaptiveNote))

	lines, err := identity.History(f.opts.ChangelogPath)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "identity_core.txt updated | backup=identity_core.txt.bak.20261016090000")
	assert.True(t, strings.HasSuffix(lines[0], "relational_depth_score=0.270"))

	// The next prompt is built from the evolved document.
	_, err = a.Reply(ctx, "ok")
	require.NoError(t, err)
	assert.Contains(t, f.gen.reqs[1].Prompt, "Adaptive note:")
}

func TestReplyStoreFailure(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t)
	require.NoError(t, a.Close())

	_, err := a.Reply(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrClosed))
}

func TestReplyMissingIdentity(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.opts.IdentityPath))
	a := f.agent(t)

	_, err := a.Reply(context.Background(), "hello")
	assert.ErrorContains(t, err, "read identity")

	n, err := f.store.ExchangeCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "aborted turn records nothing")
}

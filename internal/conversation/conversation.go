// Package conversation runs the per-turn pipeline that ties the agent's
// state, memory, prompt assembly, generation and self-revision together.
package conversation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rcliao/persona-agent/internal/chance"
	"github.com/rcliao/persona-agent/internal/generate"
	"github.com/rcliao/persona-agent/internal/identity"
	"github.com/rcliao/persona-agent/internal/memory"
	"github.com/rcliao/persona-agent/internal/model"
	"github.com/rcliao/persona-agent/internal/prompt"
	"github.com/rcliao/persona-agent/internal/reflection"
	"github.com/rcliao/persona-agent/internal/state"
	"github.com/rcliao/persona-agent/internal/store"
)

// Replies used when generation does not produce usable text.
const (
	EmptyReplyFallback = "I hear you. Could you share a little more detail so I can help better?"
	ErrorReplyFallback = "I’m here with you. I had a brief generation issue, but I can still help—please continue."
)

// DefaultMaxTokens is the base completion budget before emotional scaling.
const DefaultMaxTokens = 80

// Options wires an Agent.
type Options struct {
	Store     store.Store
	Generator generate.Generator // nil replies with ErrorReplyFallback

	IdentityPath  string
	ChangelogPath string
	Bounds        identity.Bounds // zero value means identity.DefaultBounds()

	MaxTokens int // zero means DefaultMaxTokens

	// Nil sources share one time-seeded source.
	ReflectionSource chance.Source
	EvolutionSource  chance.Source

	Now func() time.Time
	Log zerolog.Logger
}

// Agent is a single long-running conversational agent. It is not safe for
// concurrent use: one turn runs to completion before the next.
type Agent struct {
	store     store.Store
	gen       generate.Generator
	memory    *memory.Manager
	prompts   *prompt.Builder
	reflector *reflection.Scheduler
	evolver   *identity.Evolver
	maxTokens int
	now       func() time.Time
	entropy   *rand.Rand
	log       zerolog.Logger

	snap state.Snapshot
}

// New rehydrates the agent's emotion and goal state from opts.Store.
// A snapshot that cannot be decoded is an error.
func New(ctx context.Context, opts Options) (*Agent, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("conversation: store is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Bounds == (identity.Bounds{}) {
		opts.Bounds = identity.DefaultBounds()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReflectionSource == nil || opts.EvolutionSource == nil {
		src := chance.NewSource()
		if opts.ReflectionSource == nil {
			opts.ReflectionSource = src
		}
		if opts.EvolutionSource == nil {
			opts.EvolutionSource = src
		}
	}

	snap, err := state.Load(ctx, opts.Store)
	if err != nil {
		return nil, err
	}

	return &Agent{
		store:     opts.Store,
		gen:       opts.Generator,
		memory:    memory.NewManager(opts.Store, opts.Log),
		prompts:   &prompt.Builder{IdentityPath: opts.IdentityPath},
		reflector: &reflection.Scheduler{Source: opts.ReflectionSource},
		evolver: &identity.Evolver{
			DocPath:       opts.IdentityPath,
			ChangelogPath: opts.ChangelogPath,
			Source:        opts.EvolutionSource,
			Bounds:        opts.Bounds,
			Now:           opts.Now,
			Log:           opts.Log,
		},
		maxTokens: opts.MaxTokens,
		now:       opts.Now,
		entropy:   rand.New(rand.NewSource(opts.Now().UnixNano())),
		log:       opts.Log,
		snap:      snap,
	}, nil
}

// State returns the current emotion and goal snapshot.
func (a *Agent) State() state.Snapshot {
	return a.snap
}

// Close releases the underlying store.
func (a *Agent) Close() error {
	return a.store.Close()
}

// Reply runs one full turn for message and returns the assistant reply.
// Generation failures degrade to a fallback reply; storage and filesystem
// errors abort the turn and are returned.
func (a *Agent) Reply(ctx context.Context, message string) (string, error) {
	turn := ulid.MustNew(ulid.Timestamp(a.now()), a.entropy).String()
	log := a.log.With().Str("turn", turn).Logger()

	next := state.Snapshot{
		Emotion: a.snap.Emotion.Update(message),
		Goals:   a.snap.Goals.Update(message),
	}

	facts := memory.ExtractIdentityFacts(message)
	if len(facts) > 0 {
		if err := a.store.UpsertIdentityFacts(ctx, facts); err != nil {
			return "", fmt.Errorf("store identity facts: %w", err)
		}
		log.Debug().Int("facts", len(facts)).Msg("identity facts updated")
	}

	in, err := a.promptInput(ctx, message)
	if err != nil {
		return "", err
	}
	text, err := a.prompts.Build(in)
	if err != nil {
		return "", err
	}

	controls := next.Emotion.SamplingControls(a.maxTokens)
	reply := a.generate(ctx, log, generate.Request{
		Prompt:      text,
		Temperature: controls.Temperature,
		TopP:        controls.TopP,
		MaxTokens:   controls.MaxTokens,
		Stop:        generate.DefaultStop,
	})

	if err := a.store.AddExchange(ctx, message, reply); err != nil {
		return "", fmt.Errorf("record exchange: %w", err)
	}
	if _, err := a.memory.MaybeStoreSummary(ctx); err != nil {
		return "", fmt.Errorf("store summary: %w", err)
	}

	if a.reflector.ShouldReflect(next.Goals) {
		if err := a.store.SetState(ctx, model.StateReflection, reflection.Note); err != nil {
			return "", fmt.Errorf("store reflection: %w", err)
		}
		log.Debug().Msg("reflection recorded")
	}

	if _, err := a.evolver.MaybeRewrite(next.Goals.RelationalDepthScore); err != nil {
		return "", err
	}

	if err := state.Save(ctx, a.store, next); err != nil {
		return "", fmt.Errorf("save state: %w", err)
	}
	a.snap = next

	log.Debug().
		Float64("valence", next.Emotion.Valence).
		Float64("depth", next.Goals.RelationalDepthScore).
		Int("max_tokens", controls.MaxTokens).
		Msg("turn complete")
	return reply, nil
}

func (a *Agent) promptInput(ctx context.Context, message string) (prompt.Input, error) {
	shortTerm, err := a.memory.ShortTerm(ctx)
	if err != nil {
		return prompt.Input{}, fmt.Errorf("load short-term memory: %w", err)
	}
	facts, err := a.memory.IdentityFacts(ctx)
	if err != nil {
		return prompt.Input{}, fmt.Errorf("load identity facts: %w", err)
	}
	summary, err := a.memory.LatestSummary(ctx)
	if err != nil {
		return prompt.Input{}, fmt.Errorf("load summary: %w", err)
	}
	return prompt.Input{
		UserMessage: message,
		ShortTerm:   shortTerm,
		Facts:       facts,
		Summary:     summary,
	}, nil
}

func (a *Agent) generate(ctx context.Context, log zerolog.Logger, req generate.Request) string {
	if a.gen == nil {
		log.Warn().Msg("no generator configured")
		return ErrorReplyFallback
	}
	raw, err := a.gen.Complete(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("generation failed")
		return ErrorReplyFallback
	}
	reply := generate.Clean(raw)
	if reply == "" {
		return EmptyReplyFallback
	}
	return reply
}

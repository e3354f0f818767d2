// Package generate provides a pluggable interface for text-generation backends.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/persona-agent/internal/config"
)

// ErrUnavailable is returned by the Unavailable generator.
var ErrUnavailable = errors.New("generate: no generator available")

// DefaultStop ends a completion before the model writes the next user turn.
var DefaultStop = []string{"\nUser:"}

// Request is one completion call.
type Request struct {
	Prompt      string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
}

// Generator produces a completion for a prompt.
type Generator interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Clean strips role markers the model may echo and trims whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "User:", "")
	text = strings.ReplaceAll(text, "Assistant:", "")
	return strings.TrimSpace(text)
}

// Unavailable always fails. It stands in when no backend is configured.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

// New creates a generator for the configured provider:
// "ollama" | "openai" | "anthropic" | "none".
func New(cfg config.GeneratorConfig) (Generator, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg.Endpoint, cfg.Model, timeout), nil
	case "openai":
		return NewOpenAI(cfg.Endpoint, cfg.APIKey, cfg.Model, timeout), nil
	case "anthropic":
		return NewAnthropic(cfg.Endpoint, cfg.APIKey, cfg.Model, timeout), nil
	case "none", "":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}

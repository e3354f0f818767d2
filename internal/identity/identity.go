// Package identity evolves the agent's identity document: a bounded,
// probabilistic rewrite that keeps a timestamped backup of the previous text
// and an append-only changelog of every applied change.
package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/rcliao/persona-agent/internal/chance"
)

// AdaptiveNote is appended to the document on every applied rewrite.
const AdaptiveNote = "\n\nAdaptive note: I should gradually become more emotionally attuned, " +
	"remember user preferences carefully, and keep concise yet warm replies while " +
	"prioritizing truthful, actionable assistance."

const (
	backupStamp = "20060102150405"
	logStamp    = "2006-01-02T15:04:05.000000"
)

// Bounds limits the rewritten document length, in characters.
// MinOriginal, when positive, skips rewrites of a shorter original document.
type Bounds struct {
	Min         int
	Max         int
	MinOriginal int
}

// DefaultBounds keeps the document between 100 and 1000 characters.
func DefaultBounds() Bounds {
	return Bounds{Min: 100, Max: 1000}
}

// Evolver rewrites the document at DocPath and records changes in ChangelogPath.
type Evolver struct {
	DocPath       string
	ChangelogPath string
	Source        chance.Source
	Bounds        Bounds
	Now           func() time.Time
	Log           zerolog.Logger
}

// Probability is the chance of evolving at the given relational depth, capped at 0.65.
func Probability(relationalDepth float64) float64 {
	return math.Min(0.65, 0.05+0.5*relationalDepth)
}

// ShouldEvolve draws once against Probability(relationalDepth).
func (e *Evolver) ShouldEvolve(relationalDepth float64) bool {
	return chance.Roll(e.Source, Probability(relationalDepth))
}

// MaybeRewrite appends AdaptiveNote to the document when selected and the
// result stays within Bounds. It reports whether the document changed.
// A rejected rewrite touches no file. Filesystem errors are returned.
func (e *Evolver) MaybeRewrite(relationalDepth float64) (bool, error) {
	if !e.ShouldEvolve(relationalDepth) {
		return false, nil
	}

	raw, err := os.ReadFile(e.DocPath)
	if err != nil {
		return false, fmt.Errorf("read identity: %w", err)
	}
	original := string(raw)
	trimmed := strings.TrimSpace(original)

	if e.Bounds.MinOriginal > 0 && utf8.RuneCountInString(trimmed) < e.Bounds.MinOriginal {
		e.Log.Debug().Int("length", utf8.RuneCountInString(trimmed)).Msg("identity too short to evolve")
		return false, nil
	}

	next := strings.TrimSpace(trimmed + AdaptiveNote)
	if n := utf8.RuneCountInString(next); n < e.Bounds.Min || n > e.Bounds.Max {
		e.Log.Debug().Int("length", n).Msg("identity rewrite rejected: out of bounds")
		return false, nil
	}

	ts := e.now().UTC()
	backup := e.DocPath + ".bak." + ts.Format(backupStamp)
	if err := writeExclusive(backup, raw); err != nil {
		if errors.Is(err, fs.ErrExist) {
			e.Log.Debug().Str("backup", filepath.Base(backup)).Msg("identity rewrite skipped: backup exists")
			return false, nil
		}
		return false, fmt.Errorf("write identity backup: %w", err)
	}

	if err := os.WriteFile(e.DocPath, []byte(next+"\n"), 0o644); err != nil {
		return false, fmt.Errorf("write identity: %w", err)
	}

	line := fmt.Sprintf("%sZ | %s updated | backup=%s | relational_depth_score=%.3f\n",
		ts.Format(logStamp), filepath.Base(e.DocPath), filepath.Base(backup), relationalDepth)
	if err := appendLine(e.ChangelogPath, line); err != nil {
		return false, fmt.Errorf("append identity changelog: %w", err)
	}

	e.Log.Info().Str("backup", filepath.Base(backup)).Float64("depth", relationalDepth).Msg("identity evolved")
	return true, nil
}

func (e *Evolver) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// DefaultDocument seeds a missing identity document.
const DefaultDocument = "You are a concise, warm assistant focused on useful and honest conversation."

// Seed writes DefaultDocument to path unless a document already exists there.
func Seed(path string) error {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create identity directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultDocument+"\n"), 0o644); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// writeExclusive creates path with data and fails with fs.ErrExist if it is
// already there.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// History returns the changelog lines, oldest first. A missing changelog
// yields no lines.
func History(changelogPath string) ([]string, error) {
	data, err := os.ReadFile(changelogPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read identity changelog: %w", err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

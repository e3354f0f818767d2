// Package cli implements the persona-agent CLI commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rcliao/persona-agent/internal/config"
	"github.com/rcliao/persona-agent/internal/conversation"
	"github.com/rcliao/persona-agent/internal/generate"
	"github.com/rcliao/persona-agent/internal/identity"
	"github.com/rcliao/persona-agent/internal/logging"
	"github.com/rcliao/persona-agent/internal/store"
)

var (
	configPath string
	dbPath     string
	formatFlag string
	ephemeral  bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "persona-agent",
	Short: "A conversational agent with persistent, evolving state",
	Long: "Chat with an agent that remembers facts about you, summarizes long conversations, " +
		"tracks its own mood and goals, and slowly rewrites its identity document. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $AGENT_CONFIG or ./persona-agent.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (overrides store.path)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep state in memory only")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("AGENT_CONFIG"); env != "" {
		return env
	}
	return "persona-agent.yaml"
}

func loadConfig() *config.Config {
	cfg, err := config.LoadFromPath(getConfigPath())
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		exitErr("config", err)
	}
	return cfg
}

func openStore(cfg *config.Config) (store.Store, error) {
	if ephemeral {
		return store.NewMemStore(), nil
	}
	return store.NewSQLiteStore(cfg.Store.Path)
}

// openSQLite opens the database directly for commands that need more than
// the Store interface.
func openSQLite(cfg *config.Config) (*store.SQLiteStore, error) {
	if ephemeral {
		return nil, fmt.Errorf("--ephemeral has no database to inspect")
	}
	return store.NewSQLiteStore(cfg.Store.Path)
}

func newLogger(cfg *config.Config) (zerolog.Logger, io.Closer) {
	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		exitErr("open log", err)
	}
	return log, closer
}

// openAgent wires a conversation agent from cfg. Closing the agent closes
// its store; the returned closer releases the log.
func openAgent(cmd *cobra.Command, cfg *config.Config) (*conversation.Agent, io.Closer) {
	log, logCloser := newLogger(cfg)

	gen, err := generate.New(cfg.Generator)
	if err != nil {
		exitErr("generator", err)
	}
	if err := identity.Seed(cfg.Identity.Path); err != nil {
		exitErr("seed identity", err)
	}

	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}

	agent, err := conversation.New(cmd.Context(), conversation.Options{
		Store:         s,
		Generator:     gen,
		IdentityPath:  cfg.Identity.Path,
		ChangelogPath: cfg.Identity.ChangelogPath,
		Bounds: identity.Bounds{
			Min:         cfg.Identity.MinLength,
			Max:         cfg.Identity.MaxLength,
			MinOriginal: cfg.Identity.MinOriginalLength,
		},
		MaxTokens: cfg.Generator.MaxTokens,
		Log:       log,
	})
	if err != nil {
		s.Close()
		exitErr("start agent", err)
	}
	log.Debug().Str("provider", cfg.Generator.Provider).Str("store", cfg.Store.Path).Msg("agent ready")
	return agent, logCloser
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/persona-agent/internal/model"
	"github.com/rcliao/persona-agent/internal/reflection"
	"github.com/rcliao/persona-agent/internal/state"
)

func init() {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the agent's emotion, goals and derived sampling controls",
		Run:   runState,
	}

	RootCmd.AddCommand(cmd)
}

type stateReport struct {
	Emotion               state.Emotion          `json:"emotion"`
	Goals                 state.Goals            `json:"goals"`
	Sampling              state.SamplingControls `json:"sampling"`
	ReflectionProbability float64                `json:"reflection_probability"`
	Reflection            string                 `json:"reflection,omitempty"`
	Summary               string                 `json:"latest_summary,omitempty"`
	Exchanges             int                    `json:"exchanges"`
}

func runState(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	snap, err := state.Load(ctx, s)
	if err != nil {
		exitErr("state", err)
	}
	note, err := s.GetState(ctx, model.StateReflection, "")
	if err != nil {
		exitErr("state", err)
	}
	summary, err := s.LatestSummary(ctx)
	if err != nil {
		exitErr("state", err)
	}
	count, err := s.ExchangeCount(ctx)
	if err != nil {
		exitErr("state", err)
	}

	printJSON(stateReport{
		Emotion:               snap.Emotion,
		Goals:                 snap.Goals,
		Sampling:              snap.Emotion.SamplingControls(cfg.Generator.MaxTokens),
		ReflectionProbability: reflection.Probability(snap.Goals),
		Reflection:            note,
		Summary:               summary,
		Exchanges:             count,
	})
}

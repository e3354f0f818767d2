package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "List what the agent knows about the user",
		Run:   runFacts,
	}

	RootCmd.AddCommand(cmd)

	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent exchanges",
		Run:   runRecent,
	}
	recent.Flags().IntP("limit", "l", 10, "Max exchanges")

	RootCmd.AddCommand(recent)
}

func runFacts(cmd *cobra.Command, args []string) {
	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	facts, err := s.IdentityFacts(cmd.Context())
	if err != nil {
		exitErr("facts", err)
	}

	if formatFlag == "text" {
		for _, f := range facts {
			fmt.Printf("%s: %s\n", f.Key, f.Value)
		}
		return
	}
	printJSON(facts)
}

func runRecent(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	exchanges, err := s.RecentExchanges(cmd.Context(), limit)
	if err != nil {
		exitErr("recent", err)
	}

	if formatFlag == "text" {
		for _, e := range exchanges {
			fmt.Printf("User: %s\nAssistant: %s\n", e.UserMessage, e.AssistantReply)
		}
		return
	}
	printJSON(exchanges)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

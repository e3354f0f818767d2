package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search past exchanges by keyword",
		Long:  "Search user messages and assistant replies for matching text.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	cfg := loadConfig()
	s, err := openSQLite(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.SearchExchanges(cmd.Context(), query, limit)
	if err != nil {
		exitErr("search", err)
	}

	if formatFlag == "text" {
		for _, e := range results {
			fmt.Printf("#%d User: %s\n   Assistant: %s\n", e.ID, e.UserMessage, e.AssistantReply)
		}
		return
	}
	printJSON(results)
}

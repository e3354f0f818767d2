package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/persona-agent/internal/identity"
	"github.com/rcliao/persona-agent/internal/prompt"
)

func init() {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect the identity document",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current identity document",
		Run:   runIdentityShow,
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "Print the identity changelog, oldest first",
		Run:   runIdentityHistory,
	}

	cmd.AddCommand(show, history)
	RootCmd.AddCommand(cmd)
}

func runIdentityShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if err := identity.Seed(cfg.Identity.Path); err != nil {
		exitErr("seed identity", err)
	}
	b := &prompt.Builder{IdentityPath: cfg.Identity.Path}
	doc, err := b.IdentityCore()
	if err != nil {
		exitErr("identity", err)
	}
	fmt.Println(doc)
}

func runIdentityHistory(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	lines, err := identity.History(cfg.Identity.ChangelogPath)
	if err != nil {
		exitErr("identity history", err)
	}

	if formatFlag == "text" {
		for _, l := range lines {
			fmt.Println(l)
		}
		return
	}
	if lines == nil {
		lines = []string{}
	}
	printJSON(lines)
}

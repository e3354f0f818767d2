package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "say [message]",
		Short: "Run a single conversation turn",
		Long:  "Send one message to the agent and print its reply. The message can be a positional arg or piped via stdin.",
		Run:   runSay,
	}

	RootCmd.AddCommand(cmd)
}

func runSay(cmd *cobra.Command, args []string) {
	// Get message: positional arg first, then check stdin
	var message string
	if len(args) > 0 {
		message = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			message = string(b)
		}
	}

	message = strings.TrimSpace(message)
	if message == "" {
		exitErr("say", fmt.Errorf("message is required (positional arg or stdin)"))
	}

	cfg := loadConfig()
	agent, logCloser := openAgent(cmd, cfg)
	defer logCloser.Close()
	defer agent.Close()

	reply, err := agent.Reply(cmd.Context(), message)
	if err != nil {
		exitErr("say", err)
	}

	if formatFlag == "text" {
		fmt.Println(reply)
		return
	}
	printJSON(map[string]any{"reply": reply, "state": agent.State()})
}

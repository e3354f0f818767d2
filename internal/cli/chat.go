package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

const chatBanner = "Autonomous agent is running. Type 'exit' to quit."

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long:  "Read messages line by line and print the agent's replies. Exit with 'exit', 'quit', EOF or Ctrl-C.",
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	agent, logCloser := openAgent(cmd, cfg)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err := chatLoop(ctx, os.Stdin, os.Stdout, agent)
	if closeErr := agent.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		exitErr("chat", err)
	}
}

type replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// chatLoop runs the read-reply loop until EOF, an exit word, an interrupt,
// or a failed turn.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, agent replier) error {
	fmt.Fprintln(out, chatBanner)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// After an interrupt the reader stays blocked in Scan until in is closed
	// or the process exits.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "You: ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInterrupted. Saving state and exiting...")
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if lower := strings.ToLower(line); lower == "exit" || lower == "quit" {
			return nil
		}

		reply, err := agent.Reply(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\nInterrupted. Saving state and exiting...")
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "Agent: %s\n", reply)
	}
}

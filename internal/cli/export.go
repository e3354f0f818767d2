package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all agent state as JSON",
		Long:  "Export exchanges, identity facts, summaries and process state as a single JSON document.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s, err := openSQLite(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snap, err := s.Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	printJSON(snap)
}

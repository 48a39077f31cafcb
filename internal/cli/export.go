package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export memories as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	cmd.Flags().StringP("type", "t", "", "Filter by type")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	typ, _ := cmd.Flags().GetString("type")

	_, paths, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	s, err := openStore(paths, newLogger())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.ExportAll(cmd.Context(), typ)
	if err != nil {
		exitErr("export", err)
	}

	b, err := json.MarshalIndent(memories, "", "  ")
	if err != nil {
		exitErr("export", err)
	}
	if err := os.WriteFile(args[0], b, 0o644); err != nil {
		exitErr("export", err)
	}

	fmt.Printf("exported %d memories to %s\n", len(memories), args[0])
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/michimem/michimem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import memories from a JSON export",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	b, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("import", err)
	}

	var memories []model.Memory
	if err := json.Unmarshal(b, &memories); err != nil {
		exitErr("import", fmt.Errorf("parse export: %w", err))
	}

	_, paths, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	s, err := openStore(paths, newLogger())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Import(cmd.Context(), memories)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf("imported %d memories\n", n)
}

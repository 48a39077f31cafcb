package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a memory by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	_, paths, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	s, err := openStore(paths, newLogger())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := s.GetByID(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if mem == nil {
		exitErr("get", fmt.Errorf("memory not found: %s", args[0]))
	}

	b, _ := json.MarshalIndent(mem, "", "  ")
	fmt.Println(string(b))
}

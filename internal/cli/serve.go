package cli

import (
	"github.com/spf13/cobra"

	"github.com/michimem/michimem/internal/toolserver"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the memory store as an MCP tool surface over stdio",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, paths, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	log := newLogger()
	s, err := openStore(paths, log)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	srv := toolserver.New(s, cfg, paths, log)
	if err := srv.Serve(); err != nil {
		exitErr("serve", err)
	}
}

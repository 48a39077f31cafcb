package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search memories by keyword",
		Long:  "Runs a full-text search against title, summary, content, and tags.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	_, paths, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	s, err := openStore(paths, newLogger())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	hits, err := s.Search(cmd.Context(), query, limit)
	if err != nil {
		exitErr("search", err)
	}

	if len(hits) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(hits, "", "  ")
	fmt.Println(string(b))
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michimem/michimem/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, optionally filtered by type or priority",
		Run:   runList,
	}

	cmd.Flags().StringP("type", "t", "", "Filter by type: diary|insight|knowledge|shared")
	cmd.Flags().IntP("priority", "p", -1, "Filter by priority: 0|1|2")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	typ, _ := cmd.Flags().GetString("type")
	priority, _ := cmd.Flags().GetInt("priority")
	limit, _ := cmd.Flags().GetInt("limit")

	if typ != "" && !model.ValidTypes[typ] {
		exitErr("list", fmt.Errorf("invalid type: %s", typ))
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

	var memories []model.Memory
	switch {
	case typ != "":
		memories, err = s.GetByType(cmd.Context(), typ, limit)
	case priority >= 0:
		memories, err = s.GetByPriority(cmd.Context(), priority, limit)
	default:
		memories, err = s.ExportAll(cmd.Context(), "")
		if len(memories) > limit {
			memories = memories[:limit]
		}
	}
	if err != nil {
		exitErr("list", err)
	}

	if len(memories) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}

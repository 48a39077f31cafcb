package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/michimem/michimem/internal/dispatch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hook [event]",
		Short: "Handle a single hook invocation, reading its payload from stdin",
		Long:  "Reads a hook payload JSON object from standard input, dispatches it, and writes any resulting additional-context JSON to standard output.",
		Args:  cobra.ExactArgs(1),
		Run:   runHook,
	}

	RootCmd.AddCommand(cmd)
}

func runHook(cmd *cobra.Command, args []string) {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("hook", fmt.Errorf("read payload: %w", err))
	}

	var payload dispatch.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		exitErr("hook", fmt.Errorf("parse payload: %w", err))
	}
	if payload.HookEventName == "" {
		payload.HookEventName = args[0]
	}

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

	res, err := dispatch.Handle(cmd.Context(), payload, s, cfg, paths, log)
	if err != nil {
		exitErr("hook", err)
	}

	if res.Output != "" {
		fmt.Println(res.Output)
	}
}

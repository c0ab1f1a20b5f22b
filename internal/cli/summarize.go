package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cortexlab/memstore/internal/model"
	"github.com/cortexlab/memstore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summarize <topic> [maxTokens]",
		Short: "Render a token-budgeted digest of matching memories",
		Args:  cobra.RangeArgs(1, 2),
		Run:   runSummarize,
	}

	cmd.Flags().String("type", "", "Restrict to one memory type")
	cmd.Flags().StringP("agent", "a", "", "Exact agent ID match")

	RootCmd.AddCommand(cmd)
}

func runSummarize(cmd *cobra.Command, args []string) {
	f := store.QueryFilter{Topic: args[0]}

	maxTokens := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			exitErr("summarize", fmt.Errorf("maxTokens must be a non-negative integer, got %q", args[1]))
		}
		maxTokens = n
	}

	if typeStr, _ := cmd.Flags().GetString("type"); typeStr != "" {
		t, err := model.ParseMemoryType(typeStr)
		if err != nil {
			exitErr("summarize", err)
		}
		f.Type = t
	}
	f.AgentID, _ = cmd.Flags().GetString("agent")

	s, closeStore, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	digest, err := s.Summarize(cmd.Context(), f, maxTokens)
	if err != nil {
		exitErr("summarize", err)
	}
	fmt.Println(digest)
}

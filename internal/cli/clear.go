package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cortexlab/memstore/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear <agent>",
		Short: "Reset one agent's working memory",
		Args:  cobra.ExactArgs(1),
		Run:   runClear,
	}

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	s, closeStore, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	if err := s.ClearPartition(cmd.Context(), model.Working, args[0]); err != nil {
		exitErr("clear", err)
	}
	fmt.Printf("cleared working memory for agent %q\n", args[0])
}

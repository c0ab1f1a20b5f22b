package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cortexlab/memstore/internal/model"
	"github.com/cortexlab/memstore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cleanup-policy <type> [maxAgeDays] [maxEntries]",
		Short: "Apply a custom retention policy to one memory type",
		Args:  cobra.RangeArgs(1, 3),
		Run:   runCleanupPolicy,
	}

	cmd.Flags().String("topic", "", "Restrict to partitions whose key starts with this prefix")

	RootCmd.AddCommand(cmd)
}

func runCleanupPolicy(cmd *cobra.Command, args []string) {
	memType, err := model.ParseMemoryType(args[0])
	if err != nil {
		exitErr("cleanup-policy", err)
	}

	p := store.RetentionPolicy{Type: memType}
	if len(args) > 1 {
		p.MaxAgeDays, err = parseCount("maxAgeDays", args[1])
		if err != nil {
			exitErr("cleanup-policy", err)
		}
	}
	if len(args) > 2 {
		p.MaxEntries, err = parseCount("maxEntries", args[2])
		if err != nil {
			exitErr("cleanup-policy", err)
		}
	}
	p.Topic, _ = cmd.Flags().GetString("topic")

	s, closeStore, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	res, err := s.ApplyRetentionPolicy(cmd.Context(), p)
	if err != nil {
		exitErr("cleanup-policy", err)
	}

	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}

func parseCount(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, s)
	}
	return n, nil
}

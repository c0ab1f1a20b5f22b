package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cortexlab/memstore/internal/model"
	"github.com/cortexlab/memstore/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "query [type] [topic]",
		Short: "Query memory entries",
		Long:  "Query memory entries across partitions, newest first. With no type, all three types are searched.",
		Args:  cobra.MaximumNArgs(2),
		Run:   runQuery,
	}

	cmd.Flags().String("topic", "", "Exact topic match")
	cmd.Flags().StringP("agent", "a", "", "Exact agent ID match")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags (match any)")
	cmd.Flags().String("after", "", "Inclusive lower timestamp bound (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().String("before", "", "Inclusive upper timestamp bound (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringP("search", "s", "", "Case-insensitive substring match on content")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	var f store.QueryFilter

	if len(args) > 0 {
		t, err := model.ParseMemoryType(args[0])
		if err != nil {
			exitErr("query", err)
		}
		f.Type = t
	}

	f.Topic, _ = cmd.Flags().GetString("topic")
	if f.Topic == "" && len(args) > 1 {
		f.Topic = args[1]
	}
	f.AgentID, _ = cmd.Flags().GetString("agent")
	tagsStr, _ := cmd.Flags().GetString("tags")
	f.Tags = splitTags(tagsStr)
	f.Search, _ = cmd.Flags().GetString("search")
	f.Limit, _ = cmd.Flags().GetInt("limit")

	afterStr, _ := cmd.Flags().GetString("after")
	beforeStr, _ := cmd.Flags().GetString("before")
	var err error
	if f.After, err = parseTimeFlag(afterStr); err != nil {
		exitErr("query", err)
	}
	if f.Before, err = parseTimeFlag(beforeStr); err != nil {
		exitErr("query", err)
	}

	s, closeStore, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	entries, err := s.Query(cmd.Context(), f)
	if err != nil {
		exitErr("query", err)
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(b))
}

// parseTimeFlag accepts RFC3339 or a plain date.
func parseTimeFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (use RFC3339 or YYYY-MM-DD)", s)
	}
	return t, nil
}

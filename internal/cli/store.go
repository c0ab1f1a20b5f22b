package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cortexlab/memstore/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "store <type> [content] [topic]",
		Short: "Store a memory entry",
		Long:  "Store a memory entry. Content can be a positional arg or piped via stdin.",
		Args:  cobra.RangeArgs(1, 3),
		Run:   runStore,
	}

	cmd.Flags().StringP("agent", "a", "", "Agent ID (partition key for working memory)")
	cmd.Flags().String("session", "", "Session ID")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().String("source", "", "Source of the memory")

	RootCmd.AddCommand(cmd)
}

func runStore(cmd *cobra.Command, args []string) {
	memType, err := model.ParseMemoryType(args[0])
	if err != nil {
		exitErr("store", err)
	}

	var content string
	if len(args) > 1 {
		content = args[1]
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	if strings.TrimSpace(content) == "" {
		exitErr("store", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	var topic string
	if len(args) > 2 {
		topic = args[2]
	}

	agent, _ := cmd.Flags().GetString("agent")
	session, _ := cmd.Flags().GetString("session")
	tagsStr, _ := cmd.Flags().GetString("tags")
	source, _ := cmd.Flags().GetString("source")

	s, closeStore, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	entry, err := s.Store(cmd.Context(), model.MemoryEntry{
		Type:    memType,
		Content: strings.TrimSpace(content),
		Metadata: model.Metadata{
			AgentID:   agent,
			SessionID: session,
			Topic:     topic,
			Tags:      splitTags(tagsStr),
			Source:    source,
		},
	})
	if err != nil {
		exitErr("store", err)
	}

	b, _ := json.Marshal(entry)
	fmt.Println(string(b))
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

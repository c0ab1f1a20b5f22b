package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Apply the default retention policies",
		Long:  "Apply the default retention policies: episodic entries expire after 30 days, working entries after 1 day, semantic partitions are capped at 1000 entries per topic.",
		Run:   runCleanup,
	}

	RootCmd.AddCommand(cmd)
}

func runCleanup(cmd *cobra.Command, args []string) {
	s, closeStore, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer closeStore()

	results, err := s.Cleanup(cmd.Context())
	if err != nil {
		exitErr("cleanup", err)
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

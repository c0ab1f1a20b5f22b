package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// summarizeCandidateLimit bounds the query feeding a summary so a
	// broad filter cannot trigger an unbounded scan into the digest.
	summarizeCandidateLimit = 50

	// charsPerToken is the rough token proxy (1 token ≈ 4 chars).
	charsPerToken = 4

	defaultSummaryTokens = 500
)

// Summarize renders a token-budgeted digest of the entries matching the
// filter, newest first. Once the next entry would exceed the budget an
// explicit truncation marker is appended instead. Output is
// deterministic for identical data and filter.
func (s *FileStore) Summarize(ctx context.Context, f QueryFilter, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultSummaryTokens
	}
	if f.Limit <= 0 || f.Limit > summarizeCandidateLimit {
		f.Limit = summarizeCandidateLimit
	}

	entries, err := s.Query(ctx, f)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "No matching memories.", nil
	}

	budget := maxTokens * charsPerToken

	var b strings.Builder
	fmt.Fprintf(&b, "Memory digest (%d entries):\n", len(entries))

	for i, e := range entries {
		line := fmt.Sprintf("- [%s] %s\n", e.Metadata.Timestamp.UTC().Format(time.RFC3339), e.Content)
		if b.Len()+len(line) > budget {
			fmt.Fprintf(&b, "... [%d more entries truncated]", len(entries)-i)
			break
		}
		b.WriteString(line)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

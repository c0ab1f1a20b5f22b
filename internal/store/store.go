// Package store provides the memory storage interface and its
// file-backed implementation.
package store

import (
	"context"
	"time"

	"github.com/cortexlab/memstore/internal/model"
)

// QueryFilter selects entries. All set fields must match (conjunction).
type QueryFilter struct {
	// Type restricts the search to one memory type. Empty means all
	// three types.
	Type model.MemoryType

	// Topic and AgentID are exact matches when set.
	Topic   string
	AgentID string

	// Tags matches entries whose tag set intersects this set. An empty
	// set imposes no constraint ("any tags"), consistent with the other
	// unset fields.
	Tags []string

	// After and Before are inclusive timestamp bounds; the zero time
	// means unbounded.
	After  time.Time
	Before time.Time

	// Search is a case-insensitive substring match on content.
	Search string

	// Limit truncates the result. Zero or negative means "return all
	// matches", matching the zero-value semantics of the other fields.
	Limit int
}

// RetentionPolicy describes which entries of one memory type are
// eligible for pruning.
type RetentionPolicy struct {
	Type model.MemoryType

	// MaxAgeDays drops entries older than now minus this many days.
	// Zero means no age limit.
	MaxAgeDays int

	// MaxEntries keeps only the newest N entries per partition. Zero
	// means no count limit.
	MaxEntries int

	// Topic restricts the policy to partitions whose key starts with
	// this prefix.
	Topic string
}

// RetentionResult reports what a retention run did.
type RetentionResult struct {
	FilesProcessed int `json:"files_processed"`
	EntriesRemoved int `json:"entries_removed"`
	EntriesKept    int `json:"entries_kept"`
}

// Store defines the memory storage interface.
type Store interface {
	// Store persists a new entry, assigning an ID and default timestamp
	// when absent. Returns the entry as stored.
	Store(ctx context.Context, e model.MemoryEntry) (*model.MemoryEntry, error)

	// Query returns all entries matching the filter, newest first.
	Query(ctx context.Context, f QueryFilter) ([]model.MemoryEntry, error)

	// Summarize renders a token-budgeted digest of matching entries.
	Summarize(ctx context.Context, f QueryFilter, maxTokens int) (string, error)

	// ApplyRetentionPolicy prunes partitions of one type by age and/or
	// count. Running the same policy twice with no intervening writes
	// removes nothing on the second run.
	ApplyRetentionPolicy(ctx context.Context, p RetentionPolicy) (*RetentionResult, error)

	// Cleanup applies the default retention policy for every type.
	Cleanup(ctx context.Context) (map[model.MemoryType]*RetentionResult, error)

	// ClearPartition overwrites a partition with an empty entry list.
	// Clearing (Working, agentID) resets one agent's working memory.
	ClearPartition(ctx context.Context, t model.MemoryType, key string) error

	// Stats reports on-disk and cache state for diagnostics.
	Stats(ctx context.Context) (*StoreStats, error)
}

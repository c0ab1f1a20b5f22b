package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cortexlab/memstore/internal/model"
)

// Query filters and merges entries across partitions, newest first.
// Every partition of the filtered type (or of all types) is scanned;
// there is no secondary index, which is fine at the target scale of
// hundreds to low thousands of entries per partition.
func (s *FileStore) Query(ctx context.Context, f QueryFilter) ([]model.MemoryEntry, error) {
	types := model.AllTypes()
	if f.Type != "" {
		if !f.Type.Valid() {
			return nil, fmt.Errorf("query: %w: %q", model.ErrInvalidType, string(f.Type))
		}
		types = []model.MemoryType{f.Type}
	}

	matches := []model.MemoryEntry{}
	for _, t := range types {
		keys, err := s.listPartitionKeys(t)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			p, _ := s.loadPartition(s.partitionPath(t, key))
			for _, e := range p.Entries {
				if f.matches(e) {
					matches = append(matches, e)
				}
			}
		}
	}

	sortNewestFirst(matches)

	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}
	return matches, nil
}

// matches applies the filter as a conjunction.
func (f QueryFilter) matches(e model.MemoryEntry) bool {
	if f.Topic != "" && e.Metadata.Topic != f.Topic {
		return false
	}
	if f.AgentID != "" && e.Metadata.AgentID != f.AgentID {
		return false
	}
	if len(f.Tags) > 0 && !intersects(e.Metadata.Tags, f.Tags) {
		return false
	}
	if !f.After.IsZero() && e.Metadata.Timestamp.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && e.Metadata.Timestamp.After(f.Before) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Content), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// sortNewestFirst orders by timestamp descending, ties broken by ID
// ascending so results are deterministic regardless of on-disk order.
func sortNewestFirst(entries []model.MemoryEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].Metadata.Timestamp, entries[j].Metadata.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].ID < entries[j].ID
	})
}

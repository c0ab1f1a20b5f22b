package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/cortexlab/memstore/internal/model"
)

// Default retention policies applied by Cleanup.
const (
	DefaultEpisodicMaxAgeDays = 30
	DefaultWorkingMaxAgeDays  = 1
	DefaultSemanticMaxEntries = 1000
)

// ApplyRetentionPolicy prunes the partitions of one type by age and/or
// count. Partitions are rewritten only when entries were actually
// dropped, so re-running an unchanged policy is a no-op. A missing type
// directory or partition is not an error.
func (s *FileStore) ApplyRetentionPolicy(ctx context.Context, p RetentionPolicy) (*RetentionResult, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("retention: %w: %q", model.ErrInvalidType, string(p.Type))
	}

	keys, err := s.listPartitionKeys(p.Type)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if p.MaxAgeDays > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -p.MaxAgeDays)
	}

	res := &RetentionResult{}
	for _, key := range keys {
		if p.Topic != "" && !strings.HasPrefix(key, model.SanitizeKey(p.Topic)) {
			continue
		}
		res.FilesProcessed++

		path := s.partitionPath(p.Type, key)
		part, _ := s.loadPartition(path)

		kept := part.Entries
		if !cutoff.IsZero() {
			kept = keepSince(kept, cutoff)
		}
		if p.MaxEntries > 0 && len(kept) > p.MaxEntries {
			sortNewestFirst(kept)
			kept = kept[:p.MaxEntries]
		}

		removed := len(part.Entries) - len(kept)
		res.EntriesKept += len(kept)
		if removed == 0 {
			continue
		}
		res.EntriesRemoved += removed

		if err := s.persistPartition(path, &model.Partition{Entries: kept}); err != nil {
			return nil, err
		}
		s.cache.Invalidate(path)

		s.log.WithFields(logrus.Fields{
			"type":      p.Type.String(),
			"partition": key,
			"removed":   removed,
			"kept":      len(kept),
		}).Debug("retention rewrote partition")
	}

	return res, nil
}

// keepSince drops entries strictly older than the cutoff.
func keepSince(entries []model.MemoryEntry, cutoff time.Time) []model.MemoryEntry {
	kept := make([]model.MemoryEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Metadata.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	return kept
}

// Cleanup applies the default retention policy set: episodic memories
// expire after 30 days, working memories after one day, and semantic
// partitions are capped at 1000 entries per topic. Failures for one
// type do not stop the others; all are reported together.
func (s *FileStore) Cleanup(ctx context.Context) (map[model.MemoryType]*RetentionResult, error) {
	policies := []RetentionPolicy{
		{Type: model.Episodic, MaxAgeDays: DefaultEpisodicMaxAgeDays},
		{Type: model.Working, MaxAgeDays: DefaultWorkingMaxAgeDays},
		{Type: model.Semantic, MaxEntries: DefaultSemanticMaxEntries},
	}

	results := make(map[model.MemoryType]*RetentionResult, len(policies))
	var merr *multierror.Error
	for _, p := range policies {
		res, err := s.ApplyRetentionPolicy(ctx, p)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("cleanup %s: %w", p.Type, err))
			continue
		}
		results[p.Type] = res
	}
	return results, merr.ErrorOrNil()
}

package store

import (
	"context"
	"os"
	"time"

	"github.com/cortexlab/memstore/internal/model"
)

// TypeStats holds per-type partition and entry counts.
type TypeStats struct {
	Partitions int `json:"partitions"`
	Entries    int `json:"entries"`
}

// CacheStats is a snapshot of the cache for diagnostics.
type CacheStats struct {
	Enabled    bool `json:"enabled"`
	Size       int  `json:"size"`
	MaxEntries int  `json:"max_entries"`
	TTLSeconds int  `json:"ttl_seconds"`
}

// StoreStats holds store-wide statistics.
type StoreStats struct {
	Dir       string               `json:"dir"`
	SizeBytes int64                `json:"size_bytes"`
	Types     map[string]TypeStats `json:"types"`
	Cache     CacheStats           `json:"cache"`
}

// Stats reports per-type counts, total disk usage and cache state.
// Corrupted partitions count as zero-entry partitions.
func (s *FileStore) Stats(ctx context.Context) (*StoreStats, error) {
	st := &StoreStats{
		Dir:   s.dir,
		Types: make(map[string]TypeStats),
	}

	for _, t := range model.AllTypes() {
		keys, err := s.listPartitionKeys(t)
		if err != nil {
			return nil, err
		}
		ts := TypeStats{Partitions: len(keys)}
		for _, key := range keys {
			path := s.partitionPath(t, key)
			p, _, err := s.readPartitionFile(path)
			if err != nil {
				return nil, err
			}
			ts.Entries += len(p.Entries)
			if info, err := os.Stat(path); err == nil {
				st.SizeBytes += info.Size()
			}
		}
		st.Types[t.String()] = ts
	}

	cfg := s.cache.Config()
	st.Cache = CacheStats{
		Enabled:    cfg.Enabled,
		Size:       s.cache.Size(),
		MaxEntries: cfg.MaxEntries,
		TTLSeconds: int(cfg.TTL / time.Second),
	}
	return st, nil
}

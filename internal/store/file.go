package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/cortexlab/memstore/internal/cache"
	"github.com/cortexlab/memstore/internal/model"
)

// LoadState classifies the outcome of a partition read, so callers can
// distinguish a healthy partition from a missing or corrupted one
// instead of having the recovery policy baked in silently.
type LoadState int

const (
	// LoadOK means the partition file existed and parsed.
	LoadOK LoadState = iota
	// LoadMissing means no file exists for the partition yet.
	LoadMissing
	// LoadCorrupted means the file exists but did not parse as JSON.
	LoadCorrupted
)

func (s LoadState) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadMissing:
		return "missing"
	case LoadCorrupted:
		return "corrupted"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// FileStore implements Store over one JSON file per (type, key)
// partition, fronted by an injected TTL+LRU cache. Single-process,
// single writer per partition; there is no cross-process locking.
type FileStore struct {
	dir     string
	cache   *cache.Cache
	entropy *rand.Rand
	log     *logrus.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens a store rooted at dir, creating it if needed. The
// cache is required; pass one with Enabled=false to bypass caching.
func NewFileStore(dir string, c *cache.Cache, log *logrus.Logger) (*FileStore, error) {
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{
		dir:     dir,
		cache:   c,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     log,
	}, nil
}

// Dir returns the base storage directory.
func (s *FileStore) Dir() string { return s.dir }

// Cache returns the injected cache, for diagnostics.
func (s *FileStore) Cache() *cache.Cache { return s.cache }

func (s *FileStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// partitionPath resolves a (type, key) pair to its file path.
func (s *FileStore) partitionPath(t model.MemoryType, key string) string {
	return filepath.Join(s.dir, t.String(), model.SanitizeKey(key)+".json")
}

// Store appends an entry to its partition and persists it. The cache
// entry for the partition is refreshed before returning, so a read
// immediately following a write in this process observes the write.
func (s *FileStore) Store(ctx context.Context, e model.MemoryEntry) (*model.MemoryEntry, error) {
	if !e.Type.Valid() {
		return nil, fmt.Errorf("store: %w: %q", model.ErrInvalidType, string(e.Type))
	}
	if e.Metadata.Timestamp.IsZero() {
		e.Metadata.Timestamp = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = s.newID()
	}

	key := e.Type.PartitionKey(e.Metadata)
	path := s.partitionPath(e.Type, key)

	p, _ := s.loadPartition(path)
	p.Entries = append(p.Entries, e)

	if err := s.persistPartition(path, p); err != nil {
		return nil, err
	}
	s.cache.Put(path, p)

	s.log.WithFields(logrus.Fields{
		"type":      e.Type.String(),
		"partition": key,
		"id":        e.ID,
	}).Debug("stored entry")

	return &e, nil
}

// ClearPartition overwrites a partition with an empty entry list and
// invalidates its cache entry.
func (s *FileStore) ClearPartition(ctx context.Context, t model.MemoryType, key string) error {
	if !t.Valid() {
		return fmt.Errorf("clear: %w: %q", model.ErrInvalidType, string(t))
	}
	path := s.partitionPath(t, key)
	if err := s.persistPartition(path, &model.Partition{Entries: []model.MemoryEntry{}}); err != nil {
		return err
	}
	s.cache.Invalidate(path)
	return nil
}

// ReadPartition loads one partition directly from disk, bypassing the
// cache, and reports its load state. Callers that prefer to fail on
// corruption can check the state instead of accepting the empty
// partition.
func (s *FileStore) ReadPartition(ctx context.Context, t model.MemoryType, key string) (*model.Partition, LoadState, error) {
	if !t.Valid() {
		return nil, LoadMissing, fmt.Errorf("read: %w: %q", model.ErrInvalidType, string(t))
	}
	p, state, err := s.readPartitionFile(s.partitionPath(t, key))
	return p, state, err
}

// loadPartition returns the partition at path from the cache when
// fresh, reading from disk otherwise. Corrupted files are treated as
// empty partitions: availability over durability, logged so the
// condition is not silent.
func (s *FileStore) loadPartition(path string) (*model.Partition, LoadState) {
	if p, ok := s.cache.Get(path); ok {
		return p, LoadOK
	}
	p, state, err := s.readPartitionFile(path)
	if err != nil {
		// Unreadable beyond corruption (e.g. permissions); behave like
		// corruption but keep the cause in the log.
		s.log.WithError(err).WithField("path", path).Warn("partition unreadable, treating as empty")
		return &model.Partition{}, LoadCorrupted
	}
	if state == LoadCorrupted {
		s.log.WithField("path", path).Warn("corrupted partition file, treating as empty")
	}
	if state == LoadOK {
		s.cache.Put(path, p)
	}
	return p, state
}

func (s *FileStore) readPartitionFile(path string) (*model.Partition, LoadState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &model.Partition{}, LoadMissing, nil
	}
	if err != nil {
		return &model.Partition{}, LoadMissing, fmt.Errorf("read partition %s: %w", path, err)
	}
	var p model.Partition
	if err := json.Unmarshal(data, &p); err != nil {
		return &model.Partition{}, LoadCorrupted, nil
	}
	return &p, LoadOK, nil
}

// persistPartition writes a partition to disk, stamping last_updated.
// The write goes through a temp file and rename so a failed write never
// clobbers the existing file. On failure the cache entry is dropped so
// no stale copy survives.
func (s *FileStore) persistPartition(path string, p *model.Partition) error {
	p.LastUpdated = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.cache.Invalidate(path)
		return fmt.Errorf("create type dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		s.cache.Invalidate(path)
		return fmt.Errorf("encode partition: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.cache.Invalidate(path)
		return fmt.Errorf("write partition %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		s.cache.Invalidate(path)
		return fmt.Errorf("replace partition %s: %w", path, err)
	}
	return nil
}

// listPartitionKeys returns the partition keys present on disk for one
// type, in sorted order. A missing type directory means no partitions.
func (s *FileStore) listPartitionKeys(t model.MemoryType) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, t.String()))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s partitions: %w", t, err)
	}
	var keys []string
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}

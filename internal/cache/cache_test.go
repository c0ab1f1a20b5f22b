package cache

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cortexlab/memstore/internal/model"
)

func newTestCache(t *testing.T, cfg Config) *Cache {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := New(cfg, log)
	t.Cleanup(c.Stop)
	return c
}

func part(n int) *model.Partition {
	return &model.Partition{Entries: make([]model.MemoryEntry, n)}
}

func TestPutGet(t *testing.T) {
	c := newTestCache(t, DefaultConfig())

	c.Put("a", part(2))
	p, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(p.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(p.Entries))
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	c := newTestCache(t, cfg)

	c.Put("a", part(1))
	if _, ok := c.Get("a"); ok {
		t.Error("disabled cache must never hit")
	}
	if c.Size() != 0 {
		t.Errorf("disabled cache size = %d, want 0", c.Size())
	}
}

func TestLRUBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEntries = 3
	c := newTestCache(t, cfg)

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("p%d", i), part(i))
	}

	// Touch p0 and p2 so p1 becomes the least recently accessed.
	c.Get("p0")
	c.Get("p2")

	c.Put("p3", part(3))

	if c.Size() != 3 {
		t.Errorf("size = %d, want 3", c.Size())
	}
	if _, ok := c.Get("p1"); ok {
		t.Error("expected p1 (LRU) to be evicted")
	}
	for _, k := range []string{"p0", "p2", "p3"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
}

func TestTTLFixedFromInsertion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 50 * time.Millisecond
	c := newTestCache(t, cfg)

	c.Put("a", part(1))

	// Repeated access refreshes lastAccessAt but must not extend the
	// TTL: expiry is measured from insertion only.
	for i := 0; i < 3; i++ {
		if _, ok := c.Get("a"); !ok {
			t.Fatal("expected hit inside TTL window")
		}
	}

	c.mu.Lock()
	e := c.entries["a"]
	e.insertedAt = e.insertedAt.Add(-cfg.TTL)
	e.lastAccessAt = time.Now()
	c.mu.Unlock()

	if _, ok := c.Get("a"); ok {
		t.Error("entry past its insertion TTL must expire despite recent access")
	}
}

func TestBackgroundSweep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 5 * time.Millisecond
	cfg.CleanupInterval = 10 * time.Millisecond
	c := newTestCache(t, cfg)

	c.Put("a", part(1))
	c.Put("b", part(1))

	deadline := time.Now().Add(2 * time.Second)
	for c.Size() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Size() != 0 {
		t.Errorf("sweep left %d entries", c.Size())
	}
}

func TestReconfigure(t *testing.T) {
	c := newTestCache(t, DefaultConfig())
	c.Put("a", part(1))

	cfg := DefaultConfig()
	cfg.MaxEntries = 1
	c.Reconfigure(cfg)

	if got := c.Config().MaxEntries; got != 1 {
		t.Errorf("MaxEntries = %d, want 1", got)
	}
	// Existing entries survive an enabled->enabled reconfigure.
	if _, ok := c.Get("a"); !ok {
		t.Error("expected entry to survive reconfigure")
	}

	cfg.Enabled = false
	c.Reconfigure(cfg)
	if c.Size() != 0 {
		t.Error("disabling must drop all entries")
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c := newTestCache(t, DefaultConfig())

	c.Put("a", part(1))
	c.Put("b", part(1))

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after invalidate")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("invalidate must not touch other keys")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("size after clear = %d, want 0", c.Size())
	}
}

func TestKeys(t *testing.T) {
	c := newTestCache(t, DefaultConfig())
	c.Put("a", part(1))
	c.Put("b", part(1))

	keys := c.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("keys = %v, want a and b", keys)
	}
}

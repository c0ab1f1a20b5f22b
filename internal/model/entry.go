// Package model defines the core memory data types.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidType is returned when a memory type string is not one of the
// known types.
var ErrInvalidType = errors.New("invalid memory type")

// MemoryType is the closed set of memory tiers. Each type derives its own
// partition key; anything outside the set is rejected by ParseMemoryType.
type MemoryType string

const (
	// Episodic memories are partitioned by calendar date.
	Episodic MemoryType = "episodic"
	// Semantic memories are partitioned by topic.
	Semantic MemoryType = "semantic"
	// Working memories are short-lived per-agent scratch space.
	Working MemoryType = "working"
)

// Defaults used when the key-deriving metadata field is absent.
const (
	DefaultTopic = "general"
	DefaultAgent = "default"
)

// AllTypes returns every memory type in a fixed order.
func AllTypes() []MemoryType {
	return []MemoryType{Episodic, Semantic, Working}
}

// ParseMemoryType validates a type string.
func ParseMemoryType(s string) (MemoryType, error) {
	switch MemoryType(s) {
	case Episodic, Semantic, Working:
		return MemoryType(s), nil
	}
	return "", fmt.Errorf("%w: %q (want episodic, semantic or working)", ErrInvalidType, s)
}

func (t MemoryType) String() string { return string(t) }

// Valid reports whether t is one of the known types.
func (t MemoryType) Valid() bool {
	switch t {
	case Episodic, Semantic, Working:
		return true
	}
	return false
}

// PartitionKey derives the partition key for an entry of this type:
// episodic entries group by UTC calendar date, semantic by topic and
// working by agent.
func (t MemoryType) PartitionKey(m Metadata) string {
	switch t {
	case Episodic:
		return m.Timestamp.UTC().Format("2006-01-02")
	case Semantic:
		if m.Topic == "" {
			return DefaultTopic
		}
		return SanitizeKey(m.Topic)
	case Working:
		if m.AgentID == "" {
			return DefaultAgent
		}
		return SanitizeKey(m.AgentID)
	}
	panic(fmt.Sprintf("unknown memory type %q", t))
}

// SanitizeKey maps an arbitrary key to a filesystem-safe filename stem.
func SanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), ".")
	if s == "" {
		return DefaultTopic
	}
	return s
}

// Metadata carries the contextual fields of a memory entry. Timestamp is
// the only field that is always set; the store defaults it on write.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	AgentID   string    `json:"agent_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Topic     string    `json:"topic,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// MemoryEntry is a single stored memory. Entries are created once and
// never mutated; retention or a working-memory reset are the only ways
// one is destroyed.
type MemoryEntry struct {
	ID       string     `json:"id"`
	Type     MemoryType `json:"type"`
	Content  string     `json:"content"`
	Metadata Metadata   `json:"metadata"`
}

// HasTag reports whether the entry carries the given tag.
func (e MemoryEntry) HasTag(tag string) bool {
	for _, t := range e.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Partition is the durable unit: all entries for one (type, key) pair.
type Partition struct {
	Entries     []MemoryEntry `json:"entries"`
	LastUpdated time.Time     `json:"last_updated"`
}

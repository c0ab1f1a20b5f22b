package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseMemoryType(t *testing.T) {
	for _, s := range []string{"episodic", "semantic", "working"} {
		mt, err := ParseMemoryType(s)
		if err != nil {
			t.Errorf("ParseMemoryType(%q) unexpected error: %v", s, err)
		}
		if mt.String() != s {
			t.Errorf("expected %q, got %q", s, mt)
		}
	}

	for _, s := range []string{"", "EPISODIC", "procedural", "semantics"} {
		_, err := ParseMemoryType(s)
		if err == nil {
			t.Errorf("ParseMemoryType(%q) expected error", s)
		}
		if !errors.Is(err, ErrInvalidType) {
			t.Errorf("ParseMemoryType(%q) error not ErrInvalidType: %v", s, err)
		}
	}
}

func TestPartitionKeyEpisodic(t *testing.T) {
	ts := time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC)
	key := Episodic.PartitionKey(Metadata{Timestamp: ts})
	if key != "2026-08-27" {
		t.Errorf("expected 2026-08-27, got %q", key)
	}

	// Non-UTC timestamps normalize to the UTC date.
	loc := time.FixedZone("UTC+10", 10*3600)
	key = Episodic.PartitionKey(Metadata{Timestamp: time.Date(2026, 8, 28, 5, 0, 0, 0, loc)})
	if key != "2026-08-27" {
		t.Errorf("expected UTC date 2026-08-27, got %q", key)
	}
}

func TestPartitionKeySemantic(t *testing.T) {
	if key := Semantic.PartitionKey(Metadata{Topic: "research"}); key != "research" {
		t.Errorf("expected research, got %q", key)
	}
	if key := Semantic.PartitionKey(Metadata{}); key != DefaultTopic {
		t.Errorf("expected %q, got %q", DefaultTopic, key)
	}
}

func TestPartitionKeyWorking(t *testing.T) {
	if key := Working.PartitionKey(Metadata{AgentID: "agent-1"}); key != "agent-1" {
		t.Errorf("expected agent-1, got %q", key)
	}
	if key := Working.PartitionKey(Metadata{}); key != DefaultAgent {
		t.Errorf("expected %q, got %q", DefaultAgent, key)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"research", "research"},
		{"my topic", "my-topic"},
		{"a/b\\c", "a-b-c"},
		{"..", "general"},
		{"", "general"},
		{"agent_1.v2", "agent_1.v2"},
	}
	for _, tt := range tests {
		if got := SanitizeKey(tt.in); got != tt.want {
			t.Errorf("SanitizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHasTag(t *testing.T) {
	e := MemoryEntry{Metadata: Metadata{Tags: []string{"infra", "deploy"}}}
	if !e.HasTag("deploy") {
		t.Error("expected HasTag(deploy) = true")
	}
	if e.HasTag("research") {
		t.Error("expected HasTag(research) = false")
	}
}

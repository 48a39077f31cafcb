// Package model defines the core memory, checkpoint, and transcript data types.
package model

import "time"

// Memory types.
const (
	TypeDiary     = "diary"
	TypeInsight   = "insight"
	TypeKnowledge = "knowledge"
	TypeShared    = "shared"
)

// Priority tiers. 0 is permanent, 1 and 2 carry a config-tunable TTL.
const (
	PriorityPermanent = 0
	PriorityInsight   = 1
	PriorityEphemeral = 2
)

// ValidTypes are the allowed memory types.
var ValidTypes = map[string]bool{
	TypeDiary:     true,
	TypeInsight:   true,
	TypeKnowledge: true,
	TypeShared:    true,
}

// ValidPriorities are the allowed priority levels.
var ValidPriorities = map[int]bool{
	PriorityPermanent: true,
	PriorityInsight:   true,
	PriorityEphemeral: true,
}

// Memory is a persistent record with tiered priority and TTL semantics.
type Memory struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Priority  int        `json:"priority"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Content   string     `json:"content"`
	Tags      []string   `json:"tags"`
	AgentID   string     `json:"agent_id,omitempty"`
	SourceIDs []string   `json:"source_ids,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// MemoryInput is the caller-supplied payload for Insert. Missing list fields
// are normalized to empty by the store, not by callers.
type MemoryInput struct {
	Type      string
	Priority  int
	Title     string
	Summary   string
	Content   string
	Tags      []string
	AgentID   string
	SourceIDs []string
	ExpiresAt *time.Time
}

// UpdateFields is a partial update; nil fields are left unchanged.
// Changing Priority never recomputes ExpiresAt — callers that want a new
// TTL must set both explicitly.
type UpdateFields struct {
	Title     *string
	Summary   *string
	Content   *string
	Tags      *[]string
	Priority  *int
	ExpiresAt *time.Time
}

// SearchHit pairs a Memory with its opaque, search-local rank (lower is better).
type SearchHit struct {
	Memory
	Rank float64 `json:"rank"`
}

// Stats summarizes the store's contents.
type Stats struct {
	Total      int            `json:"total"`
	ByType     map[string]int `json:"by_type"`
	ByPriority map[int]int    `json:"by_priority"`
	Expired    int            `json:"expired"`
}

// Checkpoint is a point-in-time session-resume snapshot.
type Checkpoint struct {
	SessionID      string    `json:"session_id"`
	Timestamp      time.Time `json:"timestamp"`
	CurrentTask    string    `json:"current_task"`
	Decisions      []string  `json:"decisions"`
	FilesModified  []string  `json:"files_modified"`
	Corrections    []string  `json:"corrections"`
	ContextSummary string    `json:"context_summary"`
}

// Metric is an append-only observation. Never read back by the core.
type Metric struct {
	ID        int64     `json:"id"`
	Event     string    `json:"event"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

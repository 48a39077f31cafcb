package tiering

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 200), 50},
	}
	for _, c := range cases {
		if got := EstimateTokens(c.text); got != c.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestBuildL0StopsOnOverflow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cfg := config.Defaults()
	cfg.Tokens.L0Budget = 5 // tiny budget: no core item fits

	s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "a", Summary: strings.Repeat("x", 40)})
	s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "b", Summary: strings.Repeat("y", 40)})

	items, err := BuildL0(ctx, s, cfg)
	if err != nil {
		t.Fatalf("build l0: %v", err)
	}
	if len(items) != 0 {
		// both single items already exceed the 5-token budget on their own
		t.Fatalf("expected overflow to stop at 0 items, got %d", len(items))
	}
}

func TestBuildL0GroupsAndOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cfg := config.Defaults()

	s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "core1", Summary: "s1"})
	s.Insert(ctx, model.MemoryInput{Type: model.TypeInsight, Priority: model.PriorityInsight, Title: "insight1", Summary: "s2"})
	s.Insert(ctx, model.MemoryInput{Type: model.TypeShared, Priority: model.PriorityPermanent, Title: "shared1", Summary: "s3"})

	items, err := BuildL0(ctx, s, cfg)
	if err != nil {
		t.Fatalf("build l0: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}
	if items[0].Memory.Title != "core1" {
		t.Errorf("expected core group first, got %+v", items[0])
	}
}

func TestBuildL1StopsBeforeExceedingBudget(t *testing.T) {
	cfg := config.Defaults()
	cfg.Tokens.L1Budget = 10

	memories := []model.Memory{
		{ID: "1", Title: "first", Type: model.TypeKnowledge, Priority: 0, Summary: "short"},
		{ID: "2", Title: "second", Type: model.TypeKnowledge, Priority: 0, Summary: strings.Repeat("z", 200)},
	}

	items := BuildL1(memories, cfg)
	if len(items) != 1 {
		t.Fatalf("expected the oversized second item to be excluded, got %d items", len(items))
	}
}

func TestBuildL2IncludesFullContent(t *testing.T) {
	now := time.Now()
	m := model.Memory{
		ID: "abc", Title: "t", Type: model.TypeKnowledge, Priority: 0,
		Tags: []string{"x", "y"}, Content: "the full body", CreatedAt: now, UpdatedAt: now,
	}
	result := BuildL2(m)
	if !strings.Contains(result.Text, "the full body") {
		t.Errorf("expected full content in L2 render, got %q", result.Text)
	}
	if !strings.Contains(result.Text, "Tags: x, y") {
		t.Errorf("expected tags in L2 render, got %q", result.Text)
	}
}

func TestBuildL0ContextEmptyWhenNoItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cfg := config.Defaults()

	out, err := BuildL0Context(ctx, s, cfg)
	if err != nil {
		t.Fatalf("build l0 context: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty string for empty store, got %q", out)
	}
}

func TestBuildL0ContextRendersSubheadings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cfg := config.Defaults()

	s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "core1", Summary: "s1"})
	s.Insert(ctx, model.MemoryInput{Type: model.TypeInsight, Priority: model.PriorityInsight, Title: "insight1", Summary: "s2"})

	out, err := BuildL0Context(ctx, s, cfg)
	if err != nil {
		t.Fatalf("build l0 context: %v", err)
	}
	if !strings.HasPrefix(out, "<michimem-context>") || !strings.HasSuffix(out, "</michimem-context>") {
		t.Fatalf("expected wrapped block, got %q", out)
	}
	if !strings.Contains(out, "## Core Knowledge") || !strings.Contains(out, "## Recent Insights") {
		t.Errorf("expected both subheadings, got %q", out)
	}
	if strings.Contains(out, "## Shared Memories") {
		t.Errorf("expected no shared-memories heading when empty, got %q", out)
	}
}

func TestBuildRestoreContextOmitsEmptySections(t *testing.T) {
	cp := model.Checkpoint{
		CurrentTask: "finish tiering",
	}
	out := BuildRestoreContext(cp)
	if !strings.Contains(out, "**Current task**: finish tiering") {
		t.Errorf("expected current task section, got %q", out)
	}
	if strings.Contains(out, "**Decisions made**") {
		t.Errorf("expected no decisions section when empty, got %q", out)
	}
	if strings.Contains(out, "**Files modified**") {
		t.Errorf("expected no files section when empty, got %q", out)
	}
}

func TestBuildRestoreContextAllSections(t *testing.T) {
	cp := model.Checkpoint{
		CurrentTask:    "finish tiering",
		Decisions:      []string{"use fts5"},
		FilesModified:  []string{"tiering.go"},
		Corrections:    []string{"don't use tabs"},
		ContextSummary: "wrapping up the tiering package",
	}
	out := BuildRestoreContext(cp)
	for _, want := range []string{"**Current task**: finish tiering", "**Decisions made**", "**Files modified**", "**User corrections**", "**Recent context**"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected section %q in output, got %q", want, out)
		}
	}
}

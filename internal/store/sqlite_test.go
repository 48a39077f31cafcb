package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Insert(ctx, model.MemoryInput{
		Type: model.TypeKnowledge, Priority: model.PriorityPermanent,
		Title: "Use tabs", Summary: "prefer tabs", Content: "tabs over spaces",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if mem.ID == "" {
		t.Fatal("expected non-empty id")
	}

	got, err := s.GetByID(ctx, mem.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Title != "Use tabs" {
		t.Fatalf("expected to find inserted memory, got %+v", got)
	}
}

func TestInsertDefaultsListFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Insert(ctx, model.MemoryInput{
		Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "bare",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if mem.Tags == nil || len(mem.Tags) != 0 {
		t.Errorf("expected empty (non-nil) tags, got %v", mem.Tags)
	}
	if mem.SourceIDs == nil || len(mem.SourceIDs) != 0 {
		t.Errorf("expected empty (non-nil) source ids, got %v", mem.SourceIDs)
	}
}

// TestFTSCoherence verifies insert, update, and delete are each
// immediately visible to Search.
func TestFTSCoherence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Insert(ctx, model.MemoryInput{
		Type: model.TypeKnowledge, Priority: model.PriorityPermanent,
		Title: "Use tabs", Summary: "prefer tabs", Content: "indent with tabs not spaces",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	hits, err := s.Search(ctx, "tabs", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != mem.ID {
		t.Fatalf("expected exactly one hit for %s, got %+v", mem.ID, hits)
	}

	newTitle := "Use four spaces"
	if _, err := s.Update(ctx, mem.ID, model.UpdateFields{Title: &newTitle}); err != nil {
		t.Fatalf("update: %v", err)
	}
	hits, _ = s.Search(ctx, "\"Use tabs\"", 5)
	if len(hits) != 0 {
		t.Errorf("expected old title to no longer match, got %+v", hits)
	}
	hits, _ = s.Search(ctx, "spaces", 5)
	if len(hits) != 1 {
		t.Errorf("expected new title to match, got %+v", hits)
	}

	if err := s.Delete(ctx, mem.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	hits, _ = s.Search(ctx, "spaces", 5)
	if len(hits) != 0 {
		t.Errorf("expected no hits after delete, got %+v", hits)
	}
}

func TestFindByTitleCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Insert(ctx, model.MemoryInput{Type: model.TypeInsight, Priority: model.PriorityInsight, Title: "Auth Flow"})

	got, err := s.FindByTitle(ctx, model.TypeInsight, "auth flow")
	if err != nil {
		t.Fatalf("find by title: %v", err)
	}
	if got == nil {
		t.Fatal("expected case-insensitive match")
	}
}

func TestUpdateDoesNotRecomputeExpiresAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exp := time.Now().Add(24 * time.Hour)
	mem, _ := s.Insert(ctx, model.MemoryInput{
		Type: model.TypeDiary, Priority: model.PriorityEphemeral, Title: "d", ExpiresAt: &exp,
	})

	newPriority := model.PriorityPermanent
	changed, err := s.Update(ctx, mem.ID, model.UpdateFields{Priority: &newPriority})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !changed {
		t.Fatal("expected a row to change")
	}

	got, _ := s.GetByID(ctx, mem.ID)
	if got.Priority != model.PriorityPermanent {
		t.Errorf("expected priority 0, got %d", got.Priority)
	}
	if got.ExpiresAt == nil {
		t.Error("expected expires_at to be left untouched by a priority-only update")
	}
}

func TestGetByTypeOrdersByUpdatedAtDesc(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "a"})
	time.Sleep(2 * time.Millisecond)
	b, _ := s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "b"})

	list, err := s.GetByType(ctx, model.TypeKnowledge, 10)
	if err != nil {
		t.Fatalf("get by type: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected [b, a], got %+v", list)
	}
}

func TestGetExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	past := time.Now().Add(-1 * time.Second)
	future := time.Now().Add(1 * time.Hour)
	s.Insert(ctx, model.MemoryInput{Type: model.TypeDiary, Priority: model.PriorityEphemeral, Title: "old", ExpiresAt: &past})
	s.Insert(ctx, model.MemoryInput{Type: model.TypeDiary, Priority: model.PriorityEphemeral, Title: "fresh", ExpiresAt: &future})
	s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "permanent"})

	expired, err := s.GetExpired(ctx)
	if err != nil {
		t.Fatalf("get expired: %v", err)
	}
	if len(expired) != 1 || expired[0].Title != "old" {
		t.Fatalf("expected exactly the expired record, got %+v", expired)
	}
}

func TestGetUnprocessedDiaries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	d1, _ := s.Insert(ctx, model.MemoryInput{Type: model.TypeDiary, Priority: model.PriorityEphemeral, Title: "d1"})
	d2, _ := s.Insert(ctx, model.MemoryInput{Type: model.TypeDiary, Priority: model.PriorityEphemeral, Title: "d2"})

	s.Insert(ctx, model.MemoryInput{
		Type: model.TypeInsight, Priority: model.PriorityInsight, Title: "pattern",
		SourceIDs: []string{d1.ID},
	})

	unprocessed, err := s.GetUnprocessedDiaries(ctx, 10)
	if err != nil {
		t.Fatalf("get unprocessed: %v", err)
	}
	if len(unprocessed) != 1 || unprocessed[0].ID != d2.ID {
		t.Fatalf("expected only d2 unprocessed, got %+v", unprocessed)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "a"})
	s.Insert(ctx, model.MemoryInput{Type: model.TypeDiary, Priority: model.PriorityEphemeral, Title: "b"})

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 2 {
		t.Errorf("expected total 2, got %d", st.Total)
	}
	if st.ByType[model.TypeKnowledge] != 1 || st.ByType[model.TypeDiary] != 1 {
		t.Errorf("unexpected by-type breakdown: %+v", st.ByType)
	}
}

func TestRecordMetricNeverFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Should not panic even with an unmarshalable-looking payload; the
	// contract is "never fails the caller", there is no return value to check.
	s.RecordMetric(ctx, "stop_extract", map[string]any{"session_id": "abc", "count": 3})
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

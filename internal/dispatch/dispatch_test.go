package dispatch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
)

func newTestEnv(t *testing.T) (*store.SQLiteStore, config.Config, config.Paths) {
	t.Helper()
	dataDir := t.TempDir()
	cfg := config.Defaults()
	cfg.DataDir = dataDir

	paths, err := config.ResolvePaths(dataDir)
	if err != nil {
		t.Fatalf("resolve paths: %v", err)
	}
	s, err := store.NewSQLiteStore(paths.DBPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, cfg, paths
}

func writeLine(t *testing.T, path string, obj map[string]any) {
	t.Helper()
	b, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	f.Write(b)
	f.Write([]byte("\n"))
}

func TestHandleSessionStartEmptyWhenNoMemories(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	res, err := Handle(ctx, Payload{HookEventName: "SessionStart", SessionID: "s1"}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Output != "" {
		t.Errorf("expected silent output for an empty store, got %q", res.Output)
	}
}

func TestHandleSessionStartEmitsContext(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)
	s.Insert(ctx, model.MemoryInput{Type: model.TypeKnowledge, Priority: model.PriorityPermanent, Title: "core fact", Summary: "important"})

	res, err := Handle(ctx, Payload{HookEventName: "SessionStart", SessionID: "s1"}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Output == "" {
		t.Fatal("expected non-empty output")
	}
	if !strings.Contains(res.Output, "hookSpecificOutput") {
		t.Errorf("expected hookSpecificOutput envelope, got %q", res.Output)
	}
	if !strings.Contains(res.Output, "michimem-context") {
		t.Errorf("expected the L0 context block, got %q", res.Output)
	}
}

func TestHandleSessionStartOnCompactEmitsRestoreContext(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	cp := model.Checkpoint{
		SessionID:   "s1",
		Timestamp:   time.Now().UTC(),
		CurrentTask: "fix login",
	}
	b, err := json.Marshal(cp)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(paths.CheckpointsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	checkpointPath := filepath.Join(paths.CheckpointsDir, "s1-1000.json")
	if err := os.WriteFile(checkpointPath, b, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Handle(ctx, Payload{HookEventName: "SessionStart", SessionID: "s1", Source: "compact"}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(res.Output, "Current task**: fix login") {
		t.Errorf("expected restore context to surface the checkpointed current task, got %q", res.Output)
	}
}

func TestHandlePreCompactCreatesCheckpoint(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	transcript := filepath.Join(t.TempDir(), "t.jsonl")
	writeLine(t, transcript, map[string]any{"role": "user", "content": "decided going with sqlite for storage today"})
	writeLine(t, transcript, map[string]any{"role": "assistant", "content": "sounds good"})

	_, err := Handle(ctx, Payload{HookEventName: "PreCompact", SessionID: "s1", TranscriptPath: transcript, Trigger: "manual"}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	entries, err := os.ReadDir(paths.CheckpointsDir)
	if err != nil {
		t.Fatalf("read checkpoints dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 checkpoint file, got %d", len(entries))
	}
}

func TestHandleStopSkipsWhenStopHookActive(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	_, err := Handle(ctx, Payload{HookEventName: "Stop", SessionID: "s1", StopHookActive: true, TranscriptPath: "/nonexistent"}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	st, _ := s.Stats(ctx)
	if st.Total != 0 {
		t.Errorf("expected no records inserted when stop_hook_active, got %+v", st)
	}
}

func TestHandleStopInsertsDiaryAndCandidates(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	transcript := filepath.Join(t.TempDir(), "t.jsonl")
	writeLine(t, transcript, map[string]any{"role": "user", "content": "Actually, always run tests before pushing"})
	writeLine(t, transcript, map[string]any{"role": "assistant", "content": "noted"})
	writeLine(t, transcript, map[string]any{"role": "user", "content": "working on the release checklist now"})
	writeLine(t, transcript, map[string]any{"role": "assistant", "content": "updated internal/dispatch/dispatch.go"})

	_, err := Handle(ctx, Payload{HookEventName: "Stop", SessionID: "s1", TranscriptPath: transcript}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	diaries, _ := s.GetByType(ctx, model.TypeDiary, 10)
	if len(diaries) != 1 {
		t.Fatalf("expected 1 diary, got %d", len(diaries))
	}

	knowledge, _ := s.GetByType(ctx, model.TypeKnowledge, 10)
	if len(knowledge) == 0 {
		t.Error("expected at least one correction/preference candidate inserted")
	}
}

func TestHandleStopDoesNotDuplicateExistingTitles(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	transcript := filepath.Join(t.TempDir(), "t.jsonl")
	writeLine(t, transcript, map[string]any{"role": "user", "content": "Actually, always run tests before pushing"})
	writeLine(t, transcript, map[string]any{"role": "assistant", "content": "noted"})
	writeLine(t, transcript, map[string]any{"role": "user", "content": "one more message so the session is long enough"})
	writeLine(t, transcript, map[string]any{"role": "assistant", "content": "sure"})

	if _, err := Handle(ctx, Payload{HookEventName: "Stop", SessionID: "s1", TranscriptPath: transcript}, s, cfg, paths, zerolog.Nop()); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	before, _ := s.Stats(ctx)

	if _, err := Handle(ctx, Payload{HookEventName: "Stop", SessionID: "s1", TranscriptPath: transcript}, s, cfg, paths, zerolog.Nop()); err != nil {
		t.Fatalf("second handle: %v", err)
	}
	after, _ := s.Stats(ctx)

	if after.ByType[model.TypeKnowledge] != before.ByType[model.TypeKnowledge] {
		t.Errorf("expected re-running Stop not to duplicate existing candidate titles: before %d, after %d",
			before.ByType[model.TypeKnowledge], after.ByType[model.TypeKnowledge])
	}
}

func TestHandleSessionEndRunsCompoundingAndLifecycle(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	_, err := Handle(ctx, Payload{HookEventName: "SessionEnd", SessionID: "s1"}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestHandleUnrecognizedEventIsNoop(t *testing.T) {
	ctx := context.Background()
	s, cfg, paths := newTestEnv(t)

	res, err := Handle(ctx, Payload{HookEventName: "Bogus"}, s, cfg, paths, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected no error for an unrecognized event, got %v", err)
	}
	if res.Output != "" {
		t.Errorf("expected empty result, got %+v", res)
	}
}

package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/checkpoint"
	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/extractor"
	"github.com/michimem/michimem/internal/lifecycle"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
	"github.com/michimem/michimem/internal/tiering"
)

// Result is what Handle returns for one hook payload. Result.Output, when
// non-empty, is what the caller should write to standard output.
type Result struct {
	Output string
}

// Handle dispatches p.HookEventName to its handler. An unrecognized event
// is a benign no-op; callers exit 0 on success or benign skip.
func Handle(ctx context.Context, p Payload, s store.Store, cfg config.Config, paths config.Paths, log zerolog.Logger) (Result, error) {
	log.Info().Str("event", p.HookEventName).Str("session_id", p.SessionID).Msg("hook received")

	var (
		res Result
		err error
	)
	switch p.HookEventName {
	case "SessionStart":
		res, err = handleSessionStart(ctx, p, s, cfg, paths, log)
	case "PreCompact":
		err = handlePreCompact(ctx, p, s, paths, log)
	case "Stop":
		err = handleStop(ctx, p, s, cfg, log)
	case "SessionEnd":
		err = handleSessionEnd(ctx, p, s, cfg, log)
	default:
		log.Warn().Str("event", p.HookEventName).Msg("unrecognized hook event, skipping")
	}

	if err != nil {
		log.Error().Err(err).Str("event", p.HookEventName).Msg("handler failed")
		return res, err
	}
	log.Debug().Str("event", p.HookEventName).Msg("handler dispatched")
	return res, nil
}

func handleSessionStart(ctx context.Context, p Payload, s store.Store, cfg config.Config, paths config.Paths, log zerolog.Logger) (Result, error) {
	l0, err := tiering.BuildL0Context(ctx, s, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("dispatch: build l0 context: %w", err)
	}

	additionalContext := l0
	if p.Source == "compact" {
		cp, err := checkpoint.GetLatestCheckpoint(paths.CheckpointsDir, p.SessionID)
		if err != nil {
			return Result{}, fmt.Errorf("dispatch: get latest checkpoint: %w", err)
		}
		if cp != nil {
			restore := tiering.BuildRestoreContext(*cp)
			if additionalContext != "" {
				additionalContext += "\n\n" + restore
			} else {
				additionalContext = restore
			}
		}
	}

	if additionalContext == "" {
		return Result{}, nil
	}

	output := HookOutput{HookSpecificOutput: HookSpecificOutput{
		HookEventName:     "SessionStart",
		AdditionalContext: additionalContext,
	}}
	rendered, err := renderJSON(output)
	if err != nil {
		return Result{}, fmt.Errorf("dispatch: render output: %w", err)
	}
	return Result{Output: rendered}, nil
}

func renderJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func handlePreCompact(ctx context.Context, p Payload, s store.Store, paths config.Paths, log zerolog.Logger) error {
	cp, err := checkpoint.CreateCheckpoint(paths.CheckpointsDir, p.SessionID, p.TranscriptPath)
	if err != nil {
		return fmt.Errorf("dispatch: create checkpoint: %w", err)
	}
	s.RecordMetric(ctx, "precompact", map[string]any{
		"session_id":         p.SessionID,
		"trigger":            p.Trigger,
		"checkpoint_created": cp != nil,
	})
	return nil
}

func handleStop(ctx context.Context, p Payload, s store.Store, cfg config.Config, log zerolog.Logger) error {
	if p.StopHookActive {
		log.Debug().Msg("stop_hook_active, skipping extraction")
		return nil
	}

	result := extractor.Extract(p.TranscriptPath, cfg.TTL.DiaryDays)

	diaryInserted := false
	if result.Diary != nil {
		if _, err := s.Insert(ctx, *result.Diary); err != nil {
			return fmt.Errorf("dispatch: insert diary: %w", err)
		}
		diaryInserted = true
	}

	candidates := 0
	inserted := 0
	insertCandidate := func(c model.MemoryInput) error {
		candidates++
		existing, err := s.FindByTitle(ctx, c.Type, c.Title)
		if err != nil {
			return fmt.Errorf("dispatch: check existing candidate: %w", err)
		}
		if existing != nil {
			return nil
		}
		if _, err := s.Insert(ctx, c); err != nil {
			return fmt.Errorf("dispatch: insert candidate: %w", err)
		}
		inserted++
		return nil
	}
	for _, c := range result.Corrections {
		if err := insertCandidate(c); err != nil {
			return err
		}
	}
	for _, c := range result.Preferences {
		if err := insertCandidate(c); err != nil {
			return err
		}
	}

	s.RecordMetric(ctx, "stop_extract", map[string]any{
		"session_id":     p.SessionID,
		"diary_inserted": diaryInserted,
		"candidates":     candidates,
		"inserted":       inserted,
	})
	return nil
}

func handleSessionEnd(ctx context.Context, p Payload, s store.Store, cfg config.Config, log zerolog.Logger) error {
	compoundRes, err := lifecycle.RunCompounding(ctx, s, cfg, log)
	if err != nil {
		return fmt.Errorf("dispatch: run compounding: %w", err)
	}
	lifecycleRes, err := lifecycle.RunLifecycle(ctx, s, cfg, log)
	if err != nil {
		return fmt.Errorf("dispatch: run lifecycle: %w", err)
	}

	s.RecordMetric(ctx, "session_end", map[string]any{
		"session_id":        p.SessionID,
		"insights_created":  compoundRes.InsightsCreated,
		"knowledge_created": compoundRes.KnowledgeCreated,
		"expired":           lifecycleRes.Expired,
		"archived":          lifecycleRes.Archived,
	})
	return nil
}

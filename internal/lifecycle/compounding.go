package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
)

const (
	maxDiariesFetched  = 50
	maxInsightsFetched = 50
	topTagCount        = 5
)

// CompoundingResult reports what RunCompounding did.
type CompoundingResult struct {
	InsightsCreated  int
	KnowledgeCreated int
	DiariesProcessed int
}

// RunCompounding promotes clusters of related diaries into insights, and
// clusters of related insights into permanent knowledge. Each stage is
// skipped entirely if there isn't enough raw material to meet its
// configured threshold.
func RunCompounding(ctx context.Context, s store.Store, cfg config.Config, log zerolog.Logger) (CompoundingResult, error) {
	var res CompoundingResult

	diaries, err := s.GetUnprocessedDiaries(ctx, maxDiariesFetched)
	if err != nil {
		return res, fmt.Errorf("compounding: fetch diaries: %w", err)
	}
	if len(diaries) >= cfg.Compounding.DiaryThreshold {
		for _, cluster := range clusterByOverlap(diaries) {
			if len(cluster) < cfg.Compounding.DiaryThreshold {
				continue
			}
			insight := synthesize(cluster, "auto-insight")
			insight.Type = model.TypeInsight
			insight.Priority = model.PriorityInsight
			expires := time.Now().Add(time.Duration(cfg.TTL.InsightDays) * 24 * time.Hour)
			insight.ExpiresAt = &expires

			if _, err := s.Insert(ctx, insight); err != nil {
				return res, fmt.Errorf("compounding: insert insight: %w", err)
			}
			res.InsightsCreated++
			res.DiariesProcessed += len(cluster)
		}
	}

	insights, err := s.GetByType(ctx, model.TypeInsight, maxInsightsFetched)
	if err != nil {
		return res, fmt.Errorf("compounding: fetch insights: %w", err)
	}
	if len(insights) >= cfg.Compounding.InsightThreshold {
		for _, cluster := range clusterByOverlap(insights) {
			if len(cluster) < cfg.Compounding.InsightThreshold {
				continue
			}
			knowledge := synthesize(cluster, "auto-knowledge")
			knowledge.Type = model.TypeKnowledge
			knowledge.Priority = model.PriorityPermanent

			if _, err := s.Insert(ctx, knowledge); err != nil {
				return res, fmt.Errorf("compounding: insert knowledge: %w", err)
			}
			res.KnowledgeCreated++
		}
	}

	log.Info().
		Int("insights_created", res.InsightsCreated).
		Int("knowledge_created", res.KnowledgeCreated).
		Int("diaries_processed", res.DiariesProcessed).
		Msg("compounding run complete")
	return res, nil
}

// synthesize renders a cluster of related memories into a single candidate
// record. Type, priority, and expiry are the caller's responsibility —
// only the shared title/summary/content/tags/source_ids shape is built here.
func synthesize(members []model.Memory, marker string) model.MemoryInput {
	tags := topTags(members, topTagCount)
	tagList := strings.Join(tags, ", ")

	var content strings.Builder
	for _, m := range members {
		fmt.Fprintf(&content, "- %s: %s\n", m.Title, m.Summary)
	}
	fmt.Fprintf(&content, "\nDate range: %s to %s", dateRangeStart(members), dateRangeEnd(members))

	sourceIDs := make([]string, len(members))
	for i, m := range members {
		sourceIDs[i] = m.ID
	}

	return model.MemoryInput{
		Title:     fmt.Sprintf("Pattern: %s (from %d sessions)", tagList, len(members)),
		Summary:   fmt.Sprintf("Recurring pattern across %d sessions involving %s", len(members), tagList),
		Content:   content.String(),
		Tags:      append(tags, marker),
		SourceIDs: sourceIDs,
	}
}

func dateRangeStart(members []model.Memory) string {
	earliest := members[0].CreatedAt
	for _, m := range members[1:] {
		if m.CreatedAt.Before(earliest) {
			earliest = m.CreatedAt
		}
	}
	return earliest.Format("2006-01-02")
}

func dateRangeEnd(members []model.Memory) string {
	latest := members[0].CreatedAt
	for _, m := range members[1:] {
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}
	return latest.Format("2006-01-02")
}

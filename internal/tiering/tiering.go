// Package tiering composes token-bounded views of the store, from a
// single-line L0 digest up to a full L2 record render. The token estimator
// is fixed at ceil(len/4); callers must not swap in a real tokenizer.
package tiering

import (
	"context"
	"fmt"
	"strings"

	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
)

// TieredResult is one rendered item plus its estimated token cost.
type TieredResult struct {
	Memory model.Memory
	Text   string
	Tokens int
}

// EstimateTokens is the single formula every budget decision in this
// package is built on: ceil(len(text)/4). Its precision is not the point —
// using the same formula everywhere, consistently, is.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

const (
	l0MaxCore     = 20
	l0MaxInsights = 10
	l0MaxShared   = 5
)

// BuildL0 assembles the smallest, cheapest view: permanent knowledge first,
// then insights, then shared memories, all drawing on one running total
// against tokens.l0_budget. Each group stops — rather than skipping an
// over-budget item and continuing — the moment an item would overflow.
// A record already emitted by an earlier group is not repeated.
func BuildL0(ctx context.Context, s store.Store, cfg config.Config) ([]TieredResult, error) {
	var out []TieredResult
	budget := cfg.Tokens.L0Budget
	used := 0
	emitted := map[string]bool{}

	appendGroup := func(items []model.Memory, max int) {
		for i, m := range items {
			if i >= max {
				break
			}
			if emitted[m.ID] {
				continue
			}
			text := fmt.Sprintf("%s: %s", m.Title, m.Summary)
			tok := EstimateTokens(text)
			if used+tok > budget {
				return
			}
			out = append(out, TieredResult{Memory: m, Text: text, Tokens: tok})
			emitted[m.ID] = true
			used += tok
		}
	}

	core, err := s.GetByPriority(ctx, model.PriorityPermanent, l0MaxCore)
	if err != nil {
		return nil, fmt.Errorf("tiering: fetch core knowledge: %w", err)
	}
	appendGroup(core, l0MaxCore)

	insights, err := s.GetByType(ctx, model.TypeInsight, l0MaxInsights)
	if err != nil {
		return nil, fmt.Errorf("tiering: fetch insights: %w", err)
	}
	appendGroup(insights, l0MaxInsights)

	shared, err := s.GetByType(ctx, model.TypeShared, l0MaxShared)
	if err != nil {
		return nil, fmt.Errorf("tiering: fetch shared: %w", err)
	}
	appendGroup(shared, l0MaxShared)

	return out, nil
}

// BuildL1 renders a richer paragraph per memory, accumulating in input
// order until the next item would exceed tokens.l1_budget.
func BuildL1(memories []model.Memory, cfg config.Config) []TieredResult {
	var out []TieredResult
	used := 0
	for _, m := range memories {
		text := renderL1(m)
		tok := EstimateTokens(text)
		if used+tok > cfg.Tokens.L1Budget {
			break
		}
		out = append(out, TieredResult{Memory: m, Text: text, Tokens: tok})
		used += tok
	}
	return out
}

func renderL1(m model.Memory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** (%s/P%d) [id:%s]\n%s", m.Title, m.Type, m.Priority, m.ID, m.Summary)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&sb, "\n[Tags: %s]", strings.Join(m.Tags, ", "))
	}
	return sb.String()
}

// BuildL2 fully renders a single record: title, type/priority, id, tags,
// timestamps, expiry, and full content. The summary is not included.
func BuildL2(m model.Memory) TieredResult {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** (%s/P%d) [id:%s]\n", m.Title, m.Type, m.Priority, m.ID)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&sb, "[Tags: %s]\n", strings.Join(m.Tags, ", "))
	}
	fmt.Fprintf(&sb, "Created: %s | Updated: %s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.UpdatedAt.Format("2006-01-02 15:04"))
	if m.ExpiresAt != nil {
		fmt.Fprintf(&sb, "Expires: %s\n", m.ExpiresAt.Format("2006-01-02 15:04"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.Content)

	text := sb.String()
	return TieredResult{Memory: m, Text: text, Tokens: EstimateTokens(text)}
}

package tiering

import (
	"context"
	"fmt"
	"strings"

	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
)

// BuildL0Context renders BuildL0's output as a single markdown block with
// one subheading per non-empty group. Returns "" if there is nothing to
// show, so callers can skip emitting an empty wrapper.
func BuildL0Context(ctx context.Context, s store.Store, cfg config.Config) (string, error) {
	items, err := BuildL0(ctx, s, cfg)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}

	var core, insights, shared []TieredResult
	for _, it := range items {
		switch {
		case it.Memory.Priority == model.PriorityPermanent:
			core = append(core, it)
		case it.Memory.Type == model.TypeInsight:
			insights = append(insights, it)
		case it.Memory.Type == model.TypeShared:
			shared = append(shared, it)
		}
	}

	var sb strings.Builder
	sb.WriteString("<michimem-context>\n")
	writeGroup(&sb, "Core Knowledge", core)
	writeGroup(&sb, "Recent Insights", insights)
	writeGroup(&sb, "Shared Memories", shared)
	sb.WriteString("</michimem-context>")

	return sb.String(), nil
}

func writeGroup(sb *strings.Builder, heading string, items []TieredResult) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n", heading)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it.Text)
	}
}

// BuildRestoreContext renders a checkpoint into a <michimem-restore> block,
// omitting any section whose field was empty.
func BuildRestoreContext(cp model.Checkpoint) string {
	var sb strings.Builder
	sb.WriteString("<michimem-restore>\n")

	if cp.CurrentTask != "" {
		fmt.Fprintf(&sb, "**Current task**: %s\n", cp.CurrentTask)
	}
	if len(cp.Decisions) > 0 {
		sb.WriteString("**Decisions made**:\n")
		for _, d := range cp.Decisions {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
	}
	if len(cp.FilesModified) > 0 {
		sb.WriteString("**Files modified**:\n")
		for _, f := range cp.FilesModified {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}
	if len(cp.Corrections) > 0 {
		sb.WriteString("**User corrections**:\n")
		for _, c := range cp.Corrections {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}
	if cp.ContextSummary != "" {
		fmt.Fprintf(&sb, "**Recent context**: %s\n", cp.ContextSummary)
	}

	sb.WriteString("</michimem-restore>")
	return sb.String()
}

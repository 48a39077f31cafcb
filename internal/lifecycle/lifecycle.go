// Package lifecycle evolves the store over time: expiring and archiving
// records whose TTL has passed, and compounding diaries into insights and
// insights into permanent knowledge.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/michimem/michimem/internal/config"
	"github.com/michimem/michimem/internal/model"
	"github.com/michimem/michimem/internal/store"
)

// Result reports what RunLifecycle did.
type Result struct {
	Expired  int
	Archived int
}

// RunLifecycle fetches every expired record, attempts to archive it as a
// markdown file, and deletes it from the store regardless of whether the
// archive write succeeded — a slow or failing filesystem must never block
// expiry.
func RunLifecycle(ctx context.Context, s store.Store, cfg config.Config, log zerolog.Logger) (Result, error) {
	paths, err := config.ResolvePaths(cfg.DataDir)
	if err != nil {
		return Result{}, fmt.Errorf("lifecycle: resolve paths: %w", err)
	}

	expired, err := s.GetExpired(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("lifecycle: fetch expired: %w", err)
	}

	var res Result
	for _, m := range expired {
		res.Expired++

		if err := archiveMemory(paths.ArchiveDir, m); err != nil {
			log.Warn().Err(err).Str("id", m.ID).Msg("archive write failed, deleting anyway")
		} else {
			res.Archived++
		}

		if err := s.Delete(ctx, m.ID); err != nil {
			return res, fmt.Errorf("lifecycle: delete %s: %w", m.ID, err)
		}

		s.RecordMetric(ctx, "lifecycle_expire", map[string]any{
			"id": m.ID, "type": m.Type, "title": m.Title,
		})
	}

	log.Info().Int("expired", res.Expired).Int("archived", res.Archived).Msg("lifecycle run complete")
	return res, nil
}

func archiveMemory(archiveDir string, m model.Memory) error {
	idPrefix := m.ID
	if len(idPrefix) > 8 {
		idPrefix = idPrefix[:8]
	}
	filename := fmt.Sprintf("%s-%s.md", time.Now().UTC().Format("2006-01-02"), idPrefix)
	path := filepath.Join(archiveDir, filename)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", m.Title)
	fmt.Fprintf(&sb, "- type: %s\n", m.Type)
	fmt.Fprintf(&sb, "- priority: %d\n", m.Priority)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&sb, "- tags: %s\n", strings.Join(m.Tags, ", "))
	}
	fmt.Fprintf(&sb, "- created_at: %s\n", m.CreatedAt.Format(time.RFC3339))
	if m.ExpiresAt != nil {
		fmt.Fprintf(&sb, "- expired_at: %s\n", m.ExpiresAt.Format(time.RFC3339))
	}
	sb.WriteString("\n")
	sb.WriteString(m.Summary)
	sb.WriteString("\n\n")
	sb.WriteString(m.Content)

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

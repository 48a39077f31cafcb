package store

import (
	"context"

	"github.com/michimem/michimem/internal/model"
)

// ExportAll returns every record, optionally filtered by type, oldest
// created_at first.
func (s *SQLiteStore) ExportAll(ctx context.Context, typ string) ([]model.Memory, error) {
	query := selectCols + ` FROM memories`
	args := []any{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemories(rows)
}

// Import re-inserts memories from an export. Each record is assigned a
// fresh id and timestamps — export/import is a content migration tool, not
// a byte-for-byte restore, and duplicates are skipped by a title+type
// natural key.
func (s *SQLiteStore) Import(ctx context.Context, memories []model.Memory) (int, error) {
	imported := 0
	for _, m := range memories {
		existing, err := s.FindByTitle(ctx, m.Type, m.Title)
		if err != nil {
			return imported, err
		}
		if existing != nil {
			continue
		}
		_, err = s.Insert(ctx, model.MemoryInput{
			Type:      m.Type,
			Priority:  m.Priority,
			Title:     m.Title,
			Summary:   m.Summary,
			Content:   m.Content,
			Tags:      m.Tags,
			AgentID:   m.AgentID,
			SourceIDs: m.SourceIDs,
			ExpiresAt: m.ExpiresAt,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

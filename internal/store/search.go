package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/michimem/michimem/internal/model"
)

// Search runs a native FTS5 query (phrases, boolean operators, prefix `*`)
// against {title, summary, content, tags} and returns hits ordered by the
// index's bm25 rank ascending — lower is better, and the rank is opaque
// outside of one search.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]model.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT m.id, m.type, m.priority, m.title, m.summary, m.content, m.tags,
		       m.agent_id, m.source_ids, m.created_at, m.updated_at, m.expires_at,
		       memories_fts.rank AS rank
		FROM memories_fts
		JOIN memories m ON m.seq = memories_fts.rowid
		WHERE memories_fts MATCH ?
		ORDER BY memories_fts.rank
		LIMIT ?`), query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []model.SearchHit
	for rows.Next() {
		var rank float64
		m, err := scanMemoryWithRank(rows, &rank)
		if err != nil {
			return nil, err
		}
		hits = append(hits, model.SearchHit{Memory: m, Rank: rank})
	}
	return hits, rows.Err()
}

func scanMemoryWithRank(rows *sql.Rows, rank *float64) (model.Memory, error) {
	var m model.Memory
	var tagsJSON, sourceIDsJSON, expiresAt sql.NullString
	var createdAt, updatedAt string

	err := rows.Scan(
		&m.ID, &m.Type, &m.Priority, &m.Title, &m.Summary, &m.Content,
		&tagsJSON, &m.AgentID, &sourceIDsJSON, &createdAt, &updatedAt, &expiresAt, rank,
	)
	if err != nil {
		return m, err
	}

	m.CreatedAt, _ = parseTimeRFC3339(createdAt)
	m.UpdatedAt, _ = parseTimeRFC3339(updatedAt)
	m.Tags = []string{}
	if tagsJSON.Valid {
		unmarshalJSONList(tagsJSON.String, &m.Tags)
	}
	m.SourceIDs = []string{}
	if sourceIDsJSON.Valid {
		unmarshalJSONList(sourceIDsJSON.String, &m.SourceIDs)
	}
	if expiresAt.Valid {
		t, _ := parseTimeRFC3339(expiresAt.String)
		m.ExpiresAt = &t
	}

	return m, nil
}

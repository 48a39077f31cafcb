package store

import (
	"context"
	"time"

	"github.com/michimem/michimem/internal/model"
)

// Stats computes aggregate counts: total records, breakdown by type,
// breakdown by priority, and the count of currently-expired records.
func (s *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
	st := &model.Stats{
		ByType:     map[string]int{},
		ByPriority: map[int]int{},
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.Total); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM memories GROUP BY type`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.ByType[typ] = n
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT priority, COUNT(*) FROM memories GROUP BY priority`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p, n int
		if err := rows.Scan(&p, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.ByPriority[p] = n
	}
	rows.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE expires_at IS NOT NULL AND expires_at < ?`, now,
	).Scan(&st.Expired); err != nil {
		return nil, err
	}

	return st, nil
}

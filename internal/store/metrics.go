package store

import (
	"context"
	"encoding/json"
	"time"
)

// RecordMetric appends an event observation. It never fails the caller —
// write errors are logged and swallowed; metric writes are always
// silent-on-failure.
func (s *SQLiteStore) RecordMetric(ctx context.Context, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("metric payload marshal failed")
		payload = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metrics (event, data, created_at) VALUES (?, ?, ?)`,
		event, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("metric write failed")
	}
}

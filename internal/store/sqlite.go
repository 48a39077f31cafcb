package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/michimem/michimem/internal/model"
)

// SQLiteStore implements Store using SQLite with an FTS5 index.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	log     zerolog.Logger
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("store opened")
	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		type        TEXT NOT NULL,
		priority    INTEGER NOT NULL,
		title       TEXT NOT NULL,
		summary     TEXT NOT NULL DEFAULT '',
		content     TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '[]',
		agent_id    TEXT NOT NULL DEFAULT '',
		source_ids  TEXT NOT NULL DEFAULT '[]',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		expires_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(type);
	CREATE INDEX IF NOT EXISTS idx_memories_priority ON memories(priority);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at);
	CREATE INDEX IF NOT EXISTS idx_memories_expires ON memories(expires_at);

	CREATE TABLE IF NOT EXISTS metrics (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		event      TEXT NOT NULL,
		data       TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		title,
		summary,
		content,
		tags,
		id UNINDEXED,
		content=''
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers keep the index in sync with the memories table automatically.
	// A contentless table accepts no UPDATE or DELETE; entries are removed with
	// the special 'delete' command, passing the values originally indexed.
	if _, err := s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
		INSERT INTO memories_fts(rowid, title, summary, content, tags, id)
		VALUES (new.seq, new.title, new.summary, new.content, new.tags, new.id);
	END`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, title, summary, content, tags, id)
		VALUES ('delete', old.seq, old.title, old.summary, old.content, old.tags, old.id);
	END`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, title, summary, content, tags, id)
		VALUES ('delete', old.seq, old.title, old.summary, old.content, old.tags, old.id);
		INSERT INTO memories_fts(rowid, title, summary, content, tags, id)
		VALUES (new.seq, new.title, new.summary, new.content, new.tags, new.id);
	END`); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, in model.MemoryInput) (*model.Memory, error) {
	if !model.ValidTypes[in.Type] {
		return nil, fmt.Errorf("invalid memory type %q", in.Type)
	}
	if !model.ValidPriorities[in.Priority] {
		return nil, fmt.Errorf("invalid priority %d", in.Priority)
	}

	now := time.Now().UTC()
	id := s.newID()

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	sourceIDs := in.SourceIDs
	if sourceIDs == nil {
		sourceIDs = []string{}
	}

	tagsJSON, _ := json.Marshal(tags)
	sourceIDsJSON, _ := json.Marshal(sourceIDs)

	var expiresAt *string
	if in.ExpiresAt != nil {
		e := in.ExpiresAt.UTC().Format(time.RFC3339)
		expiresAt = &e
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, type, priority, title, summary, content, tags, agent_id, source_ids, created_at, updated_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Type, in.Priority, in.Title, in.Summary, in.Content,
		string(tagsJSON), in.AgentID, string(sourceIDsJSON),
		now.Format(time.RFC3339), now.Format(time.RFC3339), expiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	mem := &model.Memory{
		ID:        id,
		Type:      in.Type,
		Priority:  in.Priority,
		Title:     in.Title,
		Summary:   in.Summary,
		Content:   in.Content,
		Tags:      tags,
		AgentID:   in.AgentID,
		SourceIDs: sourceIDs,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: in.ExpiresAt,
	}
	s.log.Debug().Str("id", id).Str("type", in.Type).Str("title", in.Title).Msg("memory inserted")
	return mem, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx, selectCols+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) FindByTitle(ctx context.Context, typ, title string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		selectCols+` FROM memories WHERE type = ? AND title = ? COLLATE NOCASE LIMIT 1`,
		typ, title)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) GetByType(ctx context.Context, typ string, limit int) ([]model.Memory, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		selectCols+` FROM memories WHERE type = ? ORDER BY updated_at DESC, seq DESC LIMIT ?`, typ, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemories(rows)
}

func (s *SQLiteStore) GetByPriority(ctx context.Context, priority int, limit int) ([]model.Memory, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		selectCols+` FROM memories WHERE priority = ? ORDER BY updated_at DESC LIMIT ?`, priority, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemories(rows)
}

func (s *SQLiteStore) GetExpired(ctx context.Context) ([]model.Memory, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx,
		selectCols+` FROM memories WHERE expires_at IS NOT NULL AND expires_at < ? ORDER BY expires_at ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemories(rows)
}

// GetUnprocessedDiaries returns diaries whose id does not appear in any
// insight's source_ids JSON array, oldest created_at first. This is a
// literal substring check against the serialized JSON list; it is
// intentionally shallow and does not look through insight -> knowledge
// promotion.
func (s *SQLiteStore) GetUnprocessedDiaries(ctx context.Context, limit int) ([]model.Memory, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		selectCols+` FROM memories m
		 WHERE m.type = ?
		   AND NOT EXISTS (
		       SELECT 1 FROM memories i
		       WHERE i.type = ? AND instr(i.source_ids, m.id) > 0
		   )
		 ORDER BY m.created_at ASC
		 LIMIT ?`,
		model.TypeDiary, model.TypeInsight, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemories(rows)
}

func (s *SQLiteStore) Update(ctx context.Context, id string, fields model.UpdateFields) (bool, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	if fields.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *fields.Summary)
	}
	if fields.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *fields.Content)
	}
	if fields.Tags != nil {
		b, _ := json.Marshal(*fields.Tags)
		sets = append(sets, "tags = ?")
		args = append(args, string(b))
	}
	if fields.Priority != nil {
		if !model.ValidPriorities[*fields.Priority] {
			return false, fmt.Errorf("invalid priority %d", *fields.Priority)
		}
		sets = append(sets, "priority = ?")
		args = append(args, *fields.Priority)
		// Priority changes never recompute expires_at; callers set it explicitly if needed.
	}
	if fields.ExpiresAt != nil {
		sets = append(sets, "expires_at = ?")
		args = append(args, fields.ExpiresAt.UTC().Format(time.RFC3339))
	}

	query := "UPDATE memories SET " + joinComma(sets) + " WHERE id = ?"
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update memory: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

const selectCols = `SELECT id, type, priority, title, summary, content, tags, agent_id, source_ids, created_at, updated_at, expires_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var tagsJSON, sourceIDsJSON, expiresAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&m.ID, &m.Type, &m.Priority, &m.Title, &m.Summary, &m.Content,
		&tagsJSON, &m.AgentID, &sourceIDsJSON, &createdAt, &updatedAt, &expiresAt,
	)
	if err != nil {
		return m, err
	}

	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	m.Tags = []string{}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &m.Tags)
	}
	m.SourceIDs = []string{}
	if sourceIDsJSON.Valid {
		json.Unmarshal([]byte(sourceIDsJSON.String), &m.SourceIDs)
	}
	if expiresAt.Valid {
		t, _ := time.Parse(time.RFC3339, expiresAt.String)
		m.ExpiresAt = &t
	}

	return m, nil
}

func scanMemories(rows *sql.Rows) ([]model.Memory, error) {
	var out []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

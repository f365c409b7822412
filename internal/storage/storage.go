// Package storage persists what the insight engine deliberately does
// not: per-user adaptive threshold snapshots between cycles, dismissed
// insight ids, and a short generation history. The engine stays pure;
// the CLI is the caller that owns this store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/stillharbor/driftline/internal/threshold"
	"github.com/stillharbor/driftline/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS thresholds (
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	state_json TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (user_id, name)
);

CREATE TABLE IF NOT EXISTS dismissals (
	user_id      TEXT NOT NULL,
	insight_id   TEXT NOT NULL,
	dismissed_at TEXT NOT NULL,
	PRIMARY KEY (user_id, insight_id)
);

CREATE TABLE IF NOT EXISTS generations (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	generated_at  TEXT NOT NULL,
	window_days   INTEGER NOT NULL,
	insight_count INTEGER NOT NULL,
	insights_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_generations_user
	ON generations(user_id, generated_at);
`

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// WAL keeps the review command responsive while a generation is
	// being recorded.
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadThresholds returns the persisted threshold snapshot for a user.
// A user with no rows gets an empty map, which the engine treats as a
// cold start. A row whose JSON no longer parses is skipped for the same
// reason: the engine falls back to that threshold's baseline.
func (s *Store) LoadThresholds(ctx context.Context, userID string) (map[string]threshold.State, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, state_json FROM thresholds WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("loading thresholds: %w", err)
	}
	defer rows.Close()

	out := make(map[string]threshold.State)
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scanning threshold row: %w", err)
		}
		var st threshold.State
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			continue
		}
		out[name] = st
	}
	return out, rows.Err()
}

// SaveThresholds upserts the post-cycle snapshot for a user.
func (s *Store) SaveThresholds(ctx context.Context, userID string, snap map[string]threshold.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning threshold save: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for name, st := range snap {
		raw, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("serializing threshold %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO thresholds (user_id, name, state_json, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, name) DO UPDATE SET
			   state_json = excluded.state_json,
			   updated_at = excluded.updated_at`,
			userID, name, string(raw), now); err != nil {
			return fmt.Errorf("saving threshold %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// DismissedIDs returns every insight id the user has dismissed.
func (s *Store) DismissedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT insight_id FROM dismissals WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("loading dismissals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning dismissal row: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// RecordDismissal marks an insight id dismissed. Re-dismissing is a
// no-op.
func (s *Store) RecordDismissal(ctx context.Context, userID, insightID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dismissals (user_id, insight_id, dismissed_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id, insight_id) DO NOTHING`,
		userID, insightID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording dismissal: %w", err)
	}
	return nil
}

// RecordGeneration stores one cycle's output and returns its cycle id.
func (s *Store) RecordGeneration(ctx context.Context, userID string, windowDays int, insights []types.Insight) (string, error) {
	raw, err := json.Marshal(insights)
	if err != nil {
		return "", fmt.Errorf("serializing insights: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generations (id, user_id, generated_at, window_days, insight_count, insights_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00"), windowDays, len(insights), string(raw))
	if err != nil {
		return "", fmt.Errorf("recording generation: %w", err)
	}
	return id, nil
}

// LatestGeneration returns the most recent cycle's insights for a user,
// or (nil, nil) when none exist.
func (s *Store) LatestGeneration(ctx context.Context, userID string) ([]types.Insight, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT insights_json FROM generations
		 WHERE user_id = ?
		 ORDER BY generated_at DESC, rowid DESC LIMIT 1`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest generation: %w", err)
	}

	var insights []types.Insight
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, fmt.Errorf("parsing stored insights: %w", err)
	}
	return insights, nil
}

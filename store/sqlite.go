package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/calier-ar/tablero/engine"

	_ "modernc.org/sqlite"
)

// ============================================================================
// SQLITE STORE — local snapshot copies
// ============================================================================
// Keeps a local copy of the four remote tables so the dashboard can load
// without the remote store (offline demos, tests, cold starts). The schema
// already holds the canonical classification column: reconciliation happened
// when the snapshot was ingested.
// ============================================================================

// Schema creates the four snapshot tables.
const Schema = `
CREATE TABLE IF NOT EXISTS interactions (
	id INTEGER PRIMARY KEY,
	client_code TEXT NOT NULL,
	agent_code TEXT NOT NULL DEFAULT '',
	classification TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	referred INTEGER,
	sent_at TEXT NOT NULL DEFAULT '',
	responded_at TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS clients (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	province TEXT NOT NULL DEFAULT '',
	locality TEXT NOT NULL DEFAULT '',
	sector TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	agent_code TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS agents (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	lab TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS follow_ups (
	id INTEGER PRIMARY KEY,
	sent_date TEXT NOT NULL DEFAULT '',
	sent_time TEXT NOT NULL DEFAULT '',
	response_date TEXT NOT NULL DEFAULT '',
	response_time TEXT NOT NULL DEFAULT '',
	client_id TEXT NOT NULL DEFAULT '',
	agent_id TEXT NOT NULL DEFAULT '',
	contacted INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteStore serves snapshots from a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the snapshot database at path with WAL
// journaling and a busy timeout, then ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: mkdir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// OpenMemorySQLite opens an in-memory snapshot database for testing.
// MaxOpenConns(1) keeps every query on the same in-memory database.
func OpenMemorySQLite(t testing.TB) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenMemorySQLite: %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// SaveSnapshot replaces the local copy with snap, in one transaction.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *engine.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"interactions", "clients", "agents", "follow_ups"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", table, err)
		}
	}

	for _, i := range snap.Interactions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO interactions (id, client_code, agent_code, classification, status, referred, sent_at, responded_at, summary)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			i.ID, i.ClientCode, i.AgentCode, i.Classification, i.Status, i.Referred, i.SentAt, i.RespondedAt, i.Summary)
		if err != nil {
			return fmt.Errorf("sqlite: insert interaction %d: %w", i.ID, err)
		}
	}
	for _, c := range snap.Clients {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO clients (code, name, province, locality, sector, email, agent_code)
			VALUES (?,?,?,?,?,?,?)`,
			c.Code, c.Name, c.Province, c.Locality, c.Sector, c.Email, c.AgentCode)
		if err != nil {
			return fmt.Errorf("sqlite: insert client %s: %w", c.Code, err)
		}
	}
	for _, a := range snap.Agents {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO agents (code, name, email, phone, lab, active)
			VALUES (?,?,?,?,?,?)`,
			a.Code, a.Name, a.Email, a.Phone, a.Lab, a.Active)
		if err != nil {
			return fmt.Errorf("sqlite: insert agent %s: %w", a.Code, err)
		}
	}
	for _, f := range snap.FollowUps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO follow_ups (id, sent_date, sent_time, response_date, response_time, client_id, agent_id, contacted)
			VALUES (?,?,?,?,?,?,?,?)`,
			f.ID, f.SentDate, f.SentTime, f.ResponseDate, f.ResponseTime, f.ClientID, f.AgentID, f.Contacted)
		if err != nil {
			return fmt.Errorf("sqlite: insert follow-up %d: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Interactions reads the local interaction snapshot.
func (s *SQLiteStore) Interactions(ctx context.Context) ([]engine.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_code, agent_code, classification, status, referred, sent_at, responded_at, summary
		FROM interactions`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query interactions: %w", err)
	}
	defer rows.Close()

	var out []engine.Interaction
	for rows.Next() {
		var i engine.Interaction
		var referred sql.NullBool
		if err := rows.Scan(&i.ID, &i.ClientCode, &i.AgentCode, &i.Classification, &i.Status, &referred, &i.SentAt, &i.RespondedAt, &i.Summary); err != nil {
			return nil, fmt.Errorf("sqlite: scan interaction: %w", err)
		}
		if referred.Valid {
			i.Referred = engine.Bool(referred.Bool)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// Clients reads the local client snapshot.
func (s *SQLiteStore) Clients(ctx context.Context) ([]engine.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, province, locality, sector, email, agent_code
		FROM clients`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query clients: %w", err)
	}
	defer rows.Close()

	var out []engine.Client
	for rows.Next() {
		var c engine.Client
		if err := rows.Scan(&c.Code, &c.Name, &c.Province, &c.Locality, &c.Sector, &c.Email, &c.AgentCode); err != nil {
			return nil, fmt.Errorf("sqlite: scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Agents reads the local agent snapshot.
func (s *SQLiteStore) Agents(ctx context.Context) ([]engine.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, email, phone, lab, active
		FROM agents`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query agents: %w", err)
	}
	defer rows.Close()

	var out []engine.Agent
	for rows.Next() {
		var a engine.Agent
		if err := rows.Scan(&a.Code, &a.Name, &a.Email, &a.Phone, &a.Lab, &a.Active); err != nil {
			return nil, fmt.Errorf("sqlite: scan agent: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FollowUps reads the local follow-up snapshot.
func (s *SQLiteStore) FollowUps(ctx context.Context) ([]engine.FollowUp, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sent_date, sent_time, response_date, response_time, client_id, agent_id, contacted
		FROM follow_ups`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query follow_ups: %w", err)
	}
	defer rows.Close()

	var out []engine.FollowUp
	for rows.Next() {
		var f engine.FollowUp
		if err := rows.Scan(&f.ID, &f.SentDate, &f.SentTime, &f.ResponseDate, &f.ResponseTime, &f.ClientID, &f.AgentID, &f.Contacted); err != nil {
			return nil, fmt.Errorf("sqlite: scan follow-up: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Backend is a durable key/value mirror of the session.
type Backend interface {
	Get(key string) (string, bool, error)
	SetAll(values map[string]string) error
	Delete(keys ...string) error
}

// Store provides SQLite-backed persistence for the session keys.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool, error) {
	row := s.db.QueryRow(`SELECT value FROM session_kv WHERE key = ?`, key)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("scan %s: %w", key, err)
	}

	return value, true, nil
}

// SetAll upserts every key in one transaction.
func (s *Store) SetAll(values map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for key, value := range values {
		_, err := tx.Exec(
			`INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (s *Store) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM session_kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

// Keys lists the keys currently stored, oldest first.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM session_kv ORDER BY updated_at ASC, key ASC`)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return keys, nil
}

// Load reads a session from b. A missing or partial record yields nil with no error.
func Load(b Backend) (*Session, error) {
	token, ok, err := b.Get(KeyAccessToken)
	if err != nil || !ok || token == "" {
		return nil, err
	}
	raw, ok, err := b.Get(KeyUser)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	refresh, _, err := b.Get(KeyRefreshToken)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// an undecodable profile is a partial session
		return nil, nil
	}

	s := &Session{AccessToken: token, RefreshToken: refresh, User: user}
	if !s.Valid() {
		return nil, nil
	}
	return s, nil
}

// Save writes all three session keys to b.
func Save(b Backend, s *Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return b.SetAll(map[string]string{
		KeyAccessToken:  s.AccessToken,
		KeyRefreshToken: s.RefreshToken,
		KeyUser:         string(user),
	})
}

// Clear removes all three session keys from b.
func Clear(b Backend) error {
	return b.Delete(Keys...)
}

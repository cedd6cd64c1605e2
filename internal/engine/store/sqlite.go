package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openchance/jobmatch/internal/engine/geo"
)

// SQLite is the local single-user document store, used when no DATABASE_URL
// is configured. Same document shapes as Postgres, one file on disk.
type SQLite struct {
	db *sql.DB
}

// DefaultSQLitePath returns ~/.jobmatch/store.db, creating the directory.
func DefaultSQLitePath() (string, error) {
	dir := filepath.Join(os.Getenv("HOME"), ".jobmatch")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return filepath.Join(dir, "store.db"), nil
}

// OpenSQLite opens (or creates) the SQLite store at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (user_id TEXT PRIMARY KEY, doc TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS job_preferences (user_id TEXT PRIMARY KEY, doc TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS resumes (user_id TEXT PRIMARY KEY, doc TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS plans (thread_id TEXT PRIMARY KEY, doc TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS reviewed_jobs (user_id TEXT NOT NULL, job_id TEXT NOT NULL, created_at TEXT NOT NULL, PRIMARY KEY (user_id, job_id))`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Close() {
	s.db.Close()
}

func (s *SQLite) getDoc(ctx context.Context, table, keyCol, key string, target any) (bool, error) {
	var raw string
	q := fmt.Sprintf(`SELECT doc FROM %s WHERE %s = ?`, table, keyCol)
	err := s.db.QueryRowContext(ctx, q, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select %s: %w", table, err)
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, fmt.Errorf("decode %s doc: %w", table, err)
	}
	return true, nil
}

func (s *SQLite) putDoc(ctx context.Context, table, keyCol, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s doc: %w", table, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	q := fmt.Sprintf(`INSERT INTO %s (%s, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (%s) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`, table, keyCol, keyCol)
	if _, err := s.db.ExecContext(ctx, q, key, string(raw), now); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (s *SQLite) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	ok, err := s.getDoc(ctx, "profiles", "user_id", userID, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *SQLite) SaveHomeLocation(ctx context.Context, userID string, home geo.Coordinates) error {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &UserProfile{UserID: userID}
	}
	p.Home = &home
	p.Isochrones = nil // stale for the old location
	p.UpdatedAt = time.Now().UTC()
	return s.putDoc(ctx, "profiles", "user_id", userID, p)
}

func (s *SQLite) SaveIsochrones(ctx context.Context, userID string, set *geo.IsochroneSet) error {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &UserProfile{UserID: userID}
	}
	p.Isochrones = set
	p.UpdatedAt = time.Now().UTC()
	return s.putDoc(ctx, "profiles", "user_id", userID, p)
}

func (s *SQLite) Preferences(ctx context.Context, userID string) (*JobPreferences, error) {
	var prefs JobPreferences
	ok, err := s.getDoc(ctx, "job_preferences", "user_id", userID, &prefs)
	if err != nil || !ok {
		return nil, err
	}
	return &prefs, nil
}

func (s *SQLite) SavePreferences(ctx context.Context, userID string, prefs *JobPreferences) error {
	return s.putDoc(ctx, "job_preferences", "user_id", userID, prefs)
}

func (s *SQLite) Resume(ctx context.Context, userID string) (*Resume, error) {
	var r Resume
	ok, err := s.getDoc(ctx, "resumes", "user_id", userID, &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *SQLite) SaveResume(ctx context.Context, userID string, resume *Resume) error {
	return s.putDoc(ctx, "resumes", "user_id", userID, resume)
}

func (s *SQLite) Plan(ctx context.Context, threadID string) ([]PlanItem, error) {
	var items []PlanItem
	ok, err := s.getDoc(ctx, "plans", "thread_id", threadID, &items)
	if err != nil || !ok {
		return nil, err
	}
	return items, nil
}

func (s *SQLite) SavePlan(ctx context.Context, threadID string, items []PlanItem) error {
	return s.putDoc(ctx, "plans", "thread_id", threadID, items)
}

func (s *SQLite) ReviewedJobIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id FROM reviewed_jobs WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("select reviewed_jobs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reviewed job id: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (s *SQLite) MarkReviewed(ctx context.Context, userID string, jobIDs []string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range jobIDs {
		if id == "" {
			continue
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO reviewed_jobs (user_id, job_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			userID, id, now)
		if err != nil {
			return fmt.Errorf("insert reviewed job: %w", err)
		}
	}
	return nil
}

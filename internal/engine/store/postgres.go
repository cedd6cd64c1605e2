package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openchance/jobmatch/internal/engine/geo"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Postgres is the production document store backed by pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &Postgres{pool: pool}
	if err := db.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("document store connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

func (db *Postgres) Close() {
	db.pool.Close()
}

func (db *Postgres) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := db.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// getDoc loads one JSON document by key; (nil target untouched, false) when absent.
func (db *Postgres) getDoc(ctx context.Context, table, keyCol, key string, target any) (bool, error) {
	var raw []byte
	q := fmt.Sprintf(`SELECT doc FROM %s WHERE %s = $1`, table, keyCol)
	err := db.pool.QueryRow(ctx, q, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select %s: %w", table, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, fmt.Errorf("decode %s doc: %w", table, err)
	}
	return true, nil
}

// putDoc upserts one JSON document by key.
func (db *Postgres) putDoc(ctx context.Context, table, keyCol, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s doc: %w", table, err)
	}
	q := fmt.Sprintf(`INSERT INTO %s (%s, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (%s) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`, table, keyCol, keyCol)
	if _, err := db.pool.Exec(ctx, q, key, raw); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (db *Postgres) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	ok, err := db.getDoc(ctx, "profiles", "user_id", userID, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (db *Postgres) SaveHomeLocation(ctx context.Context, userID string, home geo.Coordinates) error {
	p, err := db.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &UserProfile{UserID: userID}
	}
	p.Home = &home
	// Isochrones for the previous location are stale; the external
	// computation rewrites them asynchronously.
	p.Isochrones = nil
	p.UpdatedAt = time.Now().UTC()
	return db.putDoc(ctx, "profiles", "user_id", userID, p)
}

func (db *Postgres) SaveIsochrones(ctx context.Context, userID string, set *geo.IsochroneSet) error {
	p, err := db.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &UserProfile{UserID: userID}
	}
	p.Isochrones = set
	p.UpdatedAt = time.Now().UTC()
	return db.putDoc(ctx, "profiles", "user_id", userID, p)
}

func (db *Postgres) Preferences(ctx context.Context, userID string) (*JobPreferences, error) {
	var prefs JobPreferences
	ok, err := db.getDoc(ctx, "job_preferences", "user_id", userID, &prefs)
	if err != nil || !ok {
		return nil, err
	}
	return &prefs, nil
}

func (db *Postgres) SavePreferences(ctx context.Context, userID string, prefs *JobPreferences) error {
	return db.putDoc(ctx, "job_preferences", "user_id", userID, prefs)
}

func (db *Postgres) Resume(ctx context.Context, userID string) (*Resume, error) {
	var r Resume
	ok, err := db.getDoc(ctx, "resumes", "user_id", userID, &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (db *Postgres) SaveResume(ctx context.Context, userID string, resume *Resume) error {
	return db.putDoc(ctx, "resumes", "user_id", userID, resume)
}

func (db *Postgres) Plan(ctx context.Context, threadID string) ([]PlanItem, error) {
	var items []PlanItem
	ok, err := db.getDoc(ctx, "plans", "thread_id", threadID, &items)
	if err != nil || !ok {
		return nil, err
	}
	return items, nil
}

func (db *Postgres) SavePlan(ctx context.Context, threadID string, items []PlanItem) error {
	return db.putDoc(ctx, "plans", "thread_id", threadID, items)
}

func (db *Postgres) ReviewedJobIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := db.pool.Query(ctx, `SELECT job_id FROM reviewed_jobs WHERE user_id = $1`, userID)
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

func (db *Postgres) MarkReviewed(ctx context.Context, userID string, jobIDs []string) error {
	for _, id := range jobIDs {
		if id == "" {
			continue
		}
		_, err := db.pool.Exec(ctx,
			`INSERT INTO reviewed_jobs (user_id, job_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, id)
		if err != nil {
			return fmt.Errorf("insert reviewed job: %w", err)
		}
	}
	return nil
}

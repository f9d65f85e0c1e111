// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/typemaster/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// profileKey is the single row holding the local learner profile.
const profileKey = "local"

// Store wraps SQLite access for profile, run history and AI usage data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers from the UI loop and feedback goroutines.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			key TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			doc TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			lesson_id TEXT NOT NULL,
			lesson_type TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			xp_awarded INTEGER NOT NULL,
			success INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			chars_typed INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_key_stats (
			run_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			mistakes INTEGER NOT NULL,
			PRIMARY KEY (run_id, char)
		);`,
		`CREATE TABLE IF NOT EXISTS ai_usage (
			requested_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_key_stats_char ON run_key_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadProfile returns the stored profile document, or nil when none exists.
func (s *Store) LoadProfile(ctx context.Context) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM profiles WHERE key = ?`, profileKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// SaveProfile replaces the stored profile document.
func (s *Store) SaveProfile(ctx context.Context, version int, doc []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (key, version, doc, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET version = excluded.version, doc = excluded.doc, updated_at = excluded.updated_at`,
		profileKey, version, string(doc), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// ResetProfile removes the profile and the run history.
func (s *Store) ResetProfile(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	for _, stmt := range []string{
		`DELETE FROM profiles`,
		`DELETE FROM run_key_stats`,
		`DELETE FROM runs`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InsertRun stores a finished run and its per-key mistakes.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, keys []model.KeyStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (lesson_id, lesson_type, started_at, ended_at, wpm, accuracy, xp_awarded, success, timed_out, chars_typed, errors, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.LessonID,
		string(run.LessonType),
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.WPM,
		run.Accuracy,
		run.XPAwarded,
		boolToInt(run.Success),
		boolToInt(run.TimedOut),
		run.CharsTyped,
		run.Errors,
		run.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(keys) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_key_stats (run_id, char, mistakes) VALUES (?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ks := range keys {
			if _, err = stmt.ExecContext(ctx, id, ks.Char, ks.Mistakes); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns runs filtered by stats config in chronological order.
// Last keeps only the most recent N runs.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.LessonID != "" {
		clauses = append(clauses, "lesson_id = ?")
		args = append(args, cfg.LessonID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	limit := ""
	if cfg.Last > 0 {
		limit = "LIMIT ?"
		args = append(args, cfg.Last)
	}
	query := fmt.Sprintf(`SELECT id, lesson_id, lesson_type, started_at, ended_at, wpm, accuracy, xp_awarded,
			success, timed_out, chars_typed, errors, duration_ms
		FROM runs
		WHERE %s
		ORDER BY ended_at DESC, id DESC
		%s`, strings.Join(clauses, " AND "), limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var lessonType, startedAt, endedAt string
		var success, timedOut int
		if err := rows.Scan(&run.ID, &run.LessonID, &lessonType, &startedAt, &endedAt, &run.WPM, &run.Accuracy,
			&run.XPAwarded, &success, &timedOut, &run.CharsTyped, &run.Errors, &run.DurationMs); err != nil {
			return nil, err
		}
		run.LessonType = model.LessonType(lessonType)
		run.Success = success != 0
		run.TimedOut = timedOut != 0
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Newest-first was only needed for LIMIT.
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

// KeyAggregates sums per-key mistakes across the given runs, sorted by
// mistakes descending then key ascending.
func (s *Store) KeyAggregates(ctx context.Context, runIDs []int64) ([]model.KeyAggregate, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(mistakes) AS mistakes, COUNT(DISTINCT run_id) AS runs
		FROM run_key_stats
		WHERE run_id IN (%s)
		GROUP BY char`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KeyAggregate
	for rows.Next() {
		var agg model.KeyAggregate
		if err := rows.Scan(&agg.Char, &agg.Mistakes, &agg.Runs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Mistakes != result[j].Mistakes {
			return result[i].Mistakes > result[j].Mistakes
		}
		return result[i].Char < result[j].Char
	})
	return result, nil
}

// LoadUsage returns the recorded AI request timestamps in ascending order.
func (s *Store) LoadUsage(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT requested_at FROM ai_usage ORDER BY requested_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var stamps []time.Time
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, err
		}
		stamps = append(stamps, time.UnixMilli(ms))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stamps, nil
}

// SaveUsage replaces the recorded AI request timestamps.
func (s *Store) SaveUsage(ctx context.Context, stamps []time.Time) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM ai_usage`); err != nil {
		return err
	}
	for _, ts := range stamps {
		if _, err = tx.ExecContext(ctx, `INSERT INTO ai_usage (requested_at) VALUES (?)`, ts.UnixMilli()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"degrants/internal/model"
)

// DB persists scoring runs for later inspection. The scoring engine never
// reads from here; persistence stays downstream of scoring.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  total_accounts INTEGER NOT NULL,
	  scored_accounts INTEGER NOT NULL,
	  mean_score REAL,
	  min_score REAL,
	  max_score REAL,
	  flagged_percent REAL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);
	CREATE TABLE IF NOT EXISTS results (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  run_id INTEGER NOT NULL,
	  account_id TEXT NOT NULL,
	  social_score REAL,
	  flagged INTEGER NOT NULL,
	  payload TEXT,
	  FOREIGN KEY(run_id) REFERENCES runs(id)
	);
	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_account ON results(account_id);
	`)
	return err
}

// PutRun stores a summary with its per-account results and returns the run id.
func (d *DB) PutRun(ctx context.Context, summary model.BatchSummary, results []model.ScoreResult) (int64, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(ts, total_accounts, scored_accounts, mean_score, min_score, max_score, flagged_percent) VALUES(?,?,?,?,?,?,?)`,
		summary.Timestamp.Unix(), summary.TotalAccounts, summary.ScoredAccounts,
		summary.MeanScore, summary.MinScore, summary.MaxScore, summary.FlaggedPercent)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, r := range results {
		pb, _ := json.Marshal(r)
		flagged := 0
		if r.Flagged {
			flagged = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results(run_id, account_id, social_score, flagged, payload) VALUES(?,?,?,?,?)`,
			runID, r.AccountID, r.SocialScore, flagged, string(pb)); err != nil {
			return 0, err
		}
	}
	return runID, tx.Commit()
}

// RunRecord is a stored scoring run summary.
type RunRecord struct {
	ID             int64
	TS             time.Time
	TotalAccounts  int
	ScoredAccounts int
	MeanScore      float64
	MinScore       float64
	MaxScore       float64
	FlaggedPercent float64
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, ts, total_accounts, scored_accounts, COALESCE(mean_score,0), COALESCE(min_score,0), COALESCE(max_score,0), COALESCE(flagged_percent,0)
		 FROM runs ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.TotalAccounts, &r.ScoredAccounts, &r.MeanScore, &r.MinScore, &r.MaxScore, &r.FlaggedPercent); err != nil {
			return nil, err
		}
		r.TS = time.Unix(ts, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadResults returns the stored per-account results of one run.
func (d *DB) LoadResults(ctx context.Context, runID int64) ([]model.ScoreResult, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT payload FROM results WHERE run_id=? ORDER BY social_score DESC, account_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScoreResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r model.ScoreResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HistoryForAccount returns an account's scores across runs, newest first.
func (d *DB) HistoryForAccount(ctx context.Context, accountID string, limit int) ([]model.ScoreResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT payload FROM results WHERE account_id=? ORDER BY run_id DESC LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScoreResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r model.ScoreResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

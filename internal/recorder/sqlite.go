package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"SignalDesk/internal/model"
)

// SQLiteRecorder persists signal history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id          TEXT PRIMARY KEY,
			asset       TEXT NOT NULL,
			direction   TEXT NOT NULL,
			strength    REAL,
			confidence  REAL,
			risk_level  TEXT,
			timeframe   TEXT,
			entry_price REAL NOT NULL,
			created_at  INTEGER NOT NULL,
			expires_at  INTEGER NOT NULL,
			exit_price  REAL,
			outcome     TEXT,
			resolved_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_asset ON signals(asset)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_pending ON signals(outcome, expires_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(rec *SignalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO signals
		(id, asset, direction, strength, confidence, risk_level, timeframe, entry_price, created_at, expires_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Asset, string(rec.Signal), rec.Strength, rec.Confidence,
		string(rec.RiskLevel), rec.Timeframe, rec.EntryPrice,
		rec.CreatedAt.UnixMilli(), rec.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert signal %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRecorder) PendingSignals(before time.Time) ([]SignalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, asset, direction, strength, confidence, risk_level, timeframe,
			entry_price, created_at, expires_at
		FROM signals
		WHERE outcome IS NULL AND expires_at <= ?
		ORDER BY expires_at`, before.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		var dir, risk string
		var created, expires int64
		if err := rows.Scan(&rec.ID, &rec.Asset, &dir, &rec.Strength, &rec.Confidence, &risk,
			&rec.Timeframe, &rec.EntryPrice, &created, &expires); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		rec.Signal = model.Direction(dir)
		rec.RiskLevel = model.RiskLevel(risk)
		rec.CreatedAt = time.UnixMilli(created)
		rec.ExpiresAt = time.UnixMilli(expires)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) RecordOutcome(out *Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`UPDATE signals SET exit_price = ?, outcome = ?, resolved_at = ?
		WHERE id = ? AND outcome IS NULL`,
		out.ExitPrice, string(out.Result), out.ResolvedAt.UnixMilli(), out.SignalID,
	)
	if err != nil {
		return fmt.Errorf("update outcome %s: %w", out.SignalID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("signal %s not found or already resolved", out.SignalID)
	}
	return nil
}

func (r *SQLiteRecorder) Performance(asset string) (*model.Performance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT COALESCE(outcome, ?), COUNT(*) FROM signals`
	args := []any{string(model.OutcomePending)}
	if asset != "" {
		query += ` WHERE asset = ?`
		args = append(args, asset)
	}
	query += ` GROUP BY 1`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query performance: %w", err)
	}
	defer rows.Close()

	p := &model.Performance{Asset: asset}
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		switch model.Outcome(outcome) {
		case model.OutcomeWin:
			p.Wins = n
		case model.OutcomeLoss:
			p.Losses = n
		case model.OutcomeDraw:
			p.Draws = n
		case model.OutcomePending:
			p.Pending = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return Summarize(p), nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

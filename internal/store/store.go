// Package store persists a history of lift runs (single-frame and sequence)
// to a local sqlite file, so the CLI's history subcommand can list past
// invocations without re-running them.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fieldvector/cuboidlift/internal/obslog"
	"github.com/fieldvector/cuboidlift/internal/timeutil"
)

// Clock lets tests stamp inserted runs with a deterministic time.
var Clock timeutil.Clock = timeutil.RealClock{}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a sqlite connection with the run-history schema applied.
type DB struct {
	*sql.DB
}

// Open creates (if needed) and migrates a sqlite database at path.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrateUp() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: iofs source: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("store: migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) { obslog.Logf("[migrate] "+format, v...) }
func (l *migrateLogger) Verbose() bool                          { return false }

// RunRecord is one recorded lift invocation.
type RunRecord struct {
	RunID          string
	Mode           string
	FrameCount     int
	FitErrorMeanL1 *float64
	FitErrorMaxL1  *float64
	InputSummary   string
	CreatedAt      time.Time
}

// InsertRun records a completed run, assigning a fresh run id if RunID is
// empty.
func (db *DB) InsertRun(r RunRecord) (string, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = Clock.Now()
	}
	_, err := db.Exec(
		`INSERT INTO lift_runs (run_id, mode, frame_count, fit_error_mean_l1, fit_error_max_l1, input_summary, created_at_unix_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Mode, r.FrameCount, r.FitErrorMeanL1, r.FitErrorMaxL1, r.InputSummary, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}
	return r.RunID, nil
}

// ListRecentRuns returns up to limit runs, most recent first.
func (db *DB) ListRecentRuns(limit int) ([]RunRecord, error) {
	rows, err := db.Query(
		`SELECT run_id, mode, frame_count, fit_error_mean_l1, fit_error_max_l1, input_summary, created_at_unix_nanos
		 FROM lift_runs ORDER BY created_at_unix_nanos DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var createdAtNanos int64
		if err := rows.Scan(&r.RunID, &r.Mode, &r.FrameCount, &r.FitErrorMeanL1, &r.FitErrorMaxL1, &r.InputSummary, &createdAtNanos); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, createdAtNanos)
		out = append(out, r)
	}
	return out, rows.Err()
}

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/good-yellow-bee/admon/internal/models"
)

// SQLStore is a SQLite-backed fingerprint store. The UNIQUE constraint on
// the composite key makes Set an atomic insert-if-absent, closing the
// duplicate-alert race between concurrent orchestrator runs that the file
// store cannot prevent.
type SQLStore struct {
	path string
	db   *sql.DB
}

// OpenSQLStore opens (and migrates) a SQLite fingerprint store.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s := &SQLStore{path: path, db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS fingerprints (
			tenant_id TEXT NOT NULL,
			source_id TEXT NOT NULL,
			date TEXT NOT NULL,
			severity TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			task_id TEXT,
			task_url TEXT,
			UNIQUE (tenant_id, source_id, date, severity)
		);
		CREATE INDEX IF NOT EXISTS idx_fingerprints_date ON fingerprints(date);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger: %w", err)
	}
	return nil
}

// keyParts splits a composite key back into its columns.
func keyParts(key string) (tenantID, sourceID, date string, severity models.Severity, err error) {
	parts := strings.Split(key, ":")
	if len(parts) != 4 {
		return "", "", "", "", fmt.Errorf("malformed fingerprint key %q", key)
	}
	return parts[0], parts[1], parts[2], models.Severity(parts[3]), nil
}

// Exists implements Store.
func (s *SQLStore) Exists(ctx context.Context, key string) (bool, error) {
	tenantID, sourceID, date, severity, err := keyParts(key)
	if err != nil {
		return false, err
	}
	var one int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM fingerprints WHERE tenant_id = ? AND source_id = ? AND date = ? AND severity = ?",
		tenantID, sourceID, date, severity).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query fingerprint: %w", err)
	}
	return true, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) (*models.Fingerprint, error) {
	tenantID, sourceID, date, severity, err := keyParts(key)
	if err != nil {
		return nil, err
	}
	fp := &models.Fingerprint{}
	var taskID, taskURL sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT tenant_id, source_id, date, severity, created_at, task_id, task_url
		 FROM fingerprints WHERE tenant_id = ? AND source_id = ? AND date = ? AND severity = ?`,
		tenantID, sourceID, date, severity).
		Scan(&fp.TenantID, &fp.SourceID, &fp.Date, &fp.Severity, &fp.CreatedAt, &taskID, &taskURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fingerprint: %w", err)
	}
	fp.TaskID = taskID.String
	fp.TaskURL = taskURL.String
	return fp, nil
}

// Set implements Store. The unique constraint makes the insert atomic:
// the losing writer of a concurrent race observes ErrDuplicate.
func (s *SQLStore) Set(ctx context.Context, fp *models.Fingerprint) error {
	createdAt := fp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fingerprints (tenant_id, source_id, date, severity, created_at, task_id, task_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fp.TenantID, fp.SourceID, fp.Date, fp.Severity, createdAt,
		nullString(fp.TaskID), nullString(fp.TaskURL))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert fingerprint: %w", err)
	}
	return nil
}

// Cleanup implements Store.
func (s *SQLStore) Cleanup(ctx context.Context, daysToKeep int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -daysToKeep).Format(models.DateFormat)
	result, err := s.db.ExecContext(ctx, "DELETE FROM fingerprints WHERE date < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup fingerprints: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup rows affected: %w", err)
	}
	return int(n), nil
}

// Size implements Store.
func (s *SQLStore) Size(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fingerprints").Scan(&n); err != nil {
		return 0, fmt.Errorf("count fingerprints: %w", err)
	}
	return n, nil
}

// Save is a no-op: every write is already durable.
func (s *SQLStore) Save(_ context.Context) error {
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks connectivity for readiness probes.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/good-yellow-bee/admon/internal/models"
)

// Config holds ClickHouse connection settings for the metric history.
type Config struct {
	// Addresses are the ClickHouse server addresses (host:port).
	Addresses []string

	// Database is the ClickHouse database name.
	Database string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int

	// DialTimeout is the connection timeout.
	DialTimeout time.Duration
}

// Store reads daily metric values from ClickHouse and implements Provider.
type Store struct {
	config *Config
	db     *sql.DB
}

// NewStore creates a new metric history store.
func NewStore(config *Config) *Store {
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 5
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	return &Store{config: config}
}

// Open initializes the ClickHouse connection.
func (s *Store) Open() error {
	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: s.config.Addresses,
		Auth: clickhouse.Auth{
			Database: s.config.Database,
			Username: s.config.Username,
			Password: s.config.Password,
		},
		DialTimeout:  s.config.DialTimeout,
		MaxOpenConns: s.config.MaxOpenConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), s.config.DialTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("history store not opened")
	}
	return s.db.PingContext(ctx)
}

// Migrate creates the daily_metrics table if it doesn't exist.
func (s *Store) Migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	createTable := `
		CREATE TABLE IF NOT EXISTS daily_metrics (
			tenant_id LowCardinality(String),
			metric LowCardinality(String),
			date Date,
			value Float64
		)
		ENGINE = ReplacingMergeTree()
		PARTITION BY toYYYYMM(date)
		ORDER BY (tenant_id, metric, date)
	`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create daily_metrics table: %w", err)
	}
	return nil
}

// Dataset implements Provider.
func (s *Store) Dataset(ctx context.Context, tenantID, metric, day string, windowDays int) (models.MetricDataset, error) {
	evalDay, err := time.Parse(models.DateFormat, day)
	if err != nil {
		return models.MetricDataset{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	from := evalDay.AddDate(0, 0, -windowDays).Format(models.DateFormat)

	query := `
		SELECT toString(date), value
		FROM daily_metrics
		WHERE tenant_id = ? AND metric = ? AND date >= ? AND date <= ?
		ORDER BY date
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, metric, from, day)
	if err != nil {
		return models.MetricDataset{}, fmt.Errorf("query daily metrics: %w", err)
	}
	defer rows.Close()

	var points []models.MetricPoint
	for rows.Next() {
		var p models.MetricPoint
		if err := rows.Scan(&p.Date, &p.Value); err != nil {
			return models.MetricDataset{}, fmt.Errorf("scan metric point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return models.MetricDataset{}, fmt.Errorf("iterate metric points: %w", err)
	}

	return buildDataset(tenantID, metric, day, points), nil
}

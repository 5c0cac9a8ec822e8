// Package ledger provides the fingerprint store: the durable idempotency
// ledger that prevents duplicate alerts across repeated monitoring runs.
// Two backends exist: a JSON file (single-writer deployments) and SQLite
// with a unique composite key giving atomic insert-if-absent semantics
// under concurrent runs.
package ledger

import (
	"context"
	"errors"

	"github.com/good-yellow-bee/admon/internal/models"
)

// ErrDuplicate is returned by Set when the fingerprint key already exists.
var ErrDuplicate = errors.New("fingerprint already recorded")

// Store is the fingerprint ledger interface.
type Store interface {
	// Exists reports whether a fingerprint key is recorded.
	Exists(ctx context.Context, key string) (bool, error)
	// Get returns the fingerprint for a key, nil when absent.
	Get(ctx context.Context, key string) (*models.Fingerprint, error)
	// Set records a fingerprint. Returns ErrDuplicate when the key exists.
	Set(ctx context.Context, fp *models.Fingerprint) error
	// Cleanup removes fingerprints whose date is older than daysToKeep
	// days before today and returns the count removed.
	Cleanup(ctx context.Context, daysToKeep int) (int, error)
	// Size returns the number of stored fingerprints.
	Size(ctx context.Context) (int, error)
	// Save persists pending changes. A save failure is fatal to a run:
	// losing the idempotency record risks unbounded duplicate alerting.
	Save(ctx context.Context) error
	// Close releases resources.
	Close() error
}

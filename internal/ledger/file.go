package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/good-yellow-bee/admon/internal/models"
)

// fileFormatVersion is bumped on incompatible document changes.
const fileFormatVersion = 1

// fileData is the persisted JSON document.
type fileData struct {
	Version      int                            `json:"version"`
	Fingerprints map[string]*models.Fingerprint `json:"fingerprints"`
	LastUpdated  time.Time                      `json:"last_updated"`
}

// FileStore is a JSON-file-backed fingerprint store. It assumes a single
// concurrent writer process; the mutex only guards in-process access.
type FileStore struct {
	path string

	mu    sync.RWMutex
	data  fileData
	dirty bool
}

// OpenFileStore loads a file store from path. A missing or corrupt file
// degrades to an empty store with a logged warning instead of aborting
// the run, at the cost of one run's worth of possible duplicate alerts.
func OpenFileStore(path string) *FileStore {
	s := &FileStore{
		path: path,
		data: fileData{
			Version:      fileFormatVersion,
			Fingerprints: make(map[string]*models.Fingerprint),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("ledger: cannot read %s, starting empty: %v", path, err)
		}
		return s
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("ledger: corrupt store at %s, starting empty (duplicate alerts possible this run): %v", path, err)
		return s
	}
	if data.Fingerprints == nil {
		data.Fingerprints = make(map[string]*models.Fingerprint)
	}
	data.Version = fileFormatVersion
	s.data = data
	return s
}

// Exists implements Store.
func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data.Fingerprints[key]
	return ok, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string) (*models.Fingerprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.data.Fingerprints[key]
	if !ok {
		return nil, nil
	}
	cp := *fp
	return &cp, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, fp *models.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fp.Key()
	if _, ok := s.data.Fingerprints[key]; ok {
		return ErrDuplicate
	}
	cp := *fp
	s.data.Fingerprints[key] = &cp
	s.dirty = true
	return nil
}

// Cleanup implements Store.
func (s *FileStore) Cleanup(_ context.Context, daysToKeep int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -daysToKeep).Format(models.DateFormat)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, fp := range s.data.Fingerprints {
		if fp.Date < cutoff {
			delete(s.data.Fingerprints, key)
			removed++
		}
	}
	if removed > 0 {
		s.dirty = true
	}
	return removed, nil
}

// Size implements Store.
func (s *FileStore) Size(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Fingerprints), nil
}

// Save writes the document only when state changed since the last save.
func (s *FileStore) Save(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	s.data.LastUpdated = time.Now().UTC()
	raw, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot corrupt the ledger.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}

	s.dirty = false
	return nil
}

// Close implements Store. Pending changes are flushed.
func (s *FileStore) Close() error {
	return s.Save(context.Background())
}

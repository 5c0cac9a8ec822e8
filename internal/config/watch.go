package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/good-yellow-bee/admon/internal/models"
)

// debounceDelay coalesces editor write bursts into one reload.
const debounceDelay = 250 * time.Millisecond

// WatchTenants watches the tenants file and invokes onChange with the new
// tenant list after each successful reload. Invalid files are logged and
// skipped; the previous tenant list stays active. Blocks until ctx is done.
func WatchTenants(ctx context.Context, path string, onChange func([]models.Tenant)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which would
	// drop a watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			tenants, err := LoadTenantsFromFile(path)
			if err != nil {
				log.Printf("config: tenants reload failed, keeping previous: %v", err)
				continue
			}
			log.Printf("config: reloaded %d tenants from %s", len(tenants), path)
			onChange(tenants)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config: watcher error: %v", err)
		}
	}
}

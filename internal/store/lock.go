package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetry = 25 * time.Millisecond

// withTableLock runs fn while holding the writer lock file of a table, so
// that two processes never close the same open version.
func (s *Store) withTableLock(ctx context.Context, tableID string, fn func() error) error {
	dir := filepath.Join(s.dir, "locks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, tableID+".lock"))

	lctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	ok, err := lock.TryLockContext(lctx, lockRetry)
	if err != nil {
		return fmt.Errorf("acquire lock for table %s: %w", tableID, err)
	}
	if !ok {
		return fmt.Errorf("acquire lock for table %s: %w", tableID, ErrLocked)
	}
	defer lock.Unlock()
	return fn()
}

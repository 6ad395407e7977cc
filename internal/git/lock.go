package git

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// processLocks serializes goroutines of this process per lock path; the file
// lock alone does not, since flock locks are per open file description.
var processLocks sync.Map // lock path -> chan struct{}

// acquire takes an exclusive lock on lockPath, first in-process and then on
// disk, waiting at most timeout for the file lock.
func acquire(ctx context.Context, lockPath string, timeout time.Duration) (func(), error) {
	v, _ := processLocks.LoadOrStore(lockPath, make(chan struct{}, 1))
	sem := v.(chan struct{})

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquiring lock on %s: %w", lockPath, ctx.Err())
	}

	fileLock := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		<-sem
		return nil, fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	if !locked {
		<-sem
		return nil, fmt.Errorf("timed out acquiring lock on %s", lockPath)
	}

	return func() {
		fileLock.Unlock()
		<-sem
	}, nil
}

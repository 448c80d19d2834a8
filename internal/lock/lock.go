// Package lock provides the exclusive advisory lock held by every repository
// command while it reads and writes the control directory.
package lock

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// FileName is the lock file inside the control directory.
const FileName = "lock"

const retryDelay = 10 * time.Millisecond

var ErrLocked = errors.New("repository is locked by another process")

// Lock is a held repository lock.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path, retrying until wait has elapsed. A zero
// wait tries once.
func Acquire(path string, wait time.Duration) (*Lock, error) {
	deadline := time.Now().Add(wait)
	for {
		l, err := tryLock(path)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, ErrLocked) {
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		time.Sleep(retryDelay)
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

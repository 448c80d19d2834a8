//go:build !unix

package lock

import "os"

// tryLock creates path exclusively. A stale file left by a crashed process
// must be removed by hand.
func tryLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, err
	}
	return &Lock{path: path, file: f}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if rerr := os.Remove(l.path); err == nil {
		err = rerr
	}
	return err
}

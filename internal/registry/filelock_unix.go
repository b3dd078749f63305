//go:build unix

package registry

import (
	"fmt"
	"os"
	"syscall"
)

// fileLock holds an open file with an exclusive flock.
type fileLock struct {
	f *os.File
}

// acquireFileLock opens (or creates) the lock file at path and blocks until
// it holds an exclusive flock on it.
func acquireFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring storage lock: %w", err)
	}
	return &fileLock{f: f}, nil
}

// Unlock releases the flock and closes the file.
func (l *fileLock) Unlock() error {
	if l.f == nil {
		return nil
	}
	// Closing the file releases the lock even if LOCK_UN fails.
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	return l.f.Close()
}

package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// locksDirName keeps lock files out of the workbook's directory listing.
const locksDirName = ".locks"

// LockTimeout bounds how long a call waits for another process.
const LockTimeout = 2 * time.Second

var errLockTimeout = errors.New("lock timeout")

type fileLock struct {
	file *os.File
}

func (l *fileLock) release() {
	if l.file != nil {
		_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		_ = l.file.Close()
		l.file = nil
	}
}

// withLock runs fn while holding a flock on the lock file of path. how is
// unix.LOCK_SH for readers or unix.LOCK_EX for writers.
func withLock(path string, how int, timeout time.Duration, fn func() error) error {
	lock, err := acquire(path, how, timeout)
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	defer lock.release()

	return fn()
}

// acquire polls a non-blocking flock until it succeeds or timeout passes.
// The lock file is never removed, so the inode it guards is stable.
func acquire(path string, how int, timeout time.Duration) (*fileLock, error) {
	locksDir := filepath.Join(filepath.Dir(path), locksDirName)
	lockPath := filepath.Join(locksDir, filepath.Base(path)+".lock")

	err := os.MkdirAll(locksDir, dirPerms)
	if err != nil {
		return nil, fmt.Errorf("creating locks dir: %w", err)
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		err = unix.Flock(int(file.Fd()), how|unix.LOCK_NB)
		if err == nil {
			return &fileLock{file: file}, nil
		}

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = file.Close()

			return nil, fmt.Errorf("flock: %w", err)
		}

		if time.Now().After(deadline) {
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		time.Sleep(backoff)

		backoff = min(backoff*2, 50*time.Millisecond)
	}
}

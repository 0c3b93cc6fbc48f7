package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"aoc/internal/puzzle"
)

// locksDirName is the subdirectory for lock files. Keeping them out of the
// ledger directory proper means they never show up as ledger entries.
const locksDirName = ".locks"

// DefaultLockTimeout bounds how long a caller waits for another in-flight
// submission on the same identity.
const DefaultLockTimeout = 30 * time.Second

// Lock errors.
var (
	ErrLockTimeout  = errors.New("lock timeout")
	ErrLockFileOpen = errors.New("failed to open lock file")
)

// WithIdentityLock runs handler while holding an exclusive lock for the
// identity. At most one submission per identity is in flight at a time;
// callers for different identities proceed in parallel.
func (s *Store) WithIdentityLock(id puzzle.Identity, handler func() error) error {
	lock, err := s.acquireLock(id, DefaultLockTimeout)
	if err != nil {
		return fmt.Errorf("acquiring identity lock: %w", err)
	}

	defer lock.release()

	return handler()
}

// identityLock represents a held lock.
type identityLock struct {
	path string
	file *os.File
}

// release releases the lock and removes the lock file.
// Order matters: remove while holding lock, then unlock, then close.
func (l *identityLock) release() {
	if l.file != nil {
		_ = os.Remove(l.path)
		_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		_ = l.file.Close()
		l.file = nil
	}
}

// acquireLock takes an exclusive flock on a per-identity lock file.
// Handles the race between flock acquisition and lock file deletion by
// verifying the inode after acquiring the lock.
func (s *Store) acquireLock(id puzzle.Identity, timeout time.Duration) (*identityLock, error) {
	locksDir := filepath.Join(s.dir, locksDirName)
	lockPath := filepath.Join(locksDir, id.String()+".lock")

	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, id)
		}

		mkdirErr := os.MkdirAll(locksDir, dirPerms)
		if mkdirErr != nil {
			return nil, fmt.Errorf("creating locks dir: %w", mkdirErr)
		}

		file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms)
		if openErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrLockFileOpen, openErr)
		}

		var openStat syscall.Stat_t

		err := syscall.Fstat(int(file.Fd()), &openStat)
		if err != nil {
			_ = file.Close()

			return nil, fmt.Errorf("fstat lock file: %w", err)
		}

		fd := int(file.Fd())
		done := make(chan error, 1)

		go func() {
			done <- syscall.Flock(fd, syscall.LOCK_EX)
		}()

		select {
		case err := <-done:
			if err != nil {
				_ = file.Close()

				return nil, fmt.Errorf("flock: %w", err)
			}

			// Verify the file at the path still has the same inode.
			// If not, someone deleted and recreated it while we were waiting.
			var pathStat syscall.Stat_t

			statErr := syscall.Stat(lockPath, &pathStat)
			if statErr != nil || pathStat.Ino != openStat.Ino {
				_ = syscall.Flock(fd, syscall.LOCK_UN)
				_ = file.Close()

				continue
			}

			return &identityLock{path: lockPath, file: file}, nil
		case <-time.After(remaining):
			// The flock goroutine is still blocked on fd. Keep the file
			// open until it returns; closing now would free the fd number
			// for reuse and the stray flock could lock an unrelated file.
			go func() {
				if flockErr := <-done; flockErr == nil {
					_ = syscall.Flock(fd, syscall.LOCK_UN)
				}

				_ = file.Close()
			}()

			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, id)
		}
	}
}

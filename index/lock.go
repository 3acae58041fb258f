package index

import (
	"fmt"
	"os"
	"syscall"
)

// LockPath derives the sidecar lock file for an index path.
func LockPath(indexPath string) string {
	return indexPath + ".lock"
}

// acquireLock takes an exclusive advisory lock on the sidecar file,
// blocking until the lock is available. The lock is scoped to the index
// location and works across independent OS processes.
func acquireLock(indexPath string) (*os.File, error) {
	f, err := os.OpenFile(LockPath(indexPath), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flock: %w", err)
	}
	return f, nil
}

// releaseLock releases the advisory lock and closes the sidecar handle.
func releaseLock(f *os.File) {
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}

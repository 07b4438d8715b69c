package fileio

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
)

// Lock is an exclusive advisory lock on a target file, held via a sibling
// lock file. It prevents two patchline runs from rewriting the same file
// concurrently.
type Lock struct {
	file        *os.File
	lockPath    string
	sigChan     chan os.Signal
	mu          sync.Mutex
	cleanupOnce sync.Once
}

// lockPathFor returns the lock file path for a target file.
func lockPathFor(target string) string {
	dir, name := filepath.Split(target)
	return filepath.Join(dir, "."+name+".patchline.lock")
}

// AcquireLock takes a non-blocking exclusive lock for the target file. It
// fails immediately when another process holds the lock. The lock file is
// cleaned up on Release and on SIGINT/SIGTERM.
func AcquireLock(target string) (*Lock, error) {
	lockPath := lockPathFor(target)

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("%q is being modified by another patchline instance", target)
	}

	// Record the holder's PID for debugging stale locks.
	lockFile.Truncate(0)
	lockFile.Seek(0, 0)
	fmt.Fprintf(lockFile, "%d\n", os.Getpid())

	l := &Lock{
		file:     lockFile,
		lockPath: lockPath,
		sigChan:  make(chan os.Signal, 1),
	}

	signal.Notify(l.sigChan, syscall.SIGINT, syscall.SIGTERM)
	sigChan := l.sigChan // capture before Release can nil it
	go func() {
		sig, ok := <-sigChan
		if ok && sig != nil {
			l.cleanup()
			os.Exit(130)
		}
	}()

	return l, nil
}

// Release drops the lock and removes the lock file. Safe to call more than
// once.
func (l *Lock) Release() {
	l.mu.Lock()
	if l.file == nil {
		l.mu.Unlock()
		return
	}
	if l.sigChan != nil {
		signal.Stop(l.sigChan)
		close(l.sigChan)
		l.sigChan = nil
	}
	l.mu.Unlock()
	l.cleanup()
}

func (l *Lock) cleanup() {
	l.cleanupOnce.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.file == nil {
			return
		}
		syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		l.file.Close()
		os.Remove(l.lockPath)
		l.file = nil
	})
}

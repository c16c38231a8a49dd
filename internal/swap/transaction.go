package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

// BackupSuffix is appended to a target path to form its backup sibling. The
// naming is deterministic so a recovery pass can find stale artifacts after
// a crash.
const BackupSuffix = ".mockdock.bak"

// DefaultLockWait bounds how long a transaction waits for another
// transaction on the same target before giving up with a setup error.
const DefaultLockWait = 30 * time.Second

// BackupPath returns the deterministic sibling backup location for target.
func BackupPath(target string) string { return target + BackupSuffix }

// SessionState tracks a transaction through its lifecycle.
type SessionState int

const (
	// StateClean: nothing on disk has been touched.
	StateClean SessionState = iota
	// StateBackedUp: the backup sibling exists, the target is untouched.
	StateBackedUp
	// StateSwapped: the target holds the replacement content.
	StateSwapped
	// StateRestored: the target holds its original content again.
	StateRestored
	// StateFailed: restoration failed; the backup remains on disk.
	StateFailed
)

// ErrLockTimeout marks a transaction that could not acquire its target's
// lock within the configured wait.
var ErrLockTimeout = errors.New("timed out waiting for target lock")

// ErrStaleBackup marks a transaction refused because the target already has
// a backup artifact on disk. The artifact preserves an original this process
// did not write; overwriting it would lose that content for good.
var ErrStaleBackup = errors.New("stale swap backup present")

// SetupError marks a transaction that failed before any mutation of the
// target. Other tests proceed.
type SetupError struct {
	Target string
	Err    error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("swap setup for %s: %v", e.Target, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// RestoreError is fatal: the target's true original content could not be
// reliably reinstated. The backup file remains on disk and its location must
// be surfaced to the operator.
type RestoreError struct {
	Target string
	Backup string
	Err    error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("FATAL: could not restore %s (original preserved at %s): %v", e.Target, e.Backup, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }

// Action runs while the target file holds the replacement content. Its
// result is captured but never short-circuits restoration.
type Action func(ctx context.Context) (m.ExecResult, error)

// Swapper runs swap transactions over a shared per-path lock table.
type Swapper struct {
	locks    *PathLocks
	lockWait time.Duration
}

// NewSwapper builds a Swapper with the default lock wait.
func NewSwapper() *Swapper {
	return &Swapper{locks: NewPathLocks(), lockWait: DefaultLockWait}
}

// NewSwapperWithLockWait builds a Swapper with an explicit lock wait bound.
func NewSwapperWithLockWait(wait time.Duration) *Swapper {
	return &Swapper{locks: NewPathLocks(), lockWait: wait}
}

// session is the ephemeral state of one transaction. It exists only for the
// duration of one test execution; the backup file is its only durable trace.
type session struct {
	mu         sync.Mutex
	target     string
	backup     string
	original   []byte
	mode       os.FileMode
	state      SessionState
	restoreErr *RestoreError
}

// restoreFailure returns the fatal restoration error, if any.
func (s *session) restoreFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restoreErr == nil {
		return nil
	}

	return s.restoreErr
}

// restore reinstates the original content and removes the backup artifact.
// Safe to call more than once; only the first call acts. Returns a
// *RestoreError when the original cannot be reinstated.
func (s *session) restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSwapped:
		if err := writeFileAtomic(s.target, s.original, s.mode); err != nil {
			s.state = StateFailed
			s.restoreErr = &RestoreError{Target: s.target, Backup: s.backup, Err: err}

			return s.restoreErr
		}
	case StateBackedUp:
		// Target never mutated; only the artifact needs cleanup.
	default:
		return nil
	}

	if err := os.Remove(s.backup); err != nil {
		slog.Warn("could not remove swap backup", "backup", s.backup, "error", err)
	}

	s.state = StateRestored

	return nil
}

// RunWithSwap performs an exclusive, restorable substitution of the file at
// target: lock, backup, atomically overwrite with replacement, run action,
// and restore the exact pre-transaction bytes before returning, whether the
// action completed, failed, panicked, or the process was signaled.
func (s *Swapper) RunWithSwap(ctx context.Context, target string, replacement []byte, action Action) (m.ExecResult, error) {
	canon, err := Canonicalize(target)
	if err != nil {
		return m.ExecResult{}, &SetupError{Target: target, Err: err}
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	release, err := s.locks.Acquire(lockCtx, canon)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrLockTimeout
		}

		return m.ExecResult{}, &SetupError{Target: canon, Err: err}
	}
	defer release()

	sess := &session{target: canon, backup: BackupPath(canon), state: StateClean}

	// A backup already on disk belongs to an interrupted or failed earlier
	// transaction, possibly in another process. It must never be overwritten;
	// the target stays untouched until an explicit recovery pass.
	if _, err := os.Stat(sess.backup); err == nil {
		return m.ExecResult{}, &SetupError{Target: canon, Err: fmt.Errorf("%w at %s; run recovery first", ErrStaleBackup, sess.backup)}
	}

	info, err := os.Stat(canon)
	if err != nil {
		return m.ExecResult{}, &SetupError{Target: canon, Err: err}
	}

	sess.mode = info.Mode()

	sess.original, err = os.ReadFile(canon)
	if err != nil {
		// No mutation has happened; state remains Clean.
		return m.ExecResult{}, &SetupError{Target: canon, Err: err}
	}

	// The durable backup is written before the target is touched: it is the
	// crash-recovery artifact if the process dies mid-transaction.
	if err := writeFileAtomic(sess.backup, sess.original, sess.mode); err != nil {
		return m.ExecResult{}, &SetupError{Target: canon, Err: err}
	}

	sess.state = StateBackedUp

	registerSession(sess)
	defer unregisterSession(sess)

	if err := writeFileAtomic(canon, replacement, sess.mode); err != nil {
		// The rename is atomic, so the target is still intact; undo the
		// backup and report a setup failure.
		if restoreErr := sess.restore(); restoreErr != nil {
			slog.Error("backup cleanup failed", "error", restoreErr)
		}

		return m.ExecResult{}, &SetupError{Target: canon, Err: err}
	}

	sess.state = StateSwapped
	slog.Debug("target swapped", "target", canon, "backup", sess.backup)

	var (
		result    m.ExecResult
		actionErr error
	)

	func() {
		// restore runs in a defer so a panicking action still restores the
		// target before the panic propagates.
		defer func() {
			if err := sess.restore(); err != nil {
				slog.Error("restoration failed", "target", canon, "backup", sess.backup, "error", err)
			}
		}()

		result, actionErr = action(ctx)
	}()

	if rerr := sess.restoreFailure(); rerr != nil {
		return result, rerr
	}

	slog.Debug("target restored", "target", canon)

	return result, actionErr
}

// Canonicalize normalizes a path (symlinks resolved, relative segments
// removed) so two spellings of the same file share one lock.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolutize %s: %w", path, err)
	}

	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", abs, err)
	}

	return canon, nil
}

package swap

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// activeSessions tracks every in-flight transaction so a termination signal
// can restore their targets before the process exits.
var (
	activeMu       sync.Mutex
	activeSessions = map[*session]struct{}{}
	guardOnce      sync.Once
)

func registerSession(s *session) {
	activeMu.Lock()
	defer activeMu.Unlock()

	activeSessions[s] = struct{}{}
}

func unregisterSession(s *session) {
	activeMu.Lock()
	defer activeMu.Unlock()

	delete(activeSessions, s)
}

// InstallSignalGuard arranges for SIGINT and SIGTERM to restore every
// in-flight transaction before the process exits with the conventional
// 128+signal status. Installing more than once is a no-op.
func InstallSignalGuard() {
	guardOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			sig := <-ch
			slog.Warn("termination signal received, restoring swapped targets", "signal", sig)

			restoreActiveSessions()

			code := 128
			if num, ok := sig.(syscall.Signal); ok {
				code += int(num)
			}

			os.Exit(code)
		}()
	})
}

// restoreActiveSessions best-effort restores every registered session.
// Failures are logged with the surviving backup location; the artifacts are
// left for a later recovery pass.
func restoreActiveSessions() {
	activeMu.Lock()
	sessions := make([]*session, 0, len(activeSessions))
	for s := range activeSessions {
		sessions = append(sessions, s)
	}
	activeMu.Unlock()

	for _, s := range sessions {
		if err := s.restore(); err != nil {
			slog.Error("restoration failed during shutdown", "error", err)
		}
	}
}

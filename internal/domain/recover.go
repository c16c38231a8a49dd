package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	m "mockdock.dev/pkg/mockdock/internal/model"
	"mockdock.dev/pkg/mockdock/internal/swap"
)

// Recover finds stale swap backups under the root and, unless args.Check is
// set, reinstates each preserved original over its target.
func (w *workflow) Recover(ctx context.Context, args RecoverArgs) ([]m.RecoveredBackup, error) {
	root, err := filepath.Abs(args.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", args.Root, err)
	}

	backups, err := swap.FindBackups(root)
	if err != nil {
		return nil, err
	}

	recovered := make([]m.RecoveredBackup, 0, len(backups))

	for _, backup := range backups {
		if err := ctx.Err(); err != nil {
			return recovered, err
		}

		diff, err := backupDiff(backup)
		if err != nil {
			return recovered, err
		}

		entry := m.RecoveredBackup{
			BackupPath: m.Path(backup.Path),
			Target:     m.Path(backup.Target),
			Diff:       diff,
		}

		if !args.Check {
			if err := backup.Restore(); err != nil {
				return recovered, err
			}

			entry.Restored = true
		}

		recovered = append(recovered, entry)
	}

	if err := w.ui.DisplayRecovered(ctx, recovered); err != nil {
		return recovered, err
	}

	return recovered, nil
}

// backupDiff renders a unified diff from the preserved original to whatever
// currently occupies the target, so the operator sees what recovery will
// undo.
func backupDiff(backup swap.Backup) (string, error) {
	original, err := os.ReadFile(backup.Path)
	if err != nil {
		return "", fmt.Errorf("read backup %s: %w", backup.Path, err)
	}

	// A missing or unreadable target still recovers; the diff is against
	// empty content.
	current, err := os.ReadFile(backup.Target)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("read target %s: %w", backup.Target, err)
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(current)),
		FromFile: backup.Target + " (original)",
		ToFile:   backup.Target + " (current)",
		Context:  3,
	})
}

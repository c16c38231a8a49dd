package swap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Backup is a stale swap artifact found on disk, typically after a crash or
// kill that interrupted a transaction.
type Backup struct {
	// Path is the backup file itself.
	Path string
	// Target is the implementation file the backup preserves.
	Target string
}

// FindBackups walks root and returns every stale backup artifact, sorted by
// the walk's lexical order.
func FindBackups(root string) ([]Backup, error) {
	var found []Backup

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, BackupSuffix) {
			return nil
		}

		found = append(found, Backup{
			Path:   path,
			Target: strings.TrimSuffix(path, BackupSuffix),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan for backups under %s: %w", root, err)
	}

	return found, nil
}

// Restore reinstates the preserved content over the target and removes the
// backup artifact. The backup is only removed once the target holds the
// preserved bytes.
func (b Backup) Restore() error {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", b.Path, err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(b.Path); err == nil {
		mode = info.Mode()
	}

	if err := writeFileAtomic(b.Target, data, mode); err != nil {
		return fmt.Errorf("restore %s from %s: %w", b.Target, b.Path, err)
	}

	if err := os.Remove(b.Path); err != nil {
		return fmt.Errorf("remove backup %s: %w", b.Path, err)
	}

	return nil
}

package discover

import (
	"path"
	"strings"

	"mockdock.dev/pkg/mockdock/internal/swap"
)

// Ignore is a gitignore-like exclusion pattern: it matches when any path
// component equals or glob-matches the pattern, or when the pattern occurs
// anywhere in the relative path.
type Ignore struct {
	pattern string
}

// NewIgnore wraps a raw ignore pattern from the configuration.
func NewIgnore(pattern string) Ignore {
	return Ignore{pattern: pattern}
}

// Matches reports whether the slash-separated relative path is excluded.
func (ig Ignore) Matches(rel string) bool {
	for _, component := range strings.Split(rel, "/") {
		if component == ig.pattern {
			return true
		}

		if ok, err := path.Match(ig.pattern, component); err == nil && ok {
			return true
		}
	}

	if strings.Contains(rel, ig.pattern) {
		return true
	}

	ok, err := path.Match(ig.pattern, rel)

	return err == nil && ok
}

func hasBackupSuffix(name string) bool {
	return strings.HasSuffix(name, swap.BackupSuffix)
}

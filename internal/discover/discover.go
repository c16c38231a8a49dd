// Package discover walks a source tree and streams classified candidate
// paths. Discovery is stateless and re-walkable; a fresh pass recomputes
// every classification.
package discover

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	m "mockdock.dev/pkg/mockdock/internal/model"
	"mockdock.dev/pkg/mockdock/internal/resolve"
)

// WalkFunc receives one classified candidate. Returning an error stops the
// walk and is propagated to the caller.
type WalkFunc func(cand m.Candidate) error

// Discovery applies a resolver and ignore rules to a filesystem walk.
type Discovery struct {
	resolver *resolve.Resolver
	ignores  []Ignore
}

// New builds a Discovery. Ignore patterns follow the configuration's
// gitignore-like semantics; tool-owned artifacts are always skipped.
func New(resolver *resolve.Resolver, ignores []string) *Discovery {
	compiled := make([]Ignore, 0, len(ignores))
	for _, pattern := range ignores {
		compiled = append(compiled, NewIgnore(pattern))
	}

	return &Discovery{resolver: resolver, ignores: compiled}
}

// Walk traverses root and calls fn for every file whose relative path
// matches a driver or mock rule. Unmatched paths are silently excluded.
//
// Directory symlinks are followed, but each real (canonical) directory is
// visited at most once, so link cycles terminate. Per-entry I/O errors are
// logged and skipped; only an unreadable root fails the walk itself.
func (d *Discovery) Walk(ctx context.Context, root string, fn WalkFunc) error {
	canonRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolve walk root %s: %w", root, err)
	}

	visited := map[string]struct{}{canonRoot: {}}

	return d.walkDir(ctx, canonRoot, "", visited, fn)
}

func (d *Discovery) walkDir(ctx context.Context, dir, rel string, visited map[string]struct{}, fn WalkFunc) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if rel == "" {
			return fmt.Errorf("read walk root %s: %w", dir, err)
		}

		// Subtree errors are per-entry conditions; the walk continues.
		slog.Warn("skipping unreadable directory", "dir", dir, "error", err)

		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		entryRel := path.Join(rel, name)

		if d.ignored(entryRel, name) {
			continue
		}

		entryPath := filepath.Join(dir, name)

		info, err := os.Stat(entryPath) // follows symlinks
		if err != nil {
			slog.Warn("skipping unreadable entry", "path", entryPath, "error", err)
			continue
		}

		if info.IsDir() {
			canon, err := filepath.EvalSymlinks(entryPath)
			if err != nil {
				slog.Warn("skipping unresolvable directory", "path", entryPath, "error", err)
				continue
			}

			if _, seen := visited[canon]; seen {
				continue
			}

			visited[canon] = struct{}{}

			if err := d.walkDir(ctx, entryPath, entryRel, visited, fn); err != nil {
				return err
			}

			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		classification := d.resolver.Classify(entryRel)
		if classification.Kind == m.Unmatched {
			continue
		}

		cand := m.Candidate{
			Path:           m.Path(entryPath),
			RelPath:        m.Path(entryRel),
			Classification: classification,
		}

		if err := fn(cand); err != nil {
			return err
		}
	}

	return nil
}

func (d *Discovery) ignored(rel, name string) bool {
	if alwaysSkipped(name) {
		return true
	}

	for _, ig := range d.ignores {
		if ig.Matches(rel) {
			return true
		}
	}

	return false
}

// alwaysSkipped names entries discovery never inspects regardless of
// configuration: VCS metadata and this tool's own artifacts.
func alwaysSkipped(name string) bool {
	switch name {
	case ".git", ".mockdock-reports":
		return true
	}

	return hasBackupSuffix(name)
}

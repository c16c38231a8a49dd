package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	m "mockdock.dev/pkg/mockdock/internal/model"
	"mockdock.dev/pkg/mockdock/internal/resolve"
	"mockdock.dev/pkg/mockdock/internal/swap"
)

func mustRule(t *testing.T, pattern, template string) resolve.Rule {
	t.Helper()

	rule, err := resolve.NewRule(pattern, template, "")
	if err != nil {
		t.Fatalf("compile rule %q: %v", pattern, err)
	}

	return rule
}

func testResolver(t *testing.T) *resolve.Resolver {
	t.Helper()

	return resolve.NewResolver(
		[]resolve.Rule{mustRule(t, `src/([^/]+)/driver/([^/]+)\.sh`, "$1.$2")},
		[]resolve.Rule{mustRule(t, `src/([^/]+)/mock/([^/]+)\.sh`, "$1.$2")},
	)
}

func writeFile(t *testing.T, root string, rel string) {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(full, []byte("content\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, d *Discovery, root string) []m.Candidate {
	t.Helper()

	var got []m.Candidate

	err := d.Walk(context.Background(), root, func(cand m.Candidate) error {
		got = append(got, cand)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	return got
}

func TestWalkClassifiesMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/netclock/driver/netclock.sh")
	writeFile(t, root, "src/netclock/mock/netclock.sh")
	writeFile(t, root, "src/netclock/netclock.sh")
	writeFile(t, root, "README.md")

	d := New(testResolver(t), nil)
	got := collect(t, d, root)

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %v", len(got), got)
	}

	kinds := map[m.Path]m.ClassificationKind{}
	for _, cand := range got {
		kinds[cand.RelPath] = cand.Classification.Kind
	}

	if kinds["src/netclock/driver/netclock.sh"] != m.Driver {
		t.Error("driver file not classified as driver")
	}

	if kinds["src/netclock/mock/netclock.sh"] != m.Mock {
		t.Error("mock file not classified as mock")
	}
}

func TestWalkHonorsIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/netclock/driver/netclock.sh")
	writeFile(t, root, "vendor/src/other/driver/other.sh")

	d := New(testResolver(t), []string{"vendor"})
	got := collect(t, d, root)

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}

	if got[0].RelPath != "src/netclock/driver/netclock.sh" {
		t.Errorf("unexpected candidate %s", got[0].RelPath)
	}
}

func TestWalkSkipsToolArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/netclock/driver/netclock.sh")
	writeFile(t, root, "src/netclock/driver/netclock.sh"+swap.BackupSuffix)
	writeFile(t, root, ".git/src/x/driver/x.sh")
	writeFile(t, root, ".mockdock-reports/src/y/driver/y.sh")

	d := New(testResolver(t), nil)
	got := collect(t, d, root)

	if len(got) != 1 {
		t.Fatalf("expected only the real driver, got %d candidates", len(got))
	}
}

func TestWalkFollowsDirSymlinksOnce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/netclock/driver/netclock.sh")

	// A cycle: src/loop points back at src.
	if err := os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "src", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	d := New(testResolver(t), nil)
	got := collect(t, d, root)

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate despite symlink cycle, got %d", len(got))
	}
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a/driver/a.sh")
	writeFile(t, root, "src/b/driver/b.sh")

	d := New(testResolver(t), nil)

	calls := 0
	err := d.Walk(context.Background(), root, func(m.Candidate) error {
		calls++
		return context.Canceled
	})

	if err == nil {
		t.Fatal("expected callback error to propagate")
	}

	if calls != 1 {
		t.Errorf("expected walk to stop after first callback, got %d calls", calls)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	d := New(testResolver(t), nil)

	err := d.Walk(context.Background(), filepath.Join(t.TempDir(), "absent"), func(m.Candidate) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestIgnoreMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		rel     string
		want    bool
	}{
		{"component equality", "vendor", "vendor/pkg/file.sh", true},
		{"nested component", "mock", "src/netclock/mock/netclock.sh", true},
		{"component glob", "*.tmp", "src/cache.tmp", true},
		{"substring", "net", "src/netclock/netclock.sh", true},
		{"whole path glob", "src/*/driver/*.sh", "src/a/driver/a.sh", true},
		{"no match", "vendor", "src/netclock/netclock.sh", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewIgnore(tt.pattern).Matches(tt.rel); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.pattern, tt.rel, got, tt.want)
			}
		})
	}
}

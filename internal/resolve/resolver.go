package resolve

import (
	"log/slog"
	"path"
	"strings"

	m "mockdock.dev/pkg/mockdock/internal/model"
)

// mockSegment is the path component that marks a mock file. A mock resolves
// by default to the sibling path with this segment removed.
const mockSegment = "mock"

// Resolver classifies paths against the ordered driver and mock rule lists.
// Rules are tried in declaration order and the first match wins; later, more
// general rules never shadow earlier specific ones.
type Resolver struct {
	drivers []Rule
	mocks   []Rule
}

// NewResolver builds a Resolver over already-compiled rules.
func NewResolver(drivers, mocks []Rule) *Resolver {
	return &Resolver{drivers: drivers, mocks: mocks}
}

// Classify resolves a slash-separated path relative to the project root.
// Paths matching no rule classify as Unmatched and are silently excluded
// from discovery output.
func (r *Resolver) Classify(relPath string) m.Classification {
	for _, rule := range r.drivers {
		if testCase, ok := rule.Resolve(relPath); ok {
			return m.Classification{Kind: m.Driver, TestCase: testCase}
		}
	}

	for i, rule := range r.mocks {
		testCase, ok := rule.Resolve(relPath)
		if !ok {
			continue
		}

		r.warnShadowedMocks(relPath, i)

		target, ok := rule.ResolveMount(relPath)
		if !ok {
			target = DefaultTarget(relPath)
		}

		return m.Classification{
			Kind:     m.Mock,
			TestCase: testCase,
			Target:   m.Path(target),
		}
	}

	return m.Classification{Kind: m.Unmatched}
}

// warnShadowedMocks surfaces the configuration ambiguity of overlapping mock
// rules. Regex intersection is undecidable in general, so the overlap is
// reported where it is concrete: a discovered path matching more than one
// rule. Declaration order still decides the winner.
func (r *Resolver) warnShadowedMocks(relPath string, winner int) {
	for i := winner + 1; i < len(r.mocks); i++ {
		if r.mocks[i].Matches(relPath) {
			slog.Warn("path matches multiple mock patterns; declaration order decides",
				"path", relPath,
				"winning_pattern", r.mocks[winner].Pattern,
				"shadowed_pattern", r.mocks[i].Pattern)
		}
	}
}

// DefaultTarget derives the implementation path a mock replaces: the mock
// path with its innermost "mock" segment removed, extension preserved.
func DefaultTarget(mockPath string) string {
	segments := strings.Split(mockPath, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == mockSegment {
			return path.Join(append(segments[:i:i], segments[i+1:]...)...)
		}
	}

	return mockPath
}

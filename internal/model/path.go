// Package model defines the data structures shared by discovery, swap
// transactions and command execution.
package model

// Path represents a file system path.
type Path string

// ClassificationKind states which rule family matched a discovered path.
type ClassificationKind int

const (
	// Unmatched means no configured rule matched; the path is ignored.
	Unmatched ClassificationKind = iota
	// Driver means the path identifies a test case to run.
	Driver
	// Mock means the path provides a substitute implementation for a test.
	Mock
)

// String returns a short human-readable kind name.
func (k ClassificationKind) String() string {
	switch k {
	case Driver:
		return "driver"
	case Mock:
		return "mock"
	default:
		return "unmatched"
	}
}

// Classification is the outcome of resolving a path against the configured
// pattern rules.
type Classification struct {
	Kind     ClassificationKind
	TestCase string
	// Target is the implementation file a mock temporarily replaces.
	// Set only when Kind == Mock. Relative to the project root.
	Target Path
}

// Candidate pairs a discovered path with its classification. Candidates are
// derived per discovery pass and never persisted.
type Candidate struct {
	// Path is the absolute location on disk.
	Path Path
	// RelPath is the slash-separated path relative to the project root;
	// it is the input the pattern rules match against.
	RelPath        Path
	Classification Classification
}

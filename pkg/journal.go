// Package pkg is a package that provides utilities for mockdock.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Journal is a generic append-only record of items of type T, persisted as a
// gob stream at a fixed path so a later process can replay it.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Replay(fn func(index uint64, item T) error) error
	Close() error
}

type journalImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// Append implements Journal.
func (j *journalImpl[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.encoder == nil {
		return fmt.Errorf("journal %s is not open for writing", j.path)
	}

	if err := j.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	j.length++
	slog.Debug("appended item", "path", j.path, "index", j.length-1)

	return nil
}

// AppendBatch implements Journal.
func (j *journalImpl[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := j.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Path implements Journal.
func (j *journalImpl[T]) Path() string {
	return j.path
}

// Len implements Journal.
func (j *journalImpl[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Replay implements Journal. It reads the stream from disk, so it also sees
// items written by an earlier process.
func (j *journalImpl[T]) Replay(fn func(index uint64, item T) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		slog.Error("failed to open journal for replay", "path", j.path, "error", err)
		return fmt.Errorf("failed to open journal: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close journal", "path", j.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := uint64(0); ; i++ {
		var item T
		if err := decoder.Decode(&item); err != nil {
			if errors.Is(err, io.EOF) {
				slog.Debug("replay completed", "path", j.path, "count", i)
				return nil
			}

			slog.Error("failed to decode item during replay", "path", j.path, "index", i, "error", err)

			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			slog.Warn("replay callback error", "path", j.path, "index", i, "error", err)
			return err
		}
	}
}

// Close implements Journal.
func (j *journalImpl[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			slog.Error("failed to close journal file", "path", j.path, "error", err)
			return err
		}

		j.file = nil
		j.encoder = nil
		slog.Debug("closed journal", "path", j.path, "length", j.length)
	}

	return nil
}

// NewJournal creates or truncates a journal at path and opens it for
// appending.
func NewJournal[T any](path string) (Journal[T], error) {
	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create journal file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create journal file: %w", err)
	}

	slog.Debug("created journal", "path", path)

	return &journalImpl[T]{
		path:    path,
		file:    file,
		encoder: gob.NewEncoder(file),
		length:  0,
	}, nil
}

// OpenJournal wraps an existing journal file for replay only.
func OpenJournal[T any](path string) (Journal[T], error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	return &journalImpl[T]{path: path}, nil
}

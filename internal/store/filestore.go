package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"noticeboard/internal/board"
)

// Options tunes a record store.
type Options struct {
	// LockTimeout bounds the wait for the collection lock. Zero means
	// DefaultLockTimeout.
	LockTimeout time.Duration
}

// DefaultLockTimeout is used when Options.LockTimeout is zero.
const DefaultLockTimeout = 5 * time.Second

func (o Options) lockTimeout() time.Duration {
	if o.LockTimeout <= 0 {
		return DefaultLockTimeout
	}
	return o.LockTimeout
}

// FileStore is a filesystem-backed implementation of board.RecordStore.
// The collection lives in a single JSON document:
//
//	<dir>/
//	  <name>.json        (the records, replaced atomically on every write)
//	  <name>.json.lock   (advisory lock file for read-modify-write cycles)
type FileStore[T any] struct {
	path string
	lock *collectionLock
}

// NewFileStore creates a store for the document at path, creating its
// directory if needed. The document itself is not created until the first
// Initialize or write.
func NewFileStore[T any](path string, opts Options) (*FileStore[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore[T]{
		path: path,
		lock: newCollectionLock(path+".lock", opts.lockTimeout()),
	}, nil
}

// Path returns the location of the backing document.
func (s *FileStore[T]) Path() string { return s.path }

// Initialize writes the default records if the document does not exist.
func (s *FileStore[T]) Initialize(defaults func() ([]T, error)) error {
	release, err := s.lock.acquire()
	if err != nil {
		return err
	}
	defer release()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", s.path, err)
	}

	records, err := defaults()
	if err != nil {
		return fmt.Errorf("building default records: %w", err)
	}
	return s.writeFile(records)
}

// LoadAll reads every record. Reads take no lock: writes replace the
// document by rename, so a reader sees either the old or the new version.
func (s *FileStore[T]) LoadAll() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return decodeRecords[T](data, s.path)
}

// SaveAll replaces the document with records.
func (s *FileStore[T]) SaveAll(records []T) error {
	release, err := s.lock.acquire()
	if err != nil {
		return err
	}
	defer release()
	return s.writeFile(records)
}

// Update runs fn between a locked load and save.
func (s *FileStore[T]) Update(fn func(records []T) ([]T, error)) error {
	release, err := s.lock.acquire()
	if err != nil {
		return err
	}
	defer release()

	records, err := s.LoadAll()
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return s.writeFile(updated)
}

// writeFile writes records using atomic write (temp file + fsync + rename).
// Callers must hold the lock.
func (s *FileStore[T]) writeFile(records []T) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}

	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(s.path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true

	// Persist the rename itself; best-effort since not every platform
	// supports syncing a directory.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

// Compile-time check that FileStore implements board.RecordStore
var _ board.RecordStore[board.Notice] = (*FileStore[board.Notice])(nil)

package store

import (
	"sync"

	"noticeboard/internal/board"
)

// MemoryStore is an in-memory implementation of board.RecordStore.
// Records are kept in their encoded form so callers never share slices
// with the store, matching FileStore semantics. Safe for concurrent use.
type MemoryStore[T any] struct {
	mu   sync.RWMutex
	doc  []byte // nil until the first write
	lock *collectionLock
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore[T any](opts Options) *MemoryStore[T] {
	return &MemoryStore[T]{lock: newCollectionLock("", opts.lockTimeout())}
}

func (m *MemoryStore[T]) Initialize(defaults func() ([]T, error)) error {
	release, err := m.lock.acquire()
	if err != nil {
		return err
	}
	defer release()

	m.mu.RLock()
	exists := m.doc != nil
	m.mu.RUnlock()
	if exists {
		return nil
	}

	records, err := defaults()
	if err != nil {
		return err
	}
	return m.write(records)
}

func (m *MemoryStore[T]) LoadAll() ([]T, error) {
	m.mu.RLock()
	doc := m.doc
	m.mu.RUnlock()
	return decodeRecords[T](doc, "memory")
}

func (m *MemoryStore[T]) SaveAll(records []T) error {
	release, err := m.lock.acquire()
	if err != nil {
		return err
	}
	defer release()
	return m.write(records)
}

func (m *MemoryStore[T]) Update(fn func(records []T) ([]T, error)) error {
	release, err := m.lock.acquire()
	if err != nil {
		return err
	}
	defer release()

	records, err := m.LoadAll()
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return m.write(updated)
}

func (m *MemoryStore[T]) write(records []T) error {
	doc, err := encodeRecords(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.doc = doc
	m.mu.Unlock()
	return nil
}

var _ board.RecordStore[board.Administrator] = (*MemoryStore[board.Administrator])(nil)

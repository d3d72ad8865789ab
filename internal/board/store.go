package board

// RecordStore persists an ordered collection of records as a single
// document. Each collection owns its own store; stores are never shared.
type RecordStore[T any] interface {
	// Initialize writes the records produced by defaults if the backing
	// document does not exist yet. It is a no-op when the document exists,
	// and defaults is not called in that case.
	Initialize(defaults func() ([]T, error)) error

	// LoadAll returns every record in stored order. A missing or empty
	// document yields an empty slice. Unparseable content yields an error
	// wrapping ErrCorruptStore.
	LoadAll() ([]T, error)

	// SaveAll atomically replaces the document with records.
	SaveAll(records []T) error

	// Update runs a read-modify-write cycle under the collection lock.
	// fn receives the current records and returns the records to persist.
	// If fn returns an error nothing is written and that error is returned
	// as is. Lock acquisition is bounded; on timeout the error wraps
	// ErrStoreBusy.
	Update(fn func(records []T) ([]T, error)) error
}

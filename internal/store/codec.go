package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"noticeboard/internal/board"
)

// encodeRecords renders records as an indented JSON array. HTML characters
// are left unescaped so the file stays readable.
func encodeRecords[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeRecords parses a JSON array. Empty input and JSON null decode to an
// empty slice; anything else unparseable wraps board.ErrCorruptStore.
func decodeRecords[T any](data []byte, source string) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", board.ErrCorruptStore, source, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

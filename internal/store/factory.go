package store

import (
	"fmt"
	"path/filepath"

	"noticeboard/internal/board"
	"noticeboard/internal/config"
)

// Document names inside storage.data_dir.
const (
	NoticesFile = "notices.json"
	AdminsFile  = "admins.json"
)

// NewRecordStoreFromConfig creates a RecordStore implementation based on the
// storage config type. name is the document name within the data directory.
func NewRecordStoreFromConfig[T any](cfg config.StorageConfig, name string) (board.RecordStore[T], error) {
	opts := Options{LockTimeout: cfg.LockTimeout.Duration}

	switch cfg.Type {
	case "memory":
		return NewMemoryStore[T](opts), nil
	case "filesystem":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("filesystem storage requires data_dir to be set")
		}
		fileStore, err := NewFileStore[T](filepath.Join(cfg.DataDir, name), opts)
		if err != nil {
			return nil, err
		}
		return fileStore, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

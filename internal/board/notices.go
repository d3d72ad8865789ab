package board

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// NoticeRepository owns notice CRUD on top of a private RecordStore.
// It performs no authorization; callers gate mutations through Service.
type NoticeRepository struct {
	store RecordStore[Notice]
	clock Clock
}

// NewNoticeRepository creates a repository backed by store.
func NewNoticeRepository(store RecordStore[Notice], clock Clock) *NoticeRepository {
	return &NoticeRepository{store: store, clock: clock}
}

// Initialize creates an empty notice collection if none exists.
func (r *NoticeRepository) Initialize() error {
	if err := r.store.Initialize(func() ([]Notice, error) { return []Notice{}, nil }); err != nil {
		return fmt.Errorf("initializing notices: %w", err)
	}
	return nil
}

// ListAll returns every notice, most recent date first. Notices sharing a
// date keep their stored order.
func (r *NoticeRepository) ListAll() ([]Notice, error) {
	notices, err := r.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading notices: %w", err)
	}
	slices.SortStableFunc(notices, func(a, b Notice) int {
		return b.Date.Compare(a.Date.Time)
	})
	return notices, nil
}

// GetByID returns the notice with the given id.
func (r *NoticeRepository) GetByID(id int64) (*Notice, error) {
	notices, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	for i := range notices {
		if notices[i].ID == id {
			return &notices[i], nil
		}
	}
	return nil, fmt.Errorf("notice %d: %w", id, ErrNotFound)
}

// Create validates and appends a new notice dated now.
func (r *NoticeRepository) Create(title, content string) (*Notice, error) {
	if err := validateNotice(title, content); err != nil {
		return nil, err
	}

	var created Notice
	err := r.store.Update(func(notices []Notice) ([]Notice, error) {
		now := r.clock.Now()
		created = Notice{
			ID:      nextNoticeID(notices, now),
			Title:   title,
			Content: content,
			Date:    NewTimestamp(now),
		}
		return append(notices, created), nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating notice: %w", err)
	}
	return &created, nil
}

// Update replaces the title and content of an existing notice and stamps
// updated_at. The id and date never change.
func (r *NoticeRepository) Update(id int64, title, content string) (*Notice, error) {
	if err := validateNotice(title, content); err != nil {
		return nil, err
	}

	var updated Notice
	err := r.store.Update(func(notices []Notice) ([]Notice, error) {
		idx := slices.IndexFunc(notices, func(n Notice) bool { return n.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("notice %d: %w", id, ErrNotFound)
		}
		stamp := NewTimestamp(r.clock.Now())
		notices[idx].Title = title
		notices[idx].Content = content
		notices[idx].UpdatedAt = &stamp
		updated = notices[idx]
		return notices, nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating notice: %w", err)
	}
	return &updated, nil
}

// Delete removes a notice permanently. Surviving notices keep their order.
func (r *NoticeRepository) Delete(id int64) error {
	err := r.store.Update(func(notices []Notice) ([]Notice, error) {
		idx := slices.IndexFunc(notices, func(n Notice) bool { return n.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("notice %d: %w", id, ErrNotFound)
		}
		return slices.Delete(notices, idx, idx+1), nil
	})
	if err != nil {
		return fmt.Errorf("deleting notice: %w", err)
	}
	return nil
}

func validateNotice(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}

// nextNoticeID derives an id from the creation time in microseconds, bumped
// past the highest existing id so two creations in one tick never collide.
// Must be called under the collection lock.
func nextNoticeID(notices []Notice, now time.Time) int64 {
	id := now.UnixMicro()
	for _, n := range notices {
		if n.ID >= id {
			id = n.ID + 1
		}
	}
	return id
}

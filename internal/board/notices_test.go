package board_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"noticeboard/internal/board"
	"noticeboard/internal/store"
	"noticeboard/internal/testutil"
)

func TestNoticeRepository_Create(t *testing.T) {
	t.Run("round trips through GetByID", func(t *testing.T) {
		clock := testutil.FixedClock()
		repo := testutil.NewTestNoticeRepository(t, clock)
		callTime := clock.Now()

		created, err := repo.Create("Library hours", "Open until 9pm\nduring exam week")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.GetByID(created.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Title != "Library hours" {
			t.Errorf("Title = %q, want %q", got.Title, "Library hours")
		}
		if got.Content != "Open until 9pm\nduring exam week" {
			t.Errorf("Content = %q, want the original multi-line content", got.Content)
		}
		if got.Date.Before(callTime) {
			t.Errorf("Date = %v, want no earlier than %v", got.Date.Time, callTime)
		}
		if got.UpdatedAt != nil {
			t.Errorf("UpdatedAt = %v, want nil on a fresh notice", got.UpdatedAt)
		}
	})

	t.Run("rejects missing fields before writing", func(t *testing.T) {
		tests := []struct {
			name    string
			title   string
			content string
		}{
			{name: "empty title", title: "", content: "body"},
			{name: "empty content", title: "title", content: ""},
			{name: "whitespace title", title: "   ", content: "body"},
			{name: "whitespace content", title: "title", content: "\n\t"},
			{name: "both empty", title: "", content: ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())

				_, err := repo.Create(tt.title, tt.content)
				if !errors.Is(err, board.ErrValidation) {
					t.Fatalf("Create() error = %v, want ErrValidation", err)
				}

				all, _ := repo.ListAll()
				if len(all) != 0 {
					t.Errorf("len(ListAll()) = %d, want 0", len(all))
				}
			})
		}
	})

	t.Run("assigns distinct ids within one clock tick", func(t *testing.T) {
		repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())

		seen := make(map[int64]bool)
		for range 10 {
			n, err := repo.Create("same tick", "content")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if seen[n.ID] {
				t.Fatalf("duplicate id %d", n.ID)
			}
			seen[n.ID] = true
		}
	})

	t.Run("ids keep increasing when the clock goes backwards", func(t *testing.T) {
		clock := testutil.FixedClock()
		repo := testutil.NewTestNoticeRepository(t, clock)

		first, err := repo.Create("first", "content")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		clock.Advance(-time.Hour)
		second, err := repo.Create("second", "content")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if second.ID <= first.ID {
			t.Errorf("second id %d not greater than first id %d", second.ID, first.ID)
		}
	})
}

func TestNoticeRepository_ListAll(t *testing.T) {
	t.Run("orders by date descending regardless of insertion order", func(t *testing.T) {
		clock := testutil.FixedClock()
		repo := testutil.NewTestNoticeRepository(t, clock)
		base := clock.Now()

		clock.Set(base.Add(2 * time.Hour))
		mustCreate(t, repo, "newest")
		clock.Set(base)
		mustCreate(t, repo, "oldest")
		clock.Set(base.Add(time.Hour))
		mustCreate(t, repo, "middle")

		got, err := repo.ListAll()
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		assertTitles(t, got, "newest", "middle", "oldest")
	})

	t.Run("keeps insertion order for identical dates", func(t *testing.T) {
		repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())

		mustCreate(t, repo, "a")
		mustCreate(t, repo, "b")
		mustCreate(t, repo, "c")

		got, err := repo.ListAll()
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		assertTitles(t, got, "a", "b", "c")
	})

	t.Run("empty collection", func(t *testing.T) {
		repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())

		got, err := repo.ListAll()
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len(ListAll()) = %d, want 0", len(got))
		}
	})
}

func TestNoticeRepository_GetByID_NotFound(t *testing.T) {
	repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())
	mustCreate(t, repo, "exists")

	_, err := repo.GetByID(42)
	if !errors.Is(err, board.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestNoticeRepository_Update(t *testing.T) {
	t.Run("edits title and content and stamps updated_at", func(t *testing.T) {
		clock := testutil.FixedClock()
		repo := testutil.NewTestNoticeRepository(t, clock)

		created, err := repo.Create("Exam Schedule", "Final exams start Monday")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		clock.Advance(30 * time.Minute)
		if _, err := repo.Update(created.ID, "Exam Schedule", "Final exams start Monday, updated room B12"); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, err := repo.GetByID(created.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.Content != "Final exams start Monday, updated room B12" {
			t.Errorf("Content = %q, want updated content", got.Content)
		}
		if got.ID != created.ID {
			t.Errorf("ID = %d, want %d", got.ID, created.ID)
		}
		if !got.Date.Equal(created.Date.Time) {
			t.Errorf("Date = %v, want unchanged %v", got.Date.Time, created.Date.Time)
		}
		if got.UpdatedAt == nil {
			t.Fatal("UpdatedAt = nil, want set")
		}
		if !got.UpdatedAt.Equal(clock.Now()) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt.Time, clock.Now())
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())
		mustCreate(t, repo, "exists")

		_, err := repo.Update(999, "title", "content")
		if !errors.Is(err, board.ErrNotFound) {
			t.Fatalf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("validates before lookup", func(t *testing.T) {
		repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())
		created := mustCreate(t, repo, "exists")

		_, err := repo.Update(created.ID, "", "content")
		if !errors.Is(err, board.ErrValidation) {
			t.Fatalf("Update() error = %v, want ErrValidation", err)
		}

		got, _ := repo.GetByID(created.ID)
		if got.Title != "exists" || got.UpdatedAt != nil {
			t.Errorf("notice changed after a rejected update: %+v", got)
		}
	})
}

func TestNoticeRepository_Delete(t *testing.T) {
	t.Run("unknown id leaves the collection unchanged", func(t *testing.T) {
		repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())
		mustCreate(t, repo, "one")
		mustCreate(t, repo, "two")
		before, _ := repo.ListAll()

		err := repo.Delete(12345)
		if !errors.Is(err, board.ErrNotFound) {
			t.Fatalf("Delete() error = %v, want ErrNotFound", err)
		}

		after, _ := repo.ListAll()
		if len(after) != len(before) {
			t.Fatalf("len(ListAll()) = %d, want %d", len(after), len(before))
		}
		for i := range before {
			if after[i].ID != before[i].ID || after[i].Title != before[i].Title {
				t.Errorf("notice %d = %+v, want %+v", i, after[i], before[i])
			}
		}
	})

	t.Run("survivors keep their relative order", func(t *testing.T) {
		repo := testutil.NewTestNoticeRepository(t, testutil.FixedClock())
		mustCreate(t, repo, "a")
		b := mustCreate(t, repo, "b")
		mustCreate(t, repo, "c")

		if err := repo.Delete(b.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		got, _ := repo.ListAll()
		assertTitles(t, got, "a", "c")
		if _, err := repo.GetByID(b.ID); !errors.Is(err, board.ErrNotFound) {
			t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestNoticeRepository_ConcurrentCreates(t *testing.T) {
	s, err := store.NewFileStore[board.Notice](filepath.Join(t.TempDir(), store.NoticesFile), store.Options{LockTimeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	repo := board.NewNoticeRepository(s, testutil.FixedClock())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	const n = 25
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Create("concurrent", "content"); err != nil {
				t.Errorf("Create() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != n {
		t.Errorf("len(ListAll()) = %d, want %d", len(got), n)
	}
}

func mustCreate(t *testing.T, repo *board.NoticeRepository, title string) *board.Notice {
	t.Helper()
	n, err := repo.Create(title, "content of "+title)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return n
}

func assertTitles(t *testing.T, notices []board.Notice, want ...string) {
	t.Helper()
	if len(notices) != len(want) {
		t.Fatalf("got %d notices, want %d", len(notices), len(want))
	}
	for i, title := range want {
		if notices[i].Title != title {
			t.Errorf("notice %d title = %q, want %q", i, notices[i].Title, title)
		}
	}
}

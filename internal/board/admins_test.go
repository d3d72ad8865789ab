package board_test

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"noticeboard/internal/board"
	"noticeboard/internal/store"
	"noticeboard/internal/testutil"
)

func TestCredentialRepository_Initialize(t *testing.T) {
	t.Run("bootstraps an empty data directory", func(t *testing.T) {
		dir := t.TempDir()
		clock := testutil.FixedClock()

		adminStore, err := store.NewFileStore[board.Administrator](filepath.Join(dir, store.AdminsFile), store.Options{})
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		noticeStore, err := store.NewFileStore[board.Notice](filepath.Join(dir, store.NoticesFile), store.Options{})
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		admins := board.NewCredentialRepository(adminStore, testutil.FastHasher, clock)
		notices := board.NewNoticeRepository(noticeStore, clock)

		seeded, err := admins.Initialize()
		if err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		if !seeded {
			t.Error("Initialize() seeded = false, want true on first run")
		}
		if err := notices.Initialize(); err != nil {
			t.Fatalf("notices Initialize() error = %v", err)
		}

		list, err := admins.ListAll()
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("len(ListAll()) = %d, want 1", len(list))
		}
		if list[0].ID != 1 || list[0].Username != board.DefaultAdminUsername {
			t.Errorf("bootstrap admin = %+v, want id 1 named %q", list[0], board.DefaultAdminUsername)
		}
		if !list[0].CreatedAt.Equal(clock.Now()) {
			t.Errorf("CreatedAt = %v, want %v", list[0].CreatedAt.Time, clock.Now())
		}

		ok, err := admins.Verify("admin", "admin123")
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if !ok {
			t.Error("Verify(admin, admin123) = false, want true")
		}

		all, err := notices.ListAll()
		if err != nil {
			t.Fatalf("notices ListAll() error = %v", err)
		}
		if len(all) != 0 {
			t.Errorf("len(notices) = %d, want 0", len(all))
		}
	})

	t.Run("second run does not reseed", func(t *testing.T) {
		repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())
		if _, err := repo.Create("second", "pw"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		seeded, err := repo.Initialize()
		if err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
		if seeded {
			t.Error("Initialize() seeded = true on an existing roster")
		}
		list, _ := repo.ListAll()
		if len(list) != 2 {
			t.Errorf("len(ListAll()) = %d, want 2", len(list))
		}
	})
}

func TestCredentialRepository_Create(t *testing.T) {
	t.Run("adds an administrator who can log in", func(t *testing.T) {
		clock := testutil.FixedClock()
		repo := testutil.NewTestCredentialRepository(t, clock)
		clock.Advance(time.Hour)

		created, err := repo.Create("editor", "correct horse")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created.ID != 2 {
			t.Errorf("ID = %d, want 2", created.ID)
		}
		if !created.CreatedAt.Equal(clock.Now()) {
			t.Errorf("CreatedAt = %v, want %v", created.CreatedAt.Time, clock.Now())
		}

		ok, err := repo.Verify("editor", "correct horse")
		if err != nil || !ok {
			t.Errorf("Verify() = %v, %v; want true, nil", ok, err)
		}
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())
		before, _ := repo.ListAll()

		_, err := repo.Create("admin", "another password")
		if !errors.Is(err, board.ErrDuplicateUsername) {
			t.Fatalf("Create() error = %v, want ErrDuplicateUsername", err)
		}

		after, _ := repo.ListAll()
		if len(after) != len(before) {
			t.Errorf("len(ListAll()) = %d, want %d", len(after), len(before))
		}
		ok, _ := repo.Verify("admin", "admin123")
		if !ok {
			t.Error("original password no longer verifies")
		}
	})

	t.Run("compares usernames case-sensitively", func(t *testing.T) {
		repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())

		if _, err := repo.Create("Admin", "pw"); err != nil {
			t.Fatalf("Create(Admin) error = %v", err)
		}
		list, _ := repo.ListAll()
		if len(list) != 2 {
			t.Errorf("len(ListAll()) = %d, want 2", len(list))
		}
	})

	t.Run("validates input", func(t *testing.T) {
		tests := []struct {
			name     string
			username string
			password string
		}{
			{name: "empty username", username: "", password: "pw"},
			{name: "blank username", username: "  ", password: "pw"},
			{name: "empty password", username: "someone", password: ""},
			{name: "password too long for bcrypt", username: "someone", password: strings.Repeat("x", 73)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())

				_, err := repo.Create(tt.username, tt.password)
				if !errors.Is(err, board.ErrValidation) {
					t.Fatalf("Create() error = %v, want ErrValidation", err)
				}
				list, _ := repo.ListAll()
				if len(list) != 1 {
					t.Errorf("len(ListAll()) = %d, want 1", len(list))
				}
			})
		}
	})

	t.Run("never reuses a surviving id after deletions", func(t *testing.T) {
		repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())
		second, _ := repo.Create("second", "pw")
		third, _ := repo.Create("third", "pw")

		if err := repo.Delete(second.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		fourth, err := repo.Create("fourth", "pw")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if fourth.ID == third.ID || fourth.ID == 1 {
			t.Errorf("new id %d collides with a surviving administrator", fourth.ID)
		}
	})
}

func TestCredentialRepository_Delete(t *testing.T) {
	t.Run("refuses to delete the last administrator", func(t *testing.T) {
		repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())

		for _, id := range []int64{1, 99} {
			err := repo.Delete(id)
			if !errors.Is(err, board.ErrLastAdmin) {
				t.Errorf("Delete(%d) error = %v, want ErrLastAdmin", id, err)
			}
		}

		list, _ := repo.ListAll()
		if len(list) != 1 {
			t.Errorf("len(ListAll()) = %d, want 1", len(list))
		}
	})

	t.Run("removes an administrator when others remain", func(t *testing.T) {
		repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())
		if _, err := repo.Create("second", "pw"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if err := repo.Delete(1); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		list, _ := repo.ListAll()
		if len(list) != 1 || list[0].Username != "second" {
			t.Errorf("ListAll() = %+v, want only second", list)
		}
		if ok, _ := repo.Verify("admin", "admin123"); ok {
			t.Error("deleted administrator still verifies")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())
		if _, err := repo.Create("second", "pw"); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		err := repo.Delete(77)
		if !errors.Is(err, board.ErrNotFound) {
			t.Fatalf("Delete() error = %v, want ErrNotFound", err)
		}
		list, _ := repo.ListAll()
		if len(list) != 2 {
			t.Errorf("len(ListAll()) = %d, want 2", len(list))
		}
	})
}

func TestCredentialRepository_Verify(t *testing.T) {
	repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())
	if _, err := repo.Create("editor", "s3cret!"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before, _ := repo.ListAll()

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{name: "bootstrap admin", username: "admin", password: "admin123", want: true},
		{name: "second admin", username: "editor", password: "s3cret!", want: true},
		{name: "wrong password", username: "editor", password: "s3cret", want: false},
		{name: "other admin's password", username: "editor", password: "admin123", want: false},
		{name: "unknown username", username: "ghost", password: "admin123", want: false},
		{name: "username differs in case", username: "Admin", password: "admin123", want: false},
		{name: "empty password", username: "admin", password: "", want: false},
		{name: "empty username", username: "", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Verify(tt.username, tt.password)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.want)
			}
		})
	}

	after, _ := repo.ListAll()
	if len(after) != len(before) {
		t.Errorf("roster size changed from %d to %d after verification", len(before), len(after))
	}
}

func TestCredentialRepository_Verify_LegacyHash(t *testing.T) {
	// Hashes written by PHP's password_hash carry the $2y$ prefix.
	hash, err := testutil.FastHasher.Hash("admin123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	legacyHash := "$2y$" + strings.TrimPrefix(hash, "$2a$")

	s := store.NewMemoryStore[board.Administrator](store.Options{})
	if err := s.SaveAll([]board.Administrator{{ID: 1, Username: "admin", PasswordHash: legacyHash}}); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	repo := board.NewCredentialRepository(s, testutil.FastHasher, testutil.FixedClock())

	if ok, err := repo.Verify("admin", "admin123"); err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := repo.Verify("admin", "wrong"); err != nil || ok {
		t.Errorf("Verify(wrong) = %v, %v; want false, nil", ok, err)
	}
}

func TestCredentialRepository_ListAll_HidesHash(t *testing.T) {
	repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())

	list, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "password") || strings.Contains(string(data), "$2a$") {
		t.Errorf("projection leaks the password hash: %s", data)
	}
}

func TestCredentialRepository_Exists(t *testing.T) {
	repo := testutil.NewTestCredentialRepository(t, testutil.FixedClock())

	if ok, err := repo.Exists("admin"); err != nil || !ok {
		t.Errorf("Exists(admin) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := repo.Exists("nobody"); err != nil || ok {
		t.Errorf("Exists(nobody) = %v, %v; want false, nil", ok, err)
	}
}

package board

import (
	"encoding/json"
	"fmt"
	"time"
)

// legacyTimeLayout is the "Y-m-d H:i:s" layout found in data files written
// before timestamps carried a zone and sub-second precision.
const legacyTimeLayout = "2006-01-02 15:04:05"

// Timestamp is a time.Time that serializes as RFC 3339 with nanoseconds and
// also accepts the legacy layout when decoding.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(legacyTimeLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Notice is a published announcement.
type Notice struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Date      Timestamp  `json:"date"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// Administrator is a credential-holding account as stored on disk.
// PasswordHash keeps the "password" key used by existing data files.
type Administrator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	CreatedAt    Timestamp `json:"created_at"`
}

// AdminView is the external projection of an Administrator. It never
// carries the password hash.
type AdminView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt Timestamp `json:"created_at"`
}

// View projects the administrator for callers outside the core.
func (a Administrator) View() AdminView {
	return AdminView{ID: a.ID, Username: a.Username, CreatedAt: a.CreatedAt}
}

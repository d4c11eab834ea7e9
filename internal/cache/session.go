package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

const sessionKey = "session"

// Session is the snapshot written on shutdown and read back on start.
type Session struct {
	ID            string    `json:"id"`
	CurrentPage   string    `json:"current_page"`
	ActiveProfile *int64    `json:"active_profile,omitempty"`
	History       []string  `json:"history,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// SessionStore keeps the session snapshot in a diskv directory.
type SessionStore struct {
	d      *diskv.Diskv
	logger *log.Logger
	now    func() time.Time
}

// NewSessionStore opens (creating if needed) a session store under dir.
func NewSessionStore(dir string, logger *log.Logger) *SessionStore {
	return &SessionStore{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 64 * 1024,
		}),
		logger: logger,
		now:    time.Now,
	}
}

// Save writes s, stamping Timestamp and ID when unset. Failures are logged.
func (ss *SessionStore) Save(s Session) {
	if ss == nil {
		return
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = ss.now()
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	raw, err := json.Marshal(s)
	if err != nil {
		ss.logf("encode: %v", err)
		return
	}
	if err := ss.d.Write(sessionKey, raw); err != nil {
		ss.logf("write: %v", err)
	}
}

// Load returns the stored snapshot when it is younger than maxAge. A
// non-positive maxAge accepts any age.
func (ss *SessionStore) Load(maxAge time.Duration) (Session, bool) {
	if ss == nil || !ss.d.Has(sessionKey) {
		return Session{}, false
	}
	raw, err := ss.d.Read(sessionKey)
	if err != nil {
		ss.logf("read: %v", err)
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		ss.logf("decode: %v", err)
		return Session{}, false
	}
	if maxAge > 0 && ss.now().Sub(s.Timestamp) > maxAge {
		return Session{}, false
	}
	return s, true
}

// Clear removes the stored snapshot.
func (ss *SessionStore) Clear() {
	if ss == nil || !ss.d.Has(sessionKey) {
		return
	}
	if err := ss.d.Erase(sessionKey); err != nil {
		ss.logf("erase: %v", err)
	}
}

func (ss *SessionStore) logf(format string, args ...any) {
	if ss.logger != nil {
		ss.logger.Printf("session: %s", fmt.Sprintf(format, args...))
	}
}

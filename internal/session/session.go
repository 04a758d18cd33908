// Package session owns the terminal client's signed-in state: the tokens
// issued by /api/auth, the user they belong to, and the file they persist to
// between runs.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

type User struct {
	ID       uint   `json:"id" msgpack:"id"`
	Username string `json:"username" msgpack:"username"`
	Email    string `json:"email" msgpack:"email"`
	FullName string `json:"full_name" msgpack:"full_name"`
	Role     string `json:"role" msgpack:"role"`
}

// Session mirrors the server's auth response.
type Session struct {
	AccessToken     string    `json:"access_token" msgpack:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at" msgpack:"access_expires_at"`
	RefreshToken    string    `json:"refresh_token" msgpack:"refresh_token"`
	User            User      `json:"user" msgpack:"user"`
}

// AccessExpired reports whether the access token is past its expiry at now.
func (s *Session) AccessExpired(now time.Time) bool {
	return !s.AccessExpiresAt.IsZero() && !now.Before(s.AccessExpiresAt)
}

// Store persists one session.
type Store interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// FileStore keeps the session msgpack-encoded in a single 0600 file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns nil, nil when no session was saved.
func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session file")
	}
	var s Session
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decode session file")
	}
	return &s, nil
}

func (f *FileStore) Save(s *Session) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write session file")
	}
	return errors.Wrap(os.Rename(tmp, f.Path), "replace session file")
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove session file")
	}
	return nil
}

// Listener is told about every session change. s is nil after sign-out or
// expiry; reason is empty unless the session expired.
type Listener func(s *Session, reason string)

// Manager is the single owner of the current session. It is safe for
// concurrent use; listeners run outside its lock.
type Manager struct {
	store Store

	mu        sync.RWMutex
	current   *Session
	listeners map[int]Listener
	nextID    int
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, listeners: make(map[int]Listener)}
}

// Load restores the persisted session, if any. A corrupt file is discarded.
func (m *Manager) Load() (*Session, error) {
	s, err := m.store.Load()
	if err != nil {
		logger.Warn("session: discarding stored session: %v", err)
		_ = m.store.Clear()
		return nil, err
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s, nil
}

// Current returns a copy of the session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Token is the bearer token for outgoing requests; empty when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

func (m *Manager) UserID() uint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return 0
	}
	return m.current.User.ID
}

// Set installs and persists s. The in-memory session is replaced even when
// persisting fails.
func (m *Manager) Set(s *Session) error {
	cp := *s
	m.mu.Lock()
	m.current = &cp
	m.mu.Unlock()

	err := m.store.Save(&cp)
	if err != nil {
		logger.Error("session: save failed: %v", err)
	}
	m.notify(&cp, "")
	return err
}

// Clear signs out.
func (m *Manager) Clear() error {
	return m.drop("")
}

// Expire tears the session down after the server rejected it. It is a no-op
// when already signed out, so concurrent 401s notify once.
func (m *Manager) Expire(reason string) {
	if reason == "" {
		reason = "session expired"
	}
	m.mu.RLock()
	signedIn := m.current != nil
	m.mu.RUnlock()
	if !signedIn {
		return
	}
	_ = m.drop(reason)
}

func (m *Manager) drop(reason string) error {
	m.mu.Lock()
	if m.current == nil && reason != "" {
		m.mu.Unlock()
		return nil
	}
	m.current = nil
	m.mu.Unlock()

	if reason != "" {
		logger.Warn("session: %s", reason)
	}
	err := m.store.Clear()
	m.notify(nil, reason)
	return err
}

// Subscribe registers fn and returns its unsubscribe func.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(s *Session, reason string) {
	m.mu.RLock()
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()
	for _, fn := range fns {
		fn(s, reason)
	}
}

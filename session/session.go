// Package session holds the authenticated identity of the user and
// persists it between runs. A Session is passed explicitly to whatever
// needs it; nothing reads credentials from ambient state.
package session

import (
	"context"
	"sync"

	"github.com/teranos/jobtrack/errors"
)

// Storage keys, the same names the web client kept in local storage.
const (
	KeyToken    = "token"
	KeyUserName = "user_name"
)

// Session is the result of a successful login.
type Session struct {
	Token    string `json:"-"`
	UserName string `json:"user_name"`
}

// Authenticated reports whether a token is present. Only presence is
// checked; expiry and signature are the server's business.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Bearer is the Authorization header value for this session.
func (s Session) Bearer() string {
	return "Bearer " + s.Token
}

// KV is the subset of storage.LocalStorage the session needs.
type KV interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Store loads and saves the session through a KV.
type Store struct {
	kv KV
}

// NewStore returns a Store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// NewMemoryStore returns a Store that forgets everything on exit.
func NewMemoryStore() *Store {
	return NewStore(&memoryKV{items: map[string]string{}})
}

// Load returns the stored session; an empty Session when logged out.
func (s *Store) Load(ctx context.Context) (Session, error) {
	token, _, err := s.kv.GetItem(ctx, KeyToken)
	if err != nil {
		return Session{}, errors.Wrap(err, "load session token")
	}
	name, _, err := s.kv.GetItem(ctx, KeyUserName)
	if err != nil {
		return Session{}, errors.Wrap(err, "load session user")
	}
	return Session{Token: token, UserName: name}, nil
}

// Require loads the session and fails with ErrNotAuthenticated when no
// token is stored.
func (s *Store) Require(ctx context.Context) (Session, error) {
	sess, err := s.Load(ctx)
	if err != nil {
		return Session{}, err
	}
	if !sess.Authenticated() {
		return Session{}, errors.WithHint(errors.ErrNotAuthenticated, "run 'jobtrack login' first")
	}
	return sess, nil
}

// Save persists sess.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if err := s.kv.SetItem(ctx, KeyToken, sess.Token); err != nil {
		return errors.Wrap(err, "save session token")
	}
	if err := s.kv.SetItem(ctx, KeyUserName, sess.UserName); err != nil {
		return errors.Wrap(err, "save session user")
	}
	return nil
}

// Clear removes the stored session.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, KeyToken); err != nil {
		return errors.Wrap(err, "clear session token")
	}
	if err := s.kv.RemoveItem(ctx, KeyUserName); err != nil {
		return errors.Wrap(err, "clear session user")
	}
	return nil
}

type memoryKV struct {
	mu    sync.Mutex
	items map[string]string
}

func (m *memoryKV) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memoryKV) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memoryKV) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

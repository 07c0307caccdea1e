package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vanguard/internal/client/models"
)

// Key is a schema key bound to its value type. Only the keys declared in
// this package carry a name; the zero Key is rejected with ErrUndeclaredKey.
type Key[T any] struct {
	name string
}

func (k Key[T]) String() string { return k.name }

func (k Key[T]) check(op string) error {
	if k.name == "" {
		return fmt.Errorf("failed to %s store: %w", op, ErrUndeclaredKey)
	}
	return nil
}

var (
	ServerHostKey = Key[models.AccessHost]{name: "serverHost"}
	SelfHostedKey = Key[models.SelfHostedConfig]{name: "selfHosted"}
	EmailKey      = Key[string]{name: "email"}
)

// Store is the typed front of a Backend.
type Store struct {
	backend Backend

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Store writing through b.
func New(b Backend) *Store {
	return &Store{backend: b, locks: make(map[string]*sync.Mutex)}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get reads k. A missing key (or a JSON null) yields ok=false and no error.
func Get[T any](ctx context.Context, s *Store, k Key[T]) (v T, ok bool, err error) {
	if err := k.check("get"); err != nil {
		return v, false, err
	}
	raw, ok, err := s.backend.Load(ctx, k.name)
	if err != nil || !ok {
		return v, false, err
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("failed to decode store[%s]: %w: %w", k.name, ErrStorageUnavailable, err)
	}
	return v, true, nil
}

// Set writes v under k.
func Set[T any](ctx context.Context, s *Store, k Key[T], v T) error {
	if err := k.check("set"); err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode store[%s]: %w", k.name, err)
	}

	l := s.keyLock(k.name)
	l.Lock()
	defer l.Unlock()
	return s.backend.Save(ctx, k.name, raw)
}

// Delete removes k. Deleting an absent key is not an error.
func Delete[T any](ctx context.Context, s *Store, k Key[T]) error {
	if err := k.check("delete"); err != nil {
		return err
	}
	l := s.keyLock(k.name)
	l.Lock()
	defer l.Unlock()
	return s.backend.Remove(ctx, k.name)
}

// The accessors below give components narrow, non-generic capabilities
// they can declare as interfaces.

// ServerHost returns the persisted access host.
func (s *Store) ServerHost(ctx context.Context) (models.AccessHost, bool, error) {
	return Get(ctx, s, ServerHostKey)
}

// SetServerHost persists the access host.
func (s *Store) SetServerHost(ctx context.Context, h models.AccessHost) error {
	return Set(ctx, s, ServerHostKey, h)
}

// SelfHosted returns the persisted self-hosted configuration.
func (s *Store) SelfHosted(ctx context.Context) (models.SelfHostedConfig, bool, error) {
	return Get(ctx, s, SelfHostedKey)
}

// SetSelfHosted persists the self-hosted configuration.
func (s *Store) SetSelfHosted(ctx context.Context, c models.SelfHostedConfig) error {
	return Set(ctx, s, SelfHostedKey, c)
}

// Email returns the remembered login email.
func (s *Store) Email(ctx context.Context) (string, bool, error) {
	return Get(ctx, s, EmailKey)
}

// SetEmail remembers the login email.
func (s *Store) SetEmail(ctx context.Context, email string) error {
	return Set(ctx, s, EmailKey, email)
}

// DeleteEmail forgets the login email.
func (s *Store) DeleteEmail(ctx context.Context) error {
	return Delete(ctx, s, EmailKey)
}

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vanguard/internal/client/models"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	return New(NewFileBackend(path)), path
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestFileStore_MissingFileReadsAbsent(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	_, ok, err := s.Email(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.SelfHosted(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_SetGetDelete(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetServerHost(ctx, models.HostSelfHosted))
	require.NoError(t, s.SetEmail(ctx, "user@example.com"))
	require.NoError(t, s.SetSelfHosted(ctx, models.SelfHostedConfig{ServerURL: "https://vault.example.com"}))

	h, ok, err := s.ServerHost(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.HostSelfHosted, h)

	assert.Equal(t, map[string]any{
		"serverHost": "self-hosted",
		"email":      "user@example.com",
		"selfHosted": map[string]any{"serverUrl": "https://vault.example.com"},
	}, readDoc(t, path))

	require.NoError(t, s.DeleteEmail(ctx))
	_, ok, err = s.Email(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, readDoc(t, path), "email")

	// deleting again is fine
	require.NoError(t, s.DeleteEmail(ctx))
}

func TestFileStore_SelfHostedRoundTripIsIdempotent(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	in := models.SelfHostedConfig{ServerURL: "https://vault.example.com"}
	require.NoError(t, s.SetSelfHosted(ctx, in))

	got, ok, err := s.SelfHosted(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, got)

	require.NoError(t, s.SetSelfHosted(ctx, got))
	again, _, err := s.SelfHosted(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFileStore_UnknownKeysIgnoredAndPreserved(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark","email":"a@b.io"}`), 0o600))

	email, ok, err := s.Email(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@b.io", email)

	require.NoError(t, s.SetServerHost(ctx, models.HostBitwardenEU))
	assert.Equal(t, "dark", readDoc(t, path)["theme"])
}

func TestFileStore_NullReadsAbsent(t *testing.T) {
	s, path := newFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"email":null}`), 0o600))

	_, ok, err := s.Email(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_MalformedDocumentIsUnavailable(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{ not json`), 0o600))

	_, _, err := s.Email(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)

	err = s.SetEmail(ctx, "a@b.io")
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "failed to set store[email]")
}

func TestFileStore_NullDocument(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("null\n"), 0o600))

	_, _, err := s.Email(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)

	require.NotPanics(t, func() {
		err = s.SetEmail(ctx, "user@example.com")
	})
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorContains(t, err, "not a JSON object")

	data, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, "null\n", string(data))
}

func TestStore_ZeroKeyIsRejected(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()
	var k Key[int]

	require.ErrorIs(t, Set(ctx, s, k, 42), ErrUndeclaredKey)
	_, ok, err := Get(ctx, s, k)
	require.ErrorIs(t, err, ErrUndeclaredKey)
	assert.False(t, ok)
	require.ErrorIs(t, Delete(ctx, s, k), ErrUndeclaredKey)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_WrongValueTypeIsUnavailable(t *testing.T) {
	s, path := newFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"selfHosted":"oops"}`), 0o600))

	_, _, err := s.SelfHosted(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestFileStore_UnwritableLocationIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	// parent "directory" is a regular file
	s := New(NewFileBackend(filepath.Join(blocker, DefaultFileName)))
	err := s.SetEmail(context.Background(), "a@b.io")
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestFileStore_CanceledContext(t *testing.T) {
	s, _ := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.SetEmail(ctx, "a@b.io"), context.Canceled)
}

// slowBackend delays the first Save so that a later write would finish first
// if writes to a key were not serialized.
type slowBackend struct {
	*FileBackend
	once    sync.Once
	started chan struct{}
}

func (b *slowBackend) Save(ctx context.Context, key string, value json.RawMessage) error {
	slow := false
	b.once.Do(func() { slow = true })
	if slow {
		close(b.started)
		time.Sleep(50 * time.Millisecond)
	}
	return b.FileBackend.Save(ctx, key, value)
}

func TestStore_WritesToSameKeyAreSerialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	b := &slowBackend{FileBackend: NewFileBackend(path), started: make(chan struct{})}
	s := New(b)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.SetEmail(ctx, "first@example.com"))
	}()

	<-b.started
	require.NoError(t, s.SetEmail(ctx, "second@example.com"))
	wg.Wait()

	got, _, err := s.Email(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second@example.com", got)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "redis", "x")
	require.Error(t, err)
}

func TestOpen_JSONDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	s, err := Open(context.Background(), DriverJSON, path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetEmail(context.Background(), "a@b.io"))
	_, err = os.Stat(path)
	require.NoError(t, err)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/vanguard/internal/filex"
)

// DefaultFileName is the name of the store document.
const DefaultFileName = "app.store.json"

var errNotObject = errors.New("store document is not a JSON object")

// FileBackend keeps all keys in a single JSON object on disk. Each change
// rewrites the document through a temporary file, fsync and rename, so a
// crash leaves either the old or the new document. Keys it does not know
// about are carried over untouched.
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend returns a backend for the document at path. Nothing is
// touched on disk until the first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the location of the store document.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Load(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return nil, false, unavailable("get", key, err)
	}
	v, ok := doc[key]
	return v, ok, nil
}

func (b *FileBackend) Save(ctx context.Context, key string, value json.RawMessage) error {
	return b.update(ctx, "set", key, func(doc map[string]json.RawMessage) {
		doc[key] = value
	})
}

func (b *FileBackend) Remove(ctx context.Context, key string) error {
	return b.update(ctx, "delete", key, func(doc map[string]json.RawMessage) {
		delete(doc, key)
	})
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) update(ctx context.Context, op, key string, mutate func(map[string]json.RawMessage)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return unavailable(op, key, err)
	}
	mutate(doc)
	if err := b.write(doc); err != nil {
		return unavailable(op, key, err)
	}
	return nil
}

func (b *FileBackend) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)

	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", b.path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing %s: %w", b.path, errNotObject)
	}
	return doc, nil
}

func (b *FileBackend) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir, err := filex.EnsureParentDir(b.path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temporary store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary store file: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming store file: %w", err)
	}
	return nil
}

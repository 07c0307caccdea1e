package store

import (
	"context"
	"encoding/json"
)

// Backend persists raw JSON values by key. Load reports ok=false for missing
// keys and never fails because a key is absent. Save and Remove return only
// once the change is durable.
type Backend interface {
	Load(ctx context.Context, key string) (value json.RawMessage, ok bool, err error)
	Save(ctx context.Context, key string, value json.RawMessage) error
	Remove(ctx context.Context, key string) error
	Close() error
}

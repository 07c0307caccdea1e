// Package store is the typed local key/value store of the client.
//
// The schema is fixed: only the keys declared in this package (ServerHostKey,
// SelfHostedKey, EmailKey) exist, and each carries its value type, so reading
// an undeclared key or writing a value of the wrong type does not compile.
//
// Values are JSON-encoded and kept by a Backend:
//
//   - FileBackend writes one JSON document (app.store.json) and replaces it
//     atomically on every change.
//   - SQLiteBackend keeps one row per key in a goose-migrated SQLite file.
//
// Every Set/Delete is durable when it returns. Writes to the same key are
// serialized, so a slow write issued first can never overwrite a later one.
// Backend failures are reported as ErrStorageUnavailable.
package store

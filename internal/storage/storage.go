// Package storage defines the blob store abstraction the publisher writes
// published artifacts through.
package storage

import "context"

// BlobStore persists a published artifact and returns its URI. Writes must be
// atomic from a reader's point of view: a concurrent reader sees either the
// previous artifact or the new one, never a torn file.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

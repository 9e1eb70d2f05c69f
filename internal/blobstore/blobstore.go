package blobstore

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=blobstore.go -destination=mocks/mock.go

// Store persists binary artifacts under a key, overwriting any previous
// value.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

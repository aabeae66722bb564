package blobstore

import (
	"context"
	"io"
)

// BlobStore is the byte-storage abstraction used by CollectionService.
// Content is addressed solely by the owning clip's id.
type BlobStore interface {
	Put(ctx context.Context, r io.Reader) (string, error)
	PutFile(ctx context.Context, sourcePath string) (string, error)
	PutAs(ctx context.Context, id string, r io.Reader) error
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Path(id string) string
	Reference(id string) string
}

package blobstore

import (
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

const fallbackMediaType = "application/octet-stream"

// SniffMediaType detects the content type of a stored blob from its header bytes.
func SniffMediaType(ctx context.Context, store BlobStore, id string) (string, error) {
	rc, err := store.Open(ctx, id)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return sniffReader(rc)
}

func sniffReader(r io.Reader) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	if mtype == nil {
		return fallbackMediaType, nil
	}
	return mtype.String(), nil
}

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	blobExtension = ".gif"
	tmpPattern    = ".put-*"
)

var (
	// ErrInvalidID is returned for ids that are not canonical UUIDs.
	ErrInvalidID = errors.New("invalid blob id")
	// ErrNotFound is returned when opening content that is not on disk.
	ErrNotFound = errors.New("blob not found")
)

// LocalDir stores one file per clip, named <id>.gif, in a flat directory.
type LocalDir struct {
	root string
}

var _ BlobStore = (*LocalDir)(nil)

// NewLocalDir creates the blob directory if needed and returns a store rooted there.
func NewLocalDir(root string) (*LocalDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &LocalDir{root: abs}, nil
}

// Root returns the absolute blob directory.
func (d *LocalDir) Root() string {
	if d == nil {
		return ""
	}
	return d.root
}

// Put writes r under a freshly generated id.
func (d *LocalDir) Put(ctx context.Context, r io.Reader) (string, error) {
	id := uuid.NewString()
	if err := d.PutAs(ctx, id, r); err != nil {
		return "", err
	}
	return id, nil
}

// PutFile copies an existing file byte-for-byte under a fresh id.
func (d *LocalDir) PutFile(ctx context.Context, sourcePath string) (string, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("open source %s: %w", sourcePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("source %s is a directory", sourcePath)
	}
	return d.Put(ctx, f)
}

// PutAs writes r under a caller-chosen id. Used when importing content that
// already has an identity.
func (d *LocalDir) PutAs(ctx context.Context, id string, r io.Reader) error {
	if d == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return fmt.Errorf("reader is required")
	}
	if err := validateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, tmpPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, d.Path(id)); err != nil {
		cleanup()
		return err
	}
	return nil
}

// Open returns a reader for the content of id.
func (d *LocalDir) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if d == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(d.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return f, err
}

// Exists reports whether content for id is on disk without reading it.
func (d *LocalDir) Exists(ctx context.Context, id string) (bool, error) {
	if d == nil {
		return false, fmt.Errorf("blob store is not configured")
	}
	if err := validateID(id); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(d.Path(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Delete removes content for id. Missing files are ignored.
func (d *LocalDir) Delete(ctx context.Context, id string) error {
	if d == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := validateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(d.Path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the ids of all blobs on disk. Stray files are skipped.
func (d *LocalDir) List(ctx context.Context) ([]string, error) {
	if d == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, blobExtension) {
			continue
		}
		id := strings.TrimSuffix(name, blobExtension)
		if validateID(id) != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Path computes the on-disk location for id. It does no I/O.
func (d *LocalDir) Path(id string) string {
	return filepath.Join(d.root, id+blobExtension)
}

// Reference returns a file:// URI the UI can load directly.
func (d *LocalDir) Reference(id string) string {
	return FileURI(d.Path(id))
}

// FileURI turns a local path into a file:// URI with forward slashes,
// whatever separator the host uses.
func FileURI(path string) string {
	p := strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

func validateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

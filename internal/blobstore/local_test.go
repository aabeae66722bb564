package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var tinyGIF = []byte("GIF89a\x01\x00\x01\x00\x00")

func newTestDir(t *testing.T) *LocalDir {
	t.Helper()
	dir, err := NewLocalDir(filepath.Join(t.TempDir(), "gifs"))
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	return dir
}

func TestLocalDirPutOpenDelete(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()

	id, err := d.Put(ctx, bytes.NewReader(tinyGIF))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if filepath.Base(d.Path(id)) != id+".gif" {
		t.Fatalf("unexpected path %q for id %q", d.Path(id), id)
	}

	ok, err := d.Exists(ctx, id)
	if err != nil || !ok {
		t.Fatalf("expected blob to exist, ok=%v err=%v", ok, err)
	}

	rc, err := d.Open(ctx, id)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, tinyGIF) {
		t.Fatalf("content mismatch: %q", data)
	}

	if err := d.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := d.Delete(ctx, id); err != nil {
		t.Fatalf("delete missing should be noop: %v", err)
	}
	ok, err = d.Exists(ctx, id)
	if err != nil || ok {
		t.Fatalf("expected blob to be gone, ok=%v err=%v", ok, err)
	}
	if _, err := d.Open(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalDirPutGeneratesDistinctIDs(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()

	first, err := d.Put(ctx, bytes.NewReader(tinyGIF))
	if err != nil {
		t.Fatalf("put first: %v", err)
	}
	second, err := d.Put(ctx, bytes.NewReader(tinyGIF))
	if err != nil {
		t.Fatalf("put second: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
}

func TestLocalDirPutFileCopiesBytes(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "source.gif")
	payload := append([]byte{}, tinyGIF...)
	payload = append(payload, 0x00, 0xff, 0x3b)
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	id, err := d.PutFile(ctx, src)
	if err != nil {
		t.Fatalf("put file: %v", err)
	}
	got, err := os.ReadFile(d.Path(id))
	if err != nil {
		t.Fatalf("read stored: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected byte-identical copy")
	}

	if _, err := d.PutFile(ctx, filepath.Join(t.TempDir(), "missing.gif")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error for missing source, got %v", err)
	}
}

func TestLocalDirRejectsInvalidIDs(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()

	for _, id := range []string{"", "../etc/passwd", "not-a-uuid", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"} {
		if err := d.Delete(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("delete %q: expected ErrInvalidID, got %v", id, err)
		}
		if _, err := d.Exists(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("exists %q: expected ErrInvalidID, got %v", id, err)
		}
	}
}

func TestLocalDirListSkipsStrayFiles(t *testing.T) {
	d := newTestDir(t)
	ctx := context.Background()

	id, err := d.Put(ctx, bytes.NewReader(tinyGIF))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d.Root(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d.Root(), "bogus.gif"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray gif: %v", err)
	}

	ids, err := d.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("expected [%s], got %v", id, ids)
	}
}

func TestLocalDirHonoursCancelledContext(t *testing.T) {
	d := newTestDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Put(ctx, bytes.NewReader(tinyGIF)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	entries, err := os.ReadDir(d.Root())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files after cancelled put, got %d", len(entries))
	}
}

func TestFileURI(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/home/me/gifs/a.gif", want: "file:///home/me/gifs/a.gif"},
		{path: `C:\Users\me\gifs\a.gif`, want: "file:///C:/Users/me/gifs/a.gif"},
	}
	for _, tt := range tests {
		if got := FileURI(tt.path); got != tt.want {
			t.Fatalf("FileURI(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	d := newTestDir(t)
	ref := d.Reference("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if !strings.HasPrefix(ref, "file:///") || strings.Contains(ref, `\`) {
		t.Fatalf("unexpected reference %q", ref)
	}
}

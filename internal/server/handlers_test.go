package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gifstash/internal/api"
	"gifstash/internal/clipboard"
)

type fakeCopier struct {
	paths  []string
	result clipboard.Result
	err    error
}

func (f *fakeCopier) Copy(ctx context.Context, path string) (clipboard.Result, error) {
	f.paths = append(f.paths, path)
	return f.result, f.err
}

type apiHarness struct {
	env    *testEnv
	copier *fakeCopier
	client *api.Client
	url    string
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	t.Setenv(apiTokenEnvKey, "")
	t.Setenv(adminTokenEnvKey, "")

	env := newTestEnv(t)
	copier := &fakeCopier{result: clipboard.Result{Success: true, Method: clipboard.MethodFile}}
	srv := New("127.0.0.1:0", env.service, Options{DBPath: "test.db", BlobDir: env.blobs.Root(), Clipboard: copier})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &apiHarness{env: env, copier: copier, client: api.NewClient(ts.URL), url: ts.URL}
}

func requireAPIError(t *testing.T, err error, status, code int) {
	t.Helper()
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.APIError, got %T (%v)", err, err)
	}
	if apiErr.Status != status || apiErr.ErrorCode != code {
		t.Fatalf("expected %d/%d, got %d/%d (%s)", status, code, apiErr.Status, apiErr.ErrorCode, apiErr.Message)
	}
}

func TestClipLifecycleOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()

	created, err := h.client.AddClip(ctx, api.ClipCreateRequest{Name: " Happy Dance ", SourceData: gifDataURL(tenByteGIF), SourceType: "dataUrl"})
	if err != nil {
		t.Fatalf("add clip: %v", err)
	}
	if created.Name != "Happy Dance" || !strings.HasPrefix(created.FilePath, "file://") {
		t.Fatalf("unexpected created clip: %+v", created)
	}

	label, err := h.client.CreateLabel(ctx, "reactions")
	if err != nil {
		t.Fatalf("create label: %v", err)
	}
	if err := h.client.AttachLabel(ctx, created.ID, label.ID); err != nil {
		t.Fatalf("attach: %v", err)
	}

	got, err := h.client.GetClip(ctx, created.ID)
	if err != nil {
		t.Fatalf("get clip: %v", err)
	}
	if got == nil || len(got.Tags) != 1 || got.Tags[0].Name != "reactions" {
		t.Fatalf("unexpected clip: %+v", got)
	}

	fav := true
	updated, err := h.client.UpdateClip(ctx, created.ID, api.ClipUpdateRequest{IsFavorite: &fav})
	if err != nil {
		t.Fatalf("update clip: %v", err)
	}
	if !updated.IsFavorite || updated.Name != "Happy Dance" {
		t.Fatalf("unexpected updated clip: %+v", updated)
	}

	results, err := h.client.SearchClips(ctx, "happy")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != created.ID {
		t.Fatalf("unexpected search results: %+v", results)
	}

	byLabel, err := h.client.ClipsForLabel(ctx, label.ID)
	if err != nil {
		t.Fatalf("clips for label: %v", err)
	}
	if len(byLabel) != 1 {
		t.Fatalf("expected one clip for label, got %d", len(byLabel))
	}

	path, err := h.client.ClipFilePath(ctx, created.ID)
	if err != nil {
		t.Fatalf("clip path: %v", err)
	}
	if path != h.env.blobs.Path(created.ID) {
		t.Fatalf("unexpected path %q", path)
	}

	var content bytes.Buffer
	if err := h.client.ClipContent(ctx, created.ID, &content); err != nil {
		t.Fatalf("clip content: %v", err)
	}
	if content.String() != tenByteGIF {
		t.Fatalf("unexpected content %q", content.String())
	}

	if err := h.client.DeleteClip(ctx, created.ID); err != nil {
		t.Fatalf("delete clip: %v", err)
	}
	gone, err := h.client.GetClip(ctx, created.ID)
	if err != nil {
		t.Fatalf("get deleted clip: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected nil after delete, got %+v", gone)
	}
	if err := h.client.DeleteClip(ctx, created.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestClipErrorsOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()
	missing := "00000000-0000-0000-0000-000000000000"

	_, err := h.client.AddClip(ctx, api.ClipCreateRequest{Name: "  ", SourceData: gifDataURL(tenByteGIF)})
	requireAPIError(t, err, http.StatusBadRequest, ErrCodeInvalidName)

	_, err = h.client.AddClip(ctx, api.ClipCreateRequest{Name: "x", SourceData: "data:image/gif;base64"})
	requireAPIError(t, err, http.StatusBadRequest, ErrCodeInvalidSource)

	name := "y"
	_, err = h.client.UpdateClip(ctx, missing, api.ClipUpdateRequest{Name: &name})
	requireAPIError(t, err, http.StatusNotFound, ErrCodeClipNotFound)

	_, err = h.client.ClipFilePath(ctx, missing)
	requireAPIError(t, err, http.StatusNotFound, ErrCodeClipNotFound)

	_, err = h.client.CopyClip(ctx, missing)
	requireAPIError(t, err, http.StatusNotFound, ErrCodeClipNotFound)

	err = h.client.DeleteClip(ctx, "not-a-uuid")
	requireAPIError(t, err, http.StatusBadRequest, ErrCodeInvalidID)
}

func TestLabelErrorsOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()

	if _, err := h.client.CreateLabel(ctx, "x"); err != nil {
		t.Fatalf("create label: %v", err)
	}
	_, err := h.client.CreateLabel(ctx, "x")
	requireAPIError(t, err, http.StatusConflict, ErrCodeLabelExists)

	_, err = h.client.RenameLabel(ctx, 42, "z")
	requireAPIError(t, err, http.StatusNotFound, ErrCodeLabelNotFound)

	resp, err := http.Post(h.url+"/v1/clips/abc/labels/zero", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad label id, got %d", resp.StatusCode)
	}

	labels, err := h.client.ListLabels(ctx)
	if err != nil {
		t.Fatalf("list labels: %v", err)
	}
	if len(labels) != 1 {
		t.Fatalf("expected one label, got %+v", labels)
	}
	if err := h.client.DeleteLabel(ctx, labels[0].ID); err != nil {
		t.Fatalf("delete label: %v", err)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	h := newAPIHarness(t)

	resp, err := http.Post(h.url+"/v1/labels", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var errResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest || errResp.ErrorCode != ErrCodeInvalidJSON {
		t.Fatalf("unexpected response %d %+v", resp.StatusCode, errResp)
	}
}

func TestCopyClipOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()
	id := h.env.addClip(t, "copy me")

	resp, err := h.client.CopyClip(ctx, id)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if !resp.Success || resp.Method != "file" {
		t.Fatalf("unexpected copy response: %+v", resp)
	}
	if len(h.copier.paths) != 1 || h.copier.paths[0] != h.env.blobs.Path(id) {
		t.Fatalf("copier got %v", h.copier.paths)
	}

	h.copier.err = fmt.Errorf("%w: nothing installed", clipboard.ErrUnavailable)
	h.copier.result = clipboard.Result{}
	resp, err = h.client.CopyClip(ctx, id)
	if err != nil {
		t.Fatalf("copy with no clipboard: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected unsuccessful copy, got %+v", resp)
	}
}

func TestInfoAndAdminOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()
	h.env.addClip(t, "a")
	orphan, err := h.env.blobs.Put(ctx, strings.NewReader(tenByteGIF))
	if err != nil {
		t.Fatalf("put orphan: %v", err)
	}

	info, err := h.client.GetInfo(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.TotalClips != 1 || info.DBPath != "test.db" {
		t.Fatalf("unexpected info: %+v", info)
	}

	dry, err := h.client.AdminSweepOrphans(ctx, api.OrphanSweepRequest{DryRun: true})
	if err != nil {
		t.Fatalf("dry sweep: %v", err)
	}
	if len(dry.OrphanIDs) != 1 || dry.OrphanIDs[0] != orphan || dry.DeletedCount != 0 || dry.ReclaimedBytes != int64(len(tenByteGIF)) {
		t.Fatalf("unexpected dry sweep: %+v", dry)
	}

	swept, err := h.client.AdminSweepOrphans(ctx, api.OrphanSweepRequest{})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept.DeletedCount != 1 {
		t.Fatalf("unexpected sweep: %+v", swept)
	}
	if exists, _ := h.env.blobs.Exists(ctx, orphan); exists {
		t.Fatal("orphan should be deleted")
	}

	req, _ := http.NewRequest(http.MethodPost, h.url+"/v1/admin/gc", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("empty-body gc: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for empty-body gc, got %d: %s", resp.StatusCode, body)
	}
}

func TestAdminImportLegacyOverHTTP(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()
	path := writeLegacyCollection(t)

	resp, err := h.client.AdminImportLegacy(ctx, api.LegacyImportRequest{Path: path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if resp.ClipsImported != 2 {
		t.Fatalf("unexpected import response: %+v", resp)
	}

	_, err = h.client.AdminImportLegacy(ctx, api.LegacyImportRequest{Path: path + ".missing"})
	requireAPIError(t, err, http.StatusBadRequest, ErrCodeInvalidArgument)

	_, err = h.client.AdminImportLegacy(ctx, api.LegacyImportRequest{})
	requireAPIError(t, err, http.StatusBadRequest, ErrCodeMissingRequired)
}

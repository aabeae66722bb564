package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"gifstash/internal/api"
	"gifstash/internal/blobstore"
	"gifstash/internal/models"
	"gifstash/internal/store"
)

// CollectionService is the only component that touches both the metadata
// store and the blob store. Every ordering rule between the two lives here.
//
// blobMu is held shared by operations that write a blob before its row exists
// and exclusively by SweepOrphans, so a sweep never sees a half-added clip.
type CollectionService struct {
	store  store.CollectionStore
	blobs  blobstore.BlobStore
	now    func() time.Time
	blobMu sync.RWMutex
}

// AddClipInput describes a clip to create. Source is a filesystem path or a
// data URL; SourceKind may be empty, in which case it is inferred.
type AddClipInput struct {
	Name       string
	Source     string
	SourceKind string
}

// ClipPatch is a partial clip update. Nil fields are left unchanged.
type ClipPatch struct {
	Name       *string
	IsFavorite *bool
}

// ClipContent is an open stream of a clip's bytes.
type ClipContent struct {
	Reader    io.ReadCloser
	MediaType string
	Path      string
}

// NewCollectionService constructs a CollectionService.
func NewCollectionService(metadata store.CollectionStore, blobs blobstore.BlobStore) *CollectionService {
	return &CollectionService{store: metadata, blobs: blobs, now: time.Now}
}

// AddClip stores the content first and only then inserts the clip row. If the
// insert fails the blob is left behind; SweepOrphans reclaims it.
func (s *CollectionService) AddClip(ctx context.Context, in AddClipInput) (api.ClipResponse, error) {
	var resp api.ClipResponse

	name, err := models.NormalizeName(in.Name)
	if err != nil {
		return resp, badRequestCode(err, ErrCodeInvalidName)
	}
	kind, err := models.ParseSourceKind(in.SourceKind, in.Source)
	if err != nil {
		return resp, badRequestCode(err, ErrCodeInvalidSourceType)
	}

	s.blobMu.RLock()
	defer s.blobMu.RUnlock()

	var id string
	switch kind {
	case models.SourceKindDataURL:
		payload, _, err := blobstore.DecodeDataURI(in.Source)
		if err != nil {
			return resp, badRequestCode(err, ErrCodeInvalidSource)
		}
		id, err = s.blobs.Put(ctx, bytes.NewReader(payload))
		if err != nil {
			return resp, mapBlobError(err)
		}
	default:
		source := strings.TrimSpace(in.Source)
		if err := validateSourceFile(source); err != nil {
			return resp, err
		}
		id, err = s.blobs.PutFile(ctx, source)
		if err != nil {
			return resp, mapBlobError(err)
		}
	}

	clip := &models.Clip{ID: id, Name: name, CreatedAt: s.now().UnixMilli()}
	if err := s.store.InsertClip(ctx, clip); err != nil {
		return resp, mapStoreError(err)
	}
	return s.compose(*clip, nil), nil
}

// GetClip returns the composed view, or nil when the clip row is absent.
func (s *CollectionService) GetClip(ctx context.Context, id string) (*api.ClipResponse, error) {
	clip, err := s.store.GetClip(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if clip == nil {
		return nil, nil
	}
	labels, err := s.store.LabelsForClip(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	view := s.compose(*clip, labels)
	return &view, nil
}

// ListClips returns every clip, newest first.
func (s *CollectionService) ListClips(ctx context.Context) ([]api.ClipResponse, error) {
	clips, err := s.store.ListClips(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return s.composeAll(ctx, clips)
}

// UpdateClip applies patch and returns the fresh view. A clip that is gone
// after the update is reported as not found.
func (s *CollectionService) UpdateClip(ctx context.Context, id string, patch ClipPatch) (api.ClipResponse, error) {
	var resp api.ClipResponse

	update := models.ClipUpdate{IsFavorite: patch.IsFavorite}
	if patch.Name != nil {
		name, err := models.NormalizeName(*patch.Name)
		if err != nil {
			return resp, badRequestCode(err, ErrCodeInvalidName)
		}
		update.Name = &name
	}

	if !update.IsEmpty() {
		if err := s.store.UpdateClip(ctx, id, update); err != nil {
			return resp, mapStoreError(err)
		}
	}

	view, err := s.GetClip(ctx, id)
	if err != nil {
		return resp, err
	}
	if view == nil {
		return resp, errClipNotFound(id)
	}
	return *view, nil
}

// DeleteClip removes the blob before the row. Both steps tolerate earlier
// partial deletions, so repeating the call is safe.
func (s *CollectionService) DeleteClip(ctx context.Context, id string) error {
	s.blobMu.RLock()
	defer s.blobMu.RUnlock()

	if err := s.blobs.Delete(ctx, id); err != nil {
		return mapBlobError(err)
	}
	if err := s.store.DeleteClip(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// SearchClips matches names case-insensitively. A blank query lists everything.
func (s *CollectionService) SearchClips(ctx context.Context, query string) ([]api.ClipResponse, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListClips(ctx)
	}
	clips, err := s.store.SearchClips(ctx, query)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return s.composeAll(ctx, clips)
}

// ClipFilePath returns the on-disk location of a clip's content.
func (s *CollectionService) ClipFilePath(ctx context.Context, id string) (string, error) {
	exists, err := s.store.ClipExists(ctx, id)
	if err != nil {
		return "", mapStoreError(err)
	}
	if !exists {
		return "", errClipNotFound(id)
	}
	return s.blobs.Path(id), nil
}

// OpenClipContent opens the stored bytes of a clip. The caller closes Reader.
func (s *CollectionService) OpenClipContent(ctx context.Context, id string) (*ClipContent, error) {
	path, err := s.ClipFilePath(ctx, id)
	if err != nil {
		return nil, err
	}
	mediaType, err := blobstore.SniffMediaType(ctx, s.blobs, id)
	if err != nil {
		return nil, mapBlobError(err)
	}
	rc, err := s.blobs.Open(ctx, id)
	if err != nil {
		return nil, mapBlobError(err)
	}
	return &ClipContent{Reader: rc, MediaType: mediaType, Path: path}, nil
}

// AttachLabel links a label to a clip. Attaching twice is a no-op.
func (s *CollectionService) AttachLabel(ctx context.Context, clipID string, labelID int64) error {
	if err := s.store.AttachLabel(ctx, clipID, labelID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.missingAttachTarget(ctx, clipID, labelID)
		}
		return mapStoreError(err)
	}
	return nil
}

// DetachLabel unlinks a label from a clip. Detaching an absent pair is a no-op.
func (s *CollectionService) DetachLabel(ctx context.Context, clipID string, labelID int64) error {
	return mapStoreError(s.store.DetachLabel(ctx, clipID, labelID))
}

// ClipsForLabel returns the clips carrying labelID, skipping ids whose clip
// row has vanished in the meantime.
func (s *CollectionService) ClipsForLabel(ctx context.Context, labelID int64) ([]api.ClipResponse, error) {
	ids, err := s.store.ClipIDsForLabel(ctx, labelID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	clips := make([]models.Clip, 0, len(ids))
	for _, id := range ids {
		clip, err := s.store.GetClip(ctx, id)
		if err != nil {
			return nil, mapStoreError(err)
		}
		if clip == nil {
			continue
		}
		clips = append(clips, *clip)
	}
	return s.composeAll(ctx, clips)
}

// ListLabels returns all labels ordered by name.
func (s *CollectionService) ListLabels(ctx context.Context) ([]models.Label, error) {
	labels, err := s.store.ListLabels(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if labels == nil {
		labels = []models.Label{}
	}
	return labels, nil
}

// CreateLabel adds a label. Names are unique, compared case-sensitively.
func (s *CollectionService) CreateLabel(ctx context.Context, rawName string) (models.Label, error) {
	name, err := models.NormalizeName(rawName)
	if err != nil {
		return models.Label{}, badRequestCode(err, ErrCodeInvalidName)
	}
	label, err := s.store.InsertLabel(ctx, name)
	if err != nil {
		return models.Label{}, mapStoreError(err)
	}
	return *label, nil
}

// RenameLabel changes a label's name and returns the updated label.
func (s *CollectionService) RenameLabel(ctx context.Context, id int64, rawName string) (models.Label, error) {
	name, err := models.NormalizeName(rawName)
	if err != nil {
		return models.Label{}, badRequestCode(err, ErrCodeInvalidName)
	}
	if err := s.store.UpdateLabel(ctx, id, name); err != nil {
		return models.Label{}, mapStoreError(err)
	}
	label, err := s.store.GetLabel(ctx, id)
	if err != nil {
		return models.Label{}, mapStoreError(err)
	}
	if label == nil {
		return models.Label{}, errLabelNotFound(id)
	}
	return *label, nil
}

// DeleteLabel removes a label and its associations.
func (s *CollectionService) DeleteLabel(ctx context.Context, id int64) error {
	return mapStoreError(s.store.DeleteLabel(ctx, id))
}

// Info returns collection counters.
func (s *CollectionService) Info(ctx context.Context) (*store.StoreInfo, error) {
	info, err := s.store.StoreInfo(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return info, nil
}

func (s *CollectionService) missingAttachTarget(ctx context.Context, clipID string, labelID int64) error {
	exists, err := s.store.ClipExists(ctx, clipID)
	if err != nil {
		return mapStoreError(err)
	}
	if !exists {
		return errClipNotFound(clipID)
	}
	return errLabelNotFound(labelID)
}

func (s *CollectionService) compose(clip models.Clip, labels []models.Label) api.ClipResponse {
	if labels == nil {
		labels = []models.Label{}
	}
	return api.ClipResponse{
		ID:         clip.ID,
		Name:       clip.Name,
		CreatedAt:  clip.CreatedAt,
		IsFavorite: clip.IsFavorite,
		Tags:       labels,
		FilePath:   s.blobs.Reference(clip.ID),
	}
}

func (s *CollectionService) composeAll(ctx context.Context, clips []models.Clip) ([]api.ClipResponse, error) {
	out := make([]api.ClipResponse, 0, len(clips))
	if len(clips) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(clips))
	for _, clip := range clips {
		ids = append(ids, clip.ID)
	}
	labelsByClip, err := s.store.LabelsForClips(ctx, ids)
	if err != nil {
		return nil, mapStoreError(err)
	}
	for _, clip := range clips {
		out = append(out, s.compose(clip, labelsByClip[clip.ID]))
	}
	return out, nil
}

func validateSourceFile(path string) error {
	if path == "" {
		return badRequestCode(fmt.Errorf("source path is required"), ErrCodeMissingRequired)
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return badRequestCode(fmt.Errorf("source file not found: %s", path), ErrCodeInvalidSource)
	}
	if err != nil {
		return blobFailure(err)
	}
	if info.IsDir() {
		return badRequestCode(fmt.Errorf("source is a directory: %s", path), ErrCodeInvalidSource)
	}
	return nil
}

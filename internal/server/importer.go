package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"gifstash/internal/api"
	"gifstash/internal/models"
)

// LegacyDB is the flat-file JSON collection format that predates the SQLite
// store.
type LegacyDB struct {
	GIFs      []LegacyGIF    `json:"gifs"`
	Tags      []LegacyTag    `json:"tags"`
	GIFTags   []LegacyGIFTag `json:"gifTags"`
	NextTagID int64          `json:"nextTagId"`
}

type LegacyGIF struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  int64      `json:"created_at"`
	IsFavorite legacyFlag `json:"is_favorite"`
}

type LegacyTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LegacyGIFTag struct {
	GIFID string `json:"gif_id"`
	TagID int64  `json:"tag_id"`
}

// legacyFlag accepts 0/1 as well as JSON booleans.
type legacyFlag bool

func (f *legacyFlag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*f = false
		return nil
	case "true", "false":
		*f = string(data) == "true"
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid is_favorite value %s", data)
	}
	*f = n != 0
	return nil
}

// ReadLegacyDB loads a legacy collection file.
func ReadLegacyDB(path string) (LegacyDB, error) {
	var db LegacyDB
	data, err := os.ReadFile(path)
	if err != nil {
		return db, err
	}
	if err := json.Unmarshal(data, &db); err != nil {
		return db, fmt.Errorf("parse %s: %w", path, err)
	}
	return db, nil
}

// DefaultLegacyGIFDir is the content directory that sits beside a legacy
// collection file.
func DefaultLegacyGIFDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "gifs")
}

type legacyImportRun struct {
	db       LegacyDB
	gifDir   string
	dryRun   bool
	response api.LegacyImportResponse
	labelIDs map[int64]int64
	imported map[string]bool
}

// ImportLegacy copies clips, labels and associations from a legacy
// collection. Clip ids and timestamps are preserved; labels are matched by
// name. Clips that already exist are skipped.
func (s *CollectionService) ImportLegacy(ctx context.Context, db LegacyDB, gifDir string, dryRun bool) (api.LegacyImportResponse, error) {
	run := &legacyImportRun{
		db:       db,
		gifDir:   gifDir,
		dryRun:   dryRun,
		response: api.LegacyImportResponse{MissingFiles: []string{}, DryRun: dryRun},
		labelIDs: make(map[int64]int64, len(db.Tags)),
		imported: make(map[string]bool, len(db.GIFs)),
	}

	s.blobMu.RLock()
	defer s.blobMu.RUnlock()

	if err := s.importLegacyLabels(ctx, run); err != nil {
		return run.response, err
	}
	if err := s.importLegacyClips(ctx, run); err != nil {
		return run.response, err
	}
	if err := s.importLegacyAssociations(ctx, run); err != nil {
		return run.response, err
	}
	return run.response, nil
}

func (s *CollectionService) importLegacyLabels(ctx context.Context, run *legacyImportRun) error {
	for _, tag := range run.db.Tags {
		name, err := models.NormalizeName(tag.Name)
		if err != nil {
			continue
		}
		existing, err := s.store.GetLabelByName(ctx, name)
		if err != nil {
			return mapStoreError(err)
		}
		if existing != nil {
			run.labelIDs[tag.ID] = existing.ID
			run.response.LabelsReused++
			continue
		}
		run.response.LabelsCreated++
		if run.dryRun {
			run.labelIDs[tag.ID] = -tag.ID
			continue
		}
		label, err := s.store.InsertLabel(ctx, name)
		if err != nil {
			return mapStoreError(err)
		}
		run.labelIDs[tag.ID] = label.ID
	}
	return nil
}

func (s *CollectionService) importLegacyClips(ctx context.Context, run *legacyImportRun) error {
	for _, gif := range run.db.GIFs {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := uuid.Parse(gif.ID)
		if err != nil || id.String() != gif.ID {
			run.response.ClipsSkipped++
			continue
		}
		name, err := models.NormalizeName(gif.Name)
		if err != nil {
			run.response.ClipsSkipped++
			continue
		}
		exists, err := s.store.ClipExists(ctx, gif.ID)
		if err != nil {
			return mapStoreError(err)
		}
		if exists {
			run.response.ClipsSkipped++
			continue
		}

		source := filepath.Join(run.gifDir, gif.ID+".gif")
		if _, err := os.Stat(source); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				run.response.MissingFiles = append(run.response.MissingFiles, gif.ID)
				run.response.ClipsSkipped++
				continue
			}
			return blobFailure(err)
		}

		run.response.ClipsImported++
		run.imported[gif.ID] = true
		if run.dryRun {
			continue
		}

		if err := s.copyLegacyContent(ctx, gif.ID, source); err != nil {
			return err
		}
		createdAt := gif.CreatedAt
		if createdAt <= 0 {
			createdAt = s.now().UnixMilli()
		}
		clip := &models.Clip{ID: gif.ID, Name: name, CreatedAt: createdAt, IsFavorite: bool(gif.IsFavorite)}
		if err := s.store.InsertClip(ctx, clip); err != nil {
			return mapStoreError(err)
		}
	}
	return nil
}

func (s *CollectionService) copyLegacyContent(ctx context.Context, id, source string) error {
	f, err := os.Open(source)
	if err != nil {
		return blobFailure(err)
	}
	defer f.Close()
	if err := s.blobs.PutAs(ctx, id, f); err != nil {
		return mapBlobError(err)
	}
	return nil
}

func (s *CollectionService) importLegacyAssociations(ctx context.Context, run *legacyImportRun) error {
	seen := make(map[LegacyGIFTag]bool, len(run.db.GIFTags))
	for _, link := range run.db.GIFTags {
		if seen[link] || !run.imported[link.GIFID] {
			continue
		}
		seen[link] = true
		labelID, ok := run.labelIDs[link.TagID]
		if !ok {
			continue
		}
		run.response.AttachmentsLinked++
		if run.dryRun {
			continue
		}
		if err := s.store.AttachLabel(ctx, link.GIFID, labelID); err != nil {
			return mapStoreError(err)
		}
	}
	return nil
}

package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"gifstash/internal/api"
)

func (s *Server) handleAdminGC(w http.ResponseWriter, r *http.Request) {
	var req api.OrphanSweepRequest
	if !s.decodeOptionalJSONReq(w, r, &req) {
		return
	}

	s.withLimiter(w, r, s.adminLimiter, "admin", func() {
		resp, err := s.service.SweepOrphans(r.Context(), req.DryRun)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.log().Info("orphan sweep complete",
			"dry_run", resp.DryRun,
			"orphans", len(resp.OrphanIDs),
			"deleted", resp.DeletedCount,
			"failed", resp.FailedCount,
			"reclaimed_bytes", resp.ReclaimedBytes,
		)
		s.writeJSON(w, http.StatusOK, resp)
	})
}

func (s *Server) handleAdminImportLegacy(w http.ResponseWriter, r *http.Request) {
	var req api.LegacyImportRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		s.writeServiceError(w, r, badRequestCode(fmt.Errorf("path is required"), ErrCodeMissingRequired))
		return
	}
	gifDir := strings.TrimSpace(req.GIFDir)
	if gifDir == "" {
		gifDir = DefaultLegacyGIFDir(path)
	}

	s.withLimiter(w, r, s.adminLimiter, "admin", func() {
		db, err := ReadLegacyDB(path)
		if errors.Is(err, fs.ErrNotExist) {
			s.writeServiceError(w, r, badRequestCode(fmt.Errorf("legacy collection not found: %s", path), ErrCodeInvalidArgument))
			return
		}
		if err != nil {
			s.writeServiceError(w, r, badRequestCode(err, ErrCodeImportFailed))
			return
		}

		resp, err := s.service.ImportLegacy(r.Context(), db, gifDir, req.DryRun)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.log().Info("legacy import complete",
			"path", path,
			"dry_run", resp.DryRun,
			"clips_imported", resp.ClipsImported,
			"clips_skipped", resp.ClipsSkipped,
			"labels_created", resp.LabelsCreated,
		)
		s.writeJSON(w, http.StatusOK, resp)
	})
}

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"gifstash/internal/api"
	"gifstash/internal/clipboard"
)

func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	clips, err := s.service.ListClips(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clips)
}

func (s *Server) handleCreateClip(w http.ResponseWriter, r *http.Request) {
	var req api.ClipCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	clip, err := s.service.AddClip(r.Context(), AddClipInput{
		Name:       req.Name,
		Source:     req.SourceData,
		SourceKind: req.SourceType,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.log().Info("clip added", "clip_id", clip.ID, "name", clip.Name)
	s.writeJSON(w, http.StatusCreated, clip)
}

func (s *Server) handleSearchClips(w http.ResponseWriter, r *http.Request) {
	clips, err := s.service.SearchClips(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clips)
}

func (s *Server) handleGetClip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}

	clip, err := s.service.GetClip(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if clip == nil {
		s.writeServiceError(w, r, errClipNotFound(id))
		return
	}
	s.writeJSON(w, http.StatusOK, clip)
}

func (s *Server) handleUpdateClip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.ClipUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	clip, err := s.service.UpdateClip(r.Context(), id, ClipPatch{Name: req.Name, IsFavorite: req.IsFavorite})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clip)
}

func (s *Server) handleDeleteClip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.service.DeleteClip(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.log().Info("clip deleted", "clip_id", id)
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleClipPath(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}

	path, err := s.service.ClipFilePath(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ClipPathResponse{Path: path})
}

func (s *Server) handleClipContent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}

	content, err := s.service.OpenClipContent(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer content.Reader.Close()

	w.Header().Set("Content-Type", content.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", id+".gif"))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content.Reader); err != nil {
		s.log().Warn("stream clip content", "clip_id", id, "error", err)
	}
}

func (s *Server) handleCopyClip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}
	if s.clipboard == nil {
		s.writeServiceError(w, r, internalError(fmt.Errorf("clipboard is not configured")))
		return
	}

	path, err := s.service.ClipFilePath(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.withLimiter(w, r, s.copyLimiter, "copy", func() {
		result, err := s.clipboard.Copy(r.Context(), path)
		if errors.Is(err, clipboard.ErrUnavailable) {
			s.log().Warn("clipboard copy failed", "clip_id", id, "error", err)
			s.writeJSON(w, http.StatusOK, api.CopyResponse{Success: false})
			return
		}
		if err != nil {
			s.writeServiceError(w, r, makeAPIError(http.StatusInternalServerError, "internal", ErrCodeClipboardError, err))
			return
		}
		s.writeJSON(w, http.StatusOK, api.CopyResponse{Success: result.Success, Method: string(result.Method)})
	})
}

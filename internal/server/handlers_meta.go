package server

import (
	"net/http"

	"gifstash/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.Info(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := api.InfoResponse{
		DBPath:           s.dbPath,
		BlobDir:          s.blobDir,
		TotalClips:       info.TotalClips,
		FavoriteClips:    info.FavoriteClips,
		TotalLabels:      info.TotalLabels,
		TotalAttachments: info.TotalAttached,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

package server

import (
	"net/http"

	"gifstash/internal/api"
)

func (s *Server) handleListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.service.ListLabels(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleCreateLabel(w http.ResponseWriter, r *http.Request) {
	var req api.LabelRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	label, err := s.service.CreateLabel(r.Context(), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, label)
}

func (s *Server) handleRenameLabel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.labelIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.LabelRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	label, err := s.service.RenameLabel(r.Context(), id, req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, label)
}

func (s *Server) handleDeleteLabel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.labelIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.service.DeleteLabel(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) handleClipsForLabel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.labelIDOrBadRequest(w, r)
	if !ok {
		return
	}

	clips, err := s.service.ClipsForLabel(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clips)
}

func (s *Server) handleAttachLabel(w http.ResponseWriter, r *http.Request) {
	clipID, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}
	labelID, ok := s.labelIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.service.AttachLabel(r.Context(), clipID, labelID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetachLabel(w http.ResponseWriter, r *http.Request) {
	clipID, ok := s.clipIDOrBadRequest(w, r)
	if !ok {
		return
	}
	labelID, ok := s.labelIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.service.DetachLabel(r.Context(), clipID, labelID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

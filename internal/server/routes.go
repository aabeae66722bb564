package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Clips collection.
	mux.HandleFunc("GET /v1/clips", s.handleListClips)
	mux.HandleFunc("POST /v1/clips", s.handleCreateClip)
	mux.HandleFunc("GET /v1/clips/search", s.handleSearchClips)

	// Single clip.
	mux.HandleFunc("GET /v1/clips/{id}", s.handleGetClip)
	mux.HandleFunc("PATCH /v1/clips/{id}", s.handleUpdateClip)
	mux.HandleFunc("DELETE /v1/clips/{id}", s.handleDeleteClip)
	mux.HandleFunc("GET /v1/clips/{id}/path", s.handleClipPath)
	mux.HandleFunc("GET /v1/clips/{id}/content", s.handleClipContent)
	mux.HandleFunc("POST /v1/clips/{id}/copy", s.handleCopyClip)

	// Clip labels.
	mux.HandleFunc("POST /v1/clips/{id}/labels/{label_id}", s.handleAttachLabel)
	mux.HandleFunc("DELETE /v1/clips/{id}/labels/{label_id}", s.handleDetachLabel)

	// Labels.
	mux.HandleFunc("GET /v1/labels", s.handleListLabels)
	mux.HandleFunc("POST /v1/labels", s.handleCreateLabel)
	mux.HandleFunc("PATCH /v1/labels/{label_id}", s.handleRenameLabel)
	mux.HandleFunc("DELETE /v1/labels/{label_id}", s.handleDeleteLabel)
	mux.HandleFunc("GET /v1/labels/{label_id}/clips", s.handleClipsForLabel)

	// Admin.
	mux.HandleFunc("POST /v1/admin/gc", s.handleAdminGC)
	mux.HandleFunc("POST /v1/admin/import-legacy", s.handleAdminImportLegacy)

	return mux
}

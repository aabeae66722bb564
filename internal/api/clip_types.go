package api

import "gifstash/internal/models"

// ClipResponse is the composed view of a clip: metadata, labels and a
// reference the UI can load the content from.
type ClipResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	CreatedAt  int64          `json:"createdAt"`
	IsFavorite bool           `json:"isFavorite"`
	Tags       []models.Label `json:"tags"`
	FilePath   string         `json:"filePath"`
}

// ClipCreateRequest defines the payload for adding a clip. SourceData is a
// filesystem path or a data: URL; SourceType may be "file" or "data_url" and
// is inferred when empty.
type ClipCreateRequest struct {
	Name       string `json:"name"`
	SourceData string `json:"sourceData"`
	SourceType string `json:"sourceType,omitempty"`
}

// ClipUpdateRequest defines the payload for updating a clip.
type ClipUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	IsFavorite *bool   `json:"isFavorite,omitempty"`
}

// ClipPathResponse carries the local path of a clip's content.
type ClipPathResponse struct {
	Path string `json:"path"`
}

// CopyResponse reports how a clip was placed on the clipboard.
type CopyResponse struct {
	Success bool   `json:"success"`
	Method  string `json:"method"`
}

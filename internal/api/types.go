package api

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	DBPath           string `json:"db_path,omitempty"`
	BlobDir          string `json:"blob_dir,omitempty"`
	TotalClips       int    `json:"total_clips"`
	FavoriteClips    int    `json:"favorite_clips"`
	TotalLabels      int    `json:"total_labels"`
	TotalAttachments int    `json:"total_attachments"`
}

// OrphanSweepRequest defines the payload for POST /v1/admin/gc.
type OrphanSweepRequest struct {
	DryRun bool `json:"dry_run"`
}

// OrphanSweepResponse reports one orphan-blob sweep.
type OrphanSweepResponse struct {
	OrphanIDs      []string `json:"orphan_ids"`
	DeletedCount   int      `json:"deleted_count"`
	FailedCount    int      `json:"failed_count"`
	ReclaimedBytes int64    `json:"reclaimed_bytes"`
	DryRun         bool     `json:"dry_run"`
}

// LegacyImportRequest points the server at a flat-file JSON collection.
type LegacyImportRequest struct {
	Path   string `json:"path"`
	GIFDir string `json:"gif_dir,omitempty"`
	DryRun bool   `json:"dry_run"`
}

// LegacyImportResponse summarises a legacy import.
type LegacyImportResponse struct {
	ClipsImported     int      `json:"clips_imported"`
	ClipsSkipped      int      `json:"clips_skipped"`
	LabelsCreated     int      `json:"labels_created"`
	LabelsReused      int      `json:"labels_reused"`
	AttachmentsLinked int      `json:"attachments_linked"`
	MissingFiles      []string `json:"missing_files"`
	DryRun            bool     `json:"dry_run"`
}

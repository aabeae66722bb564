package store

import "context"

// StoreInfo summarises collection size.
type StoreInfo struct {
	TotalClips    int `json:"total_clips"`
	FavoriteClips int `json:"favorite_clips"`
	TotalLabels   int `json:"total_labels"`
	TotalAttached int `json:"total_attachments"`
}

// StoreInfo returns row counts for the info endpoint.
func (s *Store) StoreInfo(ctx context.Context) (*StoreInfo, error) {
	info := &StoreInfo{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM clips),
			(SELECT COUNT(*) FROM clips WHERE is_favorite = 1),
			(SELECT COUNT(*) FROM labels),
			(SELECT COUNT(*) FROM clip_labels)
	`).Scan(&info.TotalClips, &info.FavoriteClips, &info.TotalLabels, &info.TotalAttached)
	if err != nil {
		return nil, err
	}
	return info, nil
}

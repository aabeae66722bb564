package store

import (
	"context"

	"gifstash/internal/models"
)

// CollectionStore abstracts clip/label metadata storage backends.
type CollectionStore interface {
	InsertClip(ctx context.Context, clip *models.Clip) error
	GetClip(ctx context.Context, id string) (*models.Clip, error)
	ClipExists(ctx context.Context, id string) (bool, error)
	ListClips(ctx context.Context) ([]models.Clip, error)
	UpdateClip(ctx context.Context, id string, update models.ClipUpdate) error
	DeleteClip(ctx context.Context, id string) error
	SearchClips(ctx context.Context, query string) ([]models.Clip, error)
	ClipIDs(ctx context.Context) ([]string, error)

	InsertLabel(ctx context.Context, name string) (*models.Label, error)
	GetLabel(ctx context.Context, id int64) (*models.Label, error)
	GetLabelByName(ctx context.Context, name string) (*models.Label, error)
	ListLabels(ctx context.Context) ([]models.Label, error)
	UpdateLabel(ctx context.Context, id int64, name string) error
	DeleteLabel(ctx context.Context, id int64) error

	AttachLabel(ctx context.Context, clipID string, labelID int64) error
	DetachLabel(ctx context.Context, clipID string, labelID int64) error
	LabelsForClip(ctx context.Context, clipID string) ([]models.Label, error)
	LabelsForClips(ctx context.Context, clipIDs []string) (map[string][]models.Label, error)
	ClipIDsForLabel(ctx context.Context, labelID int64) ([]string, error)

	StoreInfo(ctx context.Context) (*StoreInfo, error)
}

var _ CollectionStore = (*Store)(nil)

package api

import (
	"context"
	"io"
)

// PopupAPI is the narrow capability set handed to the quick-search popup:
// it can find, inspect and copy clips but not change the collection.
type PopupAPI interface {
	SearchClips(ctx context.Context, query string) ([]ClipResponse, error)
	GetClip(ctx context.Context, id string) (*ClipResponse, error)
	ClipFilePath(ctx context.Context, id string) (string, error)
	CopyClip(ctx context.Context, id string) (CopyResponse, error)
}

// CollectionAPI is the full set of collection operations exposed to the
// main window and the CLI.
type CollectionAPI interface {
	PopupAPI

	ListClips(ctx context.Context) ([]ClipResponse, error)
	AddClip(ctx context.Context, req ClipCreateRequest) (ClipResponse, error)
	UpdateClip(ctx context.Context, id string, req ClipUpdateRequest) (ClipResponse, error)
	DeleteClip(ctx context.Context, id string) error
	ClipContent(ctx context.Context, id string, w io.Writer) error

	ListLabels(ctx context.Context) ([]LabelResponse, error)
	CreateLabel(ctx context.Context, name string) (LabelResponse, error)
	RenameLabel(ctx context.Context, id int64, name string) (LabelResponse, error)
	DeleteLabel(ctx context.Context, id int64) error
	AttachLabel(ctx context.Context, clipID string, labelID int64) error
	DetachLabel(ctx context.Context, clipID string, labelID int64) error
	ClipsForLabel(ctx context.Context, labelID int64) ([]ClipResponse, error)
}

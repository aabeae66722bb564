package models

// Clip is one stored image/animation item. Its ID doubles as the blob
// store's file stem.
type Clip struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CreatedAt  int64  `json:"createdAt"`
	IsFavorite bool   `json:"isFavorite"`
}

// ClipUpdate describes fields to change on a clip. Nil fields are left as is.
type ClipUpdate struct {
	Name       *string
	IsFavorite *bool
}

// IsEmpty reports whether the update changes nothing.
func (u ClipUpdate) IsEmpty() bool {
	return u.Name == nil && u.IsFavorite == nil
}

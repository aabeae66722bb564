package api

// LabelRequest defines the payload for creating or renaming a label.
type LabelRequest struct {
	Name string `json:"name"`
}

// LabelResponse is a label as returned by the API.
type LabelResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

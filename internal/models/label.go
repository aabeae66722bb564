package models

// Label is a user-defined tag. Names are unique (case-sensitive).
type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

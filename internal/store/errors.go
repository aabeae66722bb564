package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced clip or label does not exist.
	ErrNotFound = errors.New("not found")
	// ErrClipExists is returned when inserting a clip id twice.
	ErrClipExists = errors.New("clip already exists")
	// ErrLabelExists is returned when a label name is already taken.
	ErrLabelExists = errors.New("label name already exists")
)

func isUniqueConstraint(err error, target string) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed: "+target) ||
		strings.Contains(message, "PRIMARY KEY constraint failed: "+target)
}

func isForeignKeyConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

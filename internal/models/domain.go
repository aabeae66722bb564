package models

import (
	"errors"
	"strings"
)

// SourceKind describes how clip content is supplied on creation.
type SourceKind string

const (
	SourceKindFile    SourceKind = "file"
	SourceKindDataURL SourceKind = "data_url"
)

const dataURLPrefix = "data:"

// ErrEmptyName is returned when a clip or label name trims to nothing.
var ErrEmptyName = errors.New("name cannot be empty")

var validSourceKinds = map[SourceKind]struct{}{
	SourceKindFile:    {},
	SourceKindDataURL: {},
}

// NormalizeName trims surrounding whitespace and rejects empty names.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// ParseSourceKind resolves the declared source kind. An empty kind is
// inferred from the source itself: a data: prefix means a data URL,
// anything else is treated as a filesystem path.
func ParseSourceKind(raw, source string) (SourceKind, error) {
	value := SourceKind(strings.ToLower(strings.TrimSpace(raw)))
	if value == "dataurl" {
		value = SourceKindDataURL
	}
	if value == "" {
		if strings.HasPrefix(source, dataURLPrefix) {
			return SourceKindDataURL, nil
		}
		return SourceKindFile, nil
	}
	if _, ok := validSourceKinds[value]; !ok {
		return "", errors.New("invalid source type: " + string(value))
	}
	return value, nil
}

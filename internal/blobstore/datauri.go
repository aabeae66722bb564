package blobstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidDataURI is returned for sources that do not match
// data:image/<subtype>;base64,<payload>.
var ErrInvalidDataURI = errors.New("invalid data URL format")

var dataURIPattern = regexp.MustCompile(`(?s)^data:(image/[\w.+-]+);base64,(.+)$`)

// DecodeDataURI decodes the base64 payload of an image data URI and returns
// the bytes with the declared media type.
func DecodeDataURI(raw string) ([]byte, string, error) {
	matches := dataURIPattern.FindStringSubmatch(raw)
	if matches == nil {
		return nil, "", ErrInvalidDataURI
	}
	payload, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return payload, matches[1], nil
}

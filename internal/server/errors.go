package server

import (
	"errors"
	"fmt"
	"net/http"

	"gifstash/internal/blobstore"
	"gifstash/internal/store"
)

type apiError struct {
	status  int
	code    string
	errCode int
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func makeAPIError(status int, code string, errCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	var existing apiError
	if errors.As(err, &existing) {
		if existing.status != 0 {
			return existing
		}
	}

	return apiError{status: status, code: code, errCode: errCode, err: err}
}

func badRequest(err error) error {
	return badRequestCode(err, ErrCodeInvalidArgument)
}

func badRequestCode(err error, code int) error {
	return makeAPIError(http.StatusBadRequest, "invalid_argument", code, err)
}

func notFoundCode(err error, code int) error {
	return makeAPIError(http.StatusNotFound, "not_found", code, err)
}

func conflictCode(err error, code int) error {
	return makeAPIError(http.StatusConflict, "conflict", code, err)
}

func internalError(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeInternal, err)
}

func storeFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeStoreFailure, err)
}

func blobFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeBlobFailure, err)
}

func errClipNotFound(id string) error {
	return notFoundCode(fmt.Errorf("clip not found: %s", id), ErrCodeClipNotFound)
}

func errLabelNotFound(id int64) error {
	return notFoundCode(fmt.Errorf("label not found: %d", id), ErrCodeLabelNotFound)
}

// mapStoreError translates metadata store failures into boundary errors.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrLabelExists):
		return conflictCode(errors.New("label name already exists"), ErrCodeLabelExists)
	case errors.Is(err, store.ErrClipExists):
		return conflictCode(errors.New("clip id already exists"), ErrCodeConflict)
	case errors.Is(err, store.ErrNotFound):
		return notFoundCode(err, ErrCodeClipNotFound)
	default:
		return storeFailure(err)
	}
}

// mapBlobError translates blob store failures into boundary errors.
func mapBlobError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, blobstore.ErrInvalidID):
		return badRequestCode(errors.New("invalid clip id"), ErrCodeInvalidID)
	case errors.Is(err, blobstore.ErrInvalidDataURI):
		return badRequestCode(err, ErrCodeInvalidSource)
	case errors.Is(err, blobstore.ErrNotFound):
		return notFoundCode(errors.New("clip content not found"), ErrCodeContentNotFound)
	default:
		return blobFailure(err)
	}
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func errorCode(status int, err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.code != "" {
		return apiErr.code
	}
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "resource_exhausted"
	case http.StatusInternalServerError:
		return "internal"
	default:
		return ""
	}
}

func errorNumericCode(status int, err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.errCode > 0 {
		return apiErr.errCode
	}
	return defaultErrorCodeByStatus(status)
}

func shouldWarnClientError(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

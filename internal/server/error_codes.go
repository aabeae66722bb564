package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument   = 1000
	ErrCodeInvalidJSON       = 1001
	ErrCodeRequestTooLarge   = 1002
	ErrCodeInvalidQuery      = 1003
	ErrCodeInvalidID         = 1004
	ErrCodeInvalidName       = 1005
	ErrCodeInvalidSource     = 1006
	ErrCodeInvalidSourceType = 1007
	ErrCodeInvalidLabelID    = 1008
	ErrCodeMissingRequired   = 1009

	// Domain state (2xxx)
	ErrCodeClipNotFound    = 2001
	ErrCodeLabelNotFound   = 2002
	ErrCodeContentNotFound = 2003
	ErrCodeLabelExists     = 2101
	ErrCodeConflict        = 2102

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeBlobFailure    = 4003
	ErrCodeImportFailed   = 4004
	ErrCodeClipboardError = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeClipNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}

package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Module build faults. These are defects in the wiring and are never retryable.
const (
	// ErrCodeUnresolved indicates no provider supplies a required type.
	ErrCodeUnresolved ErrorCode = "UNRESOLVED_DEPENDENCY"
	// ErrCodeImportCycle indicates a module factory imports itself transitively.
	ErrCodeImportCycle ErrorCode = "IMPORT_CYCLE"
	// ErrCodeInvalidModule indicates a malformed module declaration.
	ErrCodeInvalidModule ErrorCode = "INVALID_MODULE"
	// ErrCodeUnregistrable indicates a controller cannot be attached to the host.
	ErrCodeUnregistrable ErrorCode = "UNREGISTRABLE_CONTROLLER"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeDatabaseError:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the base interface for all application errors.
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// InvalidInputError represents a missing or malformed request field.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *InvalidInputError) HTTPStatus() int { return http.StatusBadRequest }
func (e *InvalidInputError) Code() string    { return "INVALID_INPUT" }

// NewInvalidInputError creates a new InvalidInputError.
func NewInvalidInputError(field, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: message}
}

// ValidationError carries the per-field validation failures for a record.
// Fields maps field API name to a human-readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }
func (e *ValidationError) Code() string    { return "VALIDATION_ERROR" }

// NewValidationErrors creates a ValidationError from a field→message map.
func NewValidationErrors(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// InvalidFieldTypeError represents a field kind outside the registry.
type InvalidFieldTypeError struct {
	Field string
	Type  string
}

func (e *InvalidFieldTypeError) Error() string {
	return fmt.Sprintf("field '%s' has unsupported type '%s'", e.Field, e.Type)
}

func (e *InvalidFieldTypeError) HTTPStatus() int { return http.StatusBadRequest }
func (e *InvalidFieldTypeError) Code() string    { return "INVALID_FIELD_TYPE" }

// NewInvalidFieldTypeError creates a new InvalidFieldTypeError.
func NewInvalidFieldTypeError(field, fieldType string) *InvalidFieldTypeError {
	return &InvalidFieldTypeError{Field: field, Type: fieldType}
}

// DuplicateError represents a uniqueness violation on a table or field name.
// ConflictID carries the identifier of the conflicting resource when known.
type DuplicateError struct {
	Resource   string // "table" or "field"
	Name       string
	ConflictID string
}

func (e *DuplicateError) Error() string {
	if e.ConflictID != "" {
		return fmt.Sprintf("%s '%s' already exists (id: %s)", e.Resource, e.Name, e.ConflictID)
	}
	return fmt.Sprintf("%s '%s' already exists", e.Resource, e.Name)
}

func (e *DuplicateError) HTTPStatus() int { return http.StatusConflict }

func (e *DuplicateError) Code() string {
	if e.Resource == "field" {
		return "DUPLICATE_FIELD"
	}
	return "DUPLICATE_TABLE"
}

// NewDuplicateTableError creates a DuplicateError for a table name collision.
func NewDuplicateTableError(name, conflictID string) *DuplicateError {
	return &DuplicateError{Resource: "table", Name: name, ConflictID: conflictID}
}

// NewDuplicateFieldError creates a DuplicateError for a field name collision.
func NewDuplicateFieldError(name string) *DuplicateError {
	return &DuplicateError{Resource: "field", Name: name}
}

// NotFoundError represents a schema or record that was not found.
type NotFoundError struct {
	Resource string // "schema" or "record"
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

func (e *NotFoundError) Code() string {
	if e.Resource == "record" {
		return "RECORD_NOT_FOUND"
	}
	return "SCHEMA_NOT_FOUND"
}

// NewSchemaNotFoundError creates a NotFoundError for a schema.
func NewSchemaNotFoundError(id string) *NotFoundError {
	return &NotFoundError{Resource: "schema", ID: id}
}

// NewRecordNotFoundError creates a NotFoundError for a record.
func NewRecordNotFoundError(id string) *NotFoundError {
	return &NotFoundError{Resource: "record", ID: id}
}

// NotOwnerError represents a destructive operation attempted by a non-creator.
type NotOwnerError struct {
	Action   string
	Resource string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("permission denied: only the creator can %s %s", e.Action, e.Resource)
}

func (e *NotOwnerError) HTTPStatus() int { return http.StatusForbidden }
func (e *NotOwnerError) Code() string    { return "FORBIDDEN_NOT_OWNER" }

// NewNotOwnerError creates a new NotOwnerError.
func NewNotOwnerError(action, resource string) *NotOwnerError {
	return &NotOwnerError{Action: action, Resource: resource}
}

// LimitExceededError represents a bulk-size or field-count ceiling violation.
type LimitExceededError struct {
	What  string // "bulk" or "field"
	Limit int
	Got   int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit exceeded: got %d, maximum is %d", e.What, e.Got, e.Limit)
}

func (e *LimitExceededError) HTTPStatus() int { return http.StatusBadRequest }

func (e *LimitExceededError) Code() string {
	if e.What == "field" {
		return "FIELD_LIMIT_EXCEEDED"
	}
	return "BULK_LIMIT_EXCEEDED"
}

// NewBulkLimitError creates a LimitExceededError for a bulk operation.
func NewBulkLimitError(limit, got int) *LimitExceededError {
	return &LimitExceededError{What: "bulk", Limit: limit, Got: got}
}

// NewFieldLimitError creates a LimitExceededError for a field count.
func NewFieldLimitError(limit, got int) *LimitExceededError {
	return &LimitExceededError{What: "field", Limit: limit, Got: got}
}

// CSVParseError represents an unusable CSV upload (empty, oversize, wrong type).
type CSVParseError struct {
	Message string
}

func (e *CSVParseError) Error() string   { return "csv parse error: " + e.Message }
func (e *CSVParseError) HTTPStatus() int { return http.StatusBadRequest }
func (e *CSVParseError) Code() string    { return "CSV_PARSE_ERROR" }

// NewCSVParseError creates a new CSVParseError.
func NewCSVParseError(message string) *CSVParseError {
	return &CSVParseError{Message: message}
}

// CSVSchemaMismatchError reports an append-mode header set that does not match
// the target schema's field names.
type CSVSchemaMismatchError struct {
	MissingFields []string
	ExtraFields   []string
}

func (e *CSVSchemaMismatchError) Error() string {
	var parts []string
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.ExtraFields) > 0 {
		parts = append(parts, "extra fields: "+strings.Join(e.ExtraFields, ", "))
	}
	return "csv header does not match schema (" + strings.Join(parts, "; ") + ")"
}

func (e *CSVSchemaMismatchError) HTTPStatus() int { return http.StatusBadRequest }
func (e *CSVSchemaMismatchError) Code() string    { return "CSV_SCHEMA_MISMATCH" }

// NewCSVSchemaMismatchError creates a new CSVSchemaMismatchError.
func NewCSVSchemaMismatchError(missing, extra []string) *CSVSchemaMismatchError {
	return &CSVSchemaMismatchError{MissingFields: missing, ExtraFields: extra}
}

// InternalError represents an unexpected failure from the storage collaborator.
// The cause is preserved for diagnostics but never rendered as a stack trace.
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Message, e.Cause)
	}
	return "internal error: " + e.Message
}

func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }
func (e *InternalError) Code() string    { return "INTERNAL_ERROR" }
func (e *InternalError) Unwrap() error   { return e.Cause }

// NewInternalError creates a new InternalError.
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// GetHTTPStatus returns the HTTP status for an error, defaulting to 500.
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the machine-checkable code for an error.
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "INTERNAL_ERROR"
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// AsValidation returns the ValidationError in err's chain, or nil.
func AsValidation(err error) *ValidationError {
	var v *ValidationError
	if errors.As(err, &v) {
		return v
	}
	return nil
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAndCodeHelpers(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{NewInvalidInputError("name", "required"), http.StatusBadRequest, "INVALID_INPUT"},
		{NewValidationErrors(map[string]string{"email": "invalid"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{NewDuplicateTableError("Customers", "t1"), http.StatusConflict, "DUPLICATE_TABLE"},
		{NewDuplicateFieldError("name"), http.StatusConflict, "DUPLICATE_FIELD"},
		{NewSchemaNotFoundError("s1"), http.StatusNotFound, "SCHEMA_NOT_FOUND"},
		{NewRecordNotFoundError("r1"), http.StatusNotFound, "RECORD_NOT_FOUND"},
		{NewNotOwnerError("delete", "table 'x'"), http.StatusForbidden, "FORBIDDEN_NOT_OWNER"},
		{NewBulkLimitError(1000, 1001), http.StatusBadRequest, "BULK_LIMIT_EXCEEDED"},
		{NewCSVSchemaMismatchError([]string{"a"}, nil), http.StatusBadRequest, "CSV_SCHEMA_MISMATCH"},
		{NewInternalError("boom", nil), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("plain"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.status, GetHTTPStatus(tc.err))
			assert.Equal(t, tc.code, GetErrorCode(tc.err))
		})
	}
}

func TestAsValidation(t *testing.T) {
	verr := NewValidationErrors(map[string]string{"email": "invalid"})

	got := AsValidation(verr)
	require.NotNil(t, got)
	assert.Equal(t, "invalid", got.Fields["email"])

	// Wrapped validation errors must still surface their field map.
	got = AsValidation(fmt.Errorf("rejected: %w", verr))
	require.NotNil(t, got)
	assert.Equal(t, verr.Fields, got.Fields)

	assert.Nil(t, AsValidation(errors.New("plain")))
	assert.Nil(t, AsValidation(NewInvalidInputError("x", "y")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NewSchemaNotFoundError("s1")))
	assert.True(t, IsNotFound(fmt.Errorf("load: %w", NewRecordNotFoundError("r1"))))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestInternalErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("failed to persist record", cause)
	assert.ErrorIs(t, err, cause)
}

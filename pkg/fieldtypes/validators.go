package fieldtypes

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// dateLayouts are tried in order when validating date values.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// dateTimeLayouts are tried in order when validating date-time values.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// booleanTokens is the accepted string spelling of booleans, lowercased.
var booleanTokens = map[string]bool{
	"true": true, "false": true, "1": true, "0": true, "yes": true, "no": true,
}

// validatorFunc checks a single non-empty value against one kind. Options is
// only consulted by the two choice kinds. Returns "" when the value is valid,
// otherwise a human-readable message.
type validatorFunc func(value interface{}, options []string) string

// validators is the closed dispatch table: one predicate per kind.
var validators = map[FieldType]validatorFunc{
	FieldTypeText:        validateText,
	FieldTypeLongText:    validateLongText,
	FieldTypeNumber:      validateNumber,
	FieldTypeEmail:       validateEmail,
	FieldTypePhone:       validatePhone,
	FieldTypeURL:         validateURL,
	FieldTypeDate:        validateDate,
	FieldTypeDateTime:    validateDateTime,
	FieldTypeBoolean:     validateBoolean,
	FieldTypeSelect:      validateSelect,
	FieldTypeMultiSelect: validateMultiSelect,
	FieldTypeCurrency:    validateCurrency,
	FieldTypePercent:     validatePercent,
	FieldTypeRating:      validateRating,
	FieldTypeColor:       validateColor,
	FieldTypeFile:        validateReference,
	FieldTypeImage:       validateReference,
	FieldTypeJSON:        validateJSON,
}

// IsEmpty reports whether a value counts as absent for required checks:
// nil, empty string, or an empty slice.
func IsEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	}
	return false
}

// Validate checks one non-empty value against a kind. Empty values must be
// handled by the caller (required check) before calling Validate.
func Validate(t FieldType, value interface{}, options []string) string {
	fn, ok := validators[t]
	if !ok {
		return fmt.Sprintf("unsupported field type '%s'", t)
	}
	return fn(value, options)
}

// ValidateField applies the full per-field rule: required check first, then
// the kind's predicate for non-empty values.
func ValidateField(t FieldType, required bool, value interface{}, options []string) string {
	if IsEmpty(value) {
		if required {
			return "is required"
		}
		return ""
	}
	return Validate(t, value, options)
}

// ValidateRecord maps ValidateField over every field and returns the
// field-name to message map. System audit fields are never validated here;
// the engine stamps them itself. The record is valid iff the map is empty.
func ValidateRecord(data map[string]interface{}, fields []FieldSpec) map[string]string {
	errs := make(map[string]string)
	for _, f := range fields {
		if constants.IsSystemField(f.Name) {
			continue
		}
		if msg := ValidateField(f.Type, f.Required, data[f.Name], f.Options); msg != "" {
			errs[f.Name] = msg
		}
	}
	return errs
}

// FieldSpec is the subset of a field definition the registry needs to
// validate a record.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
	Options  []string
}

func validateText(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok {
		return "expected text"
	}
	if len(s) > constants.MaxShortTextLength {
		return fmt.Sprintf("must be at most %d characters", constants.MaxShortTextLength)
	}
	return ""
}

func validateLongText(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok {
		return "expected text"
	}
	if len(s) > constants.MaxLongTextLength {
		return fmt.Sprintf("must be at most %d characters", constants.MaxLongTextLength)
	}
	return ""
}

// asNumber interprets a value as a float64. JSON decoding yields float64 for
// all numbers; CSV rows carry numeric strings.
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func validateNumber(value interface{}, _ []string) string {
	if _, ok := asNumber(value); !ok {
		return "expected a number"
	}
	return ""
}

func validateEmail(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok || !emailPattern.MatchString(s) {
		return "invalid email address"
	}
	return ""
}

func validatePhone(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok || !phonePattern.MatchString(s) {
		return "phone number must be exactly 10 digits"
	}
	return ""
}

func validateURL(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok {
		return "invalid URL"
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "invalid URL"
	}
	return ""
}

func validateDate(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok {
		return "invalid date"
	}
	if !parseAny(s, dateLayouts) {
		return "invalid date"
	}
	return ""
}

func validateDateTime(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok {
		return "invalid date-time"
	}
	if !parseAny(s, dateTimeLayouts) {
		return "invalid date-time"
	}
	return ""
}

func parseAny(s string, layouts []string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func validateBoolean(value interface{}, _ []string) string {
	switch v := value.(type) {
	case bool:
		return ""
	case string:
		if booleanTokens[strings.ToLower(strings.TrimSpace(v))] {
			return ""
		}
	case float64:
		if v == 0 || v == 1 {
			return ""
		}
	case int:
		if v == 0 || v == 1 {
			return ""
		}
	}
	return "expected a boolean"
}

func validateSelect(value interface{}, options []string) string {
	s, ok := value.(string)
	if !ok {
		return "expected one of the allowed values"
	}
	for _, opt := range options {
		if s == opt {
			return ""
		}
	}
	return fmt.Sprintf("'%s' is not an allowed value", s)
}

// validateMultiSelect accepts a slice of choices or a "a; b" delimited string
// (the CSV export form); every element must be in the allowed set.
func validateMultiSelect(value interface{}, options []string) string {
	var items []string
	switch v := value.(type) {
	case []string:
		items = v
	case []interface{}:
		for _, el := range v {
			s, ok := el.(string)
			if !ok {
				return "expected a list of allowed values"
			}
			items = append(items, s)
		}
	case string:
		for _, part := range strings.Split(v, ";") {
			if p := strings.TrimSpace(part); p != "" {
				items = append(items, p)
			}
		}
	default:
		return "expected a list of allowed values"
	}
	for _, item := range items {
		if msg := validateSelect(item, options); msg != "" {
			return msg
		}
	}
	return ""
}

func validateCurrency(value interface{}, _ []string) string {
	n, ok := asNumber(value)
	if !ok {
		return "expected a number"
	}
	if n < 0 {
		return "must not be negative"
	}
	return ""
}

func validatePercent(value interface{}, _ []string) string {
	n, ok := asNumber(value)
	if !ok {
		return "expected a number"
	}
	if n < 0 || n > 100 {
		return "must be between 0 and 100"
	}
	return ""
}

func validateRating(value interface{}, _ []string) string {
	n, ok := asNumber(value)
	if !ok || n != math.Trunc(n) {
		return "expected a whole number"
	}
	if n < 1 || n > 5 {
		return "must be between 1 and 5"
	}
	return ""
}

func validateColor(value interface{}, _ []string) string {
	s, ok := value.(string)
	if !ok || !colorPattern.MatchString(s) {
		return "expected a hex color like #1A2B3C"
	}
	return ""
}

// validateReference covers the file and image kinds: an opaque storage
// reference handed out by the upload subsystem.
func validateReference(value interface{}, _ []string) string {
	if _, ok := value.(string); !ok {
		return "expected a file reference"
	}
	return ""
}

// validateJSON accepts anything that survives a parse/serialize round trip:
// a string of valid JSON, or a value json.Marshal can encode.
func validateJSON(value interface{}, _ []string) string {
	if s, ok := value.(string); ok {
		if !json.Valid([]byte(s)) {
			return "invalid JSON"
		}
		return ""
	}
	if _, err := json.Marshal(value); err != nil {
		return "invalid JSON"
	}
	return ""
}

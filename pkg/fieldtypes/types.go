package fieldtypes

// FieldType represents the kind of a user-defined field.
type FieldType string

// The closed set of supported field kinds. Adding a kind requires updating the
// validator table in validators.go; All() and the table are kept in sync so a
// missing entry is caught by TestRegistryCoversAllKinds.
const (
	FieldTypeText        FieldType = "text"        // short text, max 500 chars
	FieldTypeLongText    FieldType = "longtext"    // long text, max 5000 chars
	FieldTypeNumber      FieldType = "number"
	FieldTypeEmail       FieldType = "email"
	FieldTypePhone       FieldType = "phone"       // exactly 10 digits
	FieldTypeURL         FieldType = "url"
	FieldTypeDate        FieldType = "date"
	FieldTypeDateTime    FieldType = "datetime"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"      // single choice from Options
	FieldTypeMultiSelect FieldType = "multiselect" // multiple choices from Options
	FieldTypeCurrency    FieldType = "currency"    // numeric, >= 0
	FieldTypePercent     FieldType = "percent"     // numeric, 0-100 inclusive
	FieldTypeRating      FieldType = "rating"      // integer 1-5
	FieldTypeColor       FieldType = "color"       // hex #RRGGBB
	FieldTypeFile        FieldType = "file"        // file reference
	FieldTypeImage       FieldType = "image"       // image reference
	FieldTypeJSON        FieldType = "json"        // arbitrary JSON payload
)

// All returns every supported field type.
func All() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeLongText,
		FieldTypeNumber,
		FieldTypeEmail,
		FieldTypePhone,
		FieldTypeURL,
		FieldTypeDate,
		FieldTypeDateTime,
		FieldTypeBoolean,
		FieldTypeSelect,
		FieldTypeMultiSelect,
		FieldTypeCurrency,
		FieldTypePercent,
		FieldTypeRating,
		FieldTypeColor,
		FieldTypeFile,
		FieldTypeImage,
		FieldTypeJSON,
	}
}

// IsValid reports whether t is one of the supported kinds.
func IsValid(t FieldType) bool {
	_, ok := validators[t]
	return ok
}

// IsChoice reports whether t is one of the two choice kinds, which require a
// non-empty allowed-value set at schema creation.
func IsChoice(t FieldType) bool {
	return t == FieldTypeSelect || t == FieldTypeMultiSelect
}

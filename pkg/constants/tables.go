package constants

// CollectionSchemas is the metadata collection holding every table definition.
// Record data lives in per-schema collections whose names are derived by
// pkg/naming and never exposed to clients.
const CollectionSchemas = "_system_table"

// Context keys used by the HTTP layer.
const (
	ContextKeyUser      = "user"
	HeaderAuthorization = "Authorization"
)

// Timestamp layout used for audit fields in stored documents.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

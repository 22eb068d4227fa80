package constants

// Hard limits enforced by the services layer.
const (
	// Schema shape limits.
	MaxTableNameLength = 100
	MaxFieldsPerTable  = 50
	MaxChoiceOptions   = 100

	// Per-kind value limits.
	MaxShortTextLength = 500
	MaxLongTextLength  = 5000

	// Bulk operation ceilings (per call).
	MaxBulkCreate = 1000
	MaxBulkUpdate = 500
	MaxBulkDelete = 500

	// The storage layer commits at most this many writes per transaction.
	// Bulk work is chunked to fit under it.
	TransactionWriteLimit = 500

	// CSV interchange.
	MaxCSVUploadBytes = 10 << 20 // 10 MB
	InferenceSamples  = 10       // non-empty values sampled per column
	MaxErrorSamples   = 10       // per-item errors reported on bulk/import failures
)

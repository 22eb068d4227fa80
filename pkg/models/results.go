package models

// Pagination describes the page window of a record listing. TotalRecords is
// the unfiltered collection total, counted separately from the fetched page.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalRecords int  `json:"total_records"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// ListResult is the payload of a record listing.
type ListResult struct {
	Records    []Record   `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// ItemError reports a failure for one item of a bulk or CSV operation.
// Index is zero-based for bulk calls; Line is the 1-indexed source line for
// CSV imports (zero when not applicable).
type ItemError struct {
	Index   int    `json:"index"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// BulkResult is the outcome of a bulk create/update/delete call.
type BulkResult struct {
	SuccessCount int         `json:"success_count"`
	FailedCount  int         `json:"failed_count"`
	Errors       []ItemError `json:"errors,omitempty"`
	IDs          []string    `json:"ids,omitempty"`
}

// ImportResult is the outcome of a CSV import.
type ImportResult struct {
	SchemaID      string      `json:"schema_id"`
	InsertedCount int         `json:"inserted_count"`
	SkippedCount  int         `json:"skipped_count"`
	Fields        []Field     `json:"fields,omitempty"`
	Errors        []ItemError `json:"errors,omitempty"`
}

// ExportResult is a rendered CSV document plus its delivery metadata.
type ExportResult struct {
	Content     []byte `json:"-"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	RecordCount int    `json:"record_count"`
}

// ValidationResult is the outcome of a standalone record validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/infrastructure/docstore"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/csvkit"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/fieldtypes"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/utils"
)

// RecordService owns the per-table record lifecycle. Every operation resolves
// the schema first; the physical collection name never leaves the backend.
type RecordService struct {
	store   docstore.Store
	schemas *SchemaService
}

// NewRecordService creates a new RecordService.
func NewRecordService(store docstore.Store, schemas *SchemaService) *RecordService {
	return &RecordService{store: store, schemas: schemas}
}

// ListOptions controls sorting, pagination and the optional substring search
// of a record listing.
type ListOptions struct {
	SortBy    string
	SortOrder string // "asc" or "desc"
	Page      int
	PageSize  int
	Search    string
}

// toFieldSpecs adapts schema fields for the type registry.
func toFieldSpecs(fields []models.Field) []fieldtypes.FieldSpec {
	specs := make([]fieldtypes.FieldSpec, len(fields))
	for i, f := range fields {
		specs[i] = fieldtypes.FieldSpec{
			Name:     f.Name,
			Type:     f.Type,
			Required: f.Required,
			Options:  f.Options,
		}
	}
	return specs
}

// Create validates and persists a single record, stamping the audit fields
// and incrementing the schema's record count.
func (rs *RecordService) Create(ctx context.Context, namespace, appID, schemaID string, data models.Record, actor string) (models.Record, error) {
	schema, err := rs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}

	record := data.StripSystemFields()
	if errs := fieldtypes.ValidateRecord(record, toFieldSpecs(schema.Fields)); len(errs) > 0 {
		return nil, errors.NewValidationErrors(errs)
	}

	stampCreate(record, utils.GenerateID(), actor, time.Now().UTC())

	if err := rs.store.Set(ctx, schema.CollectionName, record.ID(), docstore.Document(record)); err != nil {
		return nil, errors.NewInternalError("failed to persist record", err)
	}
	if err := rs.schemas.AdjustRecordCount(ctx, schema, 1); err != nil {
		return nil, err
	}
	return record, nil
}

// Get returns a single record by ID.
func (rs *RecordService) Get(ctx context.Context, namespace, appID, schemaID, recordID string) (models.Record, error) {
	schema, err := rs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}
	doc, err := rs.store.Get(ctx, schema.CollectionName, recordID)
	if err == docstore.ErrNotFound {
		return nil, errors.NewRecordNotFoundError(recordID)
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to load record", err)
	}
	return models.Record(doc), nil
}

// List returns one page of records with pagination metadata. Sorting and the
// page window are applied by the storage layer. When a search term is given,
// the already-fetched page is post-filtered by a case-insensitive substring
// match over the string form of every field; the pagination metadata still
// reflects the unfiltered total, so a searched page can carry fewer rows than
// the totals imply.
func (rs *RecordService) List(ctx context.Context, namespace, appID, schemaID string, opts ListOptions) (*models.ListResult, error) {
	schema, err := rs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = constants.FieldCreatedDate
	}
	descending := !strings.EqualFold(opts.SortOrder, "asc")

	docs, err := rs.store.List(ctx, schema.CollectionName, docstore.Query{
		OrderBy:    sortBy,
		Descending: descending,
		Limit:      opts.PageSize,
		Offset:     (opts.Page - 1) * opts.PageSize,
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to list records", err)
	}

	records := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, models.Record(doc))
	}
	if opts.Search != "" {
		records = filterBySearch(records, opts.Search)
	}

	total, err := rs.store.Count(ctx, schema.CollectionName, nil)
	if err != nil {
		return nil, errors.NewInternalError("failed to count records", err)
	}

	totalPages := (total + opts.PageSize - 1) / opts.PageSize
	return &models.ListResult{
		Records: records,
		Pagination: models.Pagination{
			CurrentPage:  opts.Page,
			PageSize:     opts.PageSize,
			TotalRecords: total,
			TotalPages:   totalPages,
			HasNext:      opts.Page < totalPages,
			HasPrevious:  opts.Page > 1,
		},
	}, nil
}

// Update applies a partial update: omitted fields are untouched, system
// fields in the payload are discarded, and the modifier stamps are refreshed.
func (rs *RecordService) Update(ctx context.Context, namespace, appID, schemaID, recordID string, data models.Record, actor string) (models.Record, error) {
	schema, err := rs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}

	existing, err := rs.store.Get(ctx, schema.CollectionName, recordID)
	if err == docstore.ErrNotFound {
		return nil, errors.NewRecordNotFoundError(recordID)
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to load record", err)
	}

	updates := data.StripSystemFields()

	// Validate the merged view so required fields already present on the
	// record do not fail when omitted from a partial payload.
	merged := models.Record(existing).Clone()
	for k, v := range updates {
		merged[k] = v
	}
	if errs := fieldtypes.ValidateRecord(merged.StripSystemFields(), toFieldSpecs(schema.Fields)); len(errs) > 0 {
		return nil, errors.NewValidationErrors(errs)
	}

	updates[constants.FieldLastModifiedBy] = actor
	updates[constants.FieldLastModifiedDate] = time.Now().UTC().Format(constants.TimestampLayout)

	if err := rs.store.Update(ctx, schema.CollectionName, recordID, docstore.Document(updates)); err != nil {
		return nil, errors.NewInternalError("failed to update record", err)
	}

	for k, v := range updates {
		merged[k] = v
	}
	return merged, nil
}

// Delete removes one record and decrements the schema's record count.
func (rs *RecordService) Delete(ctx context.Context, namespace, appID, schemaID, recordID string) error {
	schema, err := rs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return err
	}

	if _, err := rs.store.Get(ctx, schema.CollectionName, recordID); err != nil {
		if err == docstore.ErrNotFound {
			return errors.NewRecordNotFoundError(recordID)
		}
		return errors.NewInternalError("failed to load record", err)
	}

	if err := rs.store.Delete(ctx, schema.CollectionName, recordID); err != nil {
		return errors.NewInternalError("failed to delete record", err)
	}
	return rs.schemas.AdjustRecordCount(ctx, schema, -1)
}

// fetchAll returns every record of a table ordered by creation instant, for
// the export path.
func (rs *RecordService) fetchAll(ctx context.Context, schema *models.Schema) ([]models.Record, error) {
	docs, err := rs.store.List(ctx, schema.CollectionName, docstore.Query{
		OrderBy: constants.FieldCreatedDate,
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to fetch records", err)
	}
	records := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, models.Record(doc))
	}
	return records, nil
}

// Validate runs the create-path validation without persisting anything.
func (rs *RecordService) Validate(ctx context.Context, namespace, appID, schemaID string, data models.Record) (*models.ValidationResult, error) {
	schema, err := rs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}
	errs := fieldtypes.ValidateRecord(data.StripSystemFields(), toFieldSpecs(schema.Fields))
	return &models.ValidationResult{Valid: len(errs) == 0, Errors: errs}, nil
}

// stampCreate assigns the identifier and the four audit stamps; the modifier
// equals the creator at creation time.
func stampCreate(record models.Record, id, actor string, now time.Time) {
	ts := now.Format(constants.TimestampLayout)
	record[constants.FieldID] = id
	record[constants.FieldCreatedBy] = actor
	record[constants.FieldCreatedDate] = ts
	record[constants.FieldLastModifiedBy] = actor
	record[constants.FieldLastModifiedDate] = ts
}

// filterBySearch keeps records where any field's string form contains the
// term, case-insensitively. This scans only the records it is handed, i.e.
// the current page.
func filterBySearch(records []models.Record, term string) []models.Record {
	term = strings.ToLower(term)
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		for _, v := range r {
			if strings.Contains(strings.ToLower(csvkit.FormatValue(v)), term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

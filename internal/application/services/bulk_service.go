package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/infrastructure/docstore"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/fieldtypes"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/utils"
)

// BulkService applies create/update/delete to many records per call. Items
// are validated up front (all-or-nothing), then committed in chunks sized to
// the storage layer's per-transaction write ceiling. Chunks are applied
// sequentially; a chunk failure leaves earlier chunks durably applied.
type BulkService struct {
	store   docstore.Store
	schemas *SchemaService
}

// NewBulkService creates a new BulkService.
func NewBulkService(store docstore.Store, schemas *SchemaService) *BulkService {
	return &BulkService{store: store, schemas: schemas}
}

// Create inserts up to 1000 records in one call.
func (bs *BulkService) Create(ctx context.Context, namespace, appID, schemaID string, items []models.Record, actor string) (*models.BulkResult, error) {
	if len(items) > constants.MaxBulkCreate {
		return nil, errors.NewBulkLimitError(constants.MaxBulkCreate, len(items))
	}
	if len(items) == 0 {
		return nil, errors.NewInvalidInputError("records", "no records supplied")
	}

	schema, err := bs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}
	specs := toFieldSpecs(schema.Fields)

	// Up-front validation: any invalid item rejects the whole call before a
	// single write is issued.
	prepared := make([]models.Record, len(items))
	now := time.Now().UTC()
	itemErrors := make(map[string]string)
	for i, item := range items {
		record := item.StripSystemFields()
		if errs := fieldtypes.ValidateRecord(record, specs); len(errs) > 0 {
			for field, msg := range errs {
				if len(itemErrors) >= constants.MaxErrorSamples {
					break
				}
				itemErrors[fmt.Sprintf("items[%d].%s", i, field)] = msg
			}
			continue
		}
		stampCreate(record, utils.GenerateID(), actor, now)
		prepared[i] = record
	}
	if len(itemErrors) > 0 {
		return nil, errors.NewValidationErrors(itemErrors)
	}

	writes := make([]docstore.Write, len(prepared))
	ids := make([]string, len(prepared))
	for i, record := range prepared {
		ids[i] = record.ID()
		writes[i] = docstore.Write{
			Op:         docstore.OpSet,
			Collection: schema.CollectionName,
			ID:         record.ID(),
			Doc:        docstore.Document(record),
		}
	}

	applied, err := bs.commitChunks(ctx, schema, writes, 1)
	if err != nil {
		return &models.BulkResult{SuccessCount: applied, FailedCount: len(items) - applied}, err
	}

	log.Printf("Bulk created %d records in table '%s'", len(prepared), schema.DisplayName)
	return &models.BulkResult{SuccessCount: len(prepared), IDs: ids}, nil
}

// Update applies up to 500 partial updates in one call. Every item must
// carry the target record's id.
func (bs *BulkService) Update(ctx context.Context, namespace, appID, schemaID string, items []models.Record, actor string) (*models.BulkResult, error) {
	if len(items) > constants.MaxBulkUpdate {
		return nil, errors.NewBulkLimitError(constants.MaxBulkUpdate, len(items))
	}
	if len(items) == 0 {
		return nil, errors.NewInvalidInputError("records", "no records supplied")
	}

	schema, err := bs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}
	specs := toFieldSpecs(schema.Fields)

	ts := time.Now().UTC().Format(constants.TimestampLayout)
	writes := make([]docstore.Write, 0, len(items))
	itemErrors := make(map[string]string)
	for i, item := range items {
		id := item.ID()
		if id == "" {
			itemErrors[fmt.Sprintf("items[%d].id", i)] = "is required"
			continue
		}
		updates := item.StripSystemFields()
		if errs := validatePartial(updates, specs); len(errs) > 0 {
			for field, msg := range errs {
				if len(itemErrors) >= constants.MaxErrorSamples {
					break
				}
				itemErrors[fmt.Sprintf("items[%d].%s", i, field)] = msg
			}
			continue
		}
		updates[constants.FieldLastModifiedBy] = actor
		updates[constants.FieldLastModifiedDate] = ts
		writes = append(writes, docstore.Write{
			Op:         docstore.OpUpdate,
			Collection: schema.CollectionName,
			ID:         id,
			Doc:        docstore.Document(updates),
		})
	}
	if len(itemErrors) > 0 {
		return nil, errors.NewValidationErrors(itemErrors)
	}

	applied, err := bs.commitChunks(ctx, schema, writes, 0)
	if err != nil {
		return &models.BulkResult{SuccessCount: applied, FailedCount: len(items) - applied}, err
	}

	log.Printf("Bulk updated %d records in table '%s'", len(writes), schema.DisplayName)
	return &models.BulkResult{SuccessCount: len(writes)}, nil
}

// Delete removes up to 500 records by ID in one call.
func (bs *BulkService) Delete(ctx context.Context, namespace, appID, schemaID string, ids []string, actor string) (*models.BulkResult, error) {
	if len(ids) > constants.MaxBulkDelete {
		return nil, errors.NewBulkLimitError(constants.MaxBulkDelete, len(ids))
	}
	if len(ids) == 0 {
		return nil, errors.NewInvalidInputError("ids", "no record ids supplied")
	}

	schema, err := bs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}

	itemErrors := make(map[string]string)
	writes := make([]docstore.Write, 0, len(ids))
	for i, id := range ids {
		if id == "" {
			if len(itemErrors) < constants.MaxErrorSamples {
				itemErrors[fmt.Sprintf("ids[%d]", i)] = "is required"
			}
			continue
		}
		writes = append(writes, docstore.Write{
			Op:         docstore.OpDelete,
			Collection: schema.CollectionName,
			ID:         id,
		})
	}
	if len(itemErrors) > 0 {
		return nil, errors.NewValidationErrors(itemErrors)
	}

	applied, err := bs.commitChunks(ctx, schema, writes, -1)
	if err != nil {
		return &models.BulkResult{SuccessCount: applied, FailedCount: len(ids) - applied}, err
	}

	log.Printf("Bulk deleted %d records in table '%s'", len(writes), schema.DisplayName)
	return &models.BulkResult{SuccessCount: len(writes)}, nil
}

// commitChunks partitions writes into transaction-sized chunks and commits
// them sequentially. countSign is the per-item record-count delta (+1 create,
// -1 delete, 0 update); the schema counter is adjusted once by the total of
// whatever was durably applied. There is no cross-chunk rollback.
func (bs *BulkService) commitChunks(ctx context.Context, schema *models.Schema, writes []docstore.Write, countSign int) (int, error) {
	applied := 0
	var commitErr error
	for start := 0; start < len(writes); start += constants.TransactionWriteLimit {
		end := start + constants.TransactionWriteLimit
		if end > len(writes) {
			end = len(writes)
		}
		if err := bs.store.RunBatch(ctx, writes[start:end]); err != nil {
			commitErr = errors.NewInternalError(
				fmt.Sprintf("bulk chunk %d failed after %d records were applied", start/constants.TransactionWriteLimit+1, applied), err)
			break
		}
		applied += end - start
	}

	if countSign != 0 && applied > 0 {
		if err := bs.schemas.AdjustRecordCount(ctx, schema, countSign*applied); err != nil {
			log.Printf("Warning: failed to adjust record count for table '%s': %v", schema.DisplayName, err)
		}
	}
	return applied, commitErr
}

// insertPrepared inserts records that were already validated and stamped,
// chunked like any other bulk create. The CSV pipeline uses this after its
// per-row validation pass, which has its own skip-and-continue semantics.
func (bs *BulkService) insertPrepared(ctx context.Context, schema *models.Schema, records []models.Record) (int, error) {
	writes := make([]docstore.Write, len(records))
	for i, record := range records {
		writes[i] = docstore.Write{
			Op:         docstore.OpSet,
			Collection: schema.CollectionName,
			ID:         record.ID(),
			Doc:        docstore.Document(record),
		}
	}
	return bs.commitChunks(ctx, schema, writes, 1)
}

// validatePartial validates only the fields present in a partial update;
// required fields missing from the payload are assumed present on the stored
// record.
func validatePartial(updates models.Record, specs []fieldtypes.FieldSpec) map[string]string {
	errs := make(map[string]string)
	for _, spec := range specs {
		value, present := updates[spec.Name]
		if !present {
			continue
		}
		if msg := fieldtypes.ValidateField(spec.Type, spec.Required, value, spec.Options); msg != "" {
			errs[spec.Name] = msg
		}
	}
	return errs
}

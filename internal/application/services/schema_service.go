package services

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"sort"
	"time"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/infrastructure/docstore"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/fieldtypes"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/naming"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/utils"
)

var (
	tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)
	fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// SchemaService owns table definitions: creation, listing, retrieval and
// destructive deletion. It is the only writer of schema metadata and the only
// component that resolves schema IDs to physical collection names.
type SchemaService struct {
	store docstore.Store
}

// NewSchemaService creates a new SchemaService.
func NewSchemaService(store docstore.Store) *SchemaService {
	return &SchemaService{store: store}
}

// Create validates and persists a new table definition. The physical
// collection name is derived from the namespace, display name and creation
// instant and is never returned to clients.
func (ss *SchemaService) Create(ctx context.Context, namespace, appID, displayName string, fields []models.Field, actor string) (*models.Schema, error) {
	if displayName == "" || len(displayName) > constants.MaxTableNameLength {
		return nil, errors.NewInvalidInputError("display_name",
			"table name must be between 1 and 100 characters")
	}
	if !tableNamePattern.MatchString(displayName) {
		return nil, errors.NewInvalidInputError("display_name",
			"table name may only contain letters, digits and spaces")
	}
	if len(fields) == 0 {
		return nil, errors.NewInvalidInputError("fields", "at least one field is required")
	}
	if len(fields) > constants.MaxFieldsPerTable {
		return nil, errors.NewFieldLimitError(constants.MaxFieldsPerTable, len(fields))
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !fieldNamePattern.MatchString(f.Name) {
			return nil, errors.NewInvalidInputError(f.Name,
				"field names may only contain letters, digits and underscores")
		}
		if !fieldtypes.IsValid(f.Type) {
			return nil, errors.NewInvalidFieldTypeError(f.Name, string(f.Type))
		}
		if fieldtypes.IsChoice(f.Type) && len(f.Options) == 0 {
			return nil, errors.NewInvalidInputError(f.Name,
				"choice fields require a non-empty list of options")
		}
		if seen[f.Name] {
			return nil, errors.NewDuplicateFieldError(f.Name)
		}
		seen[f.Name] = true
	}

	// Duplicate table detection within (app, display name).
	existing, err := ss.store.List(ctx, constants.CollectionSchemas, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "namespace", Value: namespace},
			{Field: "app_id", Value: appID},
			{Field: "display_name", Value: displayName},
		},
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to check for duplicate table", err)
	}
	if len(existing) > 0 {
		conflictID, _ := existing[0][constants.FieldID].(string)
		return nil, errors.NewDuplicateTableError(displayName, conflictID)
	}

	now := time.Now().UTC()
	schema := &models.Schema{
		ID:               utils.GenerateID(),
		Namespace:        namespace,
		AppID:            appID,
		DisplayName:      displayName,
		CollectionName:   naming.CollectionName(namespace, displayName, now),
		Fields:           fields,
		RecordCount:      0,
		CreatedBy:        actor,
		CreatedDate:      now,
		LastModifiedBy:   actor,
		LastModifiedDate: now,
	}

	if err := ss.store.Set(ctx, constants.CollectionSchemas, schema.ID, schemaToDoc(schema)); err != nil {
		return nil, errors.NewInternalError("failed to persist schema", err)
	}

	log.Printf("Created table '%s' (%s) with %d fields", displayName, schema.ID, len(fields))
	return schema, nil
}

// List returns every table in the app, newest first. Ordering happens in
// memory; the storage layer is not trusted to support composite ordering.
func (ss *SchemaService) List(ctx context.Context, namespace, appID string) ([]*models.Schema, error) {
	docs, err := ss.store.List(ctx, constants.CollectionSchemas, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "namespace", Value: namespace},
			{Field: "app_id", Value: appID},
		},
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to list schemas", err)
	}

	schemas := make([]*models.Schema, 0, len(docs))
	for _, doc := range docs {
		schema, err := docToSchema(doc)
		if err != nil {
			return nil, errors.NewInternalError("failed to decode schema", err)
		}
		schemas = append(schemas, schema)
	}

	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].CreatedDate.After(schemas[j].CreatedDate)
	})
	return schemas, nil
}

// Get returns the schema iff it exists and belongs to the given app.
func (ss *SchemaService) Get(ctx context.Context, namespace, appID, schemaID string) (*models.Schema, error) {
	doc, err := ss.store.Get(ctx, constants.CollectionSchemas, schemaID)
	if err == docstore.ErrNotFound {
		return nil, errors.NewSchemaNotFoundError(schemaID)
	}
	if err != nil {
		return nil, errors.NewInternalError("failed to load schema", err)
	}

	schema, err := docToSchema(doc)
	if err != nil {
		return nil, errors.NewInternalError("failed to decode schema", err)
	}
	if schema.Namespace != namespace || schema.AppID != appID {
		return nil, errors.NewSchemaNotFoundError(schemaID)
	}
	return schema, nil
}

// Delete destroys a table and every record under it. Requires the explicit
// confirm flag and the creator's identity; reports the number of records
// removed by the cascade.
func (ss *SchemaService) Delete(ctx context.Context, namespace, appID, schemaID, actor string, confirm bool) (int, error) {
	if !confirm {
		return 0, errors.NewInvalidInputError("confirm",
			"deletion must be explicitly confirmed")
	}

	schema, err := ss.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return 0, err
	}
	if schema.CreatedBy != actor {
		return 0, errors.NewNotOwnerError("delete", "table '"+schema.DisplayName+"'")
	}

	deleted, err := ss.store.DeleteCollection(ctx, schema.CollectionName)
	if err != nil {
		return 0, errors.NewInternalError("failed to delete table records", err)
	}
	if err := ss.store.Delete(ctx, constants.CollectionSchemas, schemaID); err != nil {
		return deleted, errors.NewInternalError("failed to delete schema", err)
	}

	log.Printf("Deleted table '%s' (%s) and %d records", schema.DisplayName, schemaID, deleted)
	return deleted, nil
}

// AdjustRecordCount applies a delta to the schema's running record count with
// a floor of zero. The read-then-write is not atomic with the record writes
// it accounts for; under concurrent writers the counter can drift from the
// true record population.
func (ss *SchemaService) AdjustRecordCount(ctx context.Context, schema *models.Schema, delta int) error {
	doc, err := ss.store.Get(ctx, constants.CollectionSchemas, schema.ID)
	if err != nil {
		return errors.NewInternalError("failed to load schema for count update", err)
	}
	// The stored count is a float64 after a JSON round trip but stays an int
	// on stores that merge raw values; accept both.
	current := 0
	switch n := doc["record_count"].(type) {
	case float64:
		current = int(n)
	case int:
		current = n
	case int64:
		current = int(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			current = int(f)
		}
	}
	next := current + delta
	if next < 0 {
		next = 0
	}
	err = ss.store.Update(ctx, constants.CollectionSchemas, schema.ID, docstore.Document{
		"record_count":                  next,
		constants.FieldLastModifiedDate: time.Now().UTC().Format(constants.TimestampLayout),
	})
	if err != nil {
		return errors.NewInternalError("failed to update record count", err)
	}
	schema.RecordCount = next
	return nil
}

// schemaDoc is the storage encoding of a Schema. Unlike the API encoding it
// carries the physical collection name.
type schemaDoc struct {
	ID               string         `json:"id"`
	Namespace        string         `json:"namespace"`
	AppID            string         `json:"app_id"`
	DisplayName      string         `json:"display_name"`
	CollectionName   string         `json:"collection_name"`
	Fields           []models.Field `json:"fields"`
	RecordCount      int            `json:"record_count"`
	CreatedBy        string         `json:"created_by"`
	CreatedDate      string         `json:"created_date"`
	LastModifiedBy   string         `json:"last_modified_by"`
	LastModifiedDate string         `json:"last_modified_date"`
}

func schemaToDoc(s *models.Schema) docstore.Document {
	raw, _ := json.Marshal(schemaDoc{
		ID:               s.ID,
		Namespace:        s.Namespace,
		AppID:            s.AppID,
		DisplayName:      s.DisplayName,
		CollectionName:   s.CollectionName,
		Fields:           s.Fields,
		RecordCount:      s.RecordCount,
		CreatedBy:        s.CreatedBy,
		CreatedDate:      s.CreatedDate.Format(constants.TimestampLayout),
		LastModifiedBy:   s.LastModifiedBy,
		LastModifiedDate: s.LastModifiedDate.Format(constants.TimestampLayout),
	})
	var doc docstore.Document
	_ = json.Unmarshal(raw, &doc)
	return doc
}

func docToSchema(doc docstore.Document) (*models.Schema, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var sd schemaDoc
	if err := json.Unmarshal(raw, &sd); err != nil {
		return nil, err
	}
	created, err := time.Parse(constants.TimestampLayout, sd.CreatedDate)
	if err != nil {
		return nil, err
	}
	modified, err := time.Parse(constants.TimestampLayout, sd.LastModifiedDate)
	if err != nil {
		return nil, err
	}
	return &models.Schema{
		ID:               sd.ID,
		Namespace:        sd.Namespace,
		AppID:            sd.AppID,
		DisplayName:      sd.DisplayName,
		CollectionName:   sd.CollectionName,
		Fields:           sd.Fields,
		RecordCount:      sd.RecordCount,
		CreatedBy:        sd.CreatedBy,
		CreatedDate:      created,
		LastModifiedBy:   sd.LastModifiedBy,
		LastModifiedDate: modified,
	}, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/csvkit"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/fieldtypes"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/naming"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/utils"
)

// CSVService drives the delimited-text interchange: importing uploads into a
// new or existing table and exporting records back out.
type CSVService struct {
	schemas *SchemaService
	records *RecordService
	bulk    *BulkService
}

// NewCSVService creates a new CSVService.
func NewCSVService(schemas *SchemaService, records *RecordService, bulk *BulkService) *CSVService {
	return &CSVService{schemas: schemas, records: records, bulk: bulk}
}

// plausibleCSVTypes are the upload content types accepted for CSV imports.
var plausibleCSVTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
	"":                         true,
}

// CheckUpload rejects uploads that cannot plausibly be CSV before any
// parsing happens.
func (cs *CSVService) CheckUpload(filename, contentType string, size int) error {
	if size == 0 {
		return errors.NewCSVParseError("file is empty")
	}
	if size > constants.MaxCSVUploadBytes {
		return errors.NewCSVParseError(fmt.Sprintf("file exceeds the %d MB limit", constants.MaxCSVUploadBytes>>20))
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return errors.NewCSVParseError("file must have a .csv extension")
	}
	baseType := contentType
	if i := strings.Index(baseType, ";"); i >= 0 {
		baseType = baseType[:i]
	}
	if !plausibleCSVTypes[strings.TrimSpace(strings.ToLower(baseType))] {
		return errors.NewCSVParseError("unsupported content type '" + contentType + "'")
	}
	return nil
}

// ImportNew creates a table from a CSV upload: each column's kind is
// inferred from its values, every inferred field is optional, and all rows
// are inserted through the chunked bulk path. Rows that fail the inferred
// validators are skipped with up to 10 sampled errors.
func (cs *CSVService) ImportNew(ctx context.Context, namespace, appID, displayName, data, actor string) (*models.ImportResult, error) {
	doc, err := csvkit.Parse(data)
	if err != nil {
		return nil, err
	}

	fields := make([]models.Field, 0, len(doc.Header))
	for _, name := range doc.Header {
		values := make([]string, 0, len(doc.Rows))
		for _, row := range doc.Rows {
			if v := row.Values[name]; v != "" {
				values = append(values, v)
			}
		}
		kind, options := fieldtypes.InferType(values)
		fields = append(fields, models.Field{Name: name, Type: kind, Options: options})
	}

	schema, err := cs.schemas.Create(ctx, namespace, appID, displayName, fields, actor)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{SchemaID: schema.ID, Fields: schema.Fields}
	inserted, err := cs.insertRows(ctx, schema, doc.Rows, actor, result)
	if err != nil {
		return nil, err
	}
	result.InsertedCount = inserted

	log.Printf("Imported %d rows into new table '%s' (%d skipped)",
		result.InsertedCount, displayName, result.SkippedCount)
	return result, nil
}

// ImportAppend inserts CSV rows into an existing table. The header set must
// exactly equal the schema's field-name set; invalid rows are silently
// skipped, with up to 10 sampled errors carrying their source line.
func (cs *CSVService) ImportAppend(ctx context.Context, namespace, appID, schemaID, data, actor string) (*models.ImportResult, error) {
	schema, err := cs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}

	doc, err := csvkit.Parse(data)
	if err != nil {
		return nil, err
	}

	if missing, extra := headerDiff(schema.FieldNames(), doc.Header); len(missing) > 0 || len(extra) > 0 {
		return nil, errors.NewCSVSchemaMismatchError(missing, extra)
	}

	result := &models.ImportResult{SchemaID: schema.ID}
	inserted, err := cs.insertRows(ctx, schema, doc.Rows, actor, result)
	if err != nil {
		return nil, err
	}
	result.InsertedCount = inserted

	log.Printf("Appended %d rows to table '%s' (%d skipped)",
		result.InsertedCount, schema.DisplayName, result.SkippedCount)
	return result, nil
}

// insertRows validates each row independently, skips invalid ones (recording
// up to 10 sampled errors on result), converts the survivors to typed
// records and inserts them through the chunked bulk path.
func (cs *CSVService) insertRows(ctx context.Context, schema *models.Schema, rows []csvkit.Row, actor string, result *models.ImportResult) (int, error) {
	specs := toFieldSpecs(schema.Fields)
	now := time.Now().UTC()

	valid := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		record := make(models.Record, len(row.Values))
		for _, f := range schema.Fields {
			if raw, ok := row.Values[f.Name]; ok && raw != "" {
				record[f.Name] = convertCell(f, raw)
			}
		}
		if errs := fieldtypes.ValidateRecord(record, specs); len(errs) > 0 {
			result.SkippedCount++
			if len(result.Errors) < constants.MaxErrorSamples {
				result.Errors = append(result.Errors, models.ItemError{
					Line:    row.Line,
					Message: firstError(errs),
				})
			}
			continue
		}
		stampCreate(record, utils.GenerateID(), actor, now)
		valid = append(valid, record)
	}

	if len(valid) == 0 {
		return 0, nil
	}
	inserted, err := cs.bulk.insertPrepared(ctx, schema, valid)
	if err != nil {
		return inserted, err
	}
	return inserted, nil
}

// ExportOptions controls a CSV export.
type ExportOptions struct {
	// RecordIDs restricts the export to a subset; empty means the whole table.
	RecordIDs []string
	// IncludeSystemFields prefixes the five audit columns to the output.
	IncludeSystemFields bool
}

// Export renders records as delimited text plus delivery metadata: a text/csv
// content type and a filename derived from the table name and today's date.
func (cs *CSVService) Export(ctx context.Context, namespace, appID, schemaID string, opts ExportOptions) (*models.ExportResult, error) {
	schema, err := cs.schemas.Get(ctx, namespace, appID, schemaID)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if len(opts.RecordIDs) > 0 {
		for _, id := range opts.RecordIDs {
			record, err := cs.records.Get(ctx, namespace, appID, schemaID, id)
			if err != nil {
				if errors.IsNotFound(err) {
					continue
				}
				return nil, err
			}
			records = append(records, record)
		}
	} else {
		all, err := cs.records.fetchAll(ctx, schema)
		if err != nil {
			return nil, err
		}
		records = all
	}

	header := make([]string, 0, len(schema.Fields)+len(constants.SystemFields))
	if opts.IncludeSystemFields {
		header = append(header, constants.SystemFields...)
	}
	header = append(header, schema.FieldNames()...)

	var b strings.Builder
	b.WriteString(csvkit.WriteLine(header))
	b.WriteByte('\n')
	for _, record := range records {
		cells := make([]string, len(header))
		for i, name := range header {
			cells[i] = csvkit.FormatValue(record[name])
		}
		b.WriteString(csvkit.WriteLine(cells))
		b.WriteByte('\n')
	}

	filename := fmt.Sprintf("%s_%s.csv",
		naming.Slugify(schema.DisplayName), time.Now().Format("2006-01-02"))
	return &models.ExportResult{
		Content:     []byte(b.String()),
		ContentType: "text/csv",
		Filename:    filename,
		RecordCount: len(records),
	}, nil
}

// convertCell coerces a raw CSV cell into the stored representation for the
// field's kind. Text-like kinds stay strings; anything unparseable is kept
// verbatim so validation reports it instead of silently mangling it.
func convertCell(f models.Field, raw string) interface{} {
	switch f.Type {
	case fieldtypes.FieldTypeNumber, fieldtypes.FieldTypeCurrency, fieldtypes.FieldTypePercent:
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return n
		}
	case fieldtypes.FieldTypeRating:
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return n
		}
	case fieldtypes.FieldTypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	case fieldtypes.FieldTypeMultiSelect:
		parts := strings.Split(raw, ";")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return items
	case fieldtypes.FieldTypeJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

// headerDiff compares the schema field-name set with the CSV header set.
func headerDiff(schemaFields, header []string) (missing, extra []string) {
	inHeader := make(map[string]bool, len(header))
	for _, h := range header {
		inHeader[h] = true
	}
	inSchema := make(map[string]bool, len(schemaFields))
	for _, f := range schemaFields {
		inSchema[f] = true
		if !inHeader[f] {
			missing = append(missing, f)
		}
	}
	for _, h := range header {
		if !inSchema[h] {
			extra = append(extra, h)
		}
	}
	return missing, extra
}

func firstError(errs map[string]string) string {
	for field, msg := range errs {
		return field + " " + msg
	}
	return ""
}

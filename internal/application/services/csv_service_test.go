package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/csvkit"
	apperrors "github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/fieldtypes"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
)

func TestCheckUpload(t *testing.T) {
	cs := newTestManager().CSV

	cases := []struct {
		name        string
		filename    string
		contentType string
		size        int
		wantErr     bool
	}{
		{"valid", "users.csv", "text/csv", 100, false},
		{"charset parameter", "users.csv", "text/csv; charset=utf-8", 100, false},
		{"octet stream", "users.CSV", "application/octet-stream", 100, false},
		{"empty file", "users.csv", "text/csv", 0, true},
		{"too large", "users.csv", "text/csv", constants.MaxCSVUploadBytes + 1, true},
		{"wrong extension", "users.xlsx", "text/csv", 100, true},
		{"wrong content type", "users.csv", "application/pdf", 100, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := cs.CheckUpload(tc.filename, tc.contentType, tc.size)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, "CSV_PARSE_ERROR", apperrors.GetErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// usersCSV builds a 20-row upload whose role column only ever takes two
// values, so it should come back as a single choice.
func usersCSV() string {
	var b strings.Builder
	b.WriteString("email,phone,role\n")
	for i := 0; i < 20; i++ {
		role := "Admin"
		if i%2 == 1 {
			role = "Editor"
		}
		fmt.Fprintf(&b, "user%02d@example.com,55512340%02d,%s\n", i, i, role)
	}
	return b.String()
}

func TestCSVImportNew(t *testing.T) {
	ctx := context.Background()

	t.Run("infers column kinds", func(t *testing.T) {
		m := newTestManager()
		result, err := m.CSV.ImportNew(ctx, testNamespace, testApp, "Imported Users", usersCSV(), testActor)
		require.NoError(t, err)

		assert.Equal(t, 20, result.InsertedCount)
		assert.Zero(t, result.SkippedCount)

		require.Len(t, result.Fields, 3)
		byName := make(map[string]models.Field, len(result.Fields))
		for _, f := range result.Fields {
			byName[f.Name] = f
		}
		assert.Equal(t, fieldtypes.FieldTypeEmail, byName["email"].Type)
		assert.Equal(t, fieldtypes.FieldTypePhone, byName["phone"].Type)
		assert.Equal(t, fieldtypes.FieldTypeSelect, byName["role"].Type)
		assert.Equal(t, []string{"Admin", "Editor"}, byName["role"].Options,
			"choice options keep first-seen order")

		for _, f := range result.Fields {
			assert.False(t, f.Required, "inferred fields are always optional")
		}

		schema, err := m.Schemas.Get(ctx, testNamespace, testApp, result.SchemaID)
		require.NoError(t, err)
		assert.Equal(t, 20, schema.RecordCount)
	})

	t.Run("mixed column falls back to text", func(t *testing.T) {
		m := newTestManager()
		data := "note\nhello\n42\ntrue\nworld\nmore text\nyet more\nanother\nrow\nx\ny\nz\n"
		result, err := m.CSV.ImportNew(ctx, testNamespace, testApp, "Notes", data, testActor)
		require.NoError(t, err)
		require.Len(t, result.Fields, 1)
		assert.Equal(t, fieldtypes.FieldTypeText, result.Fields[0].Type)
	})

	t.Run("duplicate table name is rejected before inserting", func(t *testing.T) {
		m := newTestManager()
		_, err := m.CSV.ImportNew(ctx, testNamespace, testApp, "Imported Users", usersCSV(), testActor)
		require.NoError(t, err)
		_, err = m.CSV.ImportNew(ctx, testNamespace, testApp, "Imported Users", usersCSV(), testActor)
		assert.Equal(t, "DUPLICATE_TABLE", apperrors.GetErrorCode(err))
	})

	t.Run("unparseable upload", func(t *testing.T) {
		m := newTestManager()
		_, err := m.CSV.ImportNew(ctx, testNamespace, testApp, "Broken", "", testActor)
		require.Error(t, err)
		assert.Equal(t, "CSV_PARSE_ERROR", apperrors.GetErrorCode(err))
	})
}

func TestCSVImportAppend(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ServiceManager, *models.Schema) {
		m := newTestManager()
		schema, err := m.Schemas.Create(ctx, testNamespace, testApp, "Customers", customerFields(), testActor)
		require.NoError(t, err)
		return m, schema
	}

	t.Run("appends matching rows", func(t *testing.T) {
		m, schema := setup(t)
		data := "name,email,tier\nAlice,alice@example.com,pro\nBob,bob@example.com,free\n"

		result, err := m.CSV.ImportAppend(ctx, testNamespace, testApp, schema.ID, data, testActor)
		require.NoError(t, err)
		assert.Equal(t, 2, result.InsertedCount)
		assert.Zero(t, result.SkippedCount)

		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.RecordCount)
	})

	t.Run("header order does not matter", func(t *testing.T) {
		m, schema := setup(t)
		data := "tier,name,email\npro,Alice,alice@example.com\n"
		result, err := m.CSV.ImportAppend(ctx, testNamespace, testApp, schema.ID, data, testActor)
		require.NoError(t, err)
		assert.Equal(t, 1, result.InsertedCount)
	})

	t.Run("header mismatch rejects the whole upload", func(t *testing.T) {
		m, schema := setup(t)
		data := "name,company\nAlice,Initech\n"

		_, err := m.CSV.ImportAppend(ctx, testNamespace, testApp, schema.ID, data, testActor)
		require.Error(t, err)
		assert.Equal(t, "CSV_SCHEMA_MISMATCH", apperrors.GetErrorCode(err))

		var mismatch *apperrors.CSVSchemaMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.ElementsMatch(t, []string{"email", "tier"}, mismatch.MissingFields)
		assert.ElementsMatch(t, []string{"company"}, mismatch.ExtraFields)

		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Zero(t, got.RecordCount, "a mismatched upload inserts nothing")
	})

	t.Run("invalid rows are skipped with their source line", func(t *testing.T) {
		m, schema := setup(t)
		data := strings.Join([]string{
			"name,email,tier",
			"Alice,alice@example.com,pro",
			"Bob,not-an-email,free",
			",carol@example.com,free", // missing required name
			"Dave,dave@example.com,free",
		}, "\n") + "\n"

		result, err := m.CSV.ImportAppend(ctx, testNamespace, testApp, schema.ID, data, testActor)
		require.NoError(t, err)
		assert.Equal(t, 2, result.InsertedCount)
		assert.Equal(t, 2, result.SkippedCount)

		require.Len(t, result.Errors, 2)
		assert.Equal(t, 3, result.Errors[0].Line)
		assert.Equal(t, 4, result.Errors[1].Line)

		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.RecordCount, "skipped rows must not count")
	})

	t.Run("error samples are capped at ten", func(t *testing.T) {
		m, schema := setup(t)
		var b strings.Builder
		b.WriteString("name,email,tier\n")
		for i := 0; i < 25; i++ {
			fmt.Fprintf(&b, "User %d,broken,free\n", i)
		}
		result, err := m.CSV.ImportAppend(ctx, testNamespace, testApp, schema.ID, b.String(), testActor)
		require.NoError(t, err)
		assert.Zero(t, result.InsertedCount)
		assert.Equal(t, 25, result.SkippedCount)
		assert.Len(t, result.Errors, constants.MaxErrorSamples)
	})
}

func TestCSVExport(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ServiceManager, *models.Schema, []string) {
		m := newTestManager()
		schema, err := m.Schemas.Create(ctx, testNamespace, testApp, "Customers", customerFields(), testActor)
		require.NoError(t, err)
		ids := make([]string, 3)
		for i := range ids {
			record, err := m.Records.Create(ctx, testNamespace, testApp, schema.ID, models.Record{
				"name":  fmt.Sprintf("Customer %d", i),
				"email": fmt.Sprintf("c%d@example.com", i),
			}, testActor)
			require.NoError(t, err)
			ids[i] = record.ID()
		}
		return m, schema, ids
	}

	t.Run("whole table", func(t *testing.T) {
		m, schema, _ := setup(t)
		result, err := m.CSV.Export(ctx, testNamespace, testApp, schema.ID, ExportOptions{})
		require.NoError(t, err)

		assert.Equal(t, "text/csv", result.ContentType)
		assert.Equal(t, 3, result.RecordCount)
		expected := fmt.Sprintf("customers_%s.csv", time.Now().Format("2006-01-02"))
		assert.Equal(t, expected, result.Filename)

		doc, err := csvkit.Parse(string(result.Content))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "email", "tier"}, doc.Header)
		require.Len(t, doc.Rows, 3)
		assert.Equal(t, "Customer 0", doc.Rows[0].Values["name"])
		assert.Equal(t, "", doc.Rows[0].Values["tier"], "unset fields render empty")
	})

	t.Run("with system fields", func(t *testing.T) {
		m, schema, ids := setup(t)
		result, err := m.CSV.Export(ctx, testNamespace, testApp, schema.ID, ExportOptions{IncludeSystemFields: true})
		require.NoError(t, err)

		doc, err := csvkit.Parse(string(result.Content))
		require.NoError(t, err)
		assert.Equal(t, append(append([]string{}, constants.SystemFields...), "name", "email", "tier"), doc.Header)
		assert.Contains(t, ids, doc.Rows[0].Values["id"])
		assert.Equal(t, testActor, doc.Rows[0].Values["created_by"])
	})

	t.Run("id subset skips unknown ids", func(t *testing.T) {
		m, schema, ids := setup(t)
		result, err := m.CSV.Export(ctx, testNamespace, testApp, schema.ID, ExportOptions{
			RecordIDs: []string{ids[0], "missing", ids[2]},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.RecordCount)
	})

	t.Run("round trips through append", func(t *testing.T) {
		m, schema, _ := setup(t)
		exported, err := m.CSV.Export(ctx, testNamespace, testApp, schema.ID, ExportOptions{})
		require.NoError(t, err)

		// A fresh table with the same fields accepts its sibling's export.
		other, err := m.Schemas.Create(ctx, testNamespace, testApp, "Customers Copy", customerFields(), testActor)
		require.NoError(t, err)
		result, err := m.CSV.ImportAppend(ctx, testNamespace, testApp, other.ID, string(exported.Content), testActor)
		require.NoError(t, err)
		assert.Equal(t, 3, result.InsertedCount)
		assert.Zero(t, result.SkippedCount)
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/infrastructure/docstore"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
	apperrors "github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/models"
)

// batchSpy records every RunBatch call so tests can assert on chunking. When
// failAfter is non-negative, batch number failAfter+1 and later fail.
type batchSpy struct {
	docstore.Store
	batchSizes []int
	failAfter  int
}

func newBatchSpy() *batchSpy {
	return &batchSpy{Store: docstore.NewMemoryStore(), failAfter: -1}
}

func (s *batchSpy) RunBatch(ctx context.Context, writes []docstore.Write) error {
	if s.failAfter >= 0 && len(s.batchSizes) >= s.failAfter {
		return errors.New("storage unavailable")
	}
	s.batchSizes = append(s.batchSizes, len(writes))
	return s.Store.RunBatch(ctx, writes)
}

func makeRecords(n int) []models.Record {
	items := make([]models.Record, n)
	for i := range items {
		items[i] = models.Record{"name": fmt.Sprintf("Customer %04d", i)}
	}
	return items
}

func TestBulkCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects oversize batches before any write", func(t *testing.T) {
		spy := newBatchSpy()
		m := NewServiceManager(spy)
		schema := createCustomerTable(t, m)

		_, err := m.Bulk.Create(ctx, testNamespace, testApp, schema.ID,
			makeRecords(constants.MaxBulkCreate+1), testActor)
		require.Error(t, err)
		assert.Equal(t, "BULK_LIMIT_EXCEEDED", apperrors.GetErrorCode(err))
		assert.Empty(t, spy.batchSizes)
	})

	t.Run("rejects empty batches", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)
		_, err := m.Bulk.Create(ctx, testNamespace, testApp, schema.ID, nil, testActor)
		assert.Equal(t, "INVALID_INPUT", apperrors.GetErrorCode(err))
	})

	t.Run("one invalid item rejects the whole call", func(t *testing.T) {
		spy := newBatchSpy()
		m := NewServiceManager(spy)
		schema := createCustomerTable(t, m)

		items := makeRecords(5)
		items[3] = models.Record{"email": "not-an-email"}

		_, err := m.Bulk.Create(ctx, testNamespace, testApp, schema.ID, items, testActor)
		require.Error(t, err)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "items[3].name")
		assert.Contains(t, verr.Fields, "items[3].email")

		assert.Empty(t, spy.batchSizes, "no write may be issued for a rejected call")
		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Zero(t, got.RecordCount)
	})

	t.Run("error samples are capped", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)

		items := make([]models.Record, 50)
		for i := range items {
			items[i] = models.Record{"email": "nope"}
		}
		_, err := m.Bulk.Create(ctx, testNamespace, testApp, schema.ID, items, testActor)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.LessOrEqual(t, len(verr.Fields), constants.MaxErrorSamples)
	})

	t.Run("a full batch commits in transaction-sized chunks", func(t *testing.T) {
		spy := newBatchSpy()
		m := NewServiceManager(spy)
		schema := createCustomerTable(t, m)

		result, err := m.Bulk.Create(ctx, testNamespace, testApp, schema.ID,
			makeRecords(constants.MaxBulkCreate), testActor)
		require.NoError(t, err)

		assert.Equal(t, constants.MaxBulkCreate, result.SuccessCount)
		assert.Len(t, result.IDs, constants.MaxBulkCreate)
		assert.Equal(t, []int{constants.TransactionWriteLimit, constants.TransactionWriteLimit}, spy.batchSizes)

		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.MaxBulkCreate, got.RecordCount)

		n, err := m.Store.Count(ctx, schema.CollectionName, nil)
		require.NoError(t, err)
		assert.Equal(t, constants.MaxBulkCreate, n)
	})

	t.Run("a chunk failure keeps earlier chunks applied", func(t *testing.T) {
		spy := newBatchSpy()
		m := NewServiceManager(spy)
		schema := createCustomerTable(t, m)

		spy.failAfter = 1 // first chunk lands, second fails
		result, err := m.Bulk.Create(ctx, testNamespace, testApp, schema.ID,
			makeRecords(700), testActor)
		require.Error(t, err)
		assert.Equal(t, "INTERNAL_ERROR", apperrors.GetErrorCode(err))
		assert.Equal(t, constants.TransactionWriteLimit, result.SuccessCount)
		assert.Equal(t, 200, result.FailedCount)

		n, err := m.Store.Count(ctx, schema.CollectionName, nil)
		require.NoError(t, err)
		assert.Equal(t, constants.TransactionWriteLimit, n, "first chunk is not rolled back")

		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.TransactionWriteLimit, got.RecordCount,
			"counter reflects what was durably applied")
	})
}

func TestBulkUpdate(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, m *ServiceManager, schemaID string, n int) []string {
		t.Helper()
		result, err := m.Bulk.Create(ctx, testNamespace, testApp, schemaID, makeRecords(n), testActor)
		require.NoError(t, err)
		return result.IDs
	}

	t.Run("applies partial updates", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)
		ids := seed(t, m, schema.ID, 3)

		items := make([]models.Record, len(ids))
		for i, id := range ids {
			items[i] = models.Record{"id": id, "tier": "pro"}
		}
		result, err := m.Bulk.Update(ctx, testNamespace, testApp, schema.ID, items, "user-2")
		require.NoError(t, err)
		assert.Equal(t, 3, result.SuccessCount)

		record, err := m.Records.Get(ctx, testNamespace, testApp, schema.ID, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "pro", record["tier"])
		assert.Equal(t, "Customer 0000", record["name"], "unmentioned fields survive")
		assert.Equal(t, "user-2", record["last_modified_by"])

		// Updates must not move the record counter.
		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.RecordCount)
	})

	t.Run("items without an id are rejected", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)
		seed(t, m, schema.ID, 1)

		_, err := m.Bulk.Update(ctx, testNamespace, testApp, schema.ID,
			[]models.Record{{"tier": "pro"}}, testActor)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "items[0].id")
	})

	t.Run("rejects oversize batches", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)

		items := make([]models.Record, constants.MaxBulkUpdate+1)
		for i := range items {
			items[i] = models.Record{"id": fmt.Sprintf("r%d", i)}
		}
		_, err := m.Bulk.Update(ctx, testNamespace, testApp, schema.ID, items, testActor)
		assert.Equal(t, "BULK_LIMIT_EXCEEDED", apperrors.GetErrorCode(err))
	})
}

func TestBulkDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes records and adjusts the counter", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)
		created, err := m.Bulk.Create(ctx, testNamespace, testApp, schema.ID, makeRecords(5), testActor)
		require.NoError(t, err)

		result, err := m.Bulk.Delete(ctx, testNamespace, testApp, schema.ID, created.IDs[:3], testActor)
		require.NoError(t, err)
		assert.Equal(t, 3, result.SuccessCount)

		got, err := m.Schemas.Get(ctx, testNamespace, testApp, schema.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.RecordCount)

		n, err := m.Store.Count(ctx, schema.CollectionName, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)

		_, err := m.Bulk.Delete(ctx, testNamespace, testApp, schema.ID, []string{"a", ""}, testActor)
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "ids[1]")
	})

	t.Run("rejects oversize batches", func(t *testing.T) {
		m := newTestManager()
		schema := createCustomerTable(t, m)

		ids := make([]string, constants.MaxBulkDelete+1)
		for i := range ids {
			ids[i] = fmt.Sprintf("r%d", i)
		}
		_, err := m.Bulk.Delete(ctx, testNamespace, testApp, schema.ID, ids, testActor)
		assert.Equal(t, "BULK_LIMIT_EXCEEDED", apperrors.GetErrorCode(err))
	})
}

// Package docstore defines the document-store collaborator the engine runs
// against: single-document get/set/update/delete, equality-filtered listing
// with ordering and offset pagination, and atomic multi-document write
// batches capped at a fixed size.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// MaxBatchWrites is the storage layer's per-transaction write ceiling.
// Callers must chunk larger workloads.
const MaxBatchWrites = 500

// Document is one stored document, keyed by field name.
type Document map[string]interface{}

// Filter is an equality predicate on a document field.
type Filter struct {
	Field string
	Value interface{}
}

// Query describes a collection listing.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
	Offset     int
}

// WriteOp is the kind of one batched write.
type WriteOp int

const (
	OpSet WriteOp = iota
	OpUpdate
	OpDelete
)

// Write is one operation inside an atomic batch.
type Write struct {
	Op         WriteOp
	Collection string
	ID         string
	Doc        Document // unused for OpDelete
}

// Store is the document-store interface. Implementations must apply RunBatch
// atomically: either every write in the batch is durable or none is.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges fields into an existing document; ErrNotFound if absent.
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	Count(ctx context.Context, collection string, filters []Filter) (int, error)
	RunBatch(ctx context.Context, writes []Write) error
	// DeleteCollection removes every document in a collection and reports
	// how many were deleted.
	DeleteCollection(ctx context.Context, collection string) (int, error)
}

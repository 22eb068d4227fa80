package services

import (
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/infrastructure/docstore"
)

// ServiceManager wires all services over one document store.
type ServiceManager struct {
	Store   docstore.Store
	Schemas *SchemaService
	Records *RecordService
	Bulk    *BulkService
	CSV     *CSVService
}

// NewServiceManager creates a new service manager with all dependencies wired.
func NewServiceManager(store docstore.Store) *ServiceManager {
	sm := &ServiceManager{Store: store}

	// Initialize services in dependency order
	sm.Schemas = NewSchemaService(store)
	sm.Records = NewRecordService(store, sm.Schemas)
	sm.Bulk = NewBulkService(store, sm.Schemas)
	sm.CSV = NewCSVService(sm.Schemas, sm.Records, sm.Bulk)

	return sm
}

package models

import (
	"time"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/fieldtypes"
)

// Field represents one column definition inside a table schema.
type Field struct {
	Name     string               `json:"name"`
	Type     fieldtypes.FieldType `json:"type"`
	Required bool                 `json:"required,omitempty"`
	// Options is the allowed-value set. Mandatory and non-empty for the two
	// choice kinds, ignored for every other kind.
	Options []string `json:"options,omitempty"`
}

// Schema represents a user-defined table shape plus its metadata.
// CollectionName is the physical storage identifier; it never leaves the
// backend — clients address tables by Schema ID only.
type Schema struct {
	ID               string    `json:"id"`
	Namespace        string    `json:"namespace"`
	AppID            string    `json:"app_id"`
	DisplayName      string    `json:"display_name"`
	CollectionName   string    `json:"-"`
	Fields           []Field   `json:"fields"`
	RecordCount      int       `json:"record_count"`
	CreatedBy        string    `json:"created_by"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedBy   string    `json:"last_modified_by"`
	LastModifiedDate time.Time `json:"last_modified_date"`
}

// FieldNames returns the schema's field names in definition order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

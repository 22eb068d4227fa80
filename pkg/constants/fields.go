package constants

// System field API names. These five audit fields exist on every record and are
// always assigned by the engine, never taken from caller input.
const (
	FieldID               = "id"
	FieldCreatedBy        = "created_by"
	FieldCreatedDate      = "created_date"
	FieldLastModifiedBy   = "last_modified_by"
	FieldLastModifiedDate = "last_modified_date"
)

// SystemFields lists the engine-managed audit fields in export order.
var SystemFields = []string{
	FieldID,
	FieldCreatedBy,
	FieldCreatedDate,
	FieldLastModifiedBy,
	FieldLastModifiedDate,
}

// IsSystemField reports whether name is one of the engine-managed audit fields.
func IsSystemField(name string) bool {
	switch name {
	case FieldID, FieldCreatedBy, FieldCreatedDate, FieldLastModifiedBy, FieldLastModifiedDate:
		return true
	}
	return false
}

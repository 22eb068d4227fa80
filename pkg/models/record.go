package models

import "github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"

// Record is one row of user data plus the five engine-managed audit fields,
// keyed by field API name.
type Record map[string]interface{}

// ID returns the record identifier, or "" if unset.
func (r Record) ID() string {
	id, _ := r[constants.FieldID].(string)
	return id
}

// StripSystemFields returns a copy of the record with every engine-managed
// audit field removed. Caller-supplied values under those names are never
// trusted; the engine re-stamps them on every write.
func (r Record) StripSystemFields() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if constants.IsSystemField(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

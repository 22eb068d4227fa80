package utils

import "github.com/google/uuid"

// GenerateID returns a new random UUID string. Schemas and records share the
// same identifier scheme; callers treat the value as opaque.
func GenerateID() string {
	return uuid.NewString()
}

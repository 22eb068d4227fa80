package fieldtypes

import (
	"strings"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
)

// inferenceOrder is the fixed priority in which kinds are tested during CSV
// import. The order is a compatibility contract: a column of 10-digit numeric
// strings is a phone column, not a number column. Do not reorder.
var inferenceOrder = []FieldType{
	FieldTypeEmail,
	FieldTypePhone,
	FieldTypeURL,
	FieldTypeNumber,
	FieldTypeBoolean,
	FieldTypeDate,
}

// InferType guesses a column's kind from its non-empty values. Up to the
// first 10 values are tested against each kind in inferenceOrder; the first
// kind matching every sample wins. Failing that, a column whose values repeat
// (distinct count <= 10 and strictly less than half the sample count) becomes
// a single choice with the distinct values, in first-seen order, as the
// allowed set. Everything else defaults to short text.
func InferType(values []string) (FieldType, []string) {
	if len(values) == 0 {
		return FieldTypeText, nil
	}

	samples := values
	if len(samples) > constants.InferenceSamples {
		samples = samples[:constants.InferenceSamples]
	}

	for _, t := range inferenceOrder {
		if allMatch(t, samples) {
			return t, nil
		}
	}

	distinct := distinctValues(values)
	if len(distinct) <= constants.InferenceSamples && len(distinct)*2 < len(samples) {
		return FieldTypeSelect, distinct
	}

	return FieldTypeText, nil
}

func allMatch(t FieldType, samples []string) bool {
	for _, s := range samples {
		if Validate(t, strings.TrimSpace(s), nil) != "" {
			return false
		}
	}
	return true
}

func distinctValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

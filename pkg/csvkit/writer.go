package csvkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders a record value as a CSV cell body. Arrays are joined
// with "; ", objects are serialized to JSON text, numbers drop the float64
// artifacts JSON decoding introduces.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []string:
		return strings.Join(v, "; ")
	case []interface{}:
		parts := make([]string, len(v))
		for i, el := range v {
			parts[i] = FormatValue(el)
		}
		return strings.Join(parts, "; ")
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Escape quotes a cell when it contains a comma, quote or newline, doubling
// any internal quotes per RFC4180.
func Escape(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n\r") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// WriteLine renders one row of cells as an escaped CSV line without the
// trailing newline.
func WriteLine(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = Escape(c)
	}
	return strings.Join(escaped, ",")
}

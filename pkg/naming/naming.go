// Package naming derives physical collection names for user-defined tables.
// The derived name is deterministic for a given (prefix, display name,
// creation instant) but cannot be predicted from the display name alone, so a
// client that knows a table's name still cannot address its backing
// collection directly.
package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const maxSlugLength = 50

// CollectionName returns the physical storage identifier for a table:
// {prefix}_data_{hash8}_{slug}. hash8 is the first 8 hex characters of
// SHA-256 over prefix, display name and the creation instant; slug is the
// lowercased display name with non-alphanumeric runs collapsed to single
// underscores, truncated to 50 characters.
func CollectionName(prefix, displayName string, createdAt time.Time) string {
	seed := fmt.Sprintf("%s:%s:%d", prefix, displayName, createdAt.UnixNano())
	sum := sha256.Sum256([]byte(seed))
	hash8 := hex.EncodeToString(sum[:])[:8]
	return fmt.Sprintf("%s_data_%s_%s", prefix, hash8, Slugify(displayName))
}

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single underscore, truncating to 50 characters.
func Slugify(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return slug
}

package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenUUID generates a new UUID string.
func GenUUID() string {
	return uuid.NewString()
}

// HasPrefixes returns true if the string s has any of the given prefixes.
func HasPrefixes(src string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}
	return false
}

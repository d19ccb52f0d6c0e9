// Package patch helps apply partial updates where a nil field means "keep".
package patch

import "strings"

func Coalesce[T any](ptr *T, fallback T) T {
	if ptr == nil {
		return fallback
	}
	return *ptr
}

// Text is Coalesce for free-form strings, trimming surrounding whitespace.
func Text(ptr *string, fallback string) string {
	return strings.TrimSpace(Coalesce(ptr, fallback))
}

//go:build unit || e2e

package testutil

// Field sets key to value, or deletes it when value is nil.
func Field(key string, value any) func(m map[string]any) {
	return func(m map[string]any) {
		if value == nil {
			delete(m, key)
		} else {
			m[key] = value
		}
	}
}

// Int64Ptr and friends build optional request fields inline.
func Int64Ptr(v int64) *int64 { return &v }

func IntPtr(v int) *int { return &v }

func StrPtr(v string) *string { return &v }

func BoolPtr(v bool) *bool { return &v }

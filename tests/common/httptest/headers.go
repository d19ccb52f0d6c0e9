//go:build unit || e2e

package httptest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()
	for k, v := range expected {
		assert.Equal(t, v, w.Header().Get(k), "header %s mismatch", k)
	}
}

// AssertLocation checks the Location header a create endpoint sets.
func AssertLocation(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	assert.Equal(t, expected, w.Header().Get("Location"))
}

//go:build unit

package patch_test

import (
	"testing"

	"parking-lot-manager/internal/pkg/patch"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	zero := 0
	assert.Equal(t, 5, patch.Coalesce(nil, 5))
	assert.Equal(t, 0, patch.Coalesce(&zero, 5), "explicit zero wins over fallback")
}

func TestText(t *testing.T) {
	v := "  Harbor Lot "
	assert.Equal(t, "Harbor Lot", patch.Text(&v, "old"))
	assert.Equal(t, "old", patch.Text(nil, "old"))
}

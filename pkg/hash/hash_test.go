package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("user123")
	require.NoError(t, err)
	assert.NotEqual(t, "user123", h)

	assert.True(t, CheckPassword(h, "user123"))
	assert.False(t, CheckPassword(h, "user124"))
	assert.False(t, CheckPassword("not-a-hash", "user123"))
}

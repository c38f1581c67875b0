package bloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("exact and case-insensitive", func(t *testing.T) {
		lvl, err := Parse("Understand")
		require.NoError(t, err)
		assert.Equal(t, Understand, lvl)

		lvl, err = Parse("  analyze ")
		require.NoError(t, err)
		assert.Equal(t, Analyze, lvl)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := Parse("Memorize")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Memorize")
	})
}

func TestValid(t *testing.T) {
	for _, lvl := range Levels() {
		assert.True(t, lvl.Valid(), lvl)
	}
	assert.False(t, Level("Recall").Valid())
}

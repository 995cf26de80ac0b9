package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	{
		r := NewRange(2, 5)
		assert.Equal(t, Index{2, 3, 4, 5}, r)
		assert.Equal(t, Index{12, 13, 14, 15}, r.Add(10))
		assert.True(t, r.Contains(4))
		assert.False(t, r.Contains(6))
		assert.Equal(t, 2, r.PositionOf(4))
		assert.Equal(t, -1, r.PositionOf(6))
	}
	{ // Sorted canonicalizes: ascending, duplicates removed
		I := Index{5, 1, 3, 1, 5}
		assert.Equal(t, Index{1, 3, 5}, I.Sorted())
		assert.Equal(t, Index{5, 1, 3, 1, 5}, I) // original untouched
	}
	{
		I := Index{0, 3, 7}
		assert.NoError(t, I.Validate(0, 8))
		assert.Error(t, I.Validate(0, 7))
		assert.Error(t, I.Validate(1, 8))
	}
}

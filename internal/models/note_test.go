package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	t.Run("trims and drops empties", func(t *testing.T) {
		got := NormalizeTags([]string{" work ", "", "   ", "ideas"})
		assert.Equal(t, []string{"work", "ideas"}, got)
	})

	t.Run("dedupes case-insensitively keeping first casing", func(t *testing.T) {
		got := NormalizeTags([]string{"Work", "work", "WORK", "2024"})
		assert.Equal(t, []string{"Work", "2024"}, got)
	})

	t.Run("preserves order", func(t *testing.T) {
		got := NormalizeTags([]string{"b", "a", "c", "A"})
		assert.Equal(t, []string{"b", "a", "c"}, got)
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Empty(t, NormalizeTags(nil))
	})
}

func TestEncodeDecodeTags(t *testing.T) {
	raw, err := EncodeTags([]string{"work", "2024"})
	require.NoError(t, err)
	assert.Equal(t, `["work","2024"]`, raw)

	assert.Equal(t, []string{"work", "2024"}, DecodeTags(raw))
}

func TestEncodeTagsNil(t *testing.T) {
	raw, err := EncodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
}

func TestDecodeTagsMalformed(t *testing.T) {
	assert.Empty(t, DecodeTags(""))
	assert.Empty(t, DecodeTags("not json"))
	assert.Empty(t, DecodeTags("null"))
}

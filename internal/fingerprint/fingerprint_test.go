package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextDeterminism(t *testing.T) {
	const text = "Photosynthesis converts light to chemical energy."
	assert.Equal(t, Text(text), Text(text))
	assert.Len(t, string(Text(text)), 64)
}

func TestTextCanonicalization(t *testing.T) {
	base := Text("Photosynthesis converts light to chemical energy.")

	t.Run("near-duplicates collapse", func(t *testing.T) {
		for _, variant := range []string{
			"Photosynthesis converts light to chemical energy.  ",
			"  Photosynthesis converts light to chemical energy.",
			"Photosynthesis  converts\tlight to chemical energy.",
			"Photosynthesis converts light to chemical energy.\n",
		} {
			assert.Equal(t, base, Text(variant), "variant %q", variant)
		}
	})

	t.Run("crlf equals lf", func(t *testing.T) {
		assert.Equal(t, Text("a\r\nb"), Text("a\nb"))
	})

	t.Run("per-line trailing whitespace drops", func(t *testing.T) {
		assert.Equal(t, Text("line one \nline two"), Text("line one\nline two"))
	})

	t.Run("real edits still differ", func(t *testing.T) {
		edited := Text("Photosynthesis converts light to chemical energy. Chlorophyll absorbs it.")
		assert.NotEqual(t, base, edited)
		assert.NotEqual(t, Text("a\nb"), Text("a b"))
	})
}

func TestJSONStability(t *testing.T) {
	type in struct {
		Objective string `json:"objective"`
		Level     string `json:"level"`
		Module    string `json:"module"`
	}

	a := JSON(in{Objective: "explain photosynthesis", Level: "Understand", Module: "abc"})
	b := JSON(in{Objective: "explain photosynthesis", Level: "Understand", Module: "abc"})
	require.Equal(t, a, b)

	t.Run("map key order is irrelevant", func(t *testing.T) {
		m1 := map[string]string{"objective": "x", "level": "Apply"}
		m2 := map[string]string{"level": "Apply", "objective": "x"}
		assert.Equal(t, JSON(m1), JSON(m2))
	})

	t.Run("value change changes digest", func(t *testing.T) {
		c := JSON(in{Objective: "explain photosynthesis", Level: "Apply", Module: "abc"})
		assert.NotEqual(t, a, c)
	})
}

func TestCombine(t *testing.T) {
	d1, d2 := Text("one"), Text("two")
	assert.Equal(t, Combine(d1, d2), Combine(d1, d2))
	assert.NotEqual(t, Combine(d1, d2), Combine(d2, d1))
	assert.NotEqual(t, Combine(d1), Combine(d1, d2))
}

func TestShort(t *testing.T) {
	d := Text("content")
	assert.Len(t, d.Short(), 12)
	assert.True(t, Digest("").IsZero())
	assert.False(t, d.IsZero())
}

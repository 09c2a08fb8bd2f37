package plurals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardinalEnglish(t *testing.T) {
	assert.Equal(t, []Category{One, Other}, Cardinal("en"))
}

func TestCardinalArabic(t *testing.T) {
	assert.Equal(t, []Category{Zero, One, Two, Few, Many, Other}, Cardinal("ar"))
}

func TestCardinalJapanese(t *testing.T) {
	assert.Equal(t, []Category{Other}, Cardinal("ja"))
}

func TestCardinalRussian(t *testing.T) {
	assert.Equal(t, []Category{One, Few, Many, Other}, Cardinal("ru"))
}

func TestCardinalRegionVariant(t *testing.T) {
	assert.Equal(t, Cardinal("pt"), Cardinal("pt-BR"))
}

func TestCardinalUnknownLocaleFallsBack(t *testing.T) {
	got := Cardinal("zz-unknown")
	assert.NotEmpty(t, got)
	assert.Contains(t, got, Other)
}

func TestOrdinalEnglish(t *testing.T) {
	assert.Equal(t, []Category{One, Two, Few, Other}, Ordinal("en"))
}

func TestOrdinalDiffersFromCardinal(t *testing.T) {
	assert.NotEqual(t, Cardinal("en"), Ordinal("en"))
}

func TestRequired(t *testing.T) {
	assert.True(t, Required("en", One))
	assert.False(t, Required("en", Zero))
	assert.True(t, Required("ar", Zero))
}

func TestCanonicalOrderIsStable(t *testing.T) {
	// Repeated lookups serve the cached slice in the same order.
	first := Cardinal("pl")
	second := Cardinal("pl")
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.Less(t, indexOf(first[i-1]), indexOf(first[i]))
	}
}

func indexOf(c Category) int {
	for i, v := range CanonicalOrder {
		if v == c {
			return i
		}
	}

	return -1
}

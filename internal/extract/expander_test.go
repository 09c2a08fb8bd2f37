package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandWithoutCount(t *testing.T) {
	e := &Expander{PluralSeparator: "_"}

	got := e.Expand(&Key{Key: "greeting", UsedWithoutCount: true}, "en", nil)
	assert.Equal(t, []string{"greeting"}, got)
}

func TestExpandEnglishCardinal(t *testing.T) {
	e := &Expander{PluralSeparator: "_"}

	got := e.Expand(&Key{Key: "greeting", HasCount: true}, "en", nil)
	assert.Equal(t, []string{"greeting_one", "greeting_other"}, got)
}

func TestExpandMixedUsageKeepsBareKey(t *testing.T) {
	e := &Expander{PluralSeparator: "_"}

	k := &Key{Key: "greeting", HasCount: true, UsedWithoutCount: true}

	got := e.Expand(k, "en", nil)
	assert.Equal(t, []string{"greeting", "greeting_one", "greeting_other"}, got)
}

func TestExpandArabicSixCategories(t *testing.T) {
	e := &Expander{PluralSeparator: "_"}

	got := e.Expand(&Key{Key: "greeting", HasCount: true}, "ar", nil)
	assert.Equal(t, []string{
		"greeting_zero",
		"greeting_one",
		"greeting_two",
		"greeting_few",
		"greeting_many",
		"greeting_other",
	}, got)
}

func TestExpandOrdinal(t *testing.T) {
	e := &Expander{PluralSeparator: "_"}

	got := e.Expand(&Key{Key: "place", HasCount: true, IsOrdinal: true}, "en", nil)
	assert.Equal(t, []string{
		"place_ordinal_one",
		"place_ordinal_two",
		"place_ordinal_few",
		"place_ordinal_other",
	}, got)
}

func TestExpandOptionalZeroFromExisting(t *testing.T) {
	e := &Expander{PluralSeparator: "_"}

	hasExisting := func(key string) bool { return key == "items_zero" }

	got := e.Expand(&Key{Key: "items", HasCount: true}, "en", hasExisting)
	assert.Equal(t, []string{"items_zero", "items_one", "items_other"}, got)
}

func TestExpandDisabledPlurals(t *testing.T) {
	e := &Expander{PluralSeparator: "_", DisablePlurals: true}

	got := e.Expand(&Key{Key: "greeting", HasCount: true}, "ar", nil)
	assert.Equal(t, []string{"greeting"}, got)
}

package merger

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// lessFor returns the key comparator for one locale: a custom
// comparator when configured, otherwise case-insensitive collation
// under the locale's own rules.
func lessFor(locale string, custom func(a, b string) bool) func(a, b string) bool {
	if custom != nil {
		return custom
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}

	c := collate.New(tag, collate.IgnoreCase)

	return func(a, b string) bool {
		return c.CompareString(a, b) < 0
	}
}

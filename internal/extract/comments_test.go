package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locsync/internal/config"
)

func scanSource(t *testing.T, src string) *Collector {
	t.Helper()

	collector := NewCollector()
	NewCommentScanner(config.Defaults(), collector).Scan("app.tsx", []byte(src), nil)

	return collector
}

func TestCommentScanLineComment(t *testing.T) {
	c := scanSource(t, "const a = 1;\n// t('page.title')\n")

	keys := c.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "page.title", keys[0].Key)
	assert.Equal(t, "translation", keys[0].Namespace)
	assert.True(t, keys[0].UsedWithoutCount)
	assert.Equal(t, 2, keys[0].Locations[0].Line)
}

func TestCommentScanBlockComment(t *testing.T) {
	src := "const a = 1;\n/*\n  t(\"common:remove\")\n*/\n"

	c := scanSource(t, src)

	keys := c.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "remove", keys[0].Key)
	assert.Equal(t, "common", keys[0].Namespace)
	assert.False(t, keys[0].NamespaceImplicit)
	assert.Equal(t, 2, keys[0].Locations[0].Line)
}

func TestCommentScanDefaultValue(t *testing.T) {
	c := scanSource(t, "// t('greeting', 'Hello there')\n")

	keys := c.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "Hello there", keys[0].DefaultValue)
	assert.True(t, keys[0].ExplicitDefault)
}

func TestCommentScanEscapes(t *testing.T) {
	c := scanSource(t, `// t('multi', 'line one\nline two')`)

	keys := c.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "line one\nline two", keys[0].DefaultValue)
}

func TestCommentScanMemberWildcard(t *testing.T) {
	c := scanSource(t, "// i18next.t('global.key')\n")

	assert.True(t, c.Has("translation", "global.key"))
}

func TestCommentScanQuoteStyles(t *testing.T) {
	src := "// t('single')\n// t(\"double\")\n// t(`backtick`)\n"

	c := scanSource(t, src)

	assert.True(t, c.Has("translation", "single"))
	assert.True(t, c.Has("translation", "double"))
	assert.True(t, c.Has("translation", "backtick"))
}

func TestCommentScanIgnoresLiveCode(t *testing.T) {
	c := scanSource(t, "t('live.key')\nconst url = 'https://example.com/t(fake)';\n")

	assert.Zero(t, c.Len())
}

func TestCommentScanIgnoresSimilarNames(t *testing.T) {
	// "format(...)" and "sort(...)" must not match the configured "t".
	c := scanSource(t, "// format('x')\n// sort('y')\n// not('z')\n")

	assert.Zero(t, c.Len())
}

func TestCommentScanMultipleCallsPerComment(t *testing.T) {
	c := scanSource(t, "// t('first') and t('second')\n")

	assert.True(t, c.Has("translation", "first"))
	assert.True(t, c.Has("translation", "second"))
}

func TestCommentScanUsesHookBindings(t *testing.T) {
	collector := NewCollector()
	scanner := NewCommentScanner(config.Defaults(), collector)

	scopes := map[string]ScopeInfo{
		"t":  {DefaultNamespace: "common", KeyPrefix: "settings"},
		"tr": {DefaultNamespace: "admin"},
	}

	scanner.Scan("app.tsx", []byte("// t('title')\n// tr.t('users')\n"), scopes)

	assert.True(t, collector.Has("common", "settings.title"))
	assert.True(t, collector.Has("admin", "users"))
}

func TestCommentScanExplicitNamespaceBeatsBinding(t *testing.T) {
	collector := NewCollector()
	scanner := NewCommentScanner(config.Defaults(), collector)

	scopes := map[string]ScopeInfo{"t": {DefaultNamespace: "common"}}

	scanner.Scan("app.tsx", []byte("// t('errors:boom')\n"), scopes)

	assert.True(t, collector.Has("errors", "boom"))
}

func TestCommentScanLineNumbersAfterBlock(t *testing.T) {
	src := "/* one\ntwo\nthree */\n// t('after.block')\n"

	c := scanSource(t, src)

	keys := c.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, 4, keys[0].Locations[0].Line)
}

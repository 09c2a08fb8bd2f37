package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locsync/internal/config"
	"locsync/internal/extract"
	"locsync/internal/merger"
)

func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeSource(t *testing.T, rel, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(rel), 0o755))
	require.NoError(t, os.WriteFile(rel, []byte(content), 0o644))
}

func readCatalog(t *testing.T, path string) *merger.Tree {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	tree, err := merger.Decode(merger.FormatForPath(path), data)
	require.NoError(t, err)

	return tree
}

func catalogStrings(t *testing.T, path string) map[string]string {
	t.Helper()

	out := map[string]string{}
	for _, f := range readCatalog(t, path).Flatten(".") {
		if f.Node.Kind == merger.KindString {
			out[f.Path] = f.Node.Str
		}
	}

	return out
}

func TestRunnerEndToEnd(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/page.tsx", `
import { useTranslation } from "react-i18next";

export function Page() {
  const { t } = useTranslation("common");
  return <h1>{t("page.title", "Welcome")}</h1>;
}
`)

	cfg := config.Defaults()
	cfg.Locales = []string{"en", "de"}

	summary, err := NewRunner(cfg, Hooks{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FilesScanned)
	assert.Equal(t, 1, summary.KeysFound)
	assert.Equal(t, 2, summary.FilesUpdated)
	assert.Empty(t, summary.SkippedFiles)

	en := catalogStrings(t, "locales/en/common.json")
	assert.Equal(t, map[string]string{"page.title": "Welcome"}, en)

	de := catalogStrings(t, "locales/de/common.json")
	assert.Equal(t, map[string]string{"page.title": ""}, de)
}

func TestRunnerSecondRunIsClean(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `t("greeting", "Hi");`)

	cfg := config.Defaults()

	first, err := NewRunner(cfg, Hooks{}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.FilesUpdated)

	second, err := NewRunner(cfg, Hooks{}).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.FilesUpdated)
}

func TestRunnerSkipsUnparseableFiles(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/bad.ts", "const = = = {{{")
	writeSource(t, "src/good.ts", `t("ok");`)

	summary, err := NewRunner(config.Defaults(), Hooks{}).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.SkippedFiles, 1)
	assert.Contains(t, summary.SkippedFiles[0], "bad.ts")
	assert.Equal(t, 1, summary.KeysFound)
}

func TestRunnerPreservesExistingTranslations(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `t("greeting");`)
	writeSource(t, "locales/en/translation.json", `{
  "greeting": "Hello there"
}
`)

	summary, err := NewRunner(config.Defaults(), Hooks{}).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.FilesUpdated)
	assert.Equal(t, map[string]string{"greeting": "Hello there"},
		catalogStrings(t, "locales/en/translation.json"))
}

func TestRunnerSkipsUndecodableCatalog(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `t("greeting");`)
	writeSource(t, "locales/en/translation.json", "not json at all")

	summary, err := NewRunner(config.Defaults(), Hooks{}).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.FilesUpdated)

	data, err := os.ReadFile("locales/en/translation.json")
	require.NoError(t, err)
	assert.Equal(t, "not json at all", string(data))
}

func TestRunnerMergedNamespaces(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `
t("common:save", "Save");
t("errors:network", "Network error");
`)

	cfg := config.Defaults()
	cfg.MergeNamespaces = true
	cfg.Output = "locales/$LOCALE.json"

	_, err := NewRunner(cfg, Hooks{}).Run(context.Background())
	require.NoError(t, err)

	tree := readCatalog(t, "locales/en.json")
	require.Equal(t, 2, tree.Len())

	common, ok := tree.Subtree("common")
	require.True(t, ok)
	n, ok := common.Get("save")
	require.True(t, ok)
	assert.Equal(t, "Save", n.Str)

	_, ok = tree.Subtree("errors")
	assert.True(t, ok)
}

func TestRunnerYAMLOutput(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `t("nav.home", "Home");`)

	cfg := config.Defaults()
	cfg.Output = "locales/$LOCALE/$NAMESPACE.yaml"

	_, err := NewRunner(cfg, Hooks{}).Run(context.Background())
	require.NoError(t, err)

	got := catalogStrings(t, "locales/en/translation.yaml")
	assert.Equal(t, map[string]string{"nav.home": "Home"}, got)
}

func TestRunnerCommentExtraction(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `
// t("disabled.key", "Kept alive")
const x = 1;
`)

	cfg := config.Defaults()
	cfg.ExtractFromComments = true

	summary, err := NewRunner(cfg, Hooks{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.KeysFound)
	assert.Equal(t, map[string]string{"disabled.key": "Kept alive"},
		catalogStrings(t, "locales/en/translation.json"))
}

func TestRunnerHooks(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `t("greeting", "Hi");`)

	var passed []*extract.Key
	var events []WriteEvent

	hooks := Hooks{
		PostPass:  func(keys []*extract.Key) { passed = keys },
		PostWrite: func(ev WriteEvent) { events = append(events, ev) },
	}

	_, err := NewRunner(config.Defaults(), hooks).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, passed, 1)
	assert.Equal(t, "greeting", passed[0].Key)

	require.Len(t, events, 1)
	assert.Equal(t, "en", events[0].Locale)
	assert.Equal(t, "translation", events[0].Namespace)
	assert.True(t, events[0].Dirty)
	assert.Equal(t, "locales/en/translation.json", events[0].Path)
}

func TestRunnerRemovesUnusedKeys(t *testing.T) {
	chdir(t, t.TempDir())

	writeSource(t, "src/app.ts", `t("live");`)
	writeSource(t, "locales/en/translation.json", `{
  "live": "Live",
  "stale": "Stale"
}
`)

	cfg := config.Defaults()
	cfg.RemoveUnusedKeys = true

	_, err := NewRunner(cfg, Hooks{}).Run(context.Background())
	require.NoError(t, err)

	got := catalogStrings(t, "locales/en/translation.json")
	assert.Equal(t, map[string]string{"live": "Live"}, got)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "en", cfg.PrimaryLocale())
	assert.Equal(t, "translation", cfg.DefaultNamespace)
	assert.Equal(t, "  ", cfg.Indentation.String())
	assert.True(t, cfg.Sort)
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no locales", func(c *Config) { c.Locales = nil }},
		{"blank locale", func(c *Config) { c.Locales = []string{"en", " "} }},
		{"no input", func(c *Config) { c.Input = nil }},
		{"no output", func(c *Config) { c.Output = "" }},
		{"output missing namespace", func(c *Config) { c.Output = "locales/$LOCALE.json" }},
		{"output missing locale", func(c *Config) { c.Output = "locales/$NAMESPACE.json" }},
		{"no default namespace", func(c *Config) { c.DefaultNamespace = "" }},
		{"bad format", func(c *Config) { c.Format = "toml" }},
		{"empty preserve pattern", func(c *Config) { c.PreservePatterns = []string{""} }},
		{"unnamed hook", func(c *Config) { c.Hooks = append(c.Hooks, Hook{}) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateMergedNamespacesOutput(t *testing.T) {
	cfg := Defaults()
	cfg.MergeNamespaces = true
	cfg.Output = "locales/$LOCALE.json"

	assert.NoError(t, cfg.Validate())
}

func TestValidateResetsExpansionLimit(t *testing.T) {
	cfg := Defaults()
	cfg.TemplateExpansionLimit = 0

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 32, cfg.TemplateExpansionLimit)
}

func TestIndentUnmarshal(t *testing.T) {
	t.Run("number", func(t *testing.T) {
		var i Indent
		require.NoError(t, yaml.Unmarshal([]byte("4"), &i))
		assert.Equal(t, "    ", i.String())
	})

	t.Run("tab string", func(t *testing.T) {
		var i Indent
		require.NoError(t, yaml.Unmarshal([]byte(`"\t"`), &i))
		assert.Equal(t, "\t", i.String())
	})

	t.Run("out of range", func(t *testing.T) {
		var i Indent
		assert.Error(t, yaml.Unmarshal([]byte("99"), &i))
	})

	t.Run("non-whitespace string", func(t *testing.T) {
		var i Indent
		assert.Error(t, yaml.Unmarshal([]byte(`"abc"`), &i))
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locsync.yaml")

	data := `
locales: [en, de, fr]
input:
  - "app/**/*.tsx"
output: "translations/$LOCALE/$NAMESPACE.yaml"
defaultNamespace: common
indentation: 4
removeUnusedKeys: true
functions: [t, translate, "*.t"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "de", "fr"}, cfg.Locales)
	assert.Equal(t, "en", cfg.PrimaryLocale())
	assert.Equal(t, "common", cfg.DefaultNamespace)
	assert.Equal(t, "    ", cfg.Indentation.String())
	assert.True(t, cfg.RemoveUnusedKeys)
	assert.Equal(t, []string{"t", "translate", "*.t"}, cfg.Functions)

	// Untouched settings keep their defaults.
	assert.Equal(t, ":", cfg.NamespaceSeparator)
	assert.Equal(t, []string{"Trans"}, cfg.Components)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locales: []\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

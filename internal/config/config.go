package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultPath is where Load looks for a config file when none is given.
const DefaultPath = "locsync.yaml"

// Hook describes a translator-producing hook call pattern, for example
// useTranslation(ns, { keyPrefix }). NsArg is the positional index of
// the namespace argument; OptionsArg the index of the options object
// carrying KeyPrefixOption.
type Hook struct {
	Name            string `yaml:"name"`
	NsArg           int    `yaml:"nsArg"`
	OptionsArg      int    `yaml:"optionsArg"`
	KeyPrefixOption string `yaml:"keyPrefixOption"`
}

// Config is the full run configuration. The zero value is not usable;
// call Load or apply Defaults.
type Config struct {
	Locales []string `yaml:"locales"`
	Input   []string `yaml:"input"`
	Ignore  []string `yaml:"ignore"`
	Output  string   `yaml:"output"`

	DefaultNamespace   string `yaml:"defaultNamespace"`
	NamespaceSeparator string `yaml:"namespaceSeparator"`
	KeySeparator       string `yaml:"keySeparator"`
	ContextSeparator   string `yaml:"contextSeparator"`
	PluralSeparator    string `yaml:"pluralSeparator"`

	Functions  []string `yaml:"functions"`
	Components []string `yaml:"components"`
	KeepTags   []string `yaml:"keepTags"`
	Hooks      []Hook   `yaml:"hooks"`

	DefaultValue    string `yaml:"defaultValue"`
	Sort            bool   `yaml:"sort"`
	Indentation     Indent `yaml:"indentation"`
	Format          string `yaml:"format"`
	MergeNamespaces bool   `yaml:"mergeNamespaces"`

	RemoveUnusedKeys        bool     `yaml:"removeUnusedKeys"`
	PreservePatterns        []string `yaml:"preservePatterns"`
	PreserveContextVariants bool     `yaml:"preserveContextVariants"`
	SyncPrimaryWithDefaults bool     `yaml:"syncPrimaryWithDefaults"`
	SyncAll                 bool     `yaml:"syncAll"`
	DisablePlurals          bool     `yaml:"disablePlurals"`
	GenerateBasePluralForms bool     `yaml:"generateBasePluralForms"`
	ExtractFromComments     bool     `yaml:"extractFromComments"`

	TemplateExpansionLimit int `yaml:"templateExpansionLimit"`

	// DefaultValueFunc, when set, overrides DefaultValue per key.
	// API-only; never read from the config file.
	DefaultValueFunc func(locale, namespace, key string) string `yaml:"-"`

	// SortFunc, when set, replaces the locale-aware comparator.
	SortFunc func(a, b string) bool `yaml:"-"`

	Verbose bool `yaml:"-"`
}

// Indent is an output indentation unit: either a count of spaces or a
// literal whitespace string.
type Indent struct {
	str string
}

// NewIndent returns an Indent using the given literal string.
func NewIndent(s string) Indent { return Indent{str: s} }

// Spaces returns an Indent of n spaces.
func Spaces(n int) Indent { return Indent{str: strings.Repeat(" ", n)} }

// String returns the literal indentation unit. Empty means "use the
// default of two spaces".
func (i Indent) String() string {
	if i.str == "" {
		return "  "
	}

	return i.str
}

// UnmarshalYAML accepts either a number or a literal whitespace string.
func (i *Indent) UnmarshalYAML(b []byte) error {
	s := strings.TrimSpace(string(b))

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 16 {
			return fmt.Errorf("indentation out of range: %d", n)
		}

		i.str = strings.Repeat(" ", n)

		return nil
	}

	var lit string
	if err := yaml.Unmarshal(b, &lit); err != nil {
		return fmt.Errorf("indentation must be a number or a string: %w", err)
	}

	if strings.Trim(lit, " \t") != "" {
		return fmt.Errorf("indentation string must be whitespace, got %q", lit)
	}

	i.str = lit

	return nil
}

// Defaults returns a Config with every policy at its documented default.
func Defaults() *Config {
	return &Config{
		Locales:                 []string{"en"},
		Input:                   []string{"src/**/*.{js,jsx,ts,tsx}"},
		Output:                  "locales/$LOCALE/$NAMESPACE.json",
		DefaultNamespace:        "translation",
		NamespaceSeparator:      ":",
		KeySeparator:            ".",
		ContextSeparator:        "_",
		PluralSeparator:         "_",
		Functions:               []string{"t", "*.t"},
		Components:              []string{"Trans"},
		KeepTags:                []string{"br", "strong", "b", "i", "p"},
		Hooks:                   []Hook{{Name: "useTranslation", NsArg: 0, OptionsArg: 1, KeyPrefixOption: "keyPrefix"}},
		Sort:                    true,
		Indentation:             Spaces(2),
		GenerateBasePluralForms: true,
		TemplateExpansionLimit:  32,
	}
}

// Load reads the YAML config at path (or DefaultPath when path is
// empty), applies .env / environment overrides, and validates. Any
// error here is fatal to the run: no file may be processed with a
// configuration that did not validate.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	if path == "" {
		path = getEnv("LOCSYNC_CONFIG", DefaultPath)
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if getEnv("LOCSYNC_VERBOSE", "") != "" {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the invariants the engine relies on.
func (c *Config) Validate() error {
	if len(c.Locales) == 0 {
		return fmt.Errorf("config: at least one locale is required")
	}

	for _, l := range c.Locales {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("config: empty locale entry")
		}
	}

	if len(c.Input) == 0 {
		return fmt.Errorf("config: at least one input glob is required")
	}

	if c.Output == "" {
		return fmt.Errorf("config: output path template is required")
	}

	if !c.MergeNamespaces && !strings.Contains(c.Output, "$NAMESPACE") {
		return fmt.Errorf("config: output template must contain $NAMESPACE unless mergeNamespaces is set")
	}

	if !strings.Contains(c.Output, "$LOCALE") {
		return fmt.Errorf("config: output template must contain $LOCALE")
	}

	if c.DefaultNamespace == "" {
		return fmt.Errorf("config: defaultNamespace is required")
	}

	switch c.Format {
	case "", "json", "yaml", "yml":
	default:
		return fmt.Errorf("config: unsupported format %q", c.Format)
	}

	if c.TemplateExpansionLimit <= 0 {
		c.TemplateExpansionLimit = 32
	}

	for _, p := range c.PreservePatterns {
		if p == "" {
			return fmt.Errorf("config: empty preserve pattern")
		}
	}

	for i, h := range c.Hooks {
		if h.Name == "" {
			return fmt.Errorf("config: hook %d has no name", i)
		}
	}

	return nil
}

// PrimaryLocale is the first configured locale.
func (c *Config) PrimaryLocale() string { return c.Locales[0] }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

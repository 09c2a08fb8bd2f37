package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"

	"locsync/internal/config"
	"locsync/internal/extract"
	"locsync/internal/filewalker"
	"locsync/internal/jsast"
	"locsync/internal/merger"
	"locsync/internal/parser"
	"locsync/internal/textutil"
	"locsync/internal/worker"
)

// WriteEvent describes one merged (locale, namespace) output.
type WriteEvent struct {
	Path      string
	Locale    string
	Namespace string
	Dirty     bool
	Old       *merger.Tree
	New       *merger.Tree
}

// Hooks are the runner's integration points for callers and plugins.
type Hooks struct {
	// PostPass receives the full collected key list after traversal,
	// before any merge.
	PostPass func(keys []*extract.Key)

	// PostWrite runs once per merged (locale, namespace) pair, dirty
	// or not.
	PostWrite func(ev WriteEvent)
}

// Summary is the outcome of one run.
type Summary struct {
	FilesScanned int
	KeysFound    int
	FilesUpdated int
	SkippedFiles []string
}

// Runner executes the full extract-and-sync pipeline. Watch mode
// constructs a fresh run per trigger; no state survives between runs.
type Runner struct {
	cfg        *config.Config
	hooks      Hooks
	extensions []extract.Extension
}

func NewRunner(cfg *config.Config, hooks Hooks, extensions ...extract.Extension) *Runner {
	return &Runner{cfg: cfg, hooks: hooks, extensions: extensions}
}

// parsedFile is one read-and-parsed input.
type parsedFile struct {
	path   string
	source []byte
	file   *jsast.File
}

// Run walks the inputs, extracts every key, and reconciles each
// (locale, namespace) output file. Parse failures skip their file and
// are reported in the summary; they never block writing results from
// the files that did parse.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	files, err := filewalker.NewWalker(".", r.cfg.Input, r.cfg.Ignore).Walk()
	if err != nil {
		return nil, fmt.Errorf("discover input files: %w", err)
	}

	summary := &Summary{FilesScanned: len(files)}

	pool := worker.NewPool(runtime.NumCPU(), func(ctx context.Context, path string) (parsedFile, error) {
		source, err := os.ReadFile(path)
		if err != nil {
			return parsedFile{}, fmt.Errorf("read %s: %w", path, err)
		}

		f, err := parser.Parse(ctx, path, source)
		if err != nil {
			return parsedFile{}, fmt.Errorf("parse %s: %w", path, err)
		}

		return parsedFile{path: path, source: source, file: f}, nil
	})

	tasks := pool.Execute(ctx, files)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Traversal runs sequentially so scope state never crosses files.
	collector := extract.NewCollector()
	traverser := extract.NewTraverser(r.cfg, collector, r.extensions...)

	var scanner *extract.CommentScanner
	if r.cfg.ExtractFromComments {
		scanner = extract.NewCommentScanner(r.cfg, collector)
	}

	for _, t := range tasks {
		if t.Err != nil {
			log.Warn().Err(t.Err).Str("file", t.Input).Msg("Skipping file")
			summary.SkippedFiles = append(summary.SkippedFiles, t.Input)

			continue
		}

		traverser.TraverseFile(t.Result.file)

		for _, w := range traverser.Warnings() {
			log.Warn().Msg(w)
		}

		if scanner != nil {
			scanner.Scan(t.Result.path, t.Result.source, traverser.HookBindings())
		}
	}

	keys := collector.Keys()
	summary.KeysFound = len(keys)

	for _, k := range keys {
		log.Debug().
			Str("namespace", k.Namespace).
			Str("key", k.Key).
			Str("default", textutil.Truncate(k.DefaultValue, 60)).
			Msg("Collected key")
	}

	if r.hooks.PostPass != nil {
		r.hooks.PostPass(keys)
	}

	if err := r.merge(ctx, collector, summary); err != nil {
		return nil, err
	}

	log.Info().
		Int("files", summary.FilesScanned).
		Int("keys", summary.KeysFound).
		Int("updated", summary.FilesUpdated).
		Int("skipped", len(summary.SkippedFiles)).
		Msg("Run complete")

	return summary, nil
}

// merge reconciles every (locale, namespace) pair, primary locale
// first so the sync policies can read its merged values.
func (r *Runner) merge(ctx context.Context, collector *extract.Collector, summary *Summary) error {
	m := merger.New(r.cfg)

	namespaces := collector.Namespaces()

	byNS := make(map[string][]*extract.Key, len(namespaces))
	for _, ns := range namespaces {
		byNS[ns] = collector.ByNamespace(ns)
	}

	primary := map[string]*merger.Tree{}

	for _, locale := range r.cfg.Locales {
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.cfg.MergeNamespaces {
			if err := r.mergeLocaleFile(locale, namespaces, byNS, m, primary, summary); err != nil {
				return err
			}

			continue
		}

		for _, ns := range namespaces {
			if err := r.mergeNamespaceFile(locale, ns, byNS[ns], m, primary, summary); err != nil {
				return err
			}
		}
	}

	return nil
}

// mergeNamespaceFile handles one output file in per-namespace mode.
func (r *Runner) mergeNamespaceFile(locale, ns string, keys []*extract.Key, m *merger.Merger, primary map[string]*merger.Tree, summary *Summary) error {
	path := r.outputPath(locale, ns)
	format := r.format(path)

	existing, ok := r.loadTree(path, format)
	if !ok {
		return nil
	}

	outcome := m.Merge(locale, ns, keys, existing, primary[ns])

	if locale == r.cfg.PrimaryLocale() {
		primary[ns] = outcome.Tree
	}

	return r.finish(path, format, locale, ns, existing, outcome, summary)
}

// mergeLocaleFile handles one output file in merged-namespace mode:
// every namespace becomes a top-level key of a single per-locale file.
func (r *Runner) mergeLocaleFile(locale string, namespaces []string, byNS map[string][]*extract.Key, m *merger.Merger, primary map[string]*merger.Tree, summary *Summary) error {
	path := r.outputPath(locale, "")
	format := r.format(path)

	existing, ok := r.loadTree(path, format)
	if !ok {
		return nil
	}

	out := merger.NewTree()
	dirty := false

	for _, ns := range namespaces {
		sub, _ := existing.Subtree(ns)

		outcome := m.Merge(locale, ns, byNS[ns], sub, primary[ns])

		if locale == r.cfg.PrimaryLocale() {
			primary[ns] = outcome.Tree
		}

		out.Append(ns, merger.TreeNode(outcome.Tree))
		dirty = dirty || outcome.Dirty
	}

	// Carry namespaces the run produced no keys for.
	known := map[string]bool{}
	for _, ns := range namespaces {
		known[ns] = true
	}

	for _, e := range existing.Entries {
		if !known[e.Key] {
			out.Append(e.Key, e.Node)
		}
	}

	outcome := merger.Outcome{Tree: out, Dirty: dirty || !merger.Equal(out, existing)}

	return r.finish(path, format, locale, "", existing, outcome, summary)
}

// loadTree reads and decodes one existing output file. A missing file
// is an empty tree; an undecodable file is skipped so its data is
// never overwritten.
func (r *Runner) loadTree(path, format string) (*merger.Tree, bool) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return merger.NewTree(), true
	}

	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable catalog")
		return nil, false
	}

	tree, err := merger.Decode(format, data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Skipping undecodable catalog")
		return nil, false
	}

	return tree, true
}

// finish writes a dirty outcome and fires the post-write hook.
func (r *Runner) finish(path, format, locale, ns string, existing *merger.Tree, outcome merger.Outcome, summary *Summary) error {
	if outcome.Dirty {
		encoded, err := merger.Encode(format, outcome.Tree, r.cfg.Indentation.String())
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		if err := os.WriteFile(path, encoded, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		summary.FilesUpdated++

		log.Info().Str("path", path).Str("locale", locale).Msg("Updated catalog")
	}

	if r.hooks.PostWrite != nil {
		r.hooks.PostWrite(WriteEvent{
			Path:      path,
			Locale:    locale,
			Namespace: ns,
			Dirty:     outcome.Dirty,
			Old:       existing,
			New:       outcome.Tree,
		})
	}

	return nil
}

func (r *Runner) outputPath(locale, ns string) string {
	path := strings.ReplaceAll(r.cfg.Output, "$LOCALE", locale)
	return strings.ReplaceAll(path, "$NAMESPACE", ns)
}

func (r *Runner) format(path string) string {
	if r.cfg.Format != "" {
		return r.cfg.Format
	}

	return merger.FormatForPath(path)
}

package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists file types handled by the tool.
var SupportedExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".ts":  true,
	".tsx": true,
	".mjs": true,
	".cjs": true,
}

// Walker discovers source files matching the configured input globs.
type Walker struct {
	root   string
	input  []string
	ignore []string
}

// NewWalker creates a Walker rooted at root. Input and ignore patterns
// are doublestar globs relative to the root.
func NewWalker(root string, input, ignore []string) *Walker {
	return &Walker{root: root, input: input, ignore: ignore}
}

// Walk lists every matching file, sorted so the result is stable
// regardless of filesystem iteration order.
func (w *Walker) Walk() ([]string, error) {
	root, err := filepath.Abs(w.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	seen := map[string]bool{}
	var files []string

	for _, pattern := range w.input {
		matches, err := doublestar.Glob(
			os.DirFS(root), pattern,
			doublestar.WithFilesOnly(), doublestar.WithNoFollow(),
		)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, m := range matches {
			if seen[m] || !SupportedExtensions[strings.ToLower(filepath.Ext(m))] {
				continue
			}

			if w.ignored(m) {
				continue
			}

			seen[m] = true
			files = append(files, filepath.Join(root, m))
		}
	}

	sort.Strings(files)

	log.Info().Int("count", len(files)).Str("root", root).Msg("Discovered files")
	return files, nil
}

func (w *Walker) ignored(rel string) bool {
	for _, pattern := range w.ignore {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}

	return false
}

package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()

	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("export {}\n"), 0o644))
	}
}

func TestWalkMatchesGlobs(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"src/app.tsx",
		"src/pages/home.ts",
		"src/styles.css",
		"docs/readme.md",
	)

	files, err := NewWalker(root, []string{"src/**/*"}, nil).Walk()
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "src", "app.tsx"), files[0])
	assert.Equal(t, filepath.Join(root, "src", "pages", "home.ts"), files[1])
}

func TestWalkIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"src/app.tsx",
		"src/app.test.tsx",
		"src/generated/api.ts",
	)

	files, err := NewWalker(root,
		[]string{"src/**/*"},
		[]string{"**/*.test.tsx", "src/generated/**"},
	).Walk()
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "src", "app.tsx"), files[0])
}

func TestWalkDeduplicatesAcrossPatterns(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/app.tsx")

	files, err := NewWalker(root, []string{"src/**/*.tsx", "**/*.tsx"}, nil).Walk()
	require.NoError(t, err)

	assert.Len(t, files, 1)
}

func TestWalkSortedOutput(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/z.ts", "src/a.ts", "src/m.ts")

	files, err := NewWalker(root, []string{"src/*.ts"}, nil).Walk()
	require.NoError(t, err)

	require.Len(t, files, 3)
	assert.True(t, files[0] < files[1] && files[1] < files[2])
}

func TestWalkNoMatches(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "docs/readme.md")

	files, err := NewWalker(root, []string{"src/**/*.tsx"}, nil).Walk()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWalkBraceExpansion(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/a.ts", "src/b.tsx", "src/c.mjs", "src/d.rs")

	files, err := NewWalker(root, []string{"src/*.{ts,tsx,mjs}"}, nil).Walk()
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

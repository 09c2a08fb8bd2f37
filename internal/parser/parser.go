// Package parser turns JavaScript/TypeScript source into the syntax
// tree the extraction engine consumes.
package parser

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"locsync/internal/jsast"
)

// ErrParseFailure marks a file whose tree could not be produced even
// after the markup-syntax retry. Callers skip the file and record it.
var ErrParseFailure = errors.New("parse failure")

// Parse produces the syntax tree for one source file. The grammar is
// chosen from the file extension; on a syntax error the file is retried
// once with the markup-enabled grammar, since plain .js/.ts files may
// still contain JSX.
func Parse(ctx context.Context, name string, source []byte) (*jsast.File, error) {
	var languages []*sitter.Language

	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsx":
		languages = []*sitter.Language{tsx.GetLanguage()}
	case ".js", ".jsx", ".mjs", ".cjs":
		languages = []*sitter.Language{javascript.GetLanguage(), tsx.GetLanguage()}
	default:
		languages = []*sitter.Language{typescript.GetLanguage(), tsx.GetLanguage()}
	}

	p := sitter.NewParser()
	defer p.Close()

	var lastErr error

	for _, lang := range languages {
		p.SetLanguage(lang)

		tree, err := p.ParseCtx(ctx, nil, source)
		if err != nil {
			lastErr = err
			continue
		}

		root := tree.RootNode()
		if root.HasError() {
			tree.Close()
			lastErr = ErrParseFailure

			continue
		}

		f := convertFile(name, root, source)
		tree.Close()

		return f, nil
	}

	if lastErr == nil {
		lastErr = ErrParseFailure
	}

	if !errors.Is(lastErr, ErrParseFailure) {
		lastErr = errors.Join(ErrParseFailure, lastErr)
	}

	return nil, lastErr
}

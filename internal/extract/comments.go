package extract

import (
	"regexp"
	"strings"

	"locsync/internal/config"
)

var (
	lineCommentPattern  = regexp.MustCompile(`//(.*)`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*(.*?)\*/`)
)

// CommentScanner recovers keys from commented-out translator calls so
// that temporarily disabled code keeps its translations alive.
// Commented code is matched textually, not parsed: only literal string
// arguments are recognized. The traversal pass's hook bindings are
// consulted so a commented call through a bound translator keeps its
// namespace and key prefix.
type CommentScanner struct {
	cfg       *config.Config
	collector *Collector
	call      *regexp.Regexp
}

// NewCommentScanner compiles the call pattern from the configured
// function names, including member patterns and the `*.fn` wildcard.
func NewCommentScanner(cfg *config.Config, collector *Collector) *CommentScanner {
	names := make([]string, 0, len(cfg.Functions))

	for _, fn := range cfg.Functions {
		if strings.HasPrefix(fn, "*.") {
			names = append(names, `[A-Za-z_$][\w$]*\.`+regexp.QuoteMeta(strings.TrimPrefix(fn, "*.")))
		} else {
			names = append(names, regexp.QuoteMeta(fn))
		}
	}

	// Three capture groups per literal, one per quote style. Group 1 is
	// the callee.
	quoted := `(?:'((?:\\.|[^'\\])*)'|"((?:\\.|[^"\\])*)"|` + "`" + `((?:\\.|[^` + "`" + `\\])*)` + "`)"

	pattern := `(?:^|[^\w$.])(` + strings.Join(names, "|") + `)\(\s*` + quoted +
		`(?:\s*,\s*` + quoted + `)?`

	return &CommentScanner{
		cfg:       cfg,
		collector: collector,
		call:      regexp.MustCompile(pattern),
	}
}

// Scan extracts keys from every comment in source. Line numbers refer
// to the original file. scopes carries the file's translator bindings
// from the traversal pass; nil is valid.
func (s *CommentScanner) Scan(file string, source []byte, scopes map[string]ScopeInfo) {
	text := string(source)

	for _, m := range blockCommentPattern.FindAllStringSubmatchIndex(text, -1) {
		line := 1 + strings.Count(text[:m[0]], "\n")
		s.scanComment(file, text[m[2]:m[3]], line, scopes)
	}

	stripped := blockCommentPattern.ReplaceAllStringFunc(text, func(c string) string {
		return strings.Repeat("\n", strings.Count(c, "\n"))
	})

	for _, m := range lineCommentPattern.FindAllStringSubmatchIndex(stripped, -1) {
		line := 1 + strings.Count(stripped[:m[0]], "\n")
		s.scanComment(file, stripped[m[2]:m[3]], line, scopes)
	}
}

func (s *CommentScanner) scanComment(file, comment string, line int, scopes map[string]ScopeInfo) {
	for _, m := range s.call.FindAllStringSubmatch(comment, -1) {
		key := firstGroup(m[2:5])
		if key == "" {
			continue
		}

		def := firstGroup(m[5:8])

		info, bound := s.binding(m[1], scopes)

		ns := s.cfg.DefaultNamespace
		implicit := true

		switch {
		case s.cfg.NamespaceSeparator != "" && strings.Contains(key, s.cfg.NamespaceSeparator):
			parts := strings.SplitN(key, s.cfg.NamespaceSeparator, 2)
			if parts[0] != "" && parts[1] != "" {
				ns, key, implicit = parts[0], parts[1], false
			}

		case bound && info.DefaultNamespace != "":
			ns = info.DefaultNamespace
		}

		if bound && info.KeyPrefix != "" {
			key = info.KeyPrefix + s.cfg.KeySeparator + key
		}

		s.collector.Add(Key{
			Key:               key,
			Namespace:         ns,
			NamespaceImplicit: implicit,
			DefaultValue:      unescapeComment(def),
			ExplicitDefault:   def != "",
			UsedWithoutCount:  true,
			Locations:         []Location{{File: file, Line: line}},
		})
	}
}

// binding resolves the matched callee against the traversal pass's hook
// bindings: the bare name itself, or the object of a member call.
func (s *CommentScanner) binding(callee string, scopes map[string]ScopeInfo) (ScopeInfo, bool) {
	if scopes == nil {
		return ScopeInfo{}, false
	}

	name := callee
	if obj, _, ok := strings.Cut(callee, "."); ok {
		name = obj
	}

	info, ok := scopes[name]

	return info, ok
}

func firstGroup(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}

	return ""
}

func unescapeComment(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}

			continue
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

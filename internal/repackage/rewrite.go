package repackage

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultFallbackName is mounted when no default-exported declaration is found.
const DefaultFallbackName = "InteractiveExample"

// RewriteOptions configures both rewriters.
type RewriteOptions struct {
	// MinDepth is the number of leading "../" segments that make a relative
	// import deep enough to be dropped.
	MinDepth int

	// HelperGlobs match relative import paths of shared helpers that will not
	// exist in the generated project, whatever their depth.
	HelperGlobs []string

	// FallbackName is used when no default export names a declaration.
	FallbackName string
}

// DefaultRewriteOptions returns the options used when none are configured.
func DefaultRewriteOptions() RewriteOptions {
	return RewriteOptions{
		MinDepth:     3,
		HelperGlobs:  []string{"**/components/shared/**", "**/components/Tooltip"},
		FallbackName: DefaultFallbackName,
	}
}

// Rewrite is the outcome of rewriting raw page source.
type Rewrite struct {
	Snippet string
	// Name is the declaration to mount; FallbackName when Found is false.
	Name  string
	Found bool
	// DroppedImports lists the import paths that were removed.
	DroppedImports []string
}

// Rewriter turns raw page source into a self-contained snippet.
type Rewriter interface {
	Rewrite(src string) Rewrite
}

// importFilter decides which import paths are dangling once the snippet is
// moved out of the site tree.
type importFilter struct {
	minDepth int
	helpers  []glob.Glob
}

func newImportFilter(opts RewriteOptions) (*importFilter, error) {
	f := &importFilter{minDepth: opts.MinDepth}
	for _, pattern := range opts.HelperGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid helper glob %q: %w", pattern, err)
		}
		f.helpers = append(f.helpers, g)
	}
	return f, nil
}

// parentDepth counts leading "../" segments, ignoring "./" segments.
func parentDepth(p string) int {
	depth := 0
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "..":
			depth++
		case ".":
		default:
			return depth
		}
	}
	return depth
}

func (f *importFilter) drop(importPath string) bool {
	if !strings.HasPrefix(importPath, ".") {
		return false
	}
	if f.minDepth > 0 && parentDepth(importPath) >= f.minDepth {
		return true
	}
	cleaned := path.Clean(importPath)
	for _, g := range f.helpers {
		if g.Match(cleaned) {
			return true
		}
	}
	return false
}

var (
	identPattern = `[A-Za-z_$][\w$]*`

	// export default function Foo / export default async function Foo / export default const Foo / export default class Foo
	defaultDeclRe = regexp.MustCompile(`\bexport\s+default\s+((?:async\s+)?function\s*\*?\s*(` + identPattern + `)|(?:const|let|var|class)\s+(` + identPattern + `))`)

	// export default Foo; as the last statement of the file
	trailingDefaultRe = regexp.MustCompile(`(?:^|\n)[ \t]*export\s+default\s+(` + identPattern + `)\s*;?\s*$`)

	// export default function ( / export default async function (
	anonymousFunctionRe = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+((?:async\s+)?function)\s*\(`)

	// any other default export at the start of a line
	anonymousDefaultRe = regexp.MustCompile(`(?m)^([ \t]*)export\s+default\s+`)

	importRe = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:([^'";]*?)\s*from\s*)?['"]([^'"\n]+)['"][ \t]*;?[ \t]*(?:\r?\n)?`)

	identRe = regexp.MustCompile(`^` + identPattern + `$`)

	importAliasRe = regexp.MustCompile(`^(?:type\s+)?(` + identPattern + `)(?:\s+as\s+(` + identPattern + `))?$`)
)

// regexRewriter is the pattern-matching rewriter. It only recognizes the
// export shapes listed in the regexes above.
type regexRewriter struct {
	filter   *importFilter
	fallback string
}

// NewRegexRewriter creates the heuristic rewriter.
func NewRegexRewriter(opts RewriteOptions) (Rewriter, error) {
	filter, err := newImportFilter(opts)
	if err != nil {
		return nil, err
	}
	return &regexRewriter{filter: filter, fallback: fallbackName(opts)}, nil
}

func fallbackName(opts RewriteOptions) string {
	if strings.TrimSpace(opts.FallbackName) == "" {
		return DefaultFallbackName
	}
	return opts.FallbackName
}

func (r *regexRewriter) Rewrite(src string) Rewrite {
	out := Rewrite{Name: r.fallback}

	// Only the first default-exported declaration is unwrapped; later matches
	// are usually code samples inside template literals.
	if m := defaultDeclRe.FindStringSubmatchIndex(src); m != nil {
		decl := src[m[2]:m[3]]
		name := submatch(src, m, 2)
		if name == "" {
			name = submatch(src, m, 3)
		}
		out.Name, out.Found = name, true
		src = src[:m[0]] + decl + src[m[1]:]
	}

	if m := trailingDefaultRe.FindStringSubmatchIndex(src); m != nil {
		if !out.Found {
			out.Name, out.Found = src[m[2]:m[3]], true
		}
		src = src[:m[0]]
	}

	if !out.Found {
		if m := anonymousFunctionRe.FindStringSubmatchIndex(src); m != nil {
			src = src[:m[0]] + src[m[2]:m[3]] + src[m[4]:m[5]] + " " + r.fallback + "(" + src[m[1]:]
		} else if m := anonymousDefaultRe.FindStringSubmatchIndex(src); m != nil {
			indent := src[m[2]:m[3]]
			src = src[:m[0]] + indent + "const " + r.fallback + " = " + src[m[1]:]
		}
	}

	var dropped []string
	src, out.DroppedImports, dropped = r.dropImports(src)
	src = removeJSXUsages(src, dropped)

	out.Snippet = strings.TrimSpace(src)
	return out
}

func submatch(s string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return s[m[2*group]:m[2*group+1]]
}

// dropImports removes dangling imports and returns the rewritten source, the
// removed paths and the local names they bound.
func (r *regexRewriter) dropImports(src string) (string, []string, []string) {
	var paths, names []string
	result := importRe.ReplaceAllStringFunc(src, func(stmt string) string {
		m := importRe.FindStringSubmatch(stmt)
		if m == nil || !r.filter.drop(m[2]) {
			return stmt
		}
		paths = append(paths, m[2])
		names = append(names, importedNames(m[1])...)
		return ""
	})
	return result, paths, names
}

// importedNames lists the local bindings of an import clause such as
// `Foo, { Bar, Baz as Qux }` or `* as ns`.
func importedNames(clause string) []string {
	clause = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(clause), "type "))
	if clause == "" {
		return nil
	}

	var names []string
	if open := strings.Index(clause, "{"); open >= 0 {
		inner := clause[open+1:]
		if closeIdx := strings.Index(inner, "}"); closeIdx >= 0 {
			inner = inner[:closeIdx]
		}
		for _, spec := range strings.Split(inner, ",") {
			spec = strings.TrimSpace(spec)
			if m := importAliasRe.FindStringSubmatch(spec); m != nil {
				if m[2] != "" {
					names = append(names, m[2])
				} else {
					names = append(names, m[1])
				}
			}
		}
		clause = clause[:open]
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "*") {
			if idx := strings.Index(part, " as "); idx >= 0 {
				part = strings.TrimSpace(part[idx+4:])
			}
		}
		if identRe.MatchString(part) {
			names = append(names, part)
		}
	}

	sort.Strings(names)
	return names
}

// removeJSXUsages rewrites JSX elements whose component names were bound by
// a dropped import. Self-closing elements are deleted; paired elements become
// fragments so the markup they wrap stays in the snippet.
func removeJSXUsages(src string, names []string) string {
	for _, name := range names {
		if name == "" || !isComponentName(name) {
			continue
		}
		src = unwrapJSXUsages(src, name)
	}
	return src
}

func unwrapJSXUsages(src, name string) string {
	q := regexp.QuoteMeta(name)
	openRe := regexp.MustCompile(`<` + q + `[\s/>]`)
	closeRe := regexp.MustCompile(`</` + q + `\s*>`)

	var b strings.Builder
	pos := 0
	for {
		loc := openRe.FindStringIndex(src[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		end, selfClosing, ok := scanTagEnd(src, pos+loc[1]-1)
		if !ok {
			break
		}
		if selfClosing {
			start, end = lineSpan(src, start, end)
			if start < pos {
				start = pos
			}
			b.WriteString(src[pos:start])
		} else {
			b.WriteString(src[pos:start])
			b.WriteString("<>")
		}
		pos = end
	}
	b.WriteString(src[pos:])

	return closeRe.ReplaceAllString(b.String(), "</>")
}

// scanTagEnd returns the offset just past the `>` closing a JSX tag whose
// attributes start at i. Braced expressions and quoted values are skipped
// whole, so an arrow or nested markup inside an attribute does not end the tag.
func scanTagEnd(src string, i int) (end int, selfClosing bool, ok bool) {
	depth := 0
	var quote byte
	for ; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == '\\' && depth > 0 {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '`':
			if depth > 0 {
				quote = c
			}
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth > 0 {
				continue
			}
			j := i - 1
			for j >= 0 && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j--
			}
			return i + 1, j >= 0 && src[j] == '/', true
		}
	}
	return 0, false, false
}

// lineSpan widens [start, end) over its indentation and line break when the
// span sits on lines of its own.
func lineSpan(src string, start, end int) (int, int) {
	lineStart := start
	for lineStart > 0 && (src[lineStart-1] == ' ' || src[lineStart-1] == '\t') {
		lineStart--
	}
	if lineStart > 0 && src[lineStart-1] != '\n' {
		return start, end
	}

	lineEnd := end
	for lineEnd < len(src) && (src[lineEnd] == ' ' || src[lineEnd] == '\t') {
		lineEnd++
	}
	if lineEnd < len(src) && src[lineEnd] == '\r' {
		lineEnd++
	}
	switch {
	case lineEnd == len(src):
		return lineStart, lineEnd
	case src[lineEnd] == '\n':
		return lineStart, lineEnd + 1
	}
	return start, end
}

// isComponentName reports whether name can appear as a JSX component tag.
func isComponentName(name string) bool {
	return name[0] >= 'A' && name[0] <= 'Z'
}

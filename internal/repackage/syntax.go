package repackage

import (
	"log"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// syntaxRewriter rewrites using a TSX syntax tree. Sources that do not parse
// cleanly go through the regex rewriter instead.
type syntaxRewriter struct {
	language *sitter.Language
	filter   *importFilter
	fallback string
	regex    Rewriter
}

// NewSyntaxRewriter creates the tree-sitter backed rewriter.
func NewSyntaxRewriter(opts RewriteOptions) (Rewriter, error) {
	filter, err := newImportFilter(opts)
	if err != nil {
		return nil, err
	}
	regex, err := NewRegexRewriter(opts)
	if err != nil {
		return nil, err
	}
	return &syntaxRewriter{
		language: sitter.NewLanguage(typescript.LanguageTSX()),
		filter:   filter,
		fallback: fallbackName(opts),
		regex:    regex,
	}, nil
}

// NewRewriter returns the rewriter for mode ("regex" or "syntax").
func NewRewriter(mode string, opts RewriteOptions) (Rewriter, error) {
	if mode == "syntax" {
		return NewSyntaxRewriter(opts)
	}
	return NewRegexRewriter(opts)
}

type edit struct {
	start, end int
	text       string
}

func (r *syntaxRewriter) Rewrite(src string) Rewrite {
	source := []byte(src)

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(r.language); err != nil {
		log.Printf("[rewrite] tsx grammar unavailable, using regex: %v", err)
		return r.regex.Rewrite(src)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return r.regex.Rewrite(src)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return r.regex.Rewrite(src)
	}

	out := Rewrite{Name: r.fallback}
	var edits []edit
	var droppedNames []string

	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		switch stmt.Kind() {
		case "import_statement":
			importPath := strings.Trim(nodeText(stmt.ChildByFieldName("source"), source), `"'`)
			if !r.filter.drop(importPath) {
				continue
			}
			out.DroppedImports = append(out.DroppedImports, importPath)
			droppedNames = append(droppedNames, importBindings(stmt, source)...)
			edits = append(edits, wholeLines(source, stmt, ""))

		case "export_statement":
			if !isDefaultExport(stmt) {
				continue
			}
			e, name, found := r.unwrapDefault(stmt, source)
			edits = append(edits, e)
			if found && !out.Found {
				out.Name, out.Found = name, true
			}
		}
	}

	if len(droppedNames) > 0 {
		dropped := make(map[string]bool, len(droppedNames))
		for _, name := range droppedNames {
			dropped[name] = true
		}
		edits = append(edits, jsxRemovals(root, source, dropped)...)
	}

	out.Snippet = strings.TrimSpace(applyEdits(source, edits))
	return out
}

// unwrapDefault returns the edit that strips a default export along with the
// declaration name it exposes.
func (r *syntaxRewriter) unwrapDefault(stmt *sitter.Node, source []byte) (edit, string, bool) {
	prefix := func(target *sitter.Node, text string) edit {
		return edit{start: int(stmt.StartByte()), end: int(target.StartByte()), text: text}
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		if name := decl.ChildByFieldName("name"); name != nil {
			return prefix(decl, ""), nodeText(name, source), true
		}
		return prefix(decl, "const "+r.fallback+" = "), r.fallback, false
	}

	value := stmt.ChildByFieldName("value")
	if value == nil {
		return edit{start: int(stmt.StartByte()), end: int(stmt.StartByte())}, "", false
	}

	switch value.Kind() {
	case "identifier":
		return wholeLines(source, stmt, ""), nodeText(value, source), true
	case "function_expression", "function", "class":
		if name := value.ChildByFieldName("name"); name != nil {
			return prefix(value, ""), nodeText(name, source), true
		}
	}

	return prefix(value, "const "+r.fallback+" = "), r.fallback, false
}

func isDefaultExport(stmt *sitter.Node) bool {
	for i := uint(0); i < stmt.ChildCount(); i++ {
		if stmt.Child(i).Kind() == "default" {
			return true
		}
	}
	return false
}

// importBindings lists the local names an import statement introduces.
func importBindings(stmt *sitter.Node, source []byte) []string {
	var names []string
	walkNodes(stmt, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_specifier":
			if alias := n.ChildByFieldName("alias"); alias != nil {
				names = append(names, nodeText(alias, source))
			} else if name := n.ChildByFieldName("name"); name != nil {
				names = append(names, nodeText(name, source))
			}
			return false
		case "import_clause", "namespace_import":
			for i := uint(0); i < n.NamedChildCount(); i++ {
				if child := n.NamedChild(i); child.Kind() == "identifier" {
					names = append(names, nodeText(child, source))
				}
			}
		}
		return true
	})
	sort.Strings(names)
	return names
}

// jsxRemovals deletes self-closing JSX elements rendered from dropped
// bindings and turns paired ones into fragments, keeping their children.
func jsxRemovals(root *sitter.Node, source []byte, dropped map[string]bool) []edit {
	var edits []edit
	var visit func(n *sitter.Node) bool
	visit = func(n *sitter.Node) bool {
		switch n.Kind() {
		case "jsx_self_closing_element":
			if dropped[nodeText(n.ChildByFieldName("name"), source)] {
				edits = append(edits, wholeLines(source, n, ""))
				return false
			}
		case "jsx_element":
			open := n.ChildByFieldName("open_tag")
			closing := n.ChildByFieldName("close_tag")
			if open == nil || closing == nil || !dropped[nodeText(open.ChildByFieldName("name"), source)] {
				return true
			}
			edits = append(edits,
				edit{start: int(open.StartByte()), end: int(open.EndByte()), text: "<>"},
				edit{start: int(closing.StartByte()), end: int(closing.EndByte()), text: "</>"},
			)
			// attributes of the dropped tag go with it; only children are visited
			for i := uint(0); i < n.NamedChildCount(); i++ {
				child := n.NamedChild(i)
				if child.StartByte() >= open.EndByte() && child.EndByte() <= closing.StartByte() {
					walkNodes(child, visit)
				}
			}
			return false
		}
		return true
	}
	walkNodes(root, visit)
	return edits
}

// wholeLines widens a removal over the node's leading indentation and
// trailing newline when the node sits on lines of its own.
func wholeLines(source []byte, n *sitter.Node, text string) edit {
	start, end := int(n.StartByte()), int(n.EndByte())

	lineStart := start
	for lineStart > 0 && (source[lineStart-1] == ' ' || source[lineStart-1] == '\t') {
		lineStart--
	}
	if lineStart == 0 || source[lineStart-1] == '\n' {
		start = lineStart
	}

	lineEnd := end
	for lineEnd < len(source) && (source[lineEnd] == ' ' || source[lineEnd] == '\t' || source[lineEnd] == ';') {
		lineEnd++
	}
	if lineEnd < len(source) && source[lineEnd] == '\r' {
		lineEnd++
	}
	if lineEnd < len(source) && source[lineEnd] == '\n' {
		end = lineEnd + 1
	} else if lineEnd == len(source) {
		end = lineEnd
	}

	return edit{start: start, end: end, text: text}
}

func applyEdits(source []byte, edits []edit) string {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })

	out := string(source)
	limit := len(out)
	for _, e := range edits {
		// overlapping edits keep the later one
		if e.end > limit || e.start > e.end {
			continue
		}
		out = out[:e.start] + e.text + out[e.end:]
		limit = e.start
	}
	return out
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func walkNodes(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		walkNodes(n.Child(i), visit)
	}
}

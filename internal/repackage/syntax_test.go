package repackage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the syntax Rewriter:
// - Named default function loses its export keywords and supplies the name
// - Dangling imports and self-closing JSX they fed are removed by node range
// - Paired JSX from dropped imports becomes a fragment that keeps its children
// - A dropped element with arrow or markup attributes is removed without touching its siblings
// - Anonymous default arrow is bound to the fallback name
// - Standalone `export default Name;` is removed and supplies the name
// - Sources with syntax errors fall back to the regex rewriter
// - NewRewriter selects the implementation by mode

func newSyntax(t *testing.T) Rewriter {
	t.Helper()
	rw, err := NewSyntaxRewriter(DefaultRewriteOptions())
	require.NoError(t, err)
	return rw
}

func TestSyntaxRewrite_NamedDefaultFunction(t *testing.T) {
	t.Parallel()

	out := newSyntax(t).Rewrite(cardsPage)

	assert.Equal(t, "CardsPattern", out.Name)
	assert.True(t, out.Found)
	assert.Contains(t, out.Snippet, "function CardsPattern() {")
	assert.NotContains(t, out.Snippet, "export default")
	assert.NotContains(t, out.Snippet, "CodeGenerator")
	assert.Contains(t, out.Snippet, "<Sibling />")
	assert.Contains(t, out.Snippet, `import Sibling from "../Sibling";`)
	assert.Equal(t, []string{"../../../components/shared/CodeGenerator"}, out.DroppedImports)
}

func TestSyntaxRewrite_DroppedWrapperKeepsChildren(t *testing.T) {
	t.Parallel()

	out := newSyntax(t).Rewrite(fileUploadPage)

	assert.Equal(t, "FileUploadPattern", out.Name)
	assert.NotContains(t, out.Snippet, "Tooltip")
	assert.NotContains(t, out.Snippet, `content="Delete"`)
	assert.Contains(t, out.Snippet, "<>\n            <div className=\"text-4xl mb-4\">")
	assert.Contains(t, out.Snippet, "{getFileIcon(fileWithProgress.file.type)}")
	assert.Contains(t, out.Snippet, `aria-label="Remove file"`)
	assert.Contains(t, out.Snippet, "onClick={() => removeFile(fileWithProgress.id)}")
	assert.Equal(t, 2, strings.Count(out.Snippet, "<>"))
	assert.Equal(t, 2, strings.Count(out.Snippet, "</>"))
}

func TestSyntaxRewrite_NestedDroppedElements(t *testing.T) {
	t.Parallel()

	src := `import { Tooltip } from "../../../components/Tooltip";

export default function Nested() {
  return (
    <section>
      <Tooltip content="outer">
        <Tooltip render={() => <b>hi</b>} />
        <button onClick={() => setOpen(true)}>Open</button>
      </Tooltip>
      <p>Important content</p>
    </section>
  );
}
`
	out := newSyntax(t).Rewrite(src)

	assert.NotContains(t, out.Snippet, "render=")
	assert.NotContains(t, out.Snippet, "<b>hi</b>")
	assert.Contains(t, out.Snippet, "<section>\n      <>\n        <button onClick={() => setOpen(true)}>Open</button>\n      </>\n      <p>Important content</p>\n    </section>")
}

func TestSyntaxRewrite_AnonymousArrow(t *testing.T) {
	t.Parallel()

	out := newSyntax(t).Rewrite("export default () => <div />;\n")

	assert.Equal(t, DefaultFallbackName, out.Name)
	assert.False(t, out.Found)
	assert.Equal(t, "const InteractiveExample = () => <div />;", out.Snippet)
}

func TestSyntaxRewrite_StandaloneDefaultExport(t *testing.T) {
	t.Parallel()

	src := "const Accordion = () => {\n  return <div />;\n};\n\nexport default Accordion;\n"
	out := newSyntax(t).Rewrite(src)

	assert.Equal(t, "Accordion", out.Name)
	assert.Equal(t, "const Accordion = () => {\n  return <div />;\n};", out.Snippet)
}

func TestSyntaxRewrite_FallsBackOnSyntaxError(t *testing.T) {
	t.Parallel()

	out := newSyntax(t).Rewrite("export default function Broken( {\n")

	assert.Equal(t, "Broken", out.Name)
	assert.Equal(t, "function Broken( {", out.Snippet)
}

func TestNewRewriter_SelectsMode(t *testing.T) {
	t.Parallel()

	rw, err := NewRewriter("syntax", DefaultRewriteOptions())
	require.NoError(t, err)
	assert.IsType(t, &syntaxRewriter{}, rw)

	rw, err = NewRewriter("regex", DefaultRewriteOptions())
	require.NoError(t, err)
	assert.IsType(t, &regexRewriter{}, rw)
}

func TestApplyEdits_SkipsOverlaps(t *testing.T) {
	t.Parallel()

	out := applyEdits([]byte("abcdef"), []edit{
		{start: 1, end: 3, text: "X"},
		{start: 2, end: 4, text: "Y"},
		{start: 5, end: 6, text: ""},
	})
	assert.Equal(t, "abYe", out)
}

// Package label turns cell values into display text and safe HTML.
//
// Cell values are arbitrary Go values; exporters and editors funnel them
// through this package so labels render consistently: Text gives the raw
// string form, RenderHTML treats string values as Markdown and produces
// sanitized HTML, and PlainText flattens HTML back into single-line text
// for terminal output.
package label

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// policy keeps the user-generated-content subset of HTML. Safe for
// concurrent use once built.
var policy = bluemonday.UGCPolicy()

// Text returns the plain text form of a cell value: strings as-is,
// Stringers through String, everything else through %v. Nil is empty.
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// RenderHTML renders a cell value as sanitized HTML. The value's text form
// is parsed as Markdown with the common extensions, rendered, and stripped
// down to safe user-generated content.
func RenderHTML(value any) string {
	text := Text(value)
	if text == "" {
		return ""
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(text))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)
	rendered := markdown.Render(doc, renderer)

	return string(policy.SanitizeBytes(rendered))
}

// Sanitize strips unsafe markup from an HTML fragment, keeping the same
// user-generated-content subset RenderHTML produces.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}

// PlainText extracts the readable text of an HTML fragment. Script and
// style elements are dropped and all whitespace runs collapse to single
// spaces, so the result fits on one line. Input without markup passes
// through with only the whitespace collapsing.
func PlainText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return collapseWhitespace(markup)
	}
	doc.Find("script, style").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

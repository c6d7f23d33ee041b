package render

import (
	"bytes"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"path/filepath"
	"strings"
)

// MarkdownRenderer renders article detail bodies. Article files come from
// the same untrusted data as the listing, so output is always sanitized.
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// raw HTML (embedded videos) is passed through and cleaned by the policy
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &MarkdownRenderer{md: md, policy: articlePolicy()}
}

func articlePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("video", "source", "figure", "figcaption")
	p.AllowAttrs("src", "type").OnElements("source")
	p.AllowAttrs("controls", "src").OnElements("video")
	return p
}

type MarkdownResult struct {
	HTML     []byte
	Headings []Heading
}

func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML:     r.policy.SanitizeBytes(buf.Bytes()),
		Headings: headingsOf(doc, src),
	}, nil
}

// headingsOf lists the document headings for the table of contents. The
// text includes emphasis and code spans nested in the heading.
func headingsOf(doc ast.Node, src []byte) []Heading {
	var heads []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		heads = append(heads, Heading{
			Level: h.Level,
			ID:    headingID(h),
			Text:  string(plainText(h, src)),
		})
		return ast.WalkSkipChildren, nil
	})
	return heads
}

func headingID(h *ast.Heading) string {
	id, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch v := id.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func plainText(n ast.Node, src []byte) []byte {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			out = append(out, t.Segment.Value(src)...)
			if t.SoftLineBreak() {
				out = append(out, ' ')
			}
			continue
		}
		out = append(out, plainText(c, src)...)
	}
	return out
}

// RenderFile renders an article file by its extension: markdown is
// converted, anything else is taken as HTML and only sanitized.
func (r *MarkdownRenderer) RenderFile(name string, src []byte) (MarkdownResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return r.Render(src)
	}
	return MarkdownResult{HTML: r.Sanitize(src)}, nil
}

// Sanitize cleans an HTML article file.
func (r *MarkdownRenderer) Sanitize(src []byte) []byte {
	return r.policy.SanitizeBytes(src)
}

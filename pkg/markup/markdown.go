package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ConvertMarkdown renders a Markdown comment body into the same markup
// vocabulary the native formatter produces, so both comment conventions
// feed the rest of the pipeline identically.
func ConvertMarkdown(lines []string) string {
	src := []byte(strings.Join(lines, "\n"))
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var out strings.Builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		renderBlock(&out, n, src)
	}
	return out.String()
}

func renderBlock(out *strings.Builder, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		out.WriteString("<h>")
		renderInlines(out, node, src)
		out.WriteString("</h>")

	case *ast.Paragraph, *ast.TextBlock:
		out.WriteString("<p>")
		renderInlines(out, n, src)
		out.WriteString("</p>")

	case *ast.FencedCodeBlock:
		out.WriteString("<code type=\"code\">")
		out.WriteString(EscapeText(strings.TrimRight(blockText(node, src), "\n")))
		out.WriteString("</code>")

	case *ast.CodeBlock:
		out.WriteString("<code type=\"code\">")
		out.WriteString(EscapeText(strings.TrimRight(blockText(node, src), "\n")))
		out.WriteString("</code>")

	case *ast.Blockquote:
		out.WriteString("<code type=\"quote\">")
		var inner strings.Builder
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			inner.WriteString(blockText(c, src))
		}
		out.WriteString(EscapeText(strings.TrimRight(inner.String(), "\n")))
		out.WriteString("</code>")

	case *ast.List:
		open, close := "<ul>", "</ul>"
		if node.IsOrdered() {
			open, close = "<ol>", "</ol>"
		}
		out.WriteString(open)
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			out.WriteString("<li>")
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				switch c.(type) {
				case *ast.Paragraph, *ast.TextBlock:
					renderInlines(out, c, src)
				default:
					renderBlock(out, c, src)
				}
			}
			out.WriteString("</li>")
		}
		out.WriteString(close)

	case *ast.ThematicBreak:
		// no markup equivalent

	default:
		if n.Type() == ast.TypeBlock {
			out.WriteString("<p>")
			renderInlines(out, n, src)
			out.WriteString("</p>")
		}
	}
}

func renderInlines(out *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			out.WriteString(EscapeText(string(node.Value(src))))
			if node.SoftLineBreak() || node.HardLineBreak() {
				out.WriteString(" ")
			}

		case *ast.Emphasis:
			tag := "i"
			if node.Level >= 2 {
				tag = "b"
			}
			out.WriteString("<" + tag + ">")
			renderInlines(out, node, src)
			out.WriteString("</" + tag + ">")

		case *ast.CodeSpan:
			out.WriteString("<code type=\"inline\">")
			out.WriteString(EscapeText(string(node.Text(src))))
			out.WriteString("</code>")

		case *ast.Link:
			dest := string(node.Destination)
			if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
				out.WriteString("<url>" + EscapeText(dest) + "</url>")
			} else {
				out.WriteString("<link>" + EscapeText(string(node.Text(src))) + "</link>")
			}

		case *ast.AutoLink:
			out.WriteString("<url>" + EscapeText(string(node.URL(src))) + "</url>")

		case *ast.Image:
			out.WriteString("<img mode=\"inline\">" + EscapeText(string(node.Destination)) + "</img>")

		case *ast.RawHTML, *ast.HTMLBlock:
			// raw HTML in comments is dropped

		default:
			renderInlines(out, c, src)
		}
	}
}

// blockText collects the raw source lines of a block node.
func blockText(n ast.Node, src []byte) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeBlock {
			buf.WriteString(blockText(c, src))
		}
	}
	return buf.String()
}

package markup

import (
	"strings"
	"testing"
)

func TestMarkdownHeadingAndParagraph(t *testing.T) {
	got := ConvertMarkdown([]string{
		"# Overview",
		"",
		"First line",
		"second line.",
	})
	want := "<h>Overview</h><p>First line second line.</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownEmphasis(t *testing.T) {
	got := ConvertMarkdown([]string{"*light* and **heavy** and `x+1`"})
	want := "<p><i>light</i> and <b>heavy</b> and <code type=\"inline\">x+1</code></p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownFencedCode(t *testing.T) {
	got := ConvertMarkdown([]string{
		"```",
		"if (a < b) {",
		"}",
		"```",
	})
	want := "<code type=\"code\">if (a &lt; b) {\n}</code>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownLists(t *testing.T) {
	got := ConvertMarkdown([]string{
		"- one",
		"- two",
	})
	want := "<ul><li>one</li><li>two</li></ul>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = ConvertMarkdown([]string{
		"1. first",
		"2. second",
	})
	want = "<ol><li>first</li><li>second</li></ol>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownLinks(t *testing.T) {
	got := ConvertMarkdown([]string{"see [Counter](Counter.Add) and [docs](https://example.com)"})
	if !strings.Contains(got, "<link>Counter</link>") {
		t.Errorf("internal link missing: %q", got)
	}
	if !strings.Contains(got, "<url>https://example.com</url>") {
		t.Errorf("external url missing: %q", got)
	}
}

func TestMarkdownBlockquote(t *testing.T) {
	got := ConvertMarkdown([]string{"> quoted text"})
	want := "<code type=\"quote\">quoted text</code>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkdownRawHTMLDropped(t *testing.T) {
	got := ConvertMarkdown([]string{"before <script>x</script> after"})
	if strings.Contains(got, "script") {
		t.Errorf("raw html leaked through: %q", got)
	}
}

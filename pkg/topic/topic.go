package topic

import (
	"errors"
	"strings"
)

// ErrWhitespaceBody signals a topic constructed with a body that contains
// only whitespace. Such a body breaks primary-package auto-detection, so it
// is treated as an internal error rather than silently accepted.
var ErrWhitespaceBody = errors.New("topic body consists only of whitespace")

// Element is an inline-member record (struct field, enum value) that may be
// expanded into the body as a definition list during merging.
type Element struct {
	Name        string
	Description string
}

// ScopeChange records a semantic scope boundary crossing in a source file:
// the line it happened on and the package in effect afterwards.
type ScopeChange struct {
	Line  int
	Scope string
}

// Topic is a single documentation unit.
type Topic struct {
	Type       Type
	Title      string
	Package    string   // owning scope, nested-name path joined with "."
	Using      []string // extra scopes visible through using imports
	Prototype  string
	Body       string // markup-formatted content, may be empty
	LineNumber int
	IsList     bool
	IsAuto     bool
	Elements   []Element

	// IsContinuation marks a synthesized package delineator for a
	// package that already appeared earlier in the file.
	IsContinuation bool
	// NoSummary suppresses the summary for this topic and, for groups
	// and sections, propagates to the members below it.
	NoSummary bool

	summary     string
	summaryDone bool
}

// New constructs a topic, refusing a whitespace-only body.
func New(t Type, title, pkg, body string, line int) (*Topic, error) {
	if body != "" && strings.TrimSpace(body) == "" {
		return nil, ErrWhitespaceBody
	}
	return &Topic{
		Type:       t,
		Title:      title,
		Package:    pkg,
		Body:       body,
		LineNumber: line,
	}, nil
}

// SetBody replaces the body, enforcing the whitespace invariant.
func (t *Topic) SetBody(body string) error {
	if body != "" && strings.TrimSpace(body) == "" {
		return ErrWhitespaceBody
	}
	t.Body = body
	t.summaryDone = false
	return nil
}

// HasBody reports whether the topic is a true documentation definition
// rather than a headerless placeholder or package reference.
func (t *Topic) HasBody() bool {
	return t.Body != ""
}

// NormalizeSymbol converts language scope separators ("::", "->") to the
// canonical "." form used throughout the symbol table.
func NormalizeSymbol(s string) string {
	s = strings.ReplaceAll(s, "::", ".")
	s = strings.ReplaceAll(s, "->", ".")
	return strings.Trim(s, ".")
}

// JoinSymbols joins a package and a title into a fully qualified symbol.
func JoinSymbols(pkg, title string) string {
	pkg = NormalizeSymbol(pkg)
	title = NormalizeSymbol(title)
	if pkg == "" {
		return title
	}
	if title == "" {
		return pkg
	}
	return pkg + "." + title
}

// Symbol derives the fully qualified identifier for cross-reference
// resolution. Always-global types keep their title independent of the
// package they appear in.
func (t *Topic) Symbol() string {
	if InfoFor(t.Type).Scope == ScopeAlwaysGlobal {
		return NormalizeSymbol(t.Title)
	}
	return JoinSymbols(t.Package, t.Title)
}

// EffectivePackage is the package this topic puts into effect for the
// topics that follow it: scope-start types open a package named after
// themselves, everything else passes the stored package through.
func (t *Topic) EffectivePackage() string {
	switch InfoFor(t.Type).Scope {
	case ScopeStart:
		return t.Symbol()
	case ScopeEnd:
		return ""
	default:
		return NormalizeSymbol(t.Package)
	}
}

// Summary returns the first sentence of the body, markup included, derived
// lazily and cached.
func (t *Topic) Summary() string {
	if t.summaryDone {
		return t.summary
	}
	t.summary = summarize(t.Body)
	t.summaryDone = true
	return t.summary
}

// summarize extracts the first sentence of the first paragraph of a markup
// body. Tags are copied through untouched; the sentence ends at the first
// period followed by whitespace or a tag, or at the paragraph's close.
func summarize(body string) string {
	start := strings.Index(body, "<p>")
	if start < 0 {
		return ""
	}
	start += len("<p>")

	var out strings.Builder
	i := start
	for i < len(body) {
		c := body[i]
		if c == '<' {
			end := strings.IndexByte(body[i:], '>')
			if end < 0 {
				break
			}
			tag := body[i : i+end+1]
			if tag == "</p>" {
				break
			}
			out.WriteString(tag)
			i += end + 1
			continue
		}
		out.WriteByte(c)
		if c == '.' {
			rest := body[i+1:]
			if rest == "" || rest[0] == ' ' || rest[0] == '<' {
				break
			}
		}
		i++
	}
	return strings.TrimSpace(out.String())
}

// Clone returns a deep copy. Reconciliation stages that relocate topics use
// it to avoid sharing element slices across files.
func (t *Topic) Clone() *Topic {
	c := *t
	c.Using = append([]string(nil), t.Using...)
	c.Elements = append([]Element(nil), t.Elements...)
	return &c
}

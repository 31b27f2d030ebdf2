package parser

import (
	"regexp"
	"strings"

	"github.com/lu-zero/ndplus/pkg/topic"
)

// RepairPackages is the first reconciliation stage: a three-way merge of
// the comment-topic list, the scope record and the auto-topic list, all
// ordered by line number. Comments often precede the declarations that
// define their scope, so each comment topic receives the package in
// effect at its line, while scope-start comment topics open a "fake
// package" span that holds until the next code-declared entry arrives.
// Comment topics are mutated in place.
func RepairPackages(comments []*topic.Topic, record []topic.ScopeChange, autos []*topic.Topic) {
	realPkg := ""
	fakePkg := ""
	fakeOpen := false

	current := func() string {
		if fakeOpen {
			return fakePkg
		}
		return realPkg
	}

	ri, ai, ci := 0, 0, 0
	for ri < len(record) || ai < len(autos) || ci < len(comments) {
		rLine, aLine, cLine := maxLine, maxLine, maxLine
		if ri < len(record) {
			rLine = record[ri].Line
		}
		if ai < len(autos) {
			aLine = autos[ai].LineNumber
		}
		if ci < len(comments) {
			cLine = comments[ci].LineNumber
		}

		// ties resolve code-side first so a comment on the same line
		// sees the package its own declaration put into effect
		switch {
		case rLine <= aLine && rLine <= cLine:
			realPkg = record[ri].Scope
			fakeOpen = false
			ri++
		case aLine <= cLine:
			fakeOpen = false
			ai++
		default:
			t := comments[ci]
			switch topic.InfoFor(t.Type).Scope {
			case topic.ScopeStart:
				t.Package = current()
				fakePkg = t.EffectivePackage()
				fakeOpen = true
			case topic.ScopeEnd:
				fakePkg = ""
				fakeOpen = true
			default:
				t.Package = current()
			}
			ci++
		}
	}
}

const maxLine = int(^uint(0) >> 1)

// paramListPattern strips a trailing parameter list from a title before
// substring matching.
var paramListPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

func stripParams(title string) string {
	return strings.TrimSpace(paramListPattern.ReplaceAllString(title, ""))
}

// mergeAutoTopics is the second stage: a two-pointer merge by line
// number of the comment stream and the auto stream, with the comment
// stream's order winning ties. Matching comment and auto topics fuse,
// duplicate list-entry symbols are consumed, and headerless topics that
// attached to nothing are dropped.
func (p *Parser) mergeAutoTopics(ctx *Context) []*topic.Topic {
	comments := ctx.Topics
	autos := ctx.AutoTopics
	documented := make(map[topic.Type]map[string]bool)

	note := func(t *topic.Topic) {
		if !t.IsList {
			return
		}
		for _, def := range ctx.entries(t) {
			if !def.Symbol {
				continue
			}
			if documented[t.Type] == nil {
				documented[t.Type] = make(map[string]bool)
			}
			documented[t.Type][stripParams(def.Term)] = true
		}
	}

	var out []*topic.Topic
	ci, ai := 0, 0
	for ci < len(comments) || ai < len(autos) {
		if ci >= len(comments) {
			a := autos[ai]
			ai++
			if documented[a.Type][stripParams(a.Title)] {
				continue
			}
			if p.opts.DocumentedOnly {
				continue
			}
			out = append(out, a)
			continue
		}
		c := comments[ci]
		if ai < len(autos) && autos[ai].LineNumber < c.LineNumber {
			a := autos[ai]
			ai++
			if documented[a.Type][stripParams(a.Title)] {
				continue
			}
			out = append(out, a)
			continue
		}

		// comment side is next
		if c.Title == "" {
			nextAuto := maxLine
			if ai < len(autos) {
				nextAuto = autos[ai].LineNumber
			}
			if ci+1 < len(comments) && comments[ci+1].LineNumber < nextAuto {
				// another comment arrives before any declaration, so
				// this headerless topic attached to nothing
				ci++
				continue
			}
			if ai < len(autos) {
				mergeTopics(c, autos[ai])
				ai++
			}
			out = append(out, c)
			ci++
			continue
		}

		if ai < len(autos) && topicsMatch(c, autos[ai]) {
			mergeTopics(c, autos[ai])
			ai++
		}
		note(c)
		out = append(out, c)
		ci++
	}
	return out
}

// topicsMatch reports whether an auto topic documents the same construct
// as a comment topic: same type, and the auto title contains the comment
// title once parameter lists are stripped from both.
func topicsMatch(c, a *topic.Topic) bool {
	if c.Type != a.Type {
		return false
	}
	ct := stripParams(c.Title)
	if ct == "" {
		return false
	}
	return strings.Contains(stripParams(a.Title), ct)
}

// mergeTopics folds an auto topic into the comment topic that documents
// it. The comment topic keeps its body and title; the auto topic
// contributes what only the code knows.
func mergeTopics(c, a *topic.Topic) {
	c.Type = a.Type
	if c.Title == "" {
		c.Title = a.Title
	}
	if c.Prototype == "" {
		c.Prototype = a.Prototype
	}
	c.Using = append(c.Using, a.Using...)

	if len(a.Elements) > 0 {
		c.Elements = append(c.Elements, a.Elements...)
		switch c.Type {
		case topic.TypeEnumeration, topic.TypeType, topic.TypeFunction:
			expandElements(c, a.Elements)
		}
	}

	if topic.InfoFor(c.Type).Scope == topic.ScopeStart {
		c.Package = scopeStartPackage(c, a)
	} else {
		c.Package = a.Package
	}
}

// expandElements appends code-declared members to the body as a
// definition list so they render alongside the written documentation.
func expandElements(t *topic.Topic, elements []topic.Element) {
	var sb strings.Builder
	sb.WriteString(t.Body)
	sb.WriteString("<dl>")
	for _, e := range elements {
		sb.WriteString("<de>")
		sb.WriteString(escapeMarkup(e.Name))
		sb.WriteString("</de><dd>")
		sb.WriteString(escapeMarkup(e.Description))
		sb.WriteString("</dd>")
	}
	sb.WriteString("</dl>")
	t.SetBody(sb.String())
}

func escapeMarkup(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

// scopeStartPackage aligns a scope-starting comment topic's package with
// the code-declared one by stripping the identifiers the two full paths
// share at the tail.
func scopeStartPackage(c, a *topic.Topic) string {
	cParts := splitSymbol(topic.JoinSymbols(c.Package, c.Title))
	aParts := splitSymbol(topic.JoinSymbols(a.Package, a.Title))
	for len(cParts) > 0 && len(aParts) > 0 && cParts[len(cParts)-1] == aParts[len(aParts)-1] {
		cParts = cParts[:len(cParts)-1]
		aParts = aParts[:len(aParts)-1]
	}
	return strings.Join(aParts, ".")
}

func splitSymbol(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// RemoveRemainingHeaderless is the third stage: anything still without a
// title after merging documents nothing and is dropped.
func RemoveRemainingHeaderless(topics []*topic.Topic) []*topic.Topic {
	out := topics[:0]
	for _, t := range topics {
		if t.Title != "" {
			out = append(out, t)
		}
	}
	return out
}

package parser

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/markup"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// AddPackageDelineators walks the final topics by package-change
// boundaries and synthesizes a class heading wherever topics switch to a
// package no heading introduced. A package that reappears after an
// intervening different package gets a continuation heading.
func AddPackageDelineators(topics []*topic.Topic) []*topic.Topic {
	seen := make(map[string]bool)
	cur := ""
	var out []*topic.Topic
	for _, t := range topics {
		switch topic.InfoFor(t.Type).Scope {
		case topic.ScopeStart:
			cur = t.EffectivePackage()
			seen[cur] = true
			out = append(out, t)
			continue
		case topic.ScopeEnd:
			cur = ""
			out = append(out, t)
			continue
		case topic.ScopeAlwaysGlobal:
			out = append(out, t)
			continue
		}
		pkg := t.EffectivePackage()
		if pkg != cur {
			cur = pkg
			if pkg != "" {
				if d := delineator(pkg, seen[pkg], t.LineNumber); d != nil {
					out = append(out, d)
				}
				seen[pkg] = true
			}
		}
		out = append(out, t)
	}
	return out
}

// delineator synthesizes the heading topic that introduces a package.
func delineator(pkg string, continued bool, line int) *topic.Topic {
	parts := strings.Split(pkg, ".")
	title := parts[len(parts)-1]
	parent := strings.Join(parts[:len(parts)-1], ".")
	t, err := topic.New(topic.TypeClass, title, parent, "", line)
	if err != nil {
		return nil
	}
	t.IsAuto = true
	t.IsContinuation = continued
	return t
}

// breakLists splits splittable list topics into one topic per
// description-list entry, wrapping leftover body text in a group topic
// so nothing written is lost.
func (p *Parser) breakLists(ctx *Context) []*topic.Topic {
	var out []*topic.Topic
	for _, t := range ctx.Topics {
		entries := ctx.entries(t)
		if !t.IsList || !topic.InfoFor(t.Type).Splittable || len(entries) == 0 {
			out = append(out, t)
			continue
		}

		leftover := stripListMarkup(t.Body)
		if hasContent(leftover) {
			g, err := topic.New(topic.TypeGroup, t.Title, t.Package, leftover, t.LineNumber)
			if err == nil {
				g.NoSummary = t.NoSummary
				out = append(out, g)
			}
		} else {
			g, err := topic.New(topic.TypeGroup, t.Title, t.Package, "", t.LineNumber)
			if err == nil {
				g.NoSummary = t.NoSummary
				out = append(out, g)
			}
		}

		pkg := t.Package
		for _, def := range entries {
			title := strings.TrimSpace(def.Term)
			if title == "" {
				continue
			}
			body := ""
			if strings.TrimSpace(def.Description) != "" {
				body = "<p>" + markup.RichFormatTextBlock(def.Description, markup.InlineOptions{}) + "</p>"
			}
			nt, err := topic.New(t.Type, stripParams(title), pkg, body, t.LineNumber)
			if err != nil {
				continue
			}
			nt.Prototype = title
			out = append(out, nt)
		}
	}
	return out
}

// stripListMarkup removes description lists and trailing headings from a
// body, leaving only the prose that should survive list breaking.
func stripListMarkup(body string) string {
	for {
		start := strings.Index(body, "<dl>")
		if start < 0 {
			break
		}
		end := strings.Index(body[start:], "</dl>")
		if end < 0 {
			body = body[:start]
			break
		}
		body = body[:start] + body[start+end+len("</dl>"):]
	}
	// a heading with nothing after it headed the list that just left
	for {
		open := strings.LastIndex(body, "<h>")
		if open < 0 {
			break
		}
		close := strings.Index(body[open:], "</h>")
		if close < 0 || strings.TrimSpace(body[open+close+len("</h>"):]) != "" {
			break
		}
		body = body[:open]
	}
	return strings.TrimSpace(body)
}

// hasContent reports whether markup still contains visible text.
func hasContent(body string) bool {
	depth := 0
	for _, c := range body {
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case depth == 0 && c != ' ' && c != '\t' && c != '\n':
			return true
		}
	}
	return false
}

// typeRun is one run-length-encoded stretch of same-type topics.
type typeRun struct {
	types  []topic.Type
	topics []*topic.Topic
}

func (r *typeRun) hasType(t topic.Type) bool {
	for _, rt := range r.types {
		if rt == t {
			return true
		}
	}
	return false
}

// MakeAutoGroups clusters consecutive same-type topics between scope
// boundaries into groups, smoothing A,B,A alternations of compatible
// types where at least one run is small, then emits a synthetic group
// heading before every cluster that is not the generic catch-all.
func MakeAutoGroups(topics []*topic.Topic) []*topic.Topic {
	var out []*topic.Topic
	var segment []*topic.Topic
	afterGroup := false

	flush := func() {
		out = append(out, groupSegment(segment, afterGroup)...)
		segment = nil
	}

	for _, t := range topics {
		info := topic.InfoFor(t.Type)
		if info.Scope != topic.ScopeNormal || t.Type == topic.TypeGroup {
			flush()
			afterGroup = t.Type == topic.TypeGroup
			out = append(out, t)
			continue
		}
		segment = append(segment, t)
	}
	flush()
	return out
}

// groupSegment runs the RLE and smoothing over one boundary-free
// stretch. afterGroup suppresses the heading of the first run, which an
// explicit group topic already introduced.
func groupSegment(segment []*topic.Topic, afterGroup bool) []*topic.Topic {
	if len(segment) == 0 {
		return nil
	}

	var runs []*typeRun
	for _, t := range segment {
		if len(runs) > 0 && runs[len(runs)-1].hasType(t.Type) {
			last := runs[len(runs)-1]
			last.topics = append(last.topics, t)
			continue
		}
		runs = append(runs, &typeRun{types: []topic.Type{t.Type}, topics: []*topic.Topic{t}})
	}

	runs = smoothRuns(runs)

	var out []*topic.Topic
	for ri, r := range runs {
		if !(afterGroup && ri == 0) && !r.hasType(topic.TypeGeneric) {
			if g := groupHeading(r); g != nil {
				out = append(out, g)
			}
		}
		out = append(out, r.topics...)
	}
	return out
}

// smoothRuns merges A,B,A alternations of group-compatible types when at
// least one of the three runs has two or fewer members. Passes repeat
// until nothing merges, so longer alternations collapse too.
func smoothRuns(runs []*typeRun) []*typeRun {
	for {
		merged := false
		for i := 0; i+2 < len(runs); i++ {
			a, b, c := runs[i], runs[i+1], runs[i+2]
			if len(a.types) != 1 || len(b.types) != 1 || len(c.types) != 1 {
				continue
			}
			if a.types[0] != c.types[0] || !topic.GroupCompatible(a.types[0], b.types[0]) {
				continue
			}
			if len(a.topics) > 2 && len(b.topics) > 2 && len(c.topics) > 2 {
				continue
			}
			fused := &typeRun{types: []topic.Type{a.types[0], b.types[0]}}
			fused.topics = append(fused.topics, a.topics...)
			fused.topics = append(fused.topics, b.topics...)
			fused.topics = append(fused.topics, c.topics...)
			runs = append(runs[:i], append([]*typeRun{fused}, runs[i+3:]...)...)
			merged = true
			break
		}
		if !merged {
			return runs
		}
	}
}

// groupHeading builds the synthetic group topic for a run.
func groupHeading(r *typeRun) *topic.Topic {
	var names []string
	for _, t := range r.types {
		names = append(names, topic.InfoFor(t).PluralName)
	}
	first := r.topics[0]
	g, err := topic.New(topic.TypeGroup, strings.Join(names, " and "), first.Package, "", first.LineNumber)
	if err != nil {
		return nil
	}
	g.IsAuto = true
	return g
}

// CleanAutoGroups removes a lone synthesized group heading from files
// that have too little substance for grouping to mean anything.
func CleanAutoGroups(topics []*topic.Topic) []*topic.Topic {
	substantive := 0
	autoGroups := 0
	for _, t := range topics {
		if t.Type == topic.TypeGroup && t.IsAuto {
			autoGroups++
			continue
		}
		if topic.InfoFor(t.Type).Scope == topic.ScopeNormal {
			substantive++
		}
	}
	if substantive >= 2 || autoGroups == 0 {
		return topics
	}
	out := topics[:0]
	for _, t := range topics {
		if t.Type == topic.TypeGroup && t.IsAuto {
			continue
		}
		out = append(out, t)
	}
	return out
}

package parser

import (
	"sort"
	"strings"

	"github.com/lu-zero/ndplus/pkg/topic"
)

// groupSpan is one group heading plus the member topics that follow it
// up to the next heading or scope boundary.
type groupSpan struct {
	start, end int // [start, end) into the topic list, heading included
	title      string
	pkg        string
	memberType topic.Type
}

// findGroupSpans slices the topic list into group spans.
func findGroupSpans(topics []*topic.Topic) []groupSpan {
	var spans []groupSpan
	for i := 0; i < len(topics); i++ {
		t := topics[i]
		if t.Type != topic.TypeGroup {
			continue
		}
		span := groupSpan{start: i, title: t.Title, pkg: t.EffectivePackage()}
		j := i + 1
		for ; j < len(topics); j++ {
			m := topics[j]
			if m.Type == topic.TypeGroup || topic.InfoFor(m.Type).Scope != topic.ScopeNormal {
				break
			}
			if span.memberType == topic.TypeGeneric {
				span.memberType = m.Type
			}
		}
		span.end = j
		spans = append(spans, span)
		i = j - 1
	}
	return spans
}

// ApplyMergeAttributes relocates the members of later same-named groups
// to follow the first group with that name in the same package, when the
// member type declares that groupings merge. Emptied duplicate headings
// are deleted.
func ApplyMergeAttributes(topics []*topic.Topic) []*topic.Topic {
	spans := findGroupSpans(topics)
	if len(spans) < 2 {
		return topics
	}

	type key struct {
		title string
		pkg   string
	}
	first := make(map[key]int) // span index of the first occurrence
	moved := make(map[int]bool)
	inserts := make(map[int][]*topic.Topic) // after this span's last member

	for si, span := range spans {
		if !topic.InfoFor(span.memberType).CanMergeGroupings {
			continue
		}
		k := key{strings.ToLower(span.title), span.pkg}
		fi, ok := first[k]
		if !ok {
			first[k] = si
			continue
		}
		// later duplicate: its members move up behind the first span
		members := topics[span.start+1 : span.end]
		inserts[fi] = append(inserts[fi], members...)
		for i := span.start; i < span.end; i++ {
			moved[i] = true
		}
	}
	if len(moved) == 0 {
		return topics
	}

	var out []*topic.Topic
	for i := 0; i < len(topics); i++ {
		if moved[i] {
			continue
		}
		out = append(out, topics[i])
		for si, span := range spans {
			if span.end-1 == i {
				out = append(out, inserts[si]...)
			}
		}
	}
	return collapseEmptySections(out)
}

// collapseEmptySections drops synthesized headings whose members all
// moved away.
func collapseEmptySections(topics []*topic.Topic) []*topic.Topic {
	var out []*topic.Topic
	for i, t := range topics {
		isHeading := (t.Type == topic.TypeGroup || topic.InfoFor(t.Type).Scope == topic.ScopeStart) && t.IsAuto
		if isHeading {
			empty := true
			for j := i + 1; j < len(topics); j++ {
				n := topics[j]
				if n.Type == topic.TypeGroup || topic.InfoFor(n.Type).Scope != topic.ScopeNormal {
					break
				}
				empty = false
				break
			}
			if empty {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// applySortAttributes stable-sorts contiguous runs of sortable topics by
// title using the configured collation. Runs are bounded by group
// headings and scope boundaries so nothing crosses a heading.
func (p *Parser) applySortAttributes(topics []*topic.Topic) {
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start > 1 {
			run := topics[start:end]
			sort.SliceStable(run, func(i, j int) bool {
				return p.collator.CompareString(run[i].Title, run[j].Title) < 0
			})
		}
		start = -1
	}
	for i, t := range topics {
		info := topic.InfoFor(t.Type)
		boundary := t.Type == topic.TypeGroup || info.Scope != topic.ScopeNormal
		if boundary || !info.Sortable {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(topics))
}

// ApplySummariesAttributes propagates summary suppression downward from
// marked groups and sections. The first following topic that does not
// qualify for suppression ends the propagation.
func ApplySummariesAttributes(topics []*topic.Topic) {
	suppress := false
	for _, t := range topics {
		isContainer := t.Type == topic.TypeGroup || t.Type == topic.TypeSection
		if isContainer {
			suppress = t.NoSummary
			continue
		}
		if !suppress {
			continue
		}
		if topic.InfoFor(t.Type).Summarizable && !t.NoSummary {
			t.NoSummary = true
		} else if !topic.InfoFor(t.Type).Summarizable {
			suppress = false
		}
	}
}

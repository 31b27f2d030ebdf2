// Package markup converts cleaned comment text into the semantic body
// markup the rest of the pipeline consumes: paragraphs, nested lists,
// headings, code blocks, admonitions, tables and inline formatting.
package markup

import "strings"

// TagKind identifies the container a tracked indentation frame opened.
type TagKind int

const (
	TagNone TagKind = iota
	TagBullet
	TagOrdered
	TagDefinition
	TagIndent
)

// tagText carries the markup associated with each container kind. Entry
// tags are empty for kinds whose entries are self-contained.
var tagText = map[TagKind]struct {
	open, close, entryOpen, entryClose string
}{
	TagBullet:     {"<ul>", "</ul>", "<li>", "</li>"},
	TagOrdered:    {"<ol>", "</ol>", "<li>", "</li>"},
	TagDefinition: {"<dl>", "</dl>", "", "</dd>"},
	TagIndent:     {"<indent>", "</indent>", "", ""},
}

// DefaultIndent is the fallback nesting width when neither the language
// nor a modeline sets one.
const DefaultIndent = 8

// MinIndent is the smallest accepted nesting width.
const MinIndent = 2

type indentFrame struct {
	column    int
	kind      TagKind
	pending   bool // container open tag not yet emitted via Markup
	entryOpen bool
}

// IndentTracker is a stack machine converting the columns of list markers
// (or explicit dot-numbered depth specs) into nested markup regions.
type IndentTracker struct {
	frames       []indentFrame
	indentWidth  int
	defaultWidth int
	autoWidth    bool // learn the width from the first observed gain
	manual       bool // Increase/Decrease took over; columns are ignored
	dotSticky    bool // a dot spec was seen; columns are ignored until End
}

// NewIndentTracker builds a tracker with the given default width. Widths
// below MinIndent are clamped; zero selects DefaultIndent. autoDetect lets
// the tracker learn the width from the first observed nesting gain.
func NewIndentTracker(width int, autoDetect bool) *IndentTracker {
	if width == 0 {
		width = DefaultIndent
	}
	if width < MinIndent {
		width = MinIndent
	}
	return &IndentTracker{
		indentWidth:  width,
		defaultWidth: width,
		autoWidth:    autoDetect,
	}
}

// Depth returns the current nesting depth.
func (it *IndentTracker) Depth() int {
	return len(it.frames)
}

// TopColumn returns the column of the innermost open frame, or -1 when
// no list is open.
func (it *IndentTracker) TopColumn() int {
	if len(it.frames) == 0 {
		return -1
	}
	return it.top().column
}

// Process decides whether column is an increase, hold or decrease of
// nesting for a new entry of the given kind. When levelSpec carries
// dot-separated numbers the dot count becomes the target depth directly.
// It returns the closing markup for every frame popped. At most one level
// can be gained per call; any number may be lost.
func (it *IndentTracker) Process(kind TagKind, column int, levelSpec string) string {
	if target, ok := dotDepth(levelSpec); ok {
		it.dotSticky = true
		return it.processToDepth(kind, target, column)
	}
	if it.dotSticky || it.manual {
		// dot specs and manual control stay authoritative until the
		// stack fully unwinds
		return it.processToDepth(kind, max(len(it.frames), 1), column)
	}

	gain := it.indentWidth
	if it.autoWidth {
		gain = MinIndent
	}

	target := len(it.frames)
	switch {
	case len(it.frames) == 0:
		target = 1
	case column >= it.top().column+gain:
		if it.autoWidth {
			it.indentWidth = column - it.top().column
		}
		target = len(it.frames) + 1
	case column < it.top().column:
		for target > 0 && column < it.frames[target-1].column {
			target--
		}
		if target == 0 {
			target = 1
		}
	}
	return it.processToDepth(kind, target, column)
}

// processToDepth pops and pushes frames until the stack depth matches
// target, then reconciles the top frame's kind with the new entry's kind.
func (it *IndentTracker) processToDepth(kind TagKind, target, column int) string {
	if target < 1 {
		target = 1
	}
	if target > len(it.frames)+1 {
		target = len(it.frames) + 1 // one level gained per call at most
	}

	var out strings.Builder
	for len(it.frames) > target {
		out.WriteString(it.popFrame())
	}

	if len(it.frames) == target {
		top := it.top()
		if top.kind != kind {
			out.WriteString(it.popFrame())
			it.push(kind, column)
		} else {
			if top.entryOpen {
				out.WriteString(tagText[top.kind].entryClose)
				top.entryOpen = false
			}
			top.column = column
		}
	} else {
		it.push(kind, column)
	}

	if len(it.frames) == 0 && it.autoWidth {
		it.indentWidth = it.defaultWidth
	}
	return out.String()
}

func (it *IndentTracker) push(kind TagKind, column int) {
	it.frames = append(it.frames, indentFrame{column: column, kind: kind, pending: true})
}

func (it *IndentTracker) popFrame() string {
	top := it.top()
	var out string
	if top.entryOpen {
		out = tagText[top.kind].entryClose
	}
	if !top.pending {
		out += tagText[top.kind].close
	}
	it.frames = it.frames[:len(it.frames)-1]
	return out
}

func (it *IndentTracker) top() *indentFrame {
	return &it.frames[len(it.frames)-1]
}

// Markup emits the open tag of the most recently pushed frame exactly
// once; later calls return nothing until another frame is pushed.
func (it *IndentTracker) Markup() string {
	if len(it.frames) == 0 {
		return ""
	}
	top := it.top()
	if !top.pending {
		return ""
	}
	top.pending = false
	return tagText[top.kind].open
}

// EntryOpened records that the caller emitted an entry open tag at the
// current level, so the tracker can close it on the next transition.
func (it *IndentTracker) EntryOpened() {
	if len(it.frames) > 0 && tagText[it.top().kind].entryClose != "" {
		it.top().entryOpen = true
	}
}

// EntryOpen reports whether the innermost frame has an unclosed entry.
func (it *IndentTracker) EntryOpen() bool {
	return len(it.frames) > 0 && it.top().entryOpen
}

// End unconditionally unwinds the whole stack, closing every open tag, and
// resets the tracker for the next run of list content.
func (it *IndentTracker) End() string {
	var out strings.Builder
	for len(it.frames) > 0 {
		out.WriteString(it.popFrame())
	}
	if it.autoWidth {
		it.indentWidth = it.defaultWidth
	}
	it.dotSticky = false
	it.manual = false
	return out.String()
}

// Increase pushes one level of the given kind under caller control and
// turns column-based depth detection off for the rest of the run.
func (it *IndentTracker) Increase(kind TagKind) string {
	it.manual = true
	col := 0
	if len(it.frames) > 0 {
		col = it.top().column + it.indentWidth
	}
	it.push(kind, col)
	return ""
}

// Decrease pops one level under caller control, also disabling
// column-based depth detection.
func (it *IndentTracker) Decrease() string {
	it.manual = true
	if len(it.frames) == 0 {
		return ""
	}
	out := it.popFrame()
	if len(it.frames) == 0 {
		it.indentWidth = it.defaultWidth
	}
	return out
}

// dotDepth parses explicit numbered-list depth specs like "2." or "1.3.":
// the number of dot-terminated segments is the target depth.
func dotDepth(spec string) (int, bool) {
	if spec == "" {
		return 0, false
	}
	depth := 0
	digits := false
	for i := 0; i < len(spec); i++ {
		c := spec[i]
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.':
			if !digits {
				return 0, false
			}
			depth++
			digits = false
		default:
			return 0, false
		}
	}
	if depth == 0 || digits {
		// trailing digits without a closing dot are not a depth spec
		if !digits && depth > 0 {
			return depth, true
		}
		return 0, false
	}
	return depth, true
}

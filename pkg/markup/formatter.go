package markup

import (
	"regexp"
	"strings"

	"github.com/lu-zero/ndplus/pkg/lang"
)

// BlockKind identifies a tagged raw block inside a comment body.
type BlockKind int

const (
	BlockCode BlockKind = iota
	BlockExample
	BlockDiagram
	BlockDitaa
	BlockMscgen
	BlockSdedit
	BlockDrawing
	BlockQuote
)

// blockInfo associates each block kind with its markup name and whether
// its content gets escaped. Drawing and quote pass through untouched for
// downstream diagram rendering.
var blockInfo = map[BlockKind]struct {
	name   string
	escape bool
}{
	BlockCode:    {"code", true},
	BlockExample: {"example", true},
	BlockDiagram: {"diagram", true},
	BlockDitaa:   {"ditaa", false},
	BlockMscgen:  {"mscgen", false},
	BlockSdedit:  {"sdedit", false},
	BlockDrawing: {"drawing", false},
	BlockQuote:   {"quote", false},
}

var blockNames = map[string]BlockKind{
	"code":    BlockCode,
	"example": BlockExample,
	"diagram": BlockDiagram,
	"ditaa":   BlockDitaa,
	"mscgen":  BlockMscgen,
	"sdedit":  BlockSdedit,
	"drawing": BlockDrawing,
	"quote":   BlockQuote,
}

var admonitionWords = map[string]bool{
	"note":      true,
	"warning":   true,
	"caution":   true,
	"danger":    true,
	"important": true,
	"tip":       true,
	"todo":      true,
}

// headingIgnoreSet lists function-list headings whose definition entries
// must not be promoted to symbols.
var headingIgnoreSet = map[string]bool{
	"parameters": true,
	"parameter":  true,
	"arguments":  true,
	"argument":   true,
	"params":     true,
	"param":      true,
	"returns":    true,
	"return":     true,
}

var (
	blockStartPattern = regexp.MustCompile(`(?i)^\(\s*(?:start|begin)?\s*(code|example|diagram|ditaa|mscgen|sdedit|drawing|quote|table)\s*\)$`)
	blockEndPattern   = regexp.MustCompile(`(?i)^\(\s*(?:end|finish|done)(?:\s+(code|example|diagram|ditaa|mscgen|sdedit|drawing|quote|table))?\s*\)$`)
	indentOnPattern   = regexp.MustCompile(`(?i)^\(\s*(?:start\s+)?indent\s*\)$`)
	indentOffPattern  = regexp.MustCompile(`(?i)^\(\s*end\s+indent\s*\)$`)
	admonitionEnd     = regexp.MustCompile(`(?i)^\(\s*end!\s*\)$`)
	admonitionPattern = regexp.MustCompile(`^([A-Za-z]+)!:\s*(.*)$`)
	bulletPattern     = regexp.MustCompile(`^([-*o+])\s+(.*)$`)
	orderedPattern    = regexp.MustCompile(`^([0-9]+\.(?:[0-9]+\.)*|[A-Za-z]\.)\s+(.*)$`)
	definitionPattern = regexp.MustCompile(`^(.+?)\s+-\s+(.*)$`)
)

// Definition is one description-list entry the formatter produced, kept
// for later symbol promotion and list breaking.
type Definition struct {
	Term        string
	Description string
	Symbol      bool // entry was emitted as a symbol-significant <ds>
}

// Options configure one formatting run for a topic body.
type Options struct {
	SymbolList   bool // list/enum topic: entries are symbol-significant
	FunctionList bool // enables the heading ignore set
	Settings     lang.Settings
	IndentWidth  int    // 0 picks the settings/default chain
	CodePrefixes string // characters marking a prefixed code line
}

// Result is the output of one formatting run.
type Result struct {
	Body        string
	Definitions []Definition
}

// Formatter converts cleaned comment lines into body markup. A formatter
// is reusable; each Format call runs with fresh state.
type Formatter struct {
	opts    Options
	tracker *IndentTracker

	out       strings.Builder
	para      []string
	paraBare  bool // current text run is list-entry text, no <p> wrapper
	block     *BlockKind
	blockRaw  []string
	codeRaw   []string
	table     *Table
	admonOpen bool
	ignored   bool // inside an ignored function-list section
	prevBlank bool
	defs      []Definition
}

// NewFormatter builds a formatter for one topic body.
func NewFormatter(opts Options) *Formatter {
	return &Formatter{opts: opts}
}

func (f *Formatter) indentWidth() int {
	if f.opts.Settings.IndentWidth > 0 {
		return f.opts.Settings.IndentWidth
	}
	return f.opts.IndentWidth
}

// Format runs the full line classification over the cleaned comment lines
// and emits body markup.
func (f *Formatter) Format(lines []string) Result {
	f.out.Reset()
	f.para = nil
	f.paraBare = false
	f.block = nil
	f.blockRaw = nil
	f.codeRaw = nil
	f.table = nil
	f.admonOpen = false
	f.ignored = false
	f.prevBlank = true
	f.defs = nil
	f.tracker = NewIndentTracker(f.indentWidth(), f.opts.Settings.IndentWidth == 0)

	for i, line := range lines {
		f.processLine(line, i, lines)
	}
	f.finish()

	return Result{Body: f.out.String(), Definitions: f.defs}
}

// FormatLines is the recursive entry point used for table cells.
func (f *Formatter) FormatLines(lines []string) string {
	sub := NewFormatter(f.opts)
	return sub.Format(lines).Body
}

func (f *Formatter) processLine(raw string, i int, lines []string) {
	trimmed := strings.TrimSpace(raw)
	wasBlank := f.prevBlank
	f.prevBlank = trimmed == ""

	// 1-2. active raw accumulators swallow everything until their end
	if f.table != nil {
		if blockEndPattern.MatchString(trimmed) {
			f.closeTable()
			return
		}
		f.table.AddLine(raw)
		return
	}
	if f.block != nil {
		if blockEndPattern.MatchString(trimmed) {
			f.closeBlock()
			return
		}
		f.blockRaw = append(f.blockRaw, strings.TrimRight(raw, " \t"))
		return
	}

	// blocks and tables start regardless of paragraph state
	if m := blockStartPattern.FindStringSubmatch(trimmed); m != nil {
		f.flush()
		name := strings.ToLower(m[1])
		if name == "table" {
			f.table = NewTable()
			return
		}
		kind := blockNames[name]
		f.block = &kind
		f.blockRaw = nil
		return
	}

	// 3. prefixed code lines accumulate until a non-prefixed line
	if trimmed != "" && f.opts.CodePrefixes != "" &&
		strings.ContainsRune(f.opts.CodePrefixes, rune(trimmed[0])) {
		if f.codeRaw == nil {
			f.flush()
		}
		content := strings.TrimPrefix(trimmed[1:], " ")
		f.codeRaw = append(f.codeRaw, content)
		return
	}
	if f.codeRaw != nil {
		f.closePrefixedCode()
	}

	// 4. blank line closes the paragraph
	if trimmed == "" {
		f.flushPara()
		return
	}

	column := leadingColumns(raw)

	// manual indent directives take over depth control
	if indentOnPattern.MatchString(trimmed) {
		f.flushPara()
		f.out.WriteString(f.tracker.Increase(TagIndent))
		f.out.WriteString(f.tracker.Markup())
		return
	}
	if indentOffPattern.MatchString(trimmed) {
		f.flushPara()
		f.out.WriteString(f.tracker.Decrease())
		return
	}

	if admonitionEnd.MatchString(trimmed) {
		f.flushPara()
		f.closeAdmonition()
		return
	}

	// 9. admonition line opens a styled container
	if f.opts.Settings.Admonitions {
		if m := admonitionPattern.FindStringSubmatch(trimmed); m != nil && admonitionWords[strings.ToLower(m[1])] {
			f.flush()
			f.closeAdmonition()
			f.out.WriteString("<adm type=\"" + strings.ToLower(m[1]) + "\">")
			f.admonOpen = true
			if m[2] != "" {
				f.para = append(f.para, m[2])
			}
			return
		}
	}

	// 5. bullet, unless the bullet character is really a definition term
	if f.opts.Settings.BulletLists {
		if m := bulletPattern.FindStringSubmatch(trimmed); m != nil && !strings.HasPrefix(m[2], "- ") {
			f.listEntry(TagBullet, column, "", m[2])
			return
		}
	}

	// 6. ordered item; stickiness comes from the open ordered frame
	if f.opts.Settings.NumberedLists {
		if m := orderedPattern.FindStringSubmatch(trimmed); m != nil {
			spec := ""
			if c := m[1][0]; c >= '0' && c <= '9' {
				spec = m[1]
			}
			f.listEntry(TagOrdered, column, spec, m[2])
			return
		}
	}

	// 8. header line: ends in a colon with a blank line above
	if wasBlank && strings.HasSuffix(trimmed, ":") && len(trimmed) > 1 &&
		!strings.HasSuffix(trimmed, "::") {
		f.flush()
		text := strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))
		f.out.WriteString("<h>" + RichFormatTextBlock(text, f.inlineOpts()) + "</h>")
		f.ignored = f.opts.FunctionList && headingIgnoreSet[strings.ToLower(text)]
		return
	}

	// 7. definition entry: term - description
	if f.opts.Settings.DefinitionLists {
		if m := definitionPattern.FindStringSubmatch(trimmed); m != nil && goodDefinitionTerm(m[1]) {
			f.definitionEntry(column, m[1], m[2])
			return
		}
	}

	// 10. plain text
	f.plainText(raw, trimmed, column, wasBlank)
}

// goodDefinitionTerm rejects terms that are clearly running prose rather
// than a definition-list key.
func goodDefinitionTerm(term string) bool {
	return len(strings.Fields(term)) <= 4
}

func (f *Formatter) inlineOpts() InlineOptions {
	return InlineOptions{RelaxedCode: !f.opts.Settings.StrictInlineCode}
}

// listEntry handles bullet and ordered entries through the indent tracker.
func (f *Formatter) listEntry(kind TagKind, column int, levelSpec, content string) {
	f.flushPara()
	if !f.opts.Settings.Leveling {
		column = 0
	}
	f.out.WriteString(f.tracker.Process(kind, column, levelSpec))
	f.out.WriteString(f.tracker.Markup())
	f.out.WriteString("<li>")
	f.tracker.EntryOpened()
	f.para = append(f.para, content)
	f.paraBare = true
}

// definitionEntry emits a description-list entry. The tag depends on
// whether entries of the owning topic are symbol-significant, and on the
// heading ignore set.
func (f *Formatter) definitionEntry(column int, term, desc string) {
	f.flushPara()
	if !f.opts.Settings.Leveling {
		column = 0
	}
	f.out.WriteString(f.tracker.Process(TagDefinition, column, ""))
	f.out.WriteString(f.tracker.Markup())

	symbol := f.opts.SymbolList && !f.ignored
	tag := "de"
	if symbol {
		tag = "ds"
	}
	f.out.WriteString("<" + tag + ">" + EscapeText(term) + "</" + tag + "><dd>")
	f.tracker.EntryOpened()
	f.defs = append(f.defs, Definition{Term: term, Description: desc, Symbol: symbol})
	f.para = append(f.para, desc)
	f.paraBare = true
}

// plainText appends to the open text run or opens a new one. A blank line
// before indented text keeps the surrounding list alive; at or left of
// the list's column it closes it.
func (f *Formatter) plainText(raw, trimmed string, column int, wasBlank bool) {
	if len(f.para) > 0 {
		f.para = append(f.para, trimmed)
		return
	}
	if f.tracker.Depth() > 0 && wasBlank {
		if column <= f.tracker.TopColumn() {
			f.out.WriteString(f.tracker.End())
		}
	}
	f.para = append(f.para, trimmed)
	f.paraBare = f.tracker.EntryOpen() && !wasBlank
}

// flushPara closes the accumulated text run.
func (f *Formatter) flushPara() {
	if len(f.para) == 0 {
		return
	}
	text := RichFormatTextBlock(strings.Join(f.para, " "), f.inlineOpts())
	if f.paraBare {
		f.out.WriteString(text)
	} else {
		f.out.WriteString("<p>" + text + "</p>")
	}
	f.para = nil
	f.paraBare = false
}

// flush closes every open inline construct: text run, prefixed code and
// list nesting.
func (f *Formatter) flush() {
	if f.codeRaw != nil {
		f.closePrefixedCode()
	}
	f.flushPara()
	f.out.WriteString(f.tracker.End())
}

func (f *Formatter) closePrefixedCode() {
	lines := trimCommonIndent(f.codeRaw)
	f.codeRaw = nil
	f.flushPara()
	f.out.WriteString("<code type=\"code\">" + EscapeText(strings.Join(lines, "\n")) + "</code>")
}

func (f *Formatter) closeBlock() {
	kind := *f.block
	f.block = nil
	info := blockInfo[kind]
	content := strings.Join(trimCommonIndent(f.blockRaw), "\n")
	f.blockRaw = nil
	if info.escape {
		content = EscapeText(content)
	}
	f.out.WriteString("<code type=\"" + info.name + "\">" + content + "</code>")
}

func (f *Formatter) closeTable() {
	t := f.table
	f.table = nil
	f.out.WriteString(t.Markup(f.FormatLines))
}

func (f *Formatter) closeAdmonition() {
	if f.admonOpen {
		f.flushPara()
		f.out.WriteString("</adm>")
		f.admonOpen = false
	}
}

// finish closes whatever is still open at the end of the comment. Dangling
// blocks are closed rather than erroring, emitting the partial markup that
// accumulated.
func (f *Formatter) finish() {
	if f.table != nil {
		f.closeTable()
	}
	if f.block != nil {
		f.closeBlock()
	}
	if f.codeRaw != nil {
		f.closePrefixedCode()
	}
	f.flushPara()
	f.out.WriteString(f.tracker.End())
	f.closeAdmonition()
}

// trimCommonIndent strips the minimal shared leading whitespace from a
// block of raw lines, preserving relative indentation. The minimum is a
// byte count so tab-indented lines trim at the right offset.
func trimCommonIndent(lines []string) []string {
	min := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if min < 0 || n < min {
			min = n
		}
	}
	if min <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= min {
			out[i] = line[min:]
		} else {
			out[i] = strings.TrimLeft(line, " \t")
		}
	}
	return out
}

// leadingColumns counts the leading whitespace width of a line, tabs
// expanded to four columns.
func leadingColumns(line string) int {
	col := 0
	for _, c := range line {
		switch c {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return col
		}
	}
	return col
}

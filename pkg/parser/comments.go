package parser

import (
	"regexp"
	"strings"

	"github.com/lu-zero/ndplus/pkg/markup"
	"github.com/lu-zero/ndplus/pkg/topic"
)

var headerPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*?):\s+(\S.*)$`)

// onComment handles one documentation-eligible comment: clean it, decide
// which comment convention owns it, split it into topics and append them
// to the context's comment stream. Returns how many topics were added.
func (p *Parser) onComment(ctx *Context, lines []string, lineNumber int, docStyle bool) int {
	cleaned := cleanComment(lines)
	if len(cleaned) == 0 {
		return 0
	}

	if !hasNativeHeader(cleaned) {
		if docStyle && looksLikeMarkdown(cleaned) {
			return p.markdownTopic(ctx, cleaned, lineNumber)
		}
		if !docStyle {
			// a plain comment with no headers documents nothing
			return 0
		}
	}
	return p.nativeTopics(ctx, cleaned, lineNumber)
}

// nativeTopics splits a cleaned comment at its Keyword: Title headers.
// Lines before the first header become a headerless topic that merging
// may later attach to a declaration.
func (p *Parser) nativeTopics(ctx *Context, lines []string, lineNumber int) int {
	added := 0
	var current *topic.Topic
	var body []string
	bodyLine := lineNumber

	flush := func() {
		if current == nil {
			if len(body) > 0 && !allBlank(body) {
				t, err := topic.New(topic.TypeGeneric, "", ctx.currentPackage, "", bodyLine)
				if err != nil {
					return
				}
				p.formatBody(ctx, t, body)
				ctx.addTopic(t)
				added++
			}
			return
		}
		p.formatBody(ctx, current, body)
		ctx.addTopic(current)
		added++
	}

	for i, line := range lines {
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if kind, plural, known := topic.KeywordLookup(m[1]); known {
				flush()
				title, noSummary := splitTitleAttributes(strings.TrimSpace(m[2]))
				t, err := topic.New(kind, title, ctx.currentPackage, "", lineNumber+i)
				if err != nil {
					continue
				}
				t.IsList = plural
				t.NoSummary = noSummary
				current = t
				body = nil
				bodyLine = lineNumber + i
				continue
			}
		}
		body = append(body, line)
	}
	flush()
	return added
}

// markdownTopic renders a Markdown-convention comment into a headerless
// topic whose body feeds the merge stage like any native body would.
func (p *Parser) markdownTopic(ctx *Context, lines []string, lineNumber int) int {
	body := markup.ConvertMarkdown(lines)
	if strings.TrimSpace(body) == "" {
		return 0
	}
	t, err := topic.New(topic.TypeGeneric, "", ctx.currentPackage, body, lineNumber)
	if err != nil {
		return 0
	}
	ctx.addTopic(t)
	return 1
}

// formatBody runs the native formatter over a topic's body lines and
// records any description-list entries for later stages.
func (p *Parser) formatBody(ctx *Context, t *topic.Topic, lines []string) {
	if allBlank(lines) {
		return
	}
	f := markup.NewFormatter(markup.Options{
		SymbolList:   t.IsList,
		FunctionList: t.IsList && t.Type == topic.TypeFunction,
		Settings:     ctx.Settings,
		IndentWidth:  ctx.Language.DefaultIndent,
		CodePrefixes: ctx.Language.CodePrefixes,
	})
	res := f.Format(lines)
	if strings.TrimSpace(res.Body) == "" {
		return
	}
	if err := t.SetBody(res.Body); err != nil {
		return
	}
	if len(res.Definitions) > 0 {
		ctx.listEntries[t] = res.Definitions
	}
}

// splitTitleAttributes strips the recognized attribute suffix from a
// header title. Only "(no summaries)" is honored.
func splitTitleAttributes(title string) (string, bool) {
	lower := strings.ToLower(title)
	if strings.HasSuffix(lower, "(no summaries)") {
		return strings.TrimSpace(title[:len(title)-len("(no summaries)")]), true
	}
	return title, false
}

// hasNativeHeader reports whether any line of the comment is a
// recognized Keyword: Title header.
func hasNativeHeader(lines []string) bool {
	for _, line := range lines {
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if _, _, known := topic.KeywordLookup(m[1]); known {
				return true
			}
		}
	}
	return false
}

// looksLikeMarkdown checks the first non-blank line for Markdown-only
// syntax. Anything ambiguous stays with the native convention.
func looksLikeMarkdown(lines []string) bool {
	for _, line := range lines {
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		return strings.HasPrefix(s, "#") || strings.HasPrefix(s, "```")
	}
	return false
}

func allBlank(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// decorationPattern matches box-drawing filler lines that carry no text.
var decorationPattern = regexp.MustCompile(`^[-=*#~_+|/\\ \t]+$`)

// cleanComment strips comment markers and box decoration, expands tabs
// and trims the shared leading indentation, leaving lines ready for the
// formatter.
func cleanComment(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	copy(out, lines)

	// block delimiters on the first and last line
	out[0] = stripOpenMarker(out[0])
	last := len(out) - 1
	out[last] = stripCloseMarker(out[last])

	// line markers or a javadoc-style * column, whichever the comment uses
	marker := commonLineMarker(out)
	for i, line := range out {
		s := strings.TrimLeft(line, " \t")
		if marker != "" && strings.HasPrefix(s, marker) {
			s = s[len(marker):]
			s = strings.TrimPrefix(s, " ")
		} else if strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "*/") {
			s = strings.TrimPrefix(s, "*")
			s = strings.TrimPrefix(s, " ")
		}
		out[i] = expandTabs(s)
	}

	// decoration-only lines become blank so they never read as content
	for i, line := range out {
		if s := strings.TrimSpace(line); s != "" && len(s) >= 4 && decorationPattern.MatchString(s) {
			out[i] = ""
		}
	}

	out = trimIndent(out)
	return trimBlankEdges(out)
}

func stripOpenMarker(line string) string {
	s := strings.TrimLeft(line, " \t")
	for _, m := range []string{"/**", "/*!", "/*"} {
		if strings.HasPrefix(s, m) {
			rest := s[len(m):]
			// a decorative run of * after the opener is part of the box
			return strings.TrimLeft(rest, "*")
		}
	}
	return line
}

func stripCloseMarker(line string) string {
	s := strings.TrimRight(line, " \t")
	if strings.HasSuffix(s, "*/") {
		s = s[:len(s)-2]
		return strings.TrimRight(s, "*")
	}
	return line
}

// commonLineMarker returns the line-comment marker shared by every
// non-blank line, or "" when the comment is not line-marker styled.
func commonLineMarker(lines []string) string {
	markers := []string{"///", "//!", "//"}
	for _, m := range markers {
		all := true
		any := false
		for _, line := range lines {
			s := strings.TrimLeft(line, " \t")
			if s == "" {
				continue
			}
			any = true
			if !strings.HasPrefix(s, m) {
				all = false
				break
			}
		}
		if all && any {
			return m
		}
	}
	return ""
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, c := range s {
		if c == '\t' {
			n := 4 - col%4
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(c)
		col++
	}
	return sb.String()
}

// trimIndent removes the minimal shared leading space run.
func trimIndent(lines []string) []string {
	min := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if min < 0 || n < min {
			min = n
		}
	}
	if min <= 0 {
		return lines
	}
	for i, line := range lines {
		if len(line) >= min {
			lines[i] = line[min:]
		} else {
			lines[i] = strings.TrimLeft(line, " ")
		}
	}
	return lines
}

func trimBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

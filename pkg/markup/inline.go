package markup

import (
	"regexp"
	"strconv"
	"strings"
)

// Private-use sentinels bracket pre-resolved spans (URLs, emails, image
// references) so the symbol walk cannot re-interpret their punctuation.
const (
	sentinelOpen  = ''
	sentinelClose = ''
)

var (
	urlPattern   = regexp.MustCompile(`\b(?:https?|ftp|file|mailto|news)://?[^\s<>()"]+[^\s<>()".,;:!?']`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	seePattern   = regexp.MustCompile(`\(see\s+([^)]+)\)`)
	callPattern  = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_.:]*\(\)`)
)

// InlineOptions tunes the rich-format walk.
type InlineOptions struct {
	RelaxedCode bool // also wrap bare name() references as inline code
}

// EscapeText escapes markup-significant characters in literal text.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// RichFormatTextBlock converts an accumulated text run into inline markup:
// bold, underline, italic, strikethrough, links, URLs, emails and inline
// images. It operates per text block, not per line, so spans may cross the
// original line breaks.
func RichFormatTextBlock(text string, opts InlineOptions) string {
	var resolved []string

	store := func(rendered string) string {
		resolved = append(resolved, rendered)
		return string(sentinelOpen) + strconv.Itoa(len(resolved)-1) + string(sentinelClose)
	}

	// Pass 1: bracket URLs and emails before any symbol interpretation.
	text = urlPattern.ReplaceAllStringFunc(text, func(m string) string {
		return store("<url>" + EscapeText(m) + "</url>")
	})
	text = emailPattern.ReplaceAllStringFunc(text, func(m string) string {
		return store("<email>" + EscapeText(m) + "</email>")
	})

	// Pass 2: inline image references.
	text = seePattern.ReplaceAllStringFunc(text, func(m string) string {
		target := seePattern.FindStringSubmatch(m)[1]
		return store("<img mode=\"inline\">" + EscapeText(strings.TrimSpace(target)) + "</img>")
	})

	if opts.RelaxedCode {
		text = callPattern.ReplaceAllStringFunc(text, func(m string) string {
			return store("<code type=\"inline\">" + EscapeText(m) + "</code>")
		})
	}

	return walkSymbols([]rune(text), resolved)
}

// state indices for the four exclusive inline styles
const (
	styleBold = iota
	styleUnderline
	styleItalic
	styleStrike
	styleCount
)

var styleTags = [styleCount]struct {
	symbol      string
	open, close string
}{
	styleBold:      {"*", "<b>", "</b>"},
	styleUnderline: {"_", "<u>", "</u>"},
	styleItalic:    {"'", "<i>", "</i>"},
	styleStrike:    {"~~", "<s>", "</s>"},
}

// walkSymbols performs the left-to-right token walk over the sentinel-
// bracketed text, realizing style pairs and link spans.
func walkSymbols(runes []rune, resolved []string) string {
	var out []strings.Builder
	out = append(out, strings.Builder{}) // base output

	cur := func() *strings.Builder { return &out[len(out)-1] }

	var active [styleCount]bool

	i := 0
	for i < len(runes) {
		r := runes[i]

		switch {
		case r == sentinelOpen:
			end := indexRune(runes, i, sentinelClose)
			if end < 0 {
				i = len(runes)
				break
			}
			idx, err := strconv.Atoi(string(runes[i+1 : end]))
			if err == nil && idx >= 0 && idx < len(resolved) {
				cur().WriteString(resolved[idx])
			}
			i = end + 1

		case r == '<':
			consumed, text := tryLinkSpan(runes, i, resolved)
			cur().WriteString(text)
			i += consumed

		case r == '>':
			cur().WriteString("&gt;")
			i++

		case r == '&':
			cur().WriteString("&amp;")
			i++

		case r == '~' && i+1 < len(runes) && runes[i+1] == '~':
			handleStyle(runes, i, 2, styleStrike, &active, cur)
			i += 2

		case r == '*' || r == '_' || r == '\'':
			var style int
			switch r {
			case '*':
				style = styleBold
			case '_':
				style = styleUnderline
			case '\'':
				style = styleItalic
			}

			if style == styleUnderline {
				opened, closed := underlineTransition(runes, i, &active)
				switch {
				case closed:
					captured := out[len(out)-1].String()
					out = out[:len(out)-1]
					if !strings.ContainsAny(captured, " \t") {
						captured = strings.ReplaceAll(captured, "_", " ")
					}
					cur().WriteString("<u>" + captured + "</u>")
				case opened:
					out = append(out, strings.Builder{})
				default:
					cur().WriteRune('_')
				}
				i++
				break
			}

			handleStyle(runes, i, 1, style, &active, cur)
			i++

		default:
			cur().WriteRune(r)
			i++
		}
	}

	// Tolerant close of anything left dangling at end of block: the
	// accumulated partial markup is kept, the opener stays literal only
	// when it never realized.
	if active[styleUnderline] && len(out) > 1 {
		captured := out[len(out)-1].String()
		out = out[:len(out)-1]
		cur().WriteString("_" + captured)
		active[styleUnderline] = false
	}
	for s := styleCount - 1; s >= 0; s-- {
		if active[s] {
			cur().WriteString(styleTags[s].close)
		}
	}

	return out[0].String()
}

// handleStyle resolves one emphasis symbol occurrence: close if the style
// is active and the position qualifies as a closer, open if a matching
// closer exists downstream, otherwise emit the symbol literally.
func handleStyle(runes []rune, i, width, style int, active *[styleCount]bool, cur func() *strings.Builder) bool {
	sym := styleTags[style]

	if active[style] {
		if isCloser(runes, i, width, false) {
			cur().WriteString(sym.close)
			active[style] = false
			return true
		}
		cur().WriteString(EscapeText(sym.symbol))
		return false
	}

	if isOpener(runes, i, width) && hasCloserAhead(runes, i+width, sym.symbol, width) {
		cur().WriteString(sym.open)
		active[style] = true
		return true
	}
	cur().WriteString(EscapeText(sym.symbol))
	return false
}

// underlineTransition decides whether an underscore closes or opens an
// underline span.
func underlineTransition(runes []rune, i int, active *[styleCount]bool) (opened, closed bool) {
	if active[styleUnderline] {
		if isCloser(runes, i, 1, false) {
			active[styleUnderline] = false
			return false, true
		}
		return false, false
	}
	if isOpener(runes, i, 1) && hasCloserAhead(runes, i+1, "_", 1) {
		active[styleUnderline] = true
		return true, false
	}
	return false, false
}

// isOpener reports whether the symbol at i (of the given width) qualifies
// as a possible opening tag: preceded by start of text, whitespace or
// opening punctuation, followed by non-whitespace, and not actually an
// operator like <<, <=, <- or *=.
func isOpener(runes []rune, i, width int) bool {
	if i > 0 {
		p := runes[i-1]
		if !isSpaceRune(p) && !isOpenPunct(p) {
			return false
		}
	}
	next := i + width
	if next >= len(runes) || isSpaceRune(runes[next]) {
		return false
	}
	if runes[i] == '*' && runes[next] == '=' {
		return false
	}
	if runes[i] == '<' && (runes[next] == '<' || runes[next] == '=' || runes[next] == '-') {
		return false
	}
	return true
}

// isCloser reports whether the symbol at i qualifies as a possible closing
// tag: preceded by non-whitespace, followed by end of text, whitespace or
// closing punctuation. Link closes additionally tolerate a trailing plural
// s, es or apostrophe.
func isCloser(runes []rune, i, width int, link bool) bool {
	if i == 0 || isSpaceRune(runes[i-1]) {
		return false
	}
	next := i + width
	if next >= len(runes) {
		return true
	}
	if isSpaceRune(runes[next]) || isClosePunct(runes[next]) {
		return true
	}
	if link {
		rest := string(runes[next:])
		for _, suffix := range []string{"s", "es", "'"} {
			if strings.HasPrefix(rest, suffix) {
				after := next + len(suffix)
				if after >= len(runes) || isSpaceRune(runes[after]) || isClosePunct(runes[after]) {
					return true
				}
			}
		}
	}
	return false
}

// hasCloserAhead scans forward from start for a valid closer of symbol,
// requiring non-empty content and no earlier same-symbol opener: a second
// opener before any closer invalidates the first as literal.
func hasCloserAhead(runes []rune, start int, symbol string, width int) bool {
	sym := []rune(symbol)
	for j := start; j < len(runes); j++ {
		if runes[j] != sym[0] {
			continue
		}
		if width == 2 && (j+1 >= len(runes) || runes[j+1] != sym[1]) {
			continue
		}
		if j == start {
			return false // empty content
		}
		if isCloser(runes, j, width, false) {
			return true
		}
		if isOpener(runes, j, width) {
			return false
		}
	}
	return false
}

// tryLinkSpan resolves an angle-bracket span at i into a link, URL or
// email; spans that fail to resolve fall back to a literal &lt;. It
// returns the number of runes consumed and the markup produced.
func tryLinkSpan(runes []rune, i int, resolved []string) (int, string) {
	if !isOpener(runes, i, 1) {
		return 1, "&lt;"
	}

	// A URL or email inside the brackets was already captured in pass 1;
	// a lone sentinel between < and > stands for the whole span.
	if i+1 < len(runes) && runes[i+1] == sentinelOpen {
		end := indexRune(runes, i+1, sentinelClose)
		if end >= 0 && end+1 < len(runes) && runes[end+1] == '>' {
			idx, err := strconv.Atoi(string(runes[i+2 : end]))
			if err == nil && idx >= 0 && idx < len(resolved) {
				return end - i + 2, resolved[idx]
			}
		}
	}

	for j := i + 1; j < len(runes); j++ {
		r := runes[j]
		if r == '<' || r == '\n' || r == sentinelOpen {
			break
		}
		if r != '>' {
			continue
		}
		if !isCloser(runes, j, 1, true) {
			continue
		}
		content := strings.TrimSpace(string(runes[i+1 : j]))
		if content == "" {
			break
		}
		if emailPattern.MatchString(content) && !strings.ContainsAny(content, " \t") {
			return j - i + 1, "<email>" + EscapeText(content) + "</email>"
		}
		if urlPattern.MatchString(content) && !strings.ContainsAny(content, " \t") {
			return j - i + 1, "<url>" + EscapeText(content) + "</url>"
		}
		return j - i + 1, "<link>" + EscapeText(content) + "</link>"
	}

	return 1, "&lt;"
}

func indexRune(runes []rune, from int, r rune) int {
	for j := from + 1; j < len(runes); j++ {
		if runes[j] == r {
			return j
		}
	}
	return -1
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isOpenPunct(r rune) bool {
	switch r {
	case '(', '[', '{', '"', '\'', '-', '/', ':':
		return true
	}
	return false
}

func isClosePunct(r rune) bool {
	switch r {
	case ')', ']', '}', '"', '.', ',', ';', ':', '!', '?', '\'', '-', '/':
		return true
	}
	return false
}

package cpp

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/tokenizer"
)

// prototypeFromRange rebuilds the declaration text from the exact token
// range a recognizer consumed. Whitespace and comment runs collapse to a
// single space before normalization.
func (fe *FrontEnd) prototypeFromRange(start, end int) string {
	var sb strings.Builder
	space := false
	for i := start; i < end && i < len(fe.tokens); i++ {
		tok := fe.tokens[i]
		switch tok.Kind {
		case tokenizer.KindWhitespace, tokenizer.KindNewline, tokenizer.KindComment:
			space = true
		default:
			if space && sb.Len() > 0 {
				sb.WriteString(" ")
			}
			space = false
			sb.WriteString(tok.Value)
		}
	}
	return NormalizePrototype(sb.String())
}

// protoNoSpaceBefore and protoNoSpaceAfter drive the normalized spacing.
// Commas bind both ways so parameter lists come out as (int a,int b).
var (
	protoNoSpaceBefore = map[string]bool{
		"(": true, ")": true, ",": true, ";": true,
		"[": true, "]": true, "<": true, ">": true,
		"*": true, "&": true, "::": true, ".": true,
	}
	protoNoSpaceAfter = map[string]bool{
		"(": true, "[": true, "<": true, "~": true,
		"::": true, ".": true, ",": true,
	}
)

// NormalizePrototype canonicalizes the spacing of a declaration string.
// Applying it to its own output changes nothing.
func NormalizePrototype(proto string) string {
	words := splitProto(proto)
	var sb strings.Builder
	for i, w := range words {
		if i > 0 && !protoNoSpaceBefore[w] && !protoNoSpaceAfter[words[i-1]] {
			sb.WriteString(" ")
		}
		sb.WriteString(w)
	}
	return sb.String()
}

// splitProto breaks a prototype into identifier-ish words and single
// punctuation marks, fusing :: into one word.
func splitProto(proto string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(proto)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t':
			flush()
		case c == ':' && i+1 < len(runes) && runes[i+1] == ':':
			flush()
			words = append(words, "::")
			i++
		case strings.ContainsRune("()<>[]{},;*&~=:", c):
			flush()
			words = append(words, string(c))
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return words
}

// stripQualifier removes a Class:: qualifier from the name position of a
// normalized prototype, used when a qualified declaration is re-scoped.
func stripQualifier(proto, qualifier string) string {
	return strings.Replace(proto, qualifier+"::", "", 1)
}

// Package tokenizer splits raw source text into a flat token stream. It is
// deliberately shallow: identifiers, single punctuation characters,
// whitespace runs, newlines, literals, comment spans and preprocessor lines
// are all it knows. Everything smarter belongs to a language front end.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lu-zero/ndplus/pkg/lang"
)

// Kind classifies a token
type Kind int

const (
	KindEOF Kind = iota
	KindError
	KindIdentifier
	KindNumber
	KindPunct
	KindWhitespace
	KindNewline
	KindString
	KindChar
	KindComment
	KindPreprocessor
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindError:
		return "ERROR"
	case KindIdentifier:
		return "IDENTIFIER"
	case KindNumber:
		return "NUMBER"
	case KindPunct:
		return "PUNCT"
	case KindWhitespace:
		return "WHITESPACE"
	case KindNewline:
		return "NEWLINE"
	case KindString:
		return "STRING"
	case KindChar:
		return "CHAR"
	case KindComment:
		return "COMMENT"
	case KindPreprocessor:
		return "PREPROCESSOR"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical unit with the line it started on.
type Token struct {
	Kind  Kind
	Value string
	Line  int
	Doc   bool // comment used a doc-comment marker variant
}

func (t Token) String() string {
	if t.Kind == KindPunct {
		return fmt.Sprintf("%s:%q", t.Kind, t.Value)
	}
	return fmt.Sprintf("%s:%s", t.Kind, t.Value)
}

// Tokenizer scans one source text. It is a pure transform: no state
// survives Tokenize.
type Tokenizer struct {
	input     string
	syntax    lang.CommentSyntax
	preproc   bool
	pos       int
	line      int
	width     int
	start     int
	startLine int
	atLineBOL bool // only whitespace seen since the last newline
	tokens    []Token
	maxTokens int
}

// New creates a tokenizer for input using the given language's comment
// delimiters.
func New(input string, l *lang.Language) *Tokenizer {
	const maxTokensLimit = 2000000
	return &Tokenizer{
		input:     input,
		syntax:    l.Syntax,
		preproc:   l.HasPreprocessor,
		line:      1,
		startLine: 1,
		atLineBOL: true,
		tokens:    make([]Token, 0, 1024),
		maxTokens: maxTokensLimit,
	}
}

func (t *Tokenizer) next() rune {
	if t.pos >= len(t.input) {
		t.width = 0
		return 0
	}
	r, w := utf8.DecodeRuneInString(t.input[t.pos:])
	t.width = w
	t.pos += w
	if r == '\n' {
		t.line++
	}
	return r
}

func (t *Tokenizer) backup() {
	t.pos -= t.width
	if t.pos < len(t.input) && t.input[t.pos] == '\n' {
		t.line--
	}
	t.width = 0
}

func (t *Tokenizer) peek() rune {
	r := t.next()
	if r != 0 {
		t.backup()
	}
	return r
}

func (t *Tokenizer) emit(kind Kind) {
	t.emitDoc(kind, false)
}

func (t *Tokenizer) emitDoc(kind Kind, doc bool) {
	if len(t.tokens) >= t.maxTokens {
		return
	}
	t.tokens = append(t.tokens, Token{
		Kind:  kind,
		Value: t.input[t.start:t.pos],
		Line:  t.startLine,
		Doc:   doc,
	})
	t.start = t.pos
	t.startLine = t.line
}

// hasPrefix reports whether the unconsumed input starts with s.
func (t *Tokenizer) hasPrefix(s string) bool {
	return strings.HasPrefix(t.input[t.pos:], s)
}

// Tokenize scans the whole input. It never fails: malformed input becomes
// error tokens or early-terminated literals, and a stuck position is
// force-advanced so the scan always reaches EOF.
func (t *Tokenizer) Tokenize() []Token {
	for t.pos < len(t.input) && len(t.tokens) < t.maxTokens {
		oldPos := t.pos

		switch {
		case t.scanComment():
			t.atLineBOL = false
		case t.preproc && t.atLineBOL && t.peek() == '#':
			t.scanPreprocessor()
			t.atLineBOL = false
		default:
			r := t.next()
			switch {
			case r == '\n':
				t.emit(KindNewline)
				t.atLineBOL = true
			case unicode.IsSpace(r):
				t.scanWhitespace()
			case r == '"':
				t.scanString('"')
				t.atLineBOL = false
			case r == '\'':
				t.scanString('\'')
				t.atLineBOL = false
			case unicode.IsLetter(r) || r == '_':
				t.scanIdentifier()
				t.atLineBOL = false
			case unicode.IsDigit(r):
				t.scanNumber()
				t.atLineBOL = false
			default:
				t.emit(KindPunct)
				t.atLineBOL = false
			}
		}

		if t.pos == oldPos {
			t.pos++ // force advance, a stuck scanner must not hang
			t.emit(KindError)
		}
	}

	t.tokens = append(t.tokens, Token{Kind: KindEOF, Line: t.line})
	return t.tokens
}

// scanWhitespace consumes a run of non-newline whitespace. The leading rune
// is already consumed.
func (t *Tokenizer) scanWhitespace() {
	for {
		r := t.peek()
		if r == 0 || r == '\n' || !unicode.IsSpace(r) {
			break
		}
		t.next()
	}
	t.emit(KindWhitespace)
}

// scanComment tries each comment marker at the current position. Doc
// variants are checked before their plain prefixes so "///" wins over "//".
func (t *Tokenizer) scanComment() bool {
	for _, m := range t.syntax.DocLine {
		if t.hasPrefix(m) {
			t.pos += len(m)
			t.scanToEOL()
			t.emitDoc(KindComment, true)
			return true
		}
	}
	for i, open := range t.syntax.DocBlock {
		if t.hasPrefix(open) {
			close := t.blockCloser(i, open)
			t.pos += len(open)
			t.scanBlock(close)
			t.emitDoc(KindComment, true)
			return true
		}
	}
	for _, m := range t.syntax.LineMarkers {
		if t.hasPrefix(m) {
			t.pos += len(m)
			t.scanToEOL()
			t.emit(KindComment)
			return true
		}
	}
	for _, pair := range t.syntax.BlockMarkers {
		if t.hasPrefix(pair.Open) {
			t.pos += len(pair.Open)
			t.scanBlock(pair.Close)
			t.emit(KindComment)
			return true
		}
	}
	return false
}

// blockCloser finds the closing marker for a doc-block opener by matching
// it against the plain block pair it extends.
func (t *Tokenizer) blockCloser(i int, open string) string {
	for _, pair := range t.syntax.BlockMarkers {
		if strings.HasPrefix(open, pair.Open) {
			return pair.Close
		}
	}
	if i < len(t.syntax.BlockMarkers) {
		return t.syntax.BlockMarkers[i].Close
	}
	return "*/"
}

// scanToEOL consumes up to but not including the next newline, counting
// line numbers as it goes.
func (t *Tokenizer) scanToEOL() {
	for {
		r := t.next()
		if r == 0 {
			return
		}
		if r == '\n' {
			t.backup()
			return
		}
	}
}

// scanBlock consumes until the closing marker; an unterminated block runs
// to end of file rather than hanging.
func (t *Tokenizer) scanBlock(close string) {
	for t.pos < len(t.input) {
		if t.hasPrefix(close) {
			t.line += strings.Count(t.input[t.pos:t.pos+len(close)], "\n")
			t.pos += len(close)
			return
		}
		t.next()
	}
}

// scanPreprocessor consumes a whole directive line, honoring backslash
// continuations.
func (t *Tokenizer) scanPreprocessor() {
	for {
		r := t.next()
		if r == 0 {
			break
		}
		if r == '\\' {
			// a continuation keeps the directive going past the newline
			if t.peek() == '\n' {
				t.next()
				continue
			}
			if t.peek() == '\r' {
				t.next()
				if t.peek() == '\n' {
					t.next()
				}
				continue
			}
		}
		if r == '\n' {
			t.backup()
			break
		}
	}
	t.emit(KindPreprocessor)
}

// scanString consumes a quoted literal. The opening delimiter is already
// consumed. An unterminated literal ends at the line break so a stray
// quote cannot swallow the rest of the file.
func (t *Tokenizer) scanString(delim rune) {
	for {
		r := t.next()
		if r == 0 {
			break
		}
		if r == '\n' {
			t.backup()
			break
		}
		if r == delim {
			break
		}
		if r == '\\' {
			if t.peek() != 0 && t.peek() != '\n' {
				t.next()
			}
		}
	}
	if delim == '\'' {
		t.emit(KindChar)
	} else {
		t.emit(KindString)
	}
}

func (t *Tokenizer) scanIdentifier() {
	for {
		r := t.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		t.next()
	}
	t.emit(KindIdentifier)
}

func (t *Tokenizer) scanNumber() {
	for {
		r := t.peek()
		if !unicode.IsDigit(r) && !unicode.IsLetter(r) && r != '.' {
			break
		}
		t.next()
	}
	t.emit(KindNumber)
}

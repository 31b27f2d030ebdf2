// Package cpp implements the C++ language front end: a token-driven
// recognizer for declaration statements that emits auto-generated topics
// and a chronological scope record.
package cpp

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/lang"
	"github.com/lu-zero/ndplus/pkg/tokenizer"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// Callbacks receive comments and class hierarchy edges as the front end
// walks the token stream.
type Callbacks interface {
	// OnComment is invoked for every comment found at a statement
	// boundary. It returns how many topics the comment produced.
	OnComment(lines []string, lineNumber int, docStyle bool) int

	// OnClass registers a class symbol with the hierarchy.
	OnClass(classSymbol string)

	// OnClassParent registers an inheritance edge. scope is the package
	// the class was declared in, using the scopes visible there.
	OnClassParent(classSymbol, parentSymbol, scope string, using []string)
}

// Result is what one front-end pass over a file produces.
type Result struct {
	AutoTopics  []*topic.Topic
	ScopeRecord []topic.ScopeChange
}

// scopeFrame is one entry of the lexical scope stack.
type scopeFrame struct {
	pkg       string // package visible inside this scope
	closing   string // symbol expected when the scope closes
	className string // set for class/struct/union scopes
	isLinkage bool
	using     []string
}

// FrontEnd recognizes C++ declaration statements one at a time.
type FrontEnd struct {
	language *lang.Language
	cb       Callbacks

	tokens []tokenizer.Token
	pos    int

	scopes   []scopeFrame
	topics   []*topic.Topic
	record   []topic.ScopeChange
	foldable map[*topic.Topic]bool

	// recognizers are tried in order; the first that consumes tokens
	// wins, and a failed try never leaves partial state behind.
	recognizers []func() bool
}

// New builds a front end for one file.
func New(language *lang.Language, cb Callbacks) *FrontEnd {
	fe := &FrontEnd{language: language, cb: cb}
	fe.recognizers = []func() bool{
		fe.tryUsing,
		fe.tryNamespace,
		fe.tryExternLinkage,
		fe.tryTypedef,
		fe.tryFriend,
		fe.tryClass,
		fe.tryAccessLabel,
		fe.tryFunction,
		fe.tryEnum,
		fe.tryVariable,
	}
	return fe
}

// Parse walks the whole file and returns its auto-topics and scope
// record. Statements that match no recognizer are skipped wholesale.
func (fe *FrontEnd) Parse(source string) Result {
	fe.tokens = tokenizer.New(source, fe.language).Tokenize()
	fe.pos = 0
	fe.scopes = []scopeFrame{{}}
	fe.topics = nil
	fe.record = nil
	fe.foldable = make(map[*topic.Topic]bool)

	for !fe.atEnd() {
		fe.skipBlank()
		if fe.atEnd() {
			break
		}
		tok := fe.peek()
		switch {
		case tok.Kind == tokenizer.KindPreprocessor:
			fe.advance()
		case tok.Kind == tokenizer.KindPunct && tok.Value == "{":
			fe.advance()
			fe.pushScope(scopeFrame{pkg: fe.currentPackage(), closing: fe.currentPackage()})
		case tok.Kind == tokenizer.KindPunct && tok.Value == "}":
			fe.advance()
			fe.popScope(tok.Line)
			fe.skipOptionalSemicolon()
		default:
			if !fe.dispatch() {
				fe.skipStatement()
			}
		}
	}

	fe.foldStructs()
	return Result{AutoTopics: fe.topics, ScopeRecord: fe.record}
}

// dispatch tries every recognizer in priority order.
func (fe *FrontEnd) dispatch() bool {
	for _, try := range fe.recognizers {
		if try() {
			return true
		}
	}
	return false
}

// --- scope stack ---

func (fe *FrontEnd) top() *scopeFrame {
	return &fe.scopes[len(fe.scopes)-1]
}

func (fe *FrontEnd) currentPackage() string {
	return fe.top().pkg
}

func (fe *FrontEnd) currentClass() string {
	for i := len(fe.scopes) - 1; i >= 0; i-- {
		if fe.scopes[i].className != "" {
			return fe.scopes[i].className
		}
	}
	return ""
}

func (fe *FrontEnd) currentUsing() []string {
	var all []string
	for i := range fe.scopes {
		all = append(all, fe.scopes[i].using...)
	}
	return all
}

// pushScope enters a scope, recording a scope change when the visible
// package differs from the enclosing one.
func (fe *FrontEnd) pushScope(frame scopeFrame) {
	prev := fe.currentPackage()
	fe.scopes = append(fe.scopes, frame)
	if frame.pkg != prev {
		fe.recordScope(fe.line(), frame.pkg)
	}
}

// popScope leaves the innermost scope. The expected closing symbol was
// remembered at push time; a mismatch means braces went unbalanced
// somewhere, so the stack is left alone beyond the single pop.
func (fe *FrontEnd) popScope(line int) {
	if len(fe.scopes) <= 1 {
		return
	}
	closed := fe.scopes[len(fe.scopes)-1]
	fe.scopes = fe.scopes[:len(fe.scopes)-1]
	if closed.pkg != fe.currentPackage() {
		fe.recordScope(line, fe.currentPackage())
	}
}

func (fe *FrontEnd) recordScope(line int, pkg string) {
	fe.record = append(fe.record, topic.ScopeChange{Line: line, Scope: pkg})
}

func (fe *FrontEnd) addTopic(t *topic.Topic) {
	t.IsAuto = true
	t.Using = append(t.Using, fe.currentUsing()...)
	fe.topics = append(fe.topics, t)
}

// --- token cursor ---

func (fe *FrontEnd) atEnd() bool {
	return fe.pos >= len(fe.tokens) || fe.tokens[fe.pos].Kind == tokenizer.KindEOF
}

func (fe *FrontEnd) peek() tokenizer.Token {
	if fe.atEnd() {
		return tokenizer.Token{Kind: tokenizer.KindEOF}
	}
	return fe.tokens[fe.pos]
}

func (fe *FrontEnd) advance() tokenizer.Token {
	tok := fe.peek()
	if !fe.atEnd() {
		fe.pos++
	}
	return tok
}

func (fe *FrontEnd) line() int {
	if fe.atEnd() {
		if len(fe.tokens) > 0 {
			return fe.tokens[len(fe.tokens)-1].Line
		}
		return 1
	}
	return fe.tokens[fe.pos].Line
}

// skipBlank consumes whitespace, newlines and comments between
// statements. Consecutive line comments with no blank line between them
// form a single comment dispatched to OnComment as one unit.
func (fe *FrontEnd) skipBlank() {
	var lines []string
	var firstLine, lastLine int
	var doc bool

	flush := func() {
		if len(lines) > 0 && fe.cb != nil {
			fe.cb.OnComment(lines, firstLine, doc)
		}
		lines = nil
	}

	for !fe.atEnd() {
		tok := fe.peek()
		switch tok.Kind {
		case tokenizer.KindWhitespace, tokenizer.KindNewline:
			fe.advance()
		case tokenizer.KindComment:
			if len(lines) > 0 && (tok.Line != lastLine+1 || tok.Doc != doc) {
				flush()
			}
			if len(lines) == 0 {
				firstLine = tok.Line
				doc = tok.Doc
			}
			lines = append(lines, strings.Split(tok.Value, "\n")...)
			lastLine = tok.Line + strings.Count(tok.Value, "\n")
			fe.advance()
		default:
			flush()
			return
		}
	}
	flush()
}

// skipSpace consumes whitespace, newlines and comments inside a
// statement without reporting the comments.
func (fe *FrontEnd) skipSpace() {
	for !fe.atEnd() {
		switch fe.peek().Kind {
		case tokenizer.KindWhitespace, tokenizer.KindNewline, tokenizer.KindComment:
			fe.advance()
		default:
			return
		}
	}
}

func (fe *FrontEnd) peekWord() string {
	fe.skipSpace()
	tok := fe.peek()
	if tok.Kind == tokenizer.KindIdentifier {
		return tok.Value
	}
	return ""
}

func (fe *FrontEnd) matchWord(word string) bool {
	fe.skipSpace()
	tok := fe.peek()
	if tok.Kind == tokenizer.KindIdentifier && tok.Value == word {
		fe.advance()
		return true
	}
	return false
}

func (fe *FrontEnd) matchPunct(s string) bool {
	fe.skipSpace()
	tok := fe.peek()
	if tok.Kind == tokenizer.KindPunct && tok.Value == s {
		fe.advance()
		return true
	}
	return false
}

func (fe *FrontEnd) skipOptionalSemicolon() {
	fe.matchPunct(";")
}

// skipStatement throws away one unrecognized statement: everything up to
// a top-level semicolon or past one balanced brace group.
func (fe *FrontEnd) skipStatement() {
	depth := 0
	for !fe.atEnd() {
		tok := fe.advance()
		if tok.Kind != tokenizer.KindPunct {
			continue
		}
		switch tok.Value {
		case ";":
			if depth == 0 {
				return
			}
		case "{":
			depth++
		case "}":
			depth--
			if depth <= 0 {
				fe.skipOptionalSemicolon()
				return
			}
		}
	}
}

// skipBalanced consumes a balanced group assuming the cursor sits on the
// opening token.
func (fe *FrontEnd) skipBalanced(open, close string) {
	if !fe.matchPunct(open) {
		return
	}
	depth := 1
	for !fe.atEnd() && depth > 0 {
		tok := fe.advance()
		if tok.Kind != tokenizer.KindPunct {
			continue
		}
		switch tok.Value {
		case open:
			depth++
		case close:
			depth--
		}
	}
}

// skipTemplatePrefix consumes a leading template<...> clause so the
// declaration behind it can be recognized normally.
func (fe *FrontEnd) skipTemplatePrefix() {
	for fe.peekWord() == "template" {
		mark := fe.pos
		fe.advance()
		fe.skipSpace()
		if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "<" {
			fe.skipAngles()
		} else {
			fe.pos = mark
			return
		}
	}
}

// skipAngles consumes a balanced angle-bracket group, tolerating shift
// operators by counting single characters only.
func (fe *FrontEnd) skipAngles() {
	if !fe.matchPunct("<") {
		return
	}
	depth := 1
	for !fe.atEnd() && depth > 0 {
		tok := fe.advance()
		if tok.Kind != tokenizer.KindPunct {
			continue
		}
		switch tok.Value {
		case "<":
			depth++
		case ">":
			depth--
		case ";", "{":
			// runaway template clause, bail out
			fe.pos--
			return
		}
	}
}

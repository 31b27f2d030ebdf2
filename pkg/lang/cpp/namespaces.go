package cpp

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/tokenizer"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// tryUsing recognizes using-namespace and using-declaration statements.
// Both add a scope to the using list of the enclosing frame; alias
// declarations (using X = Y;) are consumed without effect.
func (fe *FrontEnd) tryUsing() bool {
	mark := fe.pos
	if !fe.matchWord("using") {
		return false
	}
	isNamespace := fe.matchWord("namespace")

	name, ok := fe.readQualifiedName()
	if !ok {
		fe.pos = mark
		return false
	}
	fe.skipSpace()
	if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "=" {
		// alias declaration, the right side names a type not a scope
		fe.skipStatement()
		return true
	}
	if !fe.matchPunct(";") {
		fe.pos = mark
		return false
	}

	scope := topic.NormalizeSymbol(name)
	if !isNamespace {
		// using A::B::c imports the member's scope
		if i := strings.LastIndex(scope, "."); i >= 0 {
			scope = scope[:i]
		} else {
			return true
		}
	}
	fe.top().using = append(fe.top().using, scope)
	return true
}

// tryNamespace recognizes namespace blocks, including the nested
// namespace A::B { } form. Namespaces produce scope changes but no topic
// of their own.
func (fe *FrontEnd) tryNamespace() bool {
	mark := fe.pos
	if !fe.matchWord("namespace") {
		return false
	}

	// anonymous namespace keeps the enclosing package
	fe.skipSpace()
	if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "{" {
		fe.advance()
		fe.pushScope(scopeFrame{pkg: fe.currentPackage(), closing: fe.currentPackage()})
		return true
	}

	name, ok := fe.readQualifiedName()
	if !ok {
		fe.pos = mark
		return false
	}
	if !fe.matchPunct("{") {
		// namespace alias or malformed, consume through the semicolon
		fe.skipStatement()
		return true
	}

	pkg := topic.JoinSymbols(fe.currentPackage(), topic.NormalizeSymbol(name))
	fe.pushScope(scopeFrame{pkg: pkg, closing: pkg})
	return true
}

// tryExternLinkage recognizes extern "C" blocks and single declarations.
// A linkage block opens a scope that keeps the enclosing package.
func (fe *FrontEnd) tryExternLinkage() bool {
	mark := fe.pos
	if !fe.matchWord("extern") {
		return false
	}
	fe.skipSpace()
	if fe.peek().Kind != tokenizer.KindString {
		fe.pos = mark
		return false
	}
	fe.advance()
	fe.skipSpace()
	if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "{" {
		fe.advance()
		fe.pushScope(scopeFrame{
			pkg:       fe.currentPackage(),
			closing:   fe.currentPackage(),
			isLinkage: true,
		})
		return true
	}
	// extern "C" declaration; re-dispatch the remainder as a statement
	if !fe.dispatch() {
		fe.skipStatement()
	}
	return true
}

// tryTypedef consumes typedef statements without producing a topic.
func (fe *FrontEnd) tryTypedef() bool {
	if fe.peekWord() != "typedef" {
		return false
	}
	fe.skipStatement()
	return true
}

// tryFriend consumes friend declarations.
func (fe *FrontEnd) tryFriend() bool {
	if fe.peekWord() != "friend" {
		return false
	}
	fe.skipStatement()
	return true
}

// tryAccessLabel consumes public:/protected:/private: labels.
func (fe *FrontEnd) tryAccessLabel() bool {
	word := fe.peekWord()
	if word != "public" && word != "protected" && word != "private" {
		return false
	}
	mark := fe.pos
	fe.advance()
	if !fe.matchPunct(":") {
		fe.pos = mark
		return false
	}
	// a second colon means a qualified name, not a label
	fe.skipSpace()
	if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == ":" {
		fe.pos = mark
		return false
	}
	return true
}

// readQualifiedName reads an identifier optionally joined by :: pairs,
// returning the raw text as written.
func (fe *FrontEnd) readQualifiedName() (string, bool) {
	fe.skipSpace()
	if fe.peek().Kind != tokenizer.KindIdentifier {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(fe.advance().Value)
	for {
		mark := fe.pos
		fe.skipSpace()
		if !fe.punctPairAhead(":", ":") {
			fe.pos = mark
			break
		}
		fe.advance()
		fe.advance()
		fe.skipSpace()
		if fe.peek().Kind != tokenizer.KindIdentifier {
			fe.pos = mark
			break
		}
		sb.WriteString("::")
		sb.WriteString(fe.advance().Value)
	}
	return sb.String(), true
}

// punctPairAhead reports whether the next two tokens are the given
// punctuation characters with no gap between them.
func (fe *FrontEnd) punctPairAhead(a, b string) bool {
	if fe.pos+1 >= len(fe.tokens) {
		return false
	}
	first, second := fe.tokens[fe.pos], fe.tokens[fe.pos+1]
	return first.Kind == tokenizer.KindPunct && first.Value == a &&
		second.Kind == tokenizer.KindPunct && second.Value == b
}

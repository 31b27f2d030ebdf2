package cpp

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/tokenizer"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// tryVariable recognizes variable and constant declarations, one topic
// per declarator. It runs last, after every other recognizer gave up.
func (fe *FrontEnd) tryVariable() bool {
	mark := fe.pos
	start := fe.pos

	isConst := false
	for {
		word := fe.peekWord()
		switch word {
		case "static", "extern", "mutable", "inline", "thread_local", "volatile":
			fe.advance()
		case "const", "constexpr":
			isConst = true
			fe.advance()
		default:
			goto typeName
		}
	}

typeName:
	typeWords, ok := fe.readTypeWords()
	if !ok || len(typeWords) < 2 {
		fe.pos = mark
		return false
	}

	// the last identifier chain is the first declarator's name
	fe.skipSpace()
	tok := fe.peek()
	if tok.Kind != tokenizer.KindPunct {
		fe.pos = mark
		return false
	}
	switch tok.Value {
	case ";", "=", ",", "[":
	default:
		fe.pos = mark
		return false
	}

	kind := topic.TypeVariable
	if isConst {
		kind = topic.TypeConstant
	}
	line := fe.tokens[start].Line
	baseType := strings.Join(typeWords[:len(typeWords)-1], " ")

	names := []string{typeWords[len(typeWords)-1]}
	protoEnd := fe.pos

	// consume the rest of the statement, collecting extra declarators
	depth := 0
	for !fe.atEnd() {
		tok = fe.peek()
		if tok.Kind == tokenizer.KindPunct {
			switch tok.Value {
			case "(", "{", "[", "<":
				depth++
			case ")", "}", "]", ">":
				depth--
			case ",":
				if depth == 0 {
					fe.advance()
					if name, ok := fe.readQualifiedName(); ok {
						names = append(names, name)
					}
					continue
				}
			case ";":
				if depth == 0 {
					fe.advance()
					fe.emitVariables(kind, names, baseType, line, start, protoEnd)
					return true
				}
			}
		}
		fe.advance()
	}
	fe.pos = mark
	return false
}

// emitVariables creates one topic per declarator. The first keeps the
// reconstructed prototype; the rest rebuild theirs from the shared type.
func (fe *FrontEnd) emitVariables(kind topic.Type, names []string, baseType string, line, start, protoEnd int) {
	for i, name := range names {
		t, err := topic.New(kind, topic.NormalizeSymbol(name), fe.currentPackage(), "", line)
		if err != nil {
			continue
		}
		if i == 0 {
			t.Prototype = fe.prototypeFromRange(start, protoEnd)
		} else {
			t.Prototype = NormalizePrototype(baseType + " " + name)
		}
		fe.addTopic(t)
	}
}

// readTypeWords collects the identifier chains and pointer decoration of
// a declaration up to the declarator boundary, returning them as words.
// The final word is the declarator name.
func (fe *FrontEnd) readTypeWords() ([]string, bool) {
	var words []string
	for {
		fe.skipSpace()
		tok := fe.peek()
		switch {
		case tok.Kind == tokenizer.KindIdentifier:
			name, ok := fe.readQualifiedName()
			if !ok {
				return nil, false
			}
			fe.skipSpace()
			if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "<" {
				fe.skipAngles()
			}
			words = append(words, name)
		case tok.Kind == tokenizer.KindPunct && (tok.Value == "*" || tok.Value == "&"):
			fe.advance()
			if len(words) == 0 {
				return nil, false
			}
			words[len(words)-1] += tok.Value
		default:
			if len(words) == 0 {
				return nil, false
			}
			return words, true
		}
	}
}

package cpp

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/tokenizer"
	"github.com/lu-zero/ndplus/pkg/topic"
)

var functionSpecifiers = map[string]bool{
	"static":    true,
	"inline":    true,
	"virtual":   true,
	"explicit":  true,
	"constexpr": true,
	"extern":    true,
	"friend":    false, // handled by its own recognizer first
}

// tryFunction recognizes function, method, constructor, destructor and
// operator declarations. A failed match restores the cursor untouched.
func (fe *FrontEnd) tryFunction() bool {
	mark := fe.pos
	fe.skipTemplatePrefix()
	start := fe.pos

	head, ok := fe.readFunctionHead()
	if !ok {
		fe.pos = mark
		return false
	}

	// constructors and destructors have no return type; anything else
	// without one is not a function declaration
	if !head.hasReturnType {
		simple := strings.TrimPrefix(head.lastSegment, "~")
		if simple != fe.currentClass() && simple != head.qualifierTail() {
			fe.pos = mark
			return false
		}
	}

	fe.skipSpace()
	if fe.peek().Kind != tokenizer.KindPunct || fe.peek().Value != "(" {
		fe.pos = mark
		return false
	}
	fe.skipBalanced("(", ")")

	// trailing qualifiers and pure/default/delete specifiers
	for {
		word := fe.peekWord()
		if word == "const" || word == "noexcept" || word == "override" || word == "final" || word == "volatile" {
			fe.advance()
			continue
		}
		break
	}
	fe.skipSpace()
	if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "=" {
		fe.advance()
		fe.skipSpace()
		fe.advance() // 0, default or delete
	}
	fe.skipSpace()
	protoEnd := fe.pos
	tok := fe.peek()
	switch {
	case tok.Kind == tokenizer.KindPunct && tok.Value == ";":
		fe.advance()
	case tok.Kind == tokenizer.KindPunct && tok.Value == "{":
		fe.skipBalanced("{", "}")
	case tok.Kind == tokenizer.KindPunct && tok.Value == ":":
		// constructor initializer list runs to the body
		fe.skipToBody()
	default:
		fe.pos = mark
		return false
	}

	line := fe.tokens[start].Line
	proto := fe.prototypeFromRange(start, protoEnd)

	pkg := fe.currentPackage()
	if head.qualifier != "" {
		// Class::Method declared out of line is re-scoped to the
		// qualifier, and the qualifier leaves the prototype
		pkg = topic.JoinSymbols(pkg, topic.NormalizeSymbol(head.qualifier))
		proto = stripQualifier(proto, head.qualifier)
	}

	t, err := topic.New(topic.TypeFunction, head.lastSegment, pkg, "", line)
	if err != nil {
		fe.pos = mark
		return false
	}
	t.Prototype = proto
	fe.addTopic(t)
	return true
}

// functionHead is what precedes the parameter list: specifiers, an
// optional return type and the (possibly qualified) name.
type functionHead struct {
	hasReturnType bool
	qualifier     string // Class or A::B qualifier before the final name
	lastSegment   string // bare name, ~ kept for destructors
}

// qualifierTail returns the last segment of the qualifier, which a
// qualified constructor name must match.
func (h functionHead) qualifierTail() string {
	if i := strings.LastIndex(h.qualifier, "::"); i >= 0 {
		return h.qualifier[i+2:]
	}
	return h.qualifier
}

// readFunctionHead consumes everything up to the opening parenthesis,
// classifying the final identifier chain as the name and everything
// before it as the return type.
func (fe *FrontEnd) readFunctionHead() (functionHead, bool) {
	var head functionHead

	for fe.peekWord() != "" && functionSpecifiers[fe.peekWord()] {
		fe.advance()
	}

	// collect identifier chains until the ( that starts the parameters;
	// the chain immediately before it is the function name
	sawType := false
	var segments []string
	tilde := false

	for {
		fe.skipSpace()
		tok := fe.peek()
		switch {
		case tok.Kind == tokenizer.KindIdentifier:
			if len(segments) > 0 {
				// a fresh identifier after a completed chain means the
				// previous chain was the return type
				sawType = true
				segments = segments[:0]
				tilde = false
			}
			if tok.Value == "operator" {
				fe.advance()
				name, ok := fe.readOperatorName()
				if !ok {
					return head, false
				}
				segments = append(segments, name)
				head.hasReturnType = sawType
				head.finish(segments, tilde)
				return head, true
			}
			segments = append(segments, fe.advance().Value)
			fe.skipSpace()
			if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "<" {
				fe.skipAngles()
			}
			for fe.punctPairAhead(":", ":") {
				fe.advance()
				fe.advance()
				fe.skipSpace()
				if fe.peek().Kind == tokenizer.KindIdentifier {
					if fe.peek().Value == "operator" {
						fe.advance()
						name, ok := fe.readOperatorName()
						if !ok {
							return head, false
						}
						segments = append(segments, name)
						head.hasReturnType = sawType
						head.finish(segments, tilde)
						return head, true
					}
					segments = append(segments, fe.advance().Value)
					fe.skipSpace()
					if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "<" {
						fe.skipAngles()
					}
				} else if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "~" {
					fe.advance()
					fe.skipSpace()
					if fe.peek().Kind != tokenizer.KindIdentifier {
						return head, false
					}
					tilde = true
					segments = append(segments, fe.advance().Value)
				} else {
					return head, false
				}
			}
		case tok.Kind == tokenizer.KindPunct && (tok.Value == "*" || tok.Value == "&"):
			// pointer/reference decoration belongs to the return type
			sawType = true
			fe.advance()
		case tok.Kind == tokenizer.KindPunct && tok.Value == "~":
			fe.advance()
			fe.skipSpace()
			if fe.peek().Kind != tokenizer.KindIdentifier {
				return head, false
			}
			if len(segments) > 0 {
				sawType = true
				segments = segments[:0]
			}
			tilde = true
			segments = append(segments, fe.advance().Value)
		case tok.Kind == tokenizer.KindPunct && tok.Value == "(":
			if len(segments) == 0 {
				return head, false
			}
			head.hasReturnType = sawType
			head.finish(segments, tilde)
			return head, true
		default:
			return head, false
		}
	}
}

// finish splits the collected chain into qualifier and name.
func (h *functionHead) finish(segments []string, tilde bool) {
	last := segments[len(segments)-1]
	if tilde {
		last = "~" + last
	}
	h.lastSegment = last
	if len(segments) > 1 {
		h.qualifier = strings.Join(segments[:len(segments)-1], "::")
	}
}

// readOperatorName reads the symbol tokens after the operator keyword,
// up to but not including the parameter list.
func (fe *FrontEnd) readOperatorName() (string, bool) {
	fe.skipSpace()
	var sb strings.Builder
	sb.WriteString("operator")

	// conversion operators name a type instead of a symbol
	if fe.peek().Kind == tokenizer.KindIdentifier {
		sb.WriteString(" ")
		sb.WriteString(fe.advance().Value)
		return sb.String(), true
	}
	for {
		tok := fe.peek()
		if tok.Kind != tokenizer.KindPunct || tok.Value == "(" {
			break
		}
		sb.WriteString(fe.advance().Value)
	}
	// operator() spells its name with the parentheses pair
	if fe.punctPairAhead("(", ")") {
		fe.advance()
		fe.advance()
		sb.WriteString("()")
	}
	if sb.Len() == len("operator") {
		return "", false
	}
	return sb.String(), true
}

// skipToBody consumes a constructor initializer list and the body that
// follows it.
func (fe *FrontEnd) skipToBody() {
	for !fe.atEnd() {
		tok := fe.peek()
		if tok.Kind == tokenizer.KindPunct && tok.Value == "{" {
			fe.skipBalanced("{", "}")
			return
		}
		if tok.Kind == tokenizer.KindPunct && tok.Value == ";" {
			fe.advance()
			return
		}
		if tok.Kind == tokenizer.KindPunct && tok.Value == "(" {
			fe.skipBalanced("(", ")")
			continue
		}
		fe.advance()
	}
}

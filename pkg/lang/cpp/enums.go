package cpp

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/tokenizer"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// tryEnum recognizes plain and scoped enum definitions, collecting each
// enumerator as an element. Trailing comments on an enumerator's line
// become its description.
func (fe *FrontEnd) tryEnum() bool {
	mark := fe.pos
	if !fe.matchWord("enum") {
		return false
	}
	start := fe.pos - 1
	if !fe.matchWord("class") {
		fe.matchWord("struct")
	}

	fe.skipSpace()
	name := ""
	if fe.peek().Kind == tokenizer.KindIdentifier {
		name = fe.advance().Value
	}

	// underlying type
	if fe.matchPunct(":") {
		for !fe.atEnd() {
			tok := fe.peek()
			if tok.Kind == tokenizer.KindPunct && (tok.Value == "{" || tok.Value == ";") {
				break
			}
			fe.advance()
		}
	}

	fe.skipSpace()
	tok := fe.peek()
	if tok.Kind == tokenizer.KindPunct && tok.Value == ";" {
		fe.advance()
		return true // forward declaration
	}
	if tok.Kind != tokenizer.KindPunct || tok.Value != "{" {
		fe.pos = mark
		return false
	}
	protoEnd := fe.pos
	fe.advance()

	elements := fe.readEnumerators()
	fe.skipOptionalSemicolon()

	if name == "" {
		// anonymous enums document nothing by themselves
		return true
	}

	line := fe.tokens[start].Line
	t, err := topic.New(topic.TypeEnumeration, name, fe.currentPackage(), "", line)
	if err != nil {
		fe.pos = mark
		return false
	}
	t.Prototype = fe.prototypeFromRange(start, protoEnd)
	t.Elements = elements
	fe.addTopic(t)
	return true
}

// readEnumerators walks the enum body, pairing each enumerator with the
// comment that follows it on the same line, if any.
func (fe *FrontEnd) readEnumerators() []topic.Element {
	var elements []topic.Element
	for !fe.atEnd() {
		fe.skipSpace()
		tok := fe.peek()
		if tok.Kind == tokenizer.KindPunct && tok.Value == "}" {
			fe.advance()
			return elements
		}
		if tok.Kind != tokenizer.KindIdentifier {
			fe.advance()
			continue
		}
		name := fe.advance().Value
		nameLine := tok.Line
		desc := ""

		// consume the initializer and the separator, watching for a
		// same-line comment along the way
		depth := 0
		for !fe.atEnd() {
			tok = fe.peek()
			if tok.Kind == tokenizer.KindComment && tok.Line == nameLine && desc == "" {
				desc = cleanTrailingComment(tok.Value)
				fe.advance()
				continue
			}
			if tok.Kind == tokenizer.KindPunct {
				switch tok.Value {
				case "(", "{", "<":
					depth++
				case ")", ">":
					depth--
				case "}":
					if depth == 0 {
						elements = append(elements, topic.Element{Name: name, Description: desc})
						fe.advance()
						return elements
					}
					depth--
				case ",":
					if depth == 0 {
						fe.advance()
						// a comment after the comma still describes
						// the enumerator it trails
						fe.skipInlineSpace()
						if c := fe.peek(); c.Kind == tokenizer.KindComment && c.Line == nameLine && desc == "" {
							desc = cleanTrailingComment(c.Value)
							fe.advance()
						}
						goto next
					}
				}
			}
			fe.advance()
		}
	next:
		elements = append(elements, topic.Element{Name: name, Description: desc})
	}
	return elements
}

// cleanTrailingComment strips comment markers and padding from a
// trailing one-line comment.
func cleanTrailingComment(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "///"), strings.HasPrefix(s, "//!"):
		s = s[3:]
	case strings.HasPrefix(s, "//"):
		s = s[2:]
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimPrefix(s, "/*")
		s = strings.TrimPrefix(s, "*")
		s = strings.TrimSuffix(s, "*/")
	}
	s = strings.TrimPrefix(s, "<")
	return strings.TrimSpace(s)
}

// skipInlineSpace consumes whitespace without crossing a newline.
func (fe *FrontEnd) skipInlineSpace() {
	for !fe.atEnd() && fe.peek().Kind == tokenizer.KindWhitespace {
		fe.advance()
	}
}

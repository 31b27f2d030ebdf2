package cpp

import (
	"strings"

	"github.com/lu-zero/ndplus/pkg/tokenizer"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// tryClass recognizes class, struct and union declarations that open a
// scope. Forward declarations are consumed without producing a topic.
func (fe *FrontEnd) tryClass() bool {
	mark := fe.pos
	fe.skipTemplatePrefix()

	keyword := fe.peekWord()
	if keyword != "class" && keyword != "struct" && keyword != "union" {
		fe.pos = mark
		return false
	}
	start := fe.pos
	fe.advance()

	// skip attribute macros (EXPORT_API etc) between keyword and name
	name := ""
	for {
		word, ok := fe.readQualifiedName()
		if !ok {
			break
		}
		name = word
		fe.skipSpace()
		tok := fe.peek()
		if tok.Kind == tokenizer.KindPunct && (tok.Value == "{" || tok.Value == ":" || tok.Value == ";" || tok.Value == "<") {
			break
		}
		if tok.Kind != tokenizer.KindIdentifier {
			break
		}
	}
	if name == "" {
		// anonymous struct/union scopes fold into the parent
		if fe.matchPunct("{") {
			fe.pushScope(scopeFrame{pkg: fe.currentPackage(), closing: fe.currentPackage()})
			return true
		}
		fe.pos = mark
		return false
	}
	fe.skipSpace()
	if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "<" {
		// explicit specialization header
		fe.skipAngles()
	}

	line := fe.tokens[start].Line
	var parents []string
	if fe.matchPunct(":") {
		parents = fe.readParentList()
	}

	fe.skipSpace()
	tok := fe.peek()
	switch {
	case tok.Kind == tokenizer.KindPunct && tok.Value == "{":
		// definition, fall through below
	case tok.Kind == tokenizer.KindPunct && tok.Value == ";":
		fe.advance()
		return true // forward declaration
	default:
		fe.pos = mark
		return false
	}
	protoEnd := fe.pos
	fe.advance() // consume {

	title := topic.NormalizeSymbol(name)
	enclosing := fe.currentPackage()
	t, err := topic.New(topic.TypeClass, title, enclosing, "", line)
	if err != nil {
		fe.pos = mark
		return false
	}
	t.Prototype = fe.prototypeFromRange(start, protoEnd)
	fe.addTopic(t)
	if keyword != "class" {
		fe.foldable[t] = true
	}

	symbol := t.Symbol()
	if fe.cb != nil {
		fe.cb.OnClass(symbol)
		for _, parent := range parents {
			fe.cb.OnClassParent(symbol, parent, enclosing, fe.currentUsing())
		}
	}

	simple := title
	if i := strings.LastIndex(title, "."); i >= 0 {
		simple = title[i+1:]
	}
	fe.pushScope(scopeFrame{
		pkg:       symbol,
		closing:   symbol,
		className: simple,
	})
	return true
}

// readParentList reads the inheritance list after the colon of a class
// head, returning normalized parent symbols.
func (fe *FrontEnd) readParentList() []string {
	var parents []string
	for {
		for {
			word := fe.peekWord()
			if word != "public" && word != "protected" && word != "private" && word != "virtual" {
				break
			}
			fe.advance()
		}
		name, ok := fe.readQualifiedName()
		if !ok {
			return parents
		}
		fe.skipSpace()
		if fe.peek().Kind == tokenizer.KindPunct && fe.peek().Value == "<" {
			fe.skipAngles()
		}
		parents = append(parents, topic.NormalizeSymbol(name))
		if !fe.matchPunct(",") {
			return parents
		}
	}
}

// foldStructs collapses struct and union scopes whose members are all
// plain variables into a single Type topic carrying the members as
// elements. A member from a different package ends the foldable run,
// and so does any non-variable topic.
func (fe *FrontEnd) foldStructs() {
	var out []*topic.Topic
	for i := 0; i < len(fe.topics); i++ {
		t := fe.topics[i]
		if t.Type != topic.TypeClass || !fe.foldable[t] {
			out = append(out, t)
			continue
		}
		symbol := t.Symbol()
		var members []*topic.Topic
		j := i + 1
		for ; j < len(fe.topics); j++ {
			m := fe.topics[j]
			if m.Type != topic.TypeVariable || m.Package != symbol {
				break
			}
			members = append(members, m)
		}
		// anything left inside the struct scope means it was not plain
		if j < len(fe.topics) && fe.topics[j].Package == symbol {
			out = append(out, t)
			continue
		}
		folded := fe.foldInto(t, members)
		out = append(out, folded)
		i = j - 1
	}
	fe.topics = out
}

// foldInto rebuilds a struct topic as a Type topic whose members became
// elements, with a reconstructed aggregate prototype.
func (fe *FrontEnd) foldInto(t *topic.Topic, members []*topic.Topic) *topic.Topic {
	t.Type = topic.TypeType
	var proto strings.Builder
	proto.WriteString(t.Prototype)
	proto.WriteString(" { ")
	for i, m := range members {
		if i > 0 {
			proto.WriteString(" ")
		}
		proto.WriteString(m.Prototype)
		proto.WriteString(";")
		t.Elements = append(t.Elements, topic.Element{
			Name:        m.Title,
			Description: m.Body,
		})
	}
	proto.WriteString(" };")
	t.Prototype = NormalizePrototype(proto.String())
	return t
}

package parser

import (
	"fmt"

	"github.com/lu-zero/ndplus/pkg/lang"
	"github.com/lu-zero/ndplus/pkg/markup"
	"github.com/lu-zero/ndplus/pkg/symbols"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// Context carries everything one file accumulates while being parsed.
// The coordinator owns it exclusively; nothing in it is shared across
// files.
type Context struct {
	Filename string
	Language *lang.Language
	Settings lang.Settings

	// Topics is the comment-topic stream during parsing and the final
	// reconciled list afterwards.
	Topics      []*topic.Topic
	AutoTopics  []*topic.Topic
	ScopeRecord []topic.ScopeChange

	// Classes and Parents buffer hierarchy registrations until the
	// whole file is parsed.
	Classes []string
	Parents []symbols.ParentLink

	// currentPackage tracks the package comment topics fall into while
	// the native comment stream is being built. Reset per file.
	currentPackage string

	// listEntries remembers the description-list entries each list
	// topic produced, for list breaking and duplicate suppression.
	listEntries map[*topic.Topic][]markup.Definition
}

func newContext(filename string, language *lang.Language, settings lang.Settings) *Context {
	return &Context{
		Filename:    filename,
		Language:    language,
		Settings:    settings,
		listEntries: make(map[*topic.Topic][]markup.Definition),
	}
}

// addTopic appends a comment topic, keeping the package cursor in sync
// with scope-start and scope-end topics.
func (ctx *Context) addTopic(t *topic.Topic) {
	switch topic.InfoFor(t.Type).Scope {
	case topic.ScopeStart:
		ctx.currentPackage = t.EffectivePackage()
	case topic.ScopeEnd:
		ctx.currentPackage = ""
	}
	ctx.Topics = append(ctx.Topics, t)
}

// entries returns the recorded description-list entries of a topic.
func (ctx *Context) entries(t *topic.Topic) []markup.Definition {
	return ctx.listEntries[t]
}

// topicAt finds the topic registered for a source line. Asking for a
// line no topic was registered on is a coordination bug, not bad input.
func (ctx *Context) topicAt(line int) (*topic.Topic, error) {
	for _, t := range ctx.Topics {
		if t.LineNumber == line {
			return t, nil
		}
	}
	return nil, fmt.Errorf("parser: no topic registered at %s:%d", ctx.Filename, line)
}

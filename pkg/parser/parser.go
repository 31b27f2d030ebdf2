// Package parser coordinates per-file parsing: it feeds source text
// through the language front end, turns eligible comments into topics
// via the native formatter, and reconciles the comment-declared and
// code-declared topic streams into one final ordered list.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lu-zero/ndplus/pkg/lang"
	"github.com/lu-zero/ndplus/pkg/lang/cpp"
	"github.com/lu-zero/ndplus/pkg/symbols"
	"github.com/lu-zero/ndplus/pkg/topic"
)

// Options configure a Parser for a whole run.
type Options struct {
	// DocumentedOnly discards auto-topics that never matched a comment.
	DocumentedOnly bool
	// AutoGroup enables synthesizing group headings over runs of
	// same-type topics.
	AutoGroup bool
	// Footer is raw comment text appended to every file as a shared
	// footer topic, parsed once per process.
	Footer string
	// Locale selects the collation used when sorting topic runs.
	Locale string
}

// DefaultOptions returns the options a bare run uses.
func DefaultOptions() Options {
	return Options{AutoGroup: true, Locale: "en"}
}

// Parser drives per-file parsing and reconciliation. One Parser serves
// many files sequentially; the only state shared between files is the
// cached footer topic.
type Parser struct {
	opts     Options
	table    *symbols.Table
	collator *collate.Collator

	footerOnce  sync.Once
	footerTopic *topic.Topic
}

// New builds a parser. The symbol table may be nil when the caller only
// wants the per-file topic lists.
func New(opts Options, table *symbols.Table) *Parser {
	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.English
	}
	return &Parser{
		opts:     opts,
		table:    table,
		collator: collate.New(tag, collate.IgnoreCase),
	}
}

// ParseFile reads and parses one file.
func (p *Parser) ParseFile(filename string) (*Context, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("parser: reading %s: %w", filename, err)
	}
	return p.Parse(filename, string(data))
}

// frontEndCallbacks adapts a parsing context to the language front end's
// callback contract.
type frontEndCallbacks struct {
	p   *Parser
	ctx *Context
}

func (c frontEndCallbacks) OnComment(lines []string, lineNumber int, docStyle bool) int {
	return c.p.onComment(c.ctx, lines, lineNumber, docStyle)
}

func (c frontEndCallbacks) OnClass(classSymbol string) {
	c.ctx.Classes = append(c.ctx.Classes, classSymbol)
}

func (c frontEndCallbacks) OnClassParent(classSymbol, parentSymbol, scope string, using []string) {
	c.ctx.Parents = append(c.ctx.Parents, symbols.ParentLink{
		Class:  classSymbol,
		Parent: parentSymbol,
		Scope:  scope,
		Using:  using,
	})
}

// Parse runs the whole pipeline over one file's source text and hands
// the outcome to the symbol table.
func (p *Parser) Parse(filename, source string) (*Context, error) {
	l, ok := lang.ByExtension(filepath.Ext(filename))
	if !ok {
		return nil, fmt.Errorf("parser: no language registered for %s", filename)
	}
	settings := lang.ScanModelines(source, lang.DefaultSettings())
	if settings.Language != "" {
		if override, ok := lang.ByName(settings.Language); ok {
			l = override
		}
	}

	ctx := newContext(filename, l, settings)
	if !settings.Enabled {
		return ctx, nil
	}

	fe := cpp.New(l, frontEndCallbacks{p: p, ctx: ctx})
	res := fe.Parse(source)
	ctx.AutoTopics = res.AutoTopics
	ctx.ScopeRecord = res.ScopeRecord

	p.reconcile(ctx)

	if p.table != nil {
		p.table.AddTopics(filename, ctx.Topics)
		for _, class := range ctx.Classes {
			p.table.AddClass(class)
		}
		for _, link := range ctx.Parents {
			p.table.AddClassParent(link)
		}
	}
	return ctx, nil
}

// reconcile runs the per-file pipeline stages in their required order.
func (p *Parser) reconcile(ctx *Context) {
	RepairPackages(ctx.Topics, ctx.ScopeRecord, ctx.AutoTopics)
	ctx.Topics = p.mergeAutoTopics(ctx)
	ctx.Topics = RemoveRemainingHeaderless(ctx.Topics)
	p.addToClassHierarchy(ctx)
	ctx.Topics = AddPackageDelineators(ctx.Topics)
	ctx.Topics = p.breakLists(ctx)
	if p.opts.AutoGroup {
		ctx.Topics = MakeAutoGroups(ctx.Topics)
		ctx.Topics = CleanAutoGroups(ctx.Topics)
	}
	ctx.Topics = ApplyMergeAttributes(ctx.Topics)
	p.applySortAttributes(ctx.Topics)
	ApplySummariesAttributes(ctx.Topics)
	p.applyPageFooter(ctx)
}

// addToClassHierarchy registers hierarchy-counting topics and, for list
// topics, each of their entries.
func (p *Parser) addToClassHierarchy(ctx *Context) {
	for _, t := range ctx.Topics {
		if !topic.InfoFor(t.Type).ClassHierarchy {
			continue
		}
		ctx.Classes = append(ctx.Classes, t.Symbol())
		if t.IsList {
			for _, def := range ctx.entries(t) {
				if def.Symbol {
					ctx.Classes = append(ctx.Classes, topic.JoinSymbols(t.EffectivePackage(), def.Term))
				}
			}
		}
	}
}

// applyPageFooter appends the shared footer topic, parsing the footer
// text only once for the whole process.
func (p *Parser) applyPageFooter(ctx *Context) {
	if p.opts.Footer == "" {
		return
	}
	p.footerOnce.Do(func() {
		t, err := topic.New(topic.TypeGeneric, "", "", "", 0)
		if err != nil {
			return
		}
		p.formatBody(ctx, t, []string{p.opts.Footer})
		if t.HasBody() {
			p.footerTopic = t
		}
	})
	if p.footerTopic == nil {
		return
	}
	footer := p.footerTopic.Clone()
	if len(ctx.Topics) > 0 {
		footer.LineNumber = ctx.Topics[len(ctx.Topics)-1].LineNumber + 1
	}
	ctx.Topics = append(ctx.Topics, footer)
}

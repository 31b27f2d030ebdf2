// Package symbols keeps the cross-file symbol table and class hierarchy
// that finalized topics are handed to. Per-file state can be dropped and
// rebuilt independently to bound memory during large runs.
package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lu-zero/ndplus/pkg/topic"
)

// Entry is one registered symbol.
type Entry struct {
	Symbol string
	Type   topic.Type
	File   string
	Line   int
}

// ParentLink records one inheritance edge waiting for resolution.
type ParentLink struct {
	Class  string
	Parent string
	Scope  string
	Using  []string
}

// Table is the global symbol table. All methods are single-threaded by
// contract, matching the file-at-a-time batch model.
type Table struct {
	byFile   map[string][]Entry
	bySymbol map[string][]Entry
	classes  map[string]*ClassNode
	links    []ParentLink
}

// ClassNode is one node of the class hierarchy.
type ClassNode struct {
	Symbol   string
	Parents  []string
	Children []string
}

func NewTable() *Table {
	return &Table{
		byFile:   make(map[string][]Entry),
		bySymbol: make(map[string][]Entry),
		classes:  make(map[string]*ClassNode),
	}
}

// AddTopics registers every titled topic of a finalized per-file list.
func (tb *Table) AddTopics(file string, topics []*topic.Topic) {
	for _, t := range topics {
		if t.Title == "" {
			continue
		}
		e := Entry{Symbol: t.Symbol(), Type: t.Type, File: file, Line: t.LineNumber}
		tb.byFile[file] = append(tb.byFile[file], e)
		tb.bySymbol[e.Symbol] = append(tb.bySymbol[e.Symbol], e)
	}
}

// AddClass registers a class hierarchy node.
func (tb *Table) AddClass(symbol string) {
	if symbol == "" {
		return
	}
	if _, ok := tb.classes[symbol]; !ok {
		tb.classes[symbol] = &ClassNode{Symbol: symbol}
	}
}

// AddClassParent buffers an inheritance edge for later resolution.
func (tb *Table) AddClassParent(link ParentLink) {
	tb.AddClass(link.Class)
	tb.links = append(tb.links, link)
}

// DropFile removes every entry a file contributed so the file can be
// re-parsed from scratch.
func (tb *Table) DropFile(file string) {
	for _, e := range tb.byFile[file] {
		rest := tb.bySymbol[e.Symbol][:0]
		for _, other := range tb.bySymbol[e.Symbol] {
			if other.File != file {
				rest = append(rest, other)
			}
		}
		if len(rest) == 0 {
			delete(tb.bySymbol, e.Symbol)
		} else {
			tb.bySymbol[e.Symbol] = rest
		}
	}
	delete(tb.byFile, file)
}

// Lookup finds the entries registered under a fully qualified symbol.
func (tb *Table) Lookup(symbol string) []Entry {
	return tb.bySymbol[symbol]
}

// Resolve finds a reference as seen from a scope, walking the scope path
// outward and then the using list, the same order name lookup would.
func (tb *Table) Resolve(ref, scope string, using []string) (Entry, bool) {
	ref = topic.NormalizeSymbol(ref)
	for s := scope; ; {
		if es := tb.bySymbol[topic.JoinSymbols(s, ref)]; len(es) > 0 {
			return es[0], true
		}
		if s == "" {
			break
		}
		if i := strings.LastIndex(s, "."); i >= 0 {
			s = s[:i]
		} else {
			s = ""
		}
	}
	for _, u := range using {
		if es := tb.bySymbol[topic.JoinSymbols(u, ref)]; len(es) > 0 {
			return es[0], true
		}
	}
	return Entry{}, false
}

// ResolveHierarchy connects the buffered parent links into the class
// graph. Parents that resolve to a known class link both ways; unknown
// parents become leaf nodes so the graph stays navigable.
func (tb *Table) ResolveHierarchy() {
	for _, link := range tb.links {
		parentSymbol := topic.NormalizeSymbol(link.Parent)
		if e, ok := tb.Resolve(link.Parent, link.Scope, link.Using); ok {
			parentSymbol = e.Symbol
		}
		tb.AddClass(parentSymbol)
		node := tb.classes[link.Class]
		if !contains(node.Parents, parentSymbol) {
			node.Parents = append(node.Parents, parentSymbol)
		}
		parent := tb.classes[parentSymbol]
		if !contains(parent.Children, link.Class) {
			parent.Children = append(parent.Children, link.Class)
		}
	}
	tb.links = nil
}

// Class returns the hierarchy node for a symbol.
func (tb *Table) Class(symbol string) (*ClassNode, error) {
	node, ok := tb.classes[symbol]
	if !ok {
		return nil, fmt.Errorf("symbols: class %q was never registered", symbol)
	}
	return node, nil
}

// Classes lists every registered class symbol in sorted order.
func (tb *Table) Classes() []string {
	out := make([]string, 0, len(tb.classes))
	for s := range tb.classes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Package lang defines the per-language knowledge the pipeline needs:
// comment delimiters, doc-comment variants, code-line prefixes and the
// per-file modeline overrides.
package lang

import (
	"strings"
)

// BlockPair is a block-comment open/close marker pair.
type BlockPair struct {
	Open  string
	Close string
}

// CommentSyntax describes how comments look in a language.
type CommentSyntax struct {
	LineMarkers  []string    // e.g. "//"
	BlockMarkers []BlockPair // e.g. "/*" ... "*/"
	DocLine      []string    // doc-comment line variants, e.g. "///", "//!"
	DocBlock     []string    // doc-comment block openers, e.g. "/**", "/*!"
}

// Language bundles everything the tokenizer and formatter need to know
// about one source language.
type Language struct {
	Name            string
	Extensions      []string
	Syntax          CommentSyntax
	DefaultIndent   int    // default indent width for comment nesting
	CodePrefixes    string // characters that mark a comment line as code
	HasPreprocessor bool   // '#' at line start swallows the whole line
	CaseSensitive   bool
}

var registry = map[string]*Language{}
var byExtension = map[string]*Language{}

// Register adds a language to the registry, indexed by lowercased name and
// extensions.
func Register(l *Language) {
	registry[strings.ToLower(l.Name)] = l
	for _, ext := range l.Extensions {
		byExtension[strings.ToLower(ext)] = l
	}
}

// ByName finds a registered language by name.
func ByName(name string) (*Language, bool) {
	l, ok := registry[strings.ToLower(name)]
	return l, ok
}

// ByExtension finds a registered language by file extension (without dot).
func ByExtension(ext string) (*Language, bool) {
	l, ok := byExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return l, ok
}

// Names returns the registered language names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, l := range registry {
		names = append(names, l.Name)
	}
	return names
}

func init() {
	Register(&Language{
		Name:       "C++",
		Extensions: []string{"cpp", "cxx", "cc", "h", "hpp", "hxx"},
		Syntax: CommentSyntax{
			LineMarkers:  []string{"//"},
			BlockMarkers: []BlockPair{{Open: "/*", Close: "*/"}},
			DocLine:      []string{"///", "//!"},
			DocBlock:     []string{"/**", "/*!"},
		},
		DefaultIndent:   8,
		CodePrefixes:    ">:|",
		HasPreprocessor: true,
		CaseSensitive:   true,
	})
	Register(&Language{
		Name:       "C",
		Extensions: []string{"c"},
		Syntax: CommentSyntax{
			LineMarkers:  []string{"//"},
			BlockMarkers: []BlockPair{{Open: "/*", Close: "*/"}},
			DocLine:      []string{"///", "//!"},
			DocBlock:     []string{"/**", "/*!"},
		},
		DefaultIndent:   8,
		CodePrefixes:    ">:|",
		HasPreprocessor: true,
		CaseSensitive:   true,
	})
}

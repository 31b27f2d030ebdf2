// Package topic defines the documentation topic model and the per-type
// policy table that drives scoping, merging, grouping and sorting decisions.
package topic

import "strings"

// Type represents the kind of a documentation topic
type Type int

const (
	TypeGeneric Type = iota
	TypeClass
	TypeSection
	TypeFile
	TypeGroup
	TypeFunction
	TypeVariable
	TypeProperty
	TypeType
	TypeConstant
	TypeEnumeration
	TypeEvent
	TypeDelegate
)

func (t Type) String() string {
	switch t {
	case TypeClass:
		return "class"
	case TypeSection:
		return "section"
	case TypeFile:
		return "file"
	case TypeGroup:
		return "group"
	case TypeFunction:
		return "function"
	case TypeVariable:
		return "variable"
	case TypeProperty:
		return "property"
	case TypeType:
		return "type"
	case TypeConstant:
		return "constant"
	case TypeEnumeration:
		return "enumeration"
	case TypeEvent:
		return "event"
	case TypeDelegate:
		return "delegate"
	default:
		return "generic"
	}
}

// ScopeKind describes how a topic type interacts with the current package
type ScopeKind int

const (
	// ScopeNormal topics belong to whatever package is in effect
	ScopeNormal ScopeKind = iota
	// ScopeStart topics open a new package named after themselves
	ScopeStart
	// ScopeEnd topics reset the package to global
	ScopeEnd
	// ScopeAlwaysGlobal topics keep title and package independent
	ScopeAlwaysGlobal
)

// Info is the policy record for a topic type. The reconciliation pipeline
// treats it as read-only input.
type Info struct {
	Name              string
	PluralName        string
	Scope             ScopeKind
	CanMergeGroupings bool   // stage 9: same-named groups of this type merge
	Sortable          bool   // stage 10: contiguous runs sort by title
	Splittable        bool   // stage 6: list entries become their own topics
	BreakLists        bool   // list bodies expand elements into entries
	Summarizable      bool   // participates in summary propagation
	ClassHierarchy    bool   // registers into the class hierarchy
	PageTitleIfFirst  bool   // first topic of this type names the page
	GroupWith         []Type // types whose runs may merge during smoothing
}

// typeInfo is the default policy table. LoadTypeOverrides may adjust it
// per project.
var typeInfo = map[Type]*Info{
	TypeGeneric: {
		Name: "Generic", PluralName: "Generics",
		Scope: ScopeNormal, Summarizable: true,
	},
	TypeClass: {
		Name: "Class", PluralName: "Classes",
		Scope: ScopeStart, Summarizable: true,
		ClassHierarchy: true, PageTitleIfFirst: true,
	},
	TypeSection: {
		Name: "Section", PluralName: "Sections",
		Scope: ScopeEnd, Summarizable: true, PageTitleIfFirst: true,
	},
	TypeFile: {
		Name: "File", PluralName: "Files",
		Scope: ScopeAlwaysGlobal, Summarizable: true, PageTitleIfFirst: true,
	},
	TypeGroup: {
		Name: "Group", PluralName: "Groups",
		Scope: ScopeNormal, Summarizable: true, CanMergeGroupings: true,
	},
	TypeFunction: {
		Name: "Function", PluralName: "Functions",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
		BreakLists: true, GroupWith: []Type{TypeVariable},
	},
	TypeVariable: {
		Name: "Variable", PluralName: "Variables",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
		BreakLists: true, GroupWith: []Type{TypeFunction},
	},
	TypeProperty: {
		Name: "Property", PluralName: "Properties",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
	},
	TypeType: {
		Name: "Type", PluralName: "Types",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
		BreakLists: true,
	},
	TypeConstant: {
		Name: "Constant", PluralName: "Constants",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
		BreakLists: true, Sortable: true, CanMergeGroupings: true,
		GroupWith: []Type{TypeEnumeration},
	},
	TypeEnumeration: {
		Name: "Enumeration", PluralName: "Enumerations",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
		BreakLists: true, GroupWith: []Type{TypeConstant},
	},
	TypeEvent: {
		Name: "Event", PluralName: "Events",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
	},
	TypeDelegate: {
		Name: "Delegate", PluralName: "Delegates",
		Scope: ScopeNormal, Summarizable: true, Splittable: true,
	},
}

// InfoFor returns the policy record for a topic type
func InfoFor(t Type) *Info {
	if info, ok := typeInfo[t]; ok {
		return info
	}
	return typeInfo[TypeGeneric]
}

// GroupCompatible reports whether runs of types a and b may merge into a
// single two-type group during auto-group smoothing
func GroupCompatible(a, b Type) bool {
	for _, t := range InfoFor(a).GroupWith {
		if t == b {
			return true
		}
	}
	for _, t := range InfoFor(b).GroupWith {
		if t == a {
			return true
		}
	}
	return false
}

// keywords maps singular comment keywords to topic types
var keywords = map[string]Type{
	"topic":       TypeGeneric,
	"about":       TypeGeneric,
	"note":        TypeGeneric,
	"class":       TypeClass,
	"structure":   TypeClass,
	"struct":      TypeClass,
	"package":     TypeClass,
	"namespace":   TypeClass,
	"section":     TypeSection,
	"title":       TypeSection,
	"file":        TypeFile,
	"program":     TypeFile,
	"script":      TypeFile,
	"module":      TypeFile,
	"group":       TypeGroup,
	"function":    TypeFunction,
	"func":        TypeFunction,
	"procedure":   TypeFunction,
	"proc":        TypeFunction,
	"routine":     TypeFunction,
	"method":      TypeFunction,
	"constructor": TypeFunction,
	"destructor":  TypeFunction,
	"operator":    TypeFunction,
	"callback":    TypeFunction,
	"variable":    TypeVariable,
	"var":         TypeVariable,
	"integer":     TypeVariable,
	"int":         TypeVariable,
	"string":      TypeVariable,
	"property":    TypeProperty,
	"prop":        TypeProperty,
	"type":        TypeType,
	"typedef":     TypeType,
	"constant":    TypeConstant,
	"const":       TypeConstant,
	"definition":  TypeConstant,
	"define":      TypeConstant,
	"enum":        TypeEnumeration,
	"enumeration": TypeEnumeration,
	"event":       TypeEvent,
	"delegate":    TypeDelegate,
}

// pluralKeywords maps plural comment keywords to topic types; a plural
// keyword marks the resulting topic as a list topic
var pluralKeywords = map[string]Type{
	"classes":      TypeClass,
	"structures":   TypeClass,
	"structs":      TypeClass,
	"packages":     TypeClass,
	"namespaces":   TypeClass,
	"files":        TypeFile,
	"programs":     TypeFile,
	"scripts":      TypeFile,
	"modules":      TypeFile,
	"functions":    TypeFunction,
	"funcs":        TypeFunction,
	"procedures":   TypeFunction,
	"procs":        TypeFunction,
	"routines":     TypeFunction,
	"methods":      TypeFunction,
	"constructors": TypeFunction,
	"destructors":  TypeFunction,
	"operators":    TypeFunction,
	"callbacks":    TypeFunction,
	"variables":    TypeVariable,
	"vars":         TypeVariable,
	"integers":     TypeVariable,
	"ints":         TypeVariable,
	"strings":      TypeVariable,
	"properties":   TypeProperty,
	"props":        TypeProperty,
	"types":        TypeType,
	"typedefs":     TypeType,
	"constants":    TypeConstant,
	"consts":       TypeConstant,
	"definitions":  TypeConstant,
	"defines":      TypeConstant,
	"enums":        TypeEnumeration,
	"enumerations": TypeEnumeration,
	"events":       TypeEvent,
	"delegates":    TypeDelegate,
}

// KeywordLookup resolves a comment keyword to a topic type. The second
// result reports whether the keyword was plural (a list topic), the third
// whether the keyword is known at all.
func KeywordLookup(word string) (Type, bool, bool) {
	word = strings.ToLower(word)
	if t, ok := keywords[word]; ok {
		return t, false, true
	}
	if t, ok := pluralKeywords[word]; ok {
		return t, true, true
	}
	return TypeGeneric, false, false
}

// AddKeyword registers an extra keyword, for project config extensions
func AddKeyword(word string, t Type, plural bool) {
	word = strings.ToLower(word)
	if plural {
		pluralKeywords[word] = t
	} else {
		keywords[word] = t
	}
}

// Keywords returns a copy of the keyword table for display purposes
func Keywords() map[string]Type {
	out := make(map[string]Type, len(keywords)+len(pluralKeywords))
	for k, v := range keywords {
		out[k] = v
	}
	for k, v := range pluralKeywords {
		out[k] = v
	}
	return out
}

// TypeFromName resolves a policy-table name like "Function" back to its
// type, for config overrides
func TypeFromName(name string) (Type, bool) {
	name = strings.ToLower(name)
	for t, info := range typeInfo {
		if strings.ToLower(info.Name) == name {
			return t, true
		}
	}
	return TypeGeneric, false
}

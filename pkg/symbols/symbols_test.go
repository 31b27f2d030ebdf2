package symbols

import (
	"testing"

	"github.com/lu-zero/ndplus/pkg/topic"
)

func mustTopic(t *testing.T, typ topic.Type, title, pkg string, line int) *topic.Topic {
	t.Helper()
	tp, err := topic.New(typ, title, pkg, "", line)
	if err != nil {
		t.Fatal(err)
	}
	return tp
}

func TestAddTopicsAndLookup(t *testing.T) {
	tb := NewTable()
	tb.AddTopics("a.cpp", []*topic.Topic{
		mustTopic(t, topic.TypeFunction, "Add", "Math", 10),
		mustTopic(t, topic.TypeGeneric, "", "", 1), // untitled, skipped
	})

	es := tb.Lookup("Math.Add")
	if len(es) != 1 {
		t.Fatalf("lookup = %v", es)
	}
	if es[0].File != "a.cpp" || es[0].Line != 10 {
		t.Errorf("entry = %+v", es[0])
	}
	if len(tb.Lookup("")) != 0 {
		t.Errorf("untitled topic registered")
	}
}

func TestResolveScopeWalk(t *testing.T) {
	tb := NewTable()
	tb.AddTopics("a.cpp", []*topic.Topic{
		mustTopic(t, topic.TypeFunction, "Helper", "NS.Inner", 1),
		mustTopic(t, topic.TypeFunction, "Helper", "", 2),
	})

	// innermost scope wins
	e, ok := tb.Resolve("Helper", "NS.Inner", nil)
	if !ok || e.Symbol != "NS.Inner.Helper" {
		t.Errorf("got %+v, %v", e, ok)
	}

	// walks outward when the inner scope has no match
	e, ok = tb.Resolve("Helper", "NS.Other", nil)
	if !ok || e.Symbol != "Helper" {
		t.Errorf("got %+v, %v", e, ok)
	}

	// language separators normalize before lookup
	e, ok = tb.Resolve("Inner::Helper", "NS", nil)
	if !ok || e.Symbol != "NS.Inner.Helper" {
		t.Errorf("got %+v, %v", e, ok)
	}
}

func TestResolveUsing(t *testing.T) {
	tb := NewTable()
	tb.AddTopics("a.cpp", []*topic.Topic{
		mustTopic(t, topic.TypeClass, "Widget", "Gui", 1),
	})

	if _, ok := tb.Resolve("Widget", "", nil); ok {
		t.Fatal("resolved without a using import")
	}
	e, ok := tb.Resolve("Widget", "", []string{"Gui"})
	if !ok || e.Symbol != "Gui.Widget" {
		t.Errorf("got %+v, %v", e, ok)
	}
}

func TestDropFile(t *testing.T) {
	tb := NewTable()
	tb.AddTopics("a.cpp", []*topic.Topic{
		mustTopic(t, topic.TypeFunction, "Shared", "", 1),
	})
	tb.AddTopics("b.cpp", []*topic.Topic{
		mustTopic(t, topic.TypeFunction, "Shared", "", 5),
		mustTopic(t, topic.TypeFunction, "OnlyB", "", 6),
	})

	tb.DropFile("b.cpp")

	es := tb.Lookup("Shared")
	if len(es) != 1 || es[0].File != "a.cpp" {
		t.Errorf("drop removed the wrong entries: %v", es)
	}
	if len(tb.Lookup("OnlyB")) != 0 {
		t.Errorf("b.cpp entry survived the drop")
	}

	// re-adding after a drop works like a fresh parse
	tb.AddTopics("b.cpp", []*topic.Topic{
		mustTopic(t, topic.TypeFunction, "OnlyB", "", 7),
	})
	if len(tb.Lookup("OnlyB")) != 1 {
		t.Errorf("reload failed")
	}
}

func TestResolveHierarchy(t *testing.T) {
	tb := NewTable()
	tb.AddTopics("a.cpp", []*topic.Topic{
		mustTopic(t, topic.TypeClass, "Base", "NS", 1),
	})
	tb.AddClass("NS.Base")
	tb.AddClassParent(ParentLink{Class: "NS.Derived", Parent: "Base", Scope: "NS"})

	tb.ResolveHierarchy()

	node, err := tb.Class("NS.Derived")
	if err != nil {
		t.Fatal(err)
	}
	if len(node.Parents) != 1 || node.Parents[0] != "NS.Base" {
		t.Errorf("parents = %v", node.Parents)
	}

	base, err := tb.Class("NS.Base")
	if err != nil {
		t.Fatal(err)
	}
	if len(base.Children) != 1 || base.Children[0] != "NS.Derived" {
		t.Errorf("children = %v", base.Children)
	}
}

func TestUnknownParentBecomesLeaf(t *testing.T) {
	tb := NewTable()
	tb.AddClassParent(ParentLink{Class: "Derived", Parent: "std::vector", Scope: ""})
	tb.ResolveHierarchy()

	node, err := tb.Class("std.vector")
	if err != nil {
		t.Fatalf("unresolved parent should still become a node: %v", err)
	}
	if len(node.Children) != 1 || node.Children[0] != "Derived" {
		t.Errorf("children = %v", node.Children)
	}
	got := tb.Classes()
	if len(got) != 2 || got[0] != "Derived" || got[1] != "std.vector" {
		t.Errorf("classes = %v", got)
	}
}

func TestClassErrorTaxonomy(t *testing.T) {
	tb := NewTable()
	if _, err := tb.Class("Nope"); err == nil {
		t.Errorf("missing class must error")
	}
}

package topic

import (
	"errors"
	"testing"
)

func TestNewRejectsWhitespaceBody(t *testing.T) {
	_, err := New(TypeFunction, "Add", "", " \t\n", 1)
	if !errors.Is(err, ErrWhitespaceBody) {
		t.Errorf("expected ErrWhitespaceBody, got %v", err)
	}

	tp, err := New(TypeFunction, "Add", "", "", 1)
	if err != nil {
		t.Fatalf("empty body should be accepted: %v", err)
	}
	if tp.HasBody() {
		t.Errorf("empty body reported as present")
	}
}

func TestSetBodyEnforcesWhitespaceInvariant(t *testing.T) {
	tp, err := New(TypeGeneric, "Notes", "", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := tp.SetBody("   "); !errors.Is(err, ErrWhitespaceBody) {
		t.Errorf("expected ErrWhitespaceBody, got %v", err)
	}
	if err := tp.SetBody("<p>ok</p>"); err != nil {
		t.Errorf("valid body rejected: %v", err)
	}
	if !tp.HasBody() {
		t.Errorf("body not stored")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"A::B", "A.B"},
		{"a->b", "a.b"},
		{"Outer::Inner::Name", "Outer.Inner.Name"},
		{".Leading.Trailing.", "Leading.Trailing"},
		{"Plain", "Plain"},
	}
	for _, c := range cases {
		if got := NormalizeSymbol(c.in); got != c.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestJoinSymbols(t *testing.T) {
	if got := JoinSymbols("NS", "Name"); got != "NS.Name" {
		t.Errorf("got %q", got)
	}
	if got := JoinSymbols("", "Name"); got != "Name" {
		t.Errorf("empty package: got %q", got)
	}
	if got := JoinSymbols("NS::Sub", ""); got != "NS.Sub" {
		t.Errorf("empty title: got %q", got)
	}
}

func TestSymbolAlwaysGlobal(t *testing.T) {
	tp := &Topic{Type: TypeFile, Title: "main.cpp", Package: "NS"}
	if got := tp.Symbol(); got != "main.cpp" {
		t.Errorf("file symbol should ignore package, got %q", got)
	}

	fn := &Topic{Type: TypeFunction, Title: "Add", Package: "Math"}
	if got := fn.Symbol(); got != "Math.Add" {
		t.Errorf("got %q", got)
	}
}

func TestEffectivePackage(t *testing.T) {
	cls := &Topic{Type: TypeClass, Title: "Counter", Package: "NS"}
	if got := cls.EffectivePackage(); got != "NS.Counter" {
		t.Errorf("class should open its own scope, got %q", got)
	}

	sec := &Topic{Type: TypeSection, Title: "Internals", Package: "NS"}
	if got := sec.EffectivePackage(); got != "" {
		t.Errorf("section should reset to global, got %q", got)
	}

	fn := &Topic{Type: TypeFunction, Title: "Add", Package: "NS"}
	if got := fn.EffectivePackage(); got != "NS" {
		t.Errorf("got %q", got)
	}
}

func TestSummaryFirstSentence(t *testing.T) {
	cases := []struct {
		body, want string
	}{
		{"<p>First sentence. Second sentence.</p>", "First sentence."},
		{"<p>See <b>Add</b>. More text.</p>", "See <b>Add</b>."},
		{"<p>Version 1.2 of the API</p>", "Version 1.2 of the API"},
		{"<p>Only one.</p><p>Next para.</p>", "Only one."},
		{"", ""},
		{"<code type=\"code\">x</code>", ""},
	}
	for _, c := range cases {
		tp := &Topic{Body: c.body}
		if got := tp.Summary(); got != c.want {
			t.Errorf("Summary of %q = %q, want %q", c.body, got, c.want)
		}
	}
}

func TestSummaryCaching(t *testing.T) {
	tp := &Topic{Body: "<p>One.</p>"}
	if tp.Summary() != "One." {
		t.Fatal("unexpected summary")
	}
	if err := tp.SetBody("<p>Two.</p>"); err != nil {
		t.Fatal(err)
	}
	if got := tp.Summary(); got != "Two." {
		t.Errorf("cache not invalidated by SetBody, got %q", got)
	}
}

func TestKeywordLookup(t *testing.T) {
	typ, plural, known := KeywordLookup("Function")
	if typ != TypeFunction || plural || !known {
		t.Errorf("Function: got (%v, %v, %v)", typ, plural, known)
	}

	typ, plural, known = KeywordLookup("functions")
	if typ != TypeFunction || !plural || !known {
		t.Errorf("functions: got (%v, %v, %v)", typ, plural, known)
	}

	_, _, known = KeywordLookup("xyzzy")
	if known {
		t.Errorf("unknown keyword reported as known")
	}
}

func TestAddKeyword(t *testing.T) {
	AddKeyword("widget", TypeClass, false)
	typ, plural, known := KeywordLookup("Widget")
	if typ != TypeClass || plural || !known {
		t.Errorf("got (%v, %v, %v)", typ, plural, known)
	}
}

func TestGroupCompatible(t *testing.T) {
	if !GroupCompatible(TypeFunction, TypeVariable) {
		t.Errorf("functions and variables should group")
	}
	if !GroupCompatible(TypeEnumeration, TypeConstant) {
		t.Errorf("enumerations and constants should group")
	}
	if GroupCompatible(TypeFunction, TypeConstant) {
		t.Errorf("functions and constants should not group")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tp := &Topic{
		Type:     TypeEnumeration,
		Title:    "Color",
		Using:    []string{"NS"},
		Elements: []Element{{Name: "Red", Description: "warm"}},
	}
	c := tp.Clone()
	c.Elements[0].Name = "Blue"
	c.Using[0] = "Other"
	if tp.Elements[0].Name != "Red" || tp.Using[0] != "NS" {
		t.Errorf("clone shares slices with the original")
	}
}

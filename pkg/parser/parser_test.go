package parser

import (
	"strings"
	"testing"

	"github.com/lu-zero/ndplus/pkg/symbols"
	"github.com/lu-zero/ndplus/pkg/topic"
)

func parse(t *testing.T, opts Options, source string) *Context {
	t.Helper()
	ctx, err := New(opts, nil).Parse("test.cpp", source)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func titles(topics []*topic.Topic) []string {
	out := make([]string, len(topics))
	for i, tp := range topics {
		out[i] = tp.Title
	}
	return out
}

func find(topics []*topic.Topic, title string) *topic.Topic {
	for _, tp := range topics {
		if tp.Title == title {
			return tp
		}
	}
	return nil
}

func TestDocumentedFunction(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// Function: Add
// Adds two numbers.
int Add(int a, int b) {
    return a + b;
}
`)
	if len(ctx.Topics) != 1 {
		t.Fatalf("topics = %v", titles(ctx.Topics))
	}
	tp := ctx.Topics[0]
	if tp.Type != topic.TypeFunction || tp.Title != "Add" {
		t.Errorf("got %v %q", tp.Type, tp.Title)
	}
	if tp.Body != "<p>Adds two numbers.</p>" {
		t.Errorf("body = %q", tp.Body)
	}
	if tp.Prototype != "int Add(int a,int b)" {
		t.Errorf("prototype = %q", tp.Prototype)
	}
	if tp.IsAuto {
		t.Errorf("merged topic must keep the comment identity")
	}
}

func TestUndocumentedSurvivesByDefault(t *testing.T) {
	ctx := parse(t, DefaultOptions(), "void Lonely();\n")
	if find(ctx.Topics, "Lonely") == nil {
		t.Errorf("auto topic dropped: %v", titles(ctx.Topics))
	}
}

func TestDocumentedOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.DocumentedOnly = true
	ctx := parse(t, opts, `// Function: Add
// Documented.
int Add(int a, int b);

int Sub(int a, int b);
`)
	if find(ctx.Topics, "Add") == nil {
		t.Errorf("documented topic lost")
	}
	if find(ctx.Topics, "Sub") != nil {
		t.Errorf("undocumented topic kept: %v", titles(ctx.Topics))
	}
}

func TestHeaderlessCommentAttaches(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `/// Increments the counter.
void Bump();
`)
	tp := find(ctx.Topics, "Bump")
	if tp == nil {
		t.Fatalf("topics = %v", titles(ctx.Topics))
	}
	if tp.Body != "<p>Increments the counter.</p>" {
		t.Errorf("body = %q", tp.Body)
	}
	if tp.Type != topic.TypeFunction {
		t.Errorf("type = %v", tp.Type)
	}
}

func TestHeaderlessOrphanDropped(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoGroup = false
	ctx := parse(t, opts, `/// Orphan note.

/// Belongs to F.
void F();
`)
	tp := find(ctx.Topics, "F")
	if tp == nil {
		t.Fatalf("topics = %v", titles(ctx.Topics))
	}
	if tp.Body != "<p>Belongs to F.</p>" {
		t.Errorf("body = %q", tp.Body)
	}
	for _, other := range ctx.Topics {
		if strings.Contains(other.Body, "Orphan") {
			t.Errorf("orphan comment survived: %q", other.Body)
		}
	}
}

func TestPlainCommentIgnored(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// just an implementation remark
void G();
`)
	tp := find(ctx.Topics, "G")
	if tp == nil {
		t.Fatal("G missing")
	}
	if tp.Body != "" {
		t.Errorf("plain comment became documentation: %q", tp.Body)
	}
}

func TestMarkdownComment(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `/// # Overview
///
/// Uses *markdown* here.
int val;
`)
	tp := find(ctx.Topics, "val")
	if tp == nil {
		t.Fatalf("topics = %v", titles(ctx.Topics))
	}
	if !strings.Contains(tp.Body, "<h>Overview</h>") {
		t.Errorf("markdown heading lost: %q", tp.Body)
	}
	if !strings.Contains(tp.Body, "<i>markdown</i>") {
		t.Errorf("markdown emphasis lost: %q", tp.Body)
	}
}

func TestClassScopesMembers(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// Class: Counter
// A running count.
class Counter {
public:
    void Inc();
};
`)
	cls := find(ctx.Topics, "Counter")
	if cls == nil || cls.Type != topic.TypeClass {
		t.Fatalf("class topic: %v", titles(ctx.Topics))
	}
	if cls.Body != "<p>A running count.</p>" {
		t.Errorf("body = %q", cls.Body)
	}
	if cls.Package != "" {
		t.Errorf("package = %q", cls.Package)
	}
	inc := find(ctx.Topics, "Inc")
	if inc == nil || inc.Package != "Counter" {
		t.Fatalf("member not scoped: %+v", inc)
	}
}

func TestEnumElementsExpandIntoBody(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// Enum: Color
// The palette.
enum Color {
    Red,  // warm
    Blue  // cool
};
`)
	tp := find(ctx.Topics, "Color")
	if tp == nil {
		t.Fatalf("topics = %v", titles(ctx.Topics))
	}
	if !strings.Contains(tp.Body, "<de>Red</de><dd>warm</dd>") {
		t.Errorf("elements not expanded: %q", tp.Body)
	}
}

func TestAutoGroupSmoothing(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `void A();
void B();
void C();
int x;
void D();
void E();
void F();
`)
	if len(ctx.Topics) != 8 {
		t.Fatalf("topics = %v", titles(ctx.Topics))
	}
	g := ctx.Topics[0]
	if g.Type != topic.TypeGroup || !g.IsAuto {
		t.Fatalf("expected a leading auto group, got %+v", g)
	}
	if g.Title != "Functions and Variables" {
		t.Errorf("group title = %q", g.Title)
	}
}

func TestAutoGroupPerRun(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `void A();
void B();
void C();
const int P = 1;
const int Q = 2;
const int R = 3;
`)
	got := titles(ctx.Topics)
	want := []string{"Functions", "A", "B", "C", "Constants", "P", "Q", "R"}
	if len(got) != len(want) {
		t.Fatalf("topics = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCleanAutoGroupsOnSparseFiles(t *testing.T) {
	ctx := parse(t, DefaultOptions(), "void Only();\n")
	for _, tp := range ctx.Topics {
		if tp.Type == topic.TypeGroup {
			t.Errorf("lone topic should not get a group: %v", titles(ctx.Topics))
		}
	}
}

func TestBreakLists(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// Constants: Limits
//
// MaxA - first limit
// MaxB - second limit
int unused;
`)
	got := titles(ctx.Topics)
	if find(ctx.Topics, "MaxA") == nil || find(ctx.Topics, "MaxB") == nil {
		t.Fatalf("entries not split: %v", got)
	}
	group := find(ctx.Topics, "Limits")
	if group == nil || group.Type != topic.TypeGroup {
		t.Fatalf("list topic did not become a group: %v", got)
	}
	maxA := find(ctx.Topics, "MaxA")
	if maxA.Type != topic.TypeConstant {
		t.Errorf("entry type = %v", maxA.Type)
	}
	if maxA.Prototype != "MaxA" {
		t.Errorf("entry prototype = %q", maxA.Prototype)
	}
	if maxA.Body != "<p>first limit</p>" {
		t.Errorf("entry body = %q", maxA.Body)
	}
}

func TestListEntriesSuppressAutoDuplicates(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// Constants: Limits
//
// MaxRetries - how many attempts

const int MaxRetries = 3;
`)
	count := 0
	for _, tp := range ctx.Topics {
		if tp.Title == "MaxRetries" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("MaxRetries appears %d times: %v", count, titles(ctx.Topics))
	}
}

func TestMergeGroupings(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// Constants: Limits
//
// MaxA - first limit

void Between();

// Constants: Limits
//
// MaxB - second limit
int unused;
`)
	got := titles(ctx.Topics)
	limits := 0
	var maxAIdx, maxBIdx int
	for i, title := range got {
		switch title {
		case "Limits":
			limits++
		case "MaxA":
			maxAIdx = i
		case "MaxB":
			maxBIdx = i
		}
	}
	if limits != 1 {
		t.Errorf("duplicate group heading survived: %v", got)
	}
	if maxBIdx != maxAIdx+1 {
		t.Errorf("members not merged behind the first group: %v", got)
	}
}

func TestSortConstants(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `const int Zebra = 1;
const int alpha = 2;
const int Mango = 3;
`)
	got := titles(ctx.Topics)
	want := []string{"Constants", "alpha", "Mango", "Zebra"}
	if len(got) != len(want) {
		t.Fatalf("topics = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFunctionsKeepSourceOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoGroup = false
	ctx := parse(t, opts, `void Zeta();
void Alpha();
`)
	got := titles(ctx.Topics)
	if got[0] != "Zeta" || got[1] != "Alpha" {
		t.Errorf("functions must not sort: %v", got)
	}
}

func TestNoSummariesPropagation(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoGroup = false
	ctx := parse(t, opts, `// Group: Internals (no summaries)
//
// Function: Helper
// Does internal things.
void Helper();
`)
	g := find(ctx.Topics, "Internals")
	if g == nil || !g.NoSummary {
		t.Fatalf("attribute not parsed: %+v", g)
	}
	h := find(ctx.Topics, "Helper")
	if h == nil || !h.NoSummary {
		t.Errorf("suppression not propagated: %+v", h)
	}
}

func TestPackageDelineators(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `void NS::Widget::draw() {}
void NS::Widget::hide() {}
`)
	d := find(ctx.Topics, "Widget")
	if d == nil || d.Type != topic.TypeClass || !d.IsAuto {
		t.Fatalf("delineator missing: %v", titles(ctx.Topics))
	}
	if d.Package != "NS" {
		t.Errorf("delineator package = %q", d.Package)
	}
}

func TestPackageContinuation(t *testing.T) {
	mk := func(title, pkg string, line int) *topic.Topic {
		tp, err := topic.New(topic.TypeFunction, title, pkg, "", line)
		if err != nil {
			t.Fatal(err)
		}
		return tp
	}
	out := AddPackageDelineators([]*topic.Topic{
		mk("F1", "A", 1),
		mk("G1", "B", 2),
		mk("F2", "A", 3),
	})
	got := titles(out)
	want := []string{"A", "F1", "B", "G1", "A", "F2"}
	if len(got) != len(want) {
		t.Fatalf("topics = %v", got)
	}
	if !out[4].IsContinuation {
		t.Errorf("reappearing package not marked as continuation")
	}
	if out[0].IsContinuation {
		t.Errorf("first appearance marked as continuation")
	}
}

func TestRepairPackages(t *testing.T) {
	cls, err := topic.New(topic.TypeClass, "C", "", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	fn, err := topic.New(topic.TypeFunction, "F", "", "", 2)
	if err != nil {
		t.Fatal(err)
	}
	auto, err := topic.New(topic.TypeFunction, "F", "C", "", 5)
	if err != nil {
		t.Fatal(err)
	}

	RepairPackages([]*topic.Topic{cls, fn}, nil, []*topic.Topic{auto})

	// the comment under a class header sees the fake package the header
	// opened, even though no code declared it yet
	if fn.Package != "C" {
		t.Errorf("package = %q, want C", fn.Package)
	}
}

func TestModelineDisablesFile(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// ndplus: off
int x;
`)
	if len(ctx.Topics) != 0 {
		t.Errorf("disabled file produced topics: %v", titles(ctx.Topics))
	}
}

func TestFooterAppendedPerFile(t *testing.T) {
	opts := DefaultOptions()
	opts.Footer = "Generated documentation."
	p := New(opts, nil)

	ctx1, err := p.Parse("a.cpp", "void A();\n")
	if err != nil {
		t.Fatal(err)
	}
	ctx2, err := p.Parse("b.cpp", "void B();\n")
	if err != nil {
		t.Fatal(err)
	}

	last1 := ctx1.Topics[len(ctx1.Topics)-1]
	last2 := ctx2.Topics[len(ctx2.Topics)-1]
	if last1.Body != "<p>Generated documentation.</p>" {
		t.Errorf("footer body = %q", last1.Body)
	}
	if last1 == last2 {
		t.Errorf("footer topic shared between files")
	}
	if prev := ctx1.Topics[len(ctx1.Topics)-2]; last1.LineNumber != prev.LineNumber+1 {
		t.Errorf("footer line = %d after %d", last1.LineNumber, prev.LineNumber)
	}
}

func TestSymbolTableRegistration(t *testing.T) {
	table := symbols.NewTable()
	p := New(DefaultOptions(), table)
	_, err := p.Parse("test.cpp", `class Derived : public Base {
public:
    void M();
};
class Base {
};
`)
	if err != nil {
		t.Fatal(err)
	}
	table.ResolveHierarchy()

	node, err := table.Class("Derived")
	if err != nil {
		t.Fatal(err)
	}
	if len(node.Parents) != 1 || node.Parents[0] != "Base" {
		t.Errorf("parents = %v", node.Parents)
	}
	if len(table.Lookup("Derived.M")) != 1 {
		t.Errorf("member symbol not registered")
	}
}

func TestTopicAtLine(t *testing.T) {
	ctx := parse(t, DefaultOptions(), `// Function: Add
// Doc.
int Add(int a, int b);
`)
	tp, err := ctx.topicAt(1)
	if err != nil {
		t.Fatal(err)
	}
	if tp.Title != "Add" {
		t.Errorf("got %q", tp.Title)
	}
	if _, err := ctx.topicAt(99); err == nil {
		t.Errorf("missing line must error")
	}
}

func TestUnknownExtension(t *testing.T) {
	if _, err := New(DefaultOptions(), nil).Parse("file.xyz", "text"); err == nil {
		t.Errorf("unknown extension must error")
	}
}

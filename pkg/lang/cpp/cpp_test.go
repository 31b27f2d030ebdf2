package cpp

import (
	"testing"

	"github.com/lu-zero/ndplus/pkg/lang"
	"github.com/lu-zero/ndplus/pkg/topic"
)

type recordedComment struct {
	lines []string
	line  int
	doc   bool
}

type recordingCallbacks struct {
	comments []recordedComment
	classes  []string
	parents  [][2]string
}

func (r *recordingCallbacks) OnComment(lines []string, line int, doc bool) int {
	copied := append([]string(nil), lines...)
	r.comments = append(r.comments, recordedComment{lines: copied, line: line, doc: doc})
	return 0
}

func (r *recordingCallbacks) OnClass(classSymbol string) {
	r.classes = append(r.classes, classSymbol)
}

func (r *recordingCallbacks) OnClassParent(classSymbol, parentSymbol, scope string, using []string) {
	r.parents = append(r.parents, [2]string{classSymbol, parentSymbol})
}

func parseCpp(t *testing.T, source string) (Result, *recordingCallbacks) {
	t.Helper()
	l, ok := lang.ByName("C++")
	if !ok {
		t.Fatal("C++ language not registered")
	}
	cb := &recordingCallbacks{}
	return New(l, cb).Parse(source), cb
}

func findTopic(topics []*topic.Topic, title string) *topic.Topic {
	for _, tp := range topics {
		if tp.Title == title {
			return tp
		}
	}
	return nil
}

func TestFunctionPrototype(t *testing.T) {
	res, _ := parseCpp(t, `int Add(int a, int b) {
    return a + b;
}
`)
	tp := findTopic(res.AutoTopics, "Add")
	if tp == nil {
		t.Fatalf("no topic for Add, got %d topics", len(res.AutoTopics))
	}
	if tp.Type != topic.TypeFunction {
		t.Errorf("type = %v, want function", tp.Type)
	}
	if tp.Prototype != "int Add(int a,int b)" {
		t.Errorf("prototype = %q", tp.Prototype)
	}
	if !tp.IsAuto {
		t.Errorf("front-end topics must be marked auto")
	}
	if tp.LineNumber != 1 {
		t.Errorf("line = %d, want 1", tp.LineNumber)
	}
}

func TestFunctionDeclarationOnly(t *testing.T) {
	res, _ := parseCpp(t, "double Scale(double factor);\n")
	tp := findTopic(res.AutoTopics, "Scale")
	if tp == nil {
		t.Fatal("declaration without body not recognized")
	}
	if tp.Prototype != "double Scale(double factor)" {
		t.Errorf("prototype = %q", tp.Prototype)
	}
}

func TestNamespaceScoping(t *testing.T) {
	res, _ := parseCpp(t, `namespace NS {
void F();
}
int G();
`)
	f := findTopic(res.AutoTopics, "F")
	if f == nil || f.Package != "NS" {
		t.Fatalf("F not scoped to NS: %+v", f)
	}
	g := findTopic(res.AutoTopics, "G")
	if g == nil || g.Package != "" {
		t.Fatalf("G should be global: %+v", g)
	}

	var scopes []string
	for _, ch := range res.ScopeRecord {
		scopes = append(scopes, ch.Scope)
	}
	if len(scopes) != 2 || scopes[0] != "NS" || scopes[1] != "" {
		t.Errorf("scope record = %v, want [NS \"\"]", scopes)
	}
}

func TestNestedNamespaces(t *testing.T) {
	res, _ := parseCpp(t, `namespace Outer {
namespace Inner {
void Deep();
}
}
`)
	tp := findTopic(res.AutoTopics, "Deep")
	if tp == nil || tp.Package != "Outer.Inner" {
		t.Fatalf("got %+v", tp)
	}
}

func TestClassWithParents(t *testing.T) {
	res, cb := parseCpp(t, `class Derived : public Base, private util::Mixin {
public:
    void Method();
};
`)
	cls := findTopic(res.AutoTopics, "Derived")
	if cls == nil || cls.Type != topic.TypeClass {
		t.Fatalf("class topic missing: %+v", cls)
	}
	m := findTopic(res.AutoTopics, "Method")
	if m == nil || m.Package != "Derived" {
		t.Fatalf("method not scoped to the class: %+v", m)
	}

	if len(cb.classes) != 1 || cb.classes[0] != "Derived" {
		t.Errorf("classes = %v", cb.classes)
	}
	if len(cb.parents) != 2 {
		t.Fatalf("parents = %v", cb.parents)
	}
	if cb.parents[0] != [2]string{"Derived", "Base"} {
		t.Errorf("first parent = %v", cb.parents[0])
	}
	if cb.parents[1] != [2]string{"Derived", "util.Mixin"} {
		t.Errorf("second parent = %v", cb.parents[1])
	}
}

func TestConstructorAndDestructor(t *testing.T) {
	res, _ := parseCpp(t, `class Widget {
public:
    Widget();
    ~Widget();
};
`)
	if tp := findTopic(res.AutoTopics, "Widget"); tp == nil || tp.Type != topic.TypeClass {
		t.Fatalf("class topic missing")
	}
	var ctor *topic.Topic
	for _, tp := range res.AutoTopics {
		if tp.Title == "Widget" && tp.Type == topic.TypeFunction {
			ctor = tp
		}
	}
	if ctor == nil {
		t.Fatal("constructor missing")
	}
	if ctor.Package != "Widget" {
		t.Errorf("constructor package = %q", ctor.Package)
	}
	dtor := findTopic(res.AutoTopics, "~Widget")
	if dtor == nil {
		t.Fatal("destructor missing")
	}
	if dtor.Prototype != "~Widget()" {
		t.Errorf("destructor prototype = %q", dtor.Prototype)
	}
}

func TestOutOfLineMethod(t *testing.T) {
	res, _ := parseCpp(t, `void NS::Widget::draw() {
}
`)
	tp := findTopic(res.AutoTopics, "draw")
	if tp == nil {
		t.Fatal("qualified method not recognized")
	}
	if tp.Package != "NS.Widget" {
		t.Errorf("package = %q, want NS.Widget", tp.Package)
	}
	if tp.Prototype != "void draw()" {
		t.Errorf("qualifier should leave the prototype, got %q", tp.Prototype)
	}
}

func TestOperatorOverload(t *testing.T) {
	res, _ := parseCpp(t, "bool operator==(const Point &a, const Point &b);\n")
	tp := findTopic(res.AutoTopics, "operator==")
	if tp == nil {
		t.Fatalf("operator not recognized, topics: %d", len(res.AutoTopics))
	}
}

func TestEnumElements(t *testing.T) {
	res, _ := parseCpp(t, `enum Color {
    Red,   // warm
    Green, /* natural */
    Blue = 4  // cool
};
`)
	tp := findTopic(res.AutoTopics, "Color")
	if tp == nil || tp.Type != topic.TypeEnumeration {
		t.Fatalf("enum topic missing: %+v", tp)
	}
	want := []topic.Element{
		{Name: "Red", Description: "warm"},
		{Name: "Green", Description: "natural"},
		{Name: "Blue", Description: "cool"},
	}
	if len(tp.Elements) != len(want) {
		t.Fatalf("elements = %+v", tp.Elements)
	}
	for i, e := range want {
		if tp.Elements[i] != e {
			t.Errorf("element %d = %+v, want %+v", i, tp.Elements[i], e)
		}
	}
}

func TestScopedEnum(t *testing.T) {
	res, _ := parseCpp(t, "enum class Mode : int { A, B };\n")
	tp := findTopic(res.AutoTopics, "Mode")
	if tp == nil || len(tp.Elements) != 2 {
		t.Fatalf("got %+v", tp)
	}
}

func TestVariablesAndConstants(t *testing.T) {
	res, _ := parseCpp(t, `static int counter = 0;
const int MaxRetries = 10;
std::string name;
`)
	v := findTopic(res.AutoTopics, "counter")
	if v == nil || v.Type != topic.TypeVariable {
		t.Fatalf("counter: %+v", v)
	}
	if v.Prototype != "static int counter" {
		t.Errorf("prototype = %q", v.Prototype)
	}

	c := findTopic(res.AutoTopics, "MaxRetries")
	if c == nil || c.Type != topic.TypeConstant {
		t.Fatalf("const declarations become constants: %+v", c)
	}

	if tp := findTopic(res.AutoTopics, "name"); tp == nil {
		t.Errorf("qualified-type variable missing")
	}
}

func TestMultipleDeclarators(t *testing.T) {
	res, _ := parseCpp(t, "int x, y;\n")
	if findTopic(res.AutoTopics, "x") == nil || findTopic(res.AutoTopics, "y") == nil {
		t.Fatalf("expected a topic per declarator, got %d", len(res.AutoTopics))
	}
	y := findTopic(res.AutoTopics, "y")
	if y.Prototype != "int y" {
		t.Errorf("rebuilt prototype = %q", y.Prototype)
	}
}

func TestStructFolding(t *testing.T) {
	res, _ := parseCpp(t, `struct S {
    int a;
    float b;
};
`)
	if len(res.AutoTopics) != 1 {
		t.Fatalf("expected one folded topic, got %d", len(res.AutoTopics))
	}
	tp := res.AutoTopics[0]
	if tp.Type != topic.TypeType {
		t.Errorf("folded struct type = %v, want type", tp.Type)
	}
	if tp.Prototype != "struct S { int a; float b; };" {
		t.Errorf("prototype = %q", tp.Prototype)
	}
	if len(tp.Elements) != 2 || tp.Elements[0].Name != "a" || tp.Elements[1].Name != "b" {
		t.Errorf("elements = %+v", tp.Elements)
	}
}

func TestStructWithMethodNotFolded(t *testing.T) {
	res, _ := parseCpp(t, `struct Handler {
    int id;
    void run();
};
`)
	tp := findTopic(res.AutoTopics, "Handler")
	if tp == nil || tp.Type != topic.TypeClass {
		t.Fatalf("struct with methods must stay a class: %+v", tp)
	}
	if findTopic(res.AutoTopics, "run") == nil {
		t.Errorf("method topic lost")
	}
}

func TestUsingNamespace(t *testing.T) {
	res, _ := parseCpp(t, `using namespace Other;
void H();
`)
	tp := findTopic(res.AutoTopics, "H")
	if tp == nil {
		t.Fatal("H not recognized")
	}
	if len(tp.Using) != 1 || tp.Using[0] != "Other" {
		t.Errorf("using = %v", tp.Using)
	}
}

func TestExternLinkageKeepsScope(t *testing.T) {
	res, _ := parseCpp(t, `extern "C" {
int CApi(int x);
}
`)
	tp := findTopic(res.AutoTopics, "CApi")
	if tp == nil || tp.Package != "" {
		t.Fatalf("extern block must not open a package: %+v", tp)
	}
}

func TestCommentGrouping(t *testing.T) {
	_, cb := parseCpp(t, `/// Line one
/// Line two
int x;

// separate
int y;
`)
	if len(cb.comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(cb.comments))
	}
	first := cb.comments[0]
	if len(first.lines) != 2 || first.line != 1 || !first.doc {
		t.Errorf("first comment = %+v", first)
	}
	second := cb.comments[1]
	if len(second.lines) != 1 || second.doc {
		t.Errorf("second comment = %+v", second)
	}
}

func TestTemplatesSkipped(t *testing.T) {
	res, _ := parseCpp(t, `template <typename T>
T Identity(T value) {
    return value;
}
`)
	tp := findTopic(res.AutoTopics, "Identity")
	if tp == nil {
		t.Fatal("templated function not recognized")
	}
	if tp.Prototype != "T Identity(T value)" {
		t.Errorf("prototype = %q", tp.Prototype)
	}
}

func TestPreprocessorIgnored(t *testing.T) {
	res, _ := parseCpp(t, `#include <vector>
#define MAX 10
int v;
`)
	if len(res.AutoTopics) != 1 || res.AutoTopics[0].Title != "v" {
		t.Fatalf("got %d topics", len(res.AutoTopics))
	}
}

func TestNormalizePrototype(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"int  Add ( int a , int b )", "int Add(int a,int b)"},
		{"int * x", "int* x"},
		{"vector < int > v", "vector<int> v"},
		{"struct S { int a ; float b ; } ;", "struct S { int a; float b; };"},
	}
	for _, c := range cases {
		got := NormalizePrototype(c.in)
		if got != c.want {
			t.Errorf("NormalizePrototype(%q) = %q, want %q", c.in, got, c.want)
		}
		if again := NormalizePrototype(got); again != got {
			t.Errorf("not a fixed point: %q -> %q", got, again)
		}
	}
}

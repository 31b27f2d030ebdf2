package tokenizer

import (
	"testing"

	"github.com/lu-zero/ndplus/pkg/lang"
)

func cppLang(t *testing.T) *lang.Language {
	t.Helper()
	l, ok := lang.ByName("C++")
	if !ok {
		t.Fatal("C++ language not registered")
	}
	return l
}

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizerBasics(t *testing.T) {
	input := `namespace Test {
    class MyClass {
    public:
        void method();
    };
}`

	tokens := New(input, cppLang(t)).Tokenize()

	if tokens[len(tokens)-1].Kind != KindEOF {
		t.Errorf("Expected trailing EOF token, got %v", tokens[len(tokens)-1].Kind)
	}

	foundNamespace := false
	foundBrace := false
	for _, tok := range tokens {
		if tok.Kind == KindIdentifier && tok.Value == "namespace" {
			foundNamespace = true
		}
		if tok.Kind == KindPunct && tok.Value == "{" {
			foundBrace = true
		}
	}
	if !foundNamespace {
		t.Error("Expected to find namespace identifier token")
	}
	if !foundBrace {
		t.Error("Expected to find brace punctuation token")
	}
}

func TestTokenizerSinglePunctuation(t *testing.T) {
	tokens := New("a::b", cppLang(t)).Tokenize()

	want := []Kind{KindIdentifier, KindPunct, KindPunct, KindIdentifier, KindEOF}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(got), tokens)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTokenizerLineNumbers(t *testing.T) {
	input := "int a;\nint b;\nint c;"
	tokens := New(input, cppLang(t)).Tokenize()

	for _, tok := range tokens {
		if tok.Kind != KindIdentifier || tok.Value != "c" {
			continue
		}
		if tok.Line != 3 {
			t.Errorf("Expected c on line 3, got %d", tok.Line)
		}
		return
	}
	t.Error("Did not find identifier c")
}

func TestTokenizerDocComments(t *testing.T) {
	input := "/// doc line\n// plain line\n/** doc block */\n/* plain block */"
	tokens := New(input, cppLang(t)).Tokenize()

	var comments []Token
	for _, tok := range tokens {
		if tok.Kind == KindComment {
			comments = append(comments, tok)
		}
	}
	if len(comments) != 4 {
		t.Fatalf("Expected 4 comments, got %d", len(comments))
	}
	wantDoc := []bool{true, false, true, false}
	for i, c := range comments {
		if c.Doc != wantDoc[i] {
			t.Errorf("Comment %d: expected doc=%v, got %v (%q)", i, wantDoc[i], c.Doc, c.Value)
		}
	}
}

func TestTokenizerUnterminatedString(t *testing.T) {
	input := "const char* s = \"never closed\nint after;"
	tokens := New(input, cppLang(t)).Tokenize()

	foundAfter := false
	for _, tok := range tokens {
		if tok.Kind == KindIdentifier && tok.Value == "after" {
			foundAfter = true
			if tok.Line != 2 {
				t.Errorf("Expected after on line 2, got %d", tok.Line)
			}
		}
	}
	if !foundAfter {
		t.Error("Unterminated string swallowed the next line")
	}
}

func TestTokenizerUnterminatedBlockComment(t *testing.T) {
	input := "/* runs to the end\nof the file"
	tokens := New(input, cppLang(t)).Tokenize()

	if len(tokens) != 2 {
		t.Fatalf("Expected comment + EOF, got %v", tokens)
	}
	if tokens[0].Kind != KindComment {
		t.Errorf("Expected comment, got %v", tokens[0].Kind)
	}
}

func TestTokenizerPreprocessor(t *testing.T) {
	input := "#define FOO \\\n    42\nint x;"
	tokens := New(input, cppLang(t)).Tokenize()

	if tokens[0].Kind != KindPreprocessor {
		t.Fatalf("Expected preprocessor token first, got %v", tokens[0])
	}
	if tokens[0].Line != 1 {
		t.Errorf("Expected directive on line 1, got %d", tokens[0].Line)
	}

	foundX := false
	for _, tok := range tokens {
		if tok.Kind == KindIdentifier && tok.Value == "x" {
			foundX = true
			if tok.Line != 3 {
				t.Errorf("Expected x on line 3, got %d", tok.Line)
			}
		}
	}
	if !foundX {
		t.Error("Continuation swallowed the declaration after it")
	}
}

func TestTokenizerPreprocessorMidLine(t *testing.T) {
	tokens := New("int a; # not a directive", cppLang(t)).Tokenize()

	for _, tok := range tokens {
		if tok.Kind == KindPreprocessor {
			t.Error("# after code on the same line must not start a directive")
		}
	}
}

func TestTokenizerNeverHangs(t *testing.T) {
	// lone backslashes and stray bytes must not stall the scanner
	tokens := New("\\ \x01 \\", cppLang(t)).Tokenize()
	if tokens[len(tokens)-1].Kind != KindEOF {
		t.Error("Scan did not reach EOF")
	}
}

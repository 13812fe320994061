package engine

import "testing"

func TestLiteralExec(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		pattern string
		text    string
		start   int
		end     int
		want    span
	}{
		{"plain", Options{}, "wor", "hello world", 0, 11, span{6, 9, true}},
		{"ascii folded", Options{}, "WOR", "Hello WORLD", 0, 11, span{6, 9, true}},
		{"case sensitive", Options{CaseSensitive: true}, "WOR", "hello world", 0, 11, span{}},
		{"metacharacters are literal", Options{}, "a.b", "axb a.b", 0, 7, span{4, 7, true}},
		{"from offset", Options{}, "o", "hello world", 5, 11, span{7, 8, true}},
		{"bounded end", Options{}, "world", "hello world", 0, 10, span{}},
		{"non-ascii exact", Options{}, "中", "a中b", 0, 5, span{1, 4, true}},
		{"non-ascii folded", Options{}, "É", "café", 0, 5, span{3, 5, true}},
		{"non-ascii folded needle", Options{}, "CAFÉ", "un café", 0, 8, span{3, 8, true}},
		{"non-ascii case sensitive", Options{CaseSensitive: true}, "É", "café", 0, 5, span{}},
		{"greek", Options{}, "σ", "ΟΔΟΣ", 0, 8, span{6, 8, true}},
		{"empty range", Options{}, "a", "abc", 1, 1, span{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := execOnce(t, NewLiteral(tt.opts), tt.pattern, tt.text, tt.start, tt.end); got != tt.want {
				t.Errorf("Exec() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLiteralEmptyPattern(t *testing.T) {
	if got := execOnce(t, NewLiteral(Options{}), "", "abc", 0, 3); got.ok {
		t.Errorf("empty pattern matched at %+v", got)
	}
}

// TestLiteralFoldCacheFollowsText reuses one program over different texts of
// the same length.
func TestLiteralFoldCacheFollowsText(t *testing.T) {
	prog, err := NewLiteral(Options{}).Compile("AB")
	if err != nil {
		t.Fatal(err)
	}
	defer prog.Release()

	first := []byte("xxAB")
	if so, eo, ok := prog.Exec(first, 0, 4); !ok || so != 2 || eo != 4 {
		t.Fatalf("first Exec() = %d, %d, %v", so, eo, ok)
	}

	second := []byte("abxx")
	if so, eo, ok := prog.Exec(second, 0, 4); !ok || so != 0 || eo != 2 {
		t.Fatalf("second Exec() = %d, %d, %v", so, eo, ok)
	}
}

func TestFoldCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HeLLo, 123", "HELLO, 123"},
		{"äÄ", "ÄÄ"},
		{"ς σ Σ", "Σ Σ Σ"},
		{"\u212a k", "\u212a K"},
		{"a\xffb", "A\xffB"},
	}
	for _, tt := range tests {
		got := string(foldCase(nil, []byte(tt.in)))
		if got != tt.want {
			t.Errorf("foldCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if len(got) != len(tt.in) {
			t.Errorf("foldCase(%q) changed length %d -> %d", tt.in, len(tt.in), len(got))
		}
	}
}

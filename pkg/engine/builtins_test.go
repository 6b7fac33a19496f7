package engine

import (
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"
)

func TestPreprocessSourceKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple keyword",
			input:    "(sphere :radius 10)",
			expected: `(sphere "__kw_radius" 10)`,
		},
		{
			name:     "multiple keywords",
			input:    "(sphere :nphi 64 :ntheta 33)",
			expected: `(sphere "__kw_nphi" 64 "__kw_ntheta" 33)`,
		},
		{
			name:     "kebab keyword",
			input:    "(torus :major-radius 30)",
			expected: `(torus "__kw_major-radius" 30)`,
		},
		{
			name:     "keyword inside string untouched",
			input:    `(load-mesh "a:b.ply")`,
			expected: `(load_mesh "a:b.ply")`,
		},
		{
			name:     "assignment operator preserved",
			input:    "(x := 5)",
			expected: "(x := 5)",
		},
		{
			name:     "no keywords",
			input:    "(+ 1 2)",
			expected: "(+ 1 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expected {
				t.Errorf("preprocessSource(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPreprocessSourceKebabCase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "function name",
			input:    "(write-mesh m path)",
			expected: "(write_mesh m path)",
		},
		{
			name:     "subtraction untouched",
			input:    "(- 10 5)",
			expected: "(- 10 5)",
		},
		{
			name:     "negative literal untouched",
			input:    "(displace m -1.5)",
			expected: "(displace m -1.5)",
		},
		{
			name:     "hyphen in string untouched",
			input:    `(load-mesh "two-color.ply")`,
			expected: `(load_mesh "two-color.ply")`,
		},
		{
			name:     "number minus identifier untouched",
			input:    "(- 1 x)",
			expected: "(- 1 x)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expected {
				t.Errorf("preprocessSource(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPreprocessSourceComments(t *testing.T) {
	got := preprocessSource("; carve the sea\n(+ 1 2)")
	expected := "// carve the sea\n(+ 1 2)"
	if got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}

	// Double semicolons collapse to a single // as well.
	got = preprocessSource(";; header\n")
	expected = "// header\n"
	if got != expected {
		t.Errorf("got %q, expected %q", got, expected)
	}
}

func TestIsKW(t *testing.T) {
	name, ok := isKW(&zygo.SexpStr{S: "__kw_radius"})
	if !ok || name != "radius" {
		t.Errorf("expected (radius, true), got (%s, %v)", name, ok)
	}

	_, ok = isKW(&zygo.SexpStr{S: "plain string"})
	if ok {
		t.Error("plain string should not be a keyword")
	}

	_, ok = isKW(&zygo.SexpInt{Val: 42})
	if ok {
		t.Error("integer should not be a keyword")
	}
}

func TestParseArgs(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpStr{S: "input.ply"},
		&zygo.SexpStr{S: "__kw_sigma"},
		&zygo.SexpFloat{Val: 2.5},
		&zygo.SexpStr{S: "__kw_reverse"},
		&zygo.SexpBool{Val: true},
	}

	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		t.Fatalf("expected 1 positional arg, got %d", len(pa.positional))
	}
	if s, _ := toString(pa.positional[0]); s != "input.ply" {
		t.Errorf("positional[0] = %q", s)
	}
	if len(pa.kw) != 2 {
		t.Fatalf("expected 2 keyword args, got %d", len(pa.kw))
	}
	sigma, err := pa.kwFloat("sigma", 0)
	if err != nil || sigma != 2.5 {
		t.Errorf("sigma = %v, err = %v", sigma, err)
	}
	rev, err := toBool(pa.kw["reverse"])
	if err != nil || !rev {
		t.Errorf("reverse = %v, err = %v", rev, err)
	}
}

func TestParseArgsTrailingKeyword(t *testing.T) {
	// A keyword with no value is treated as a boolean flag.
	pa := parseArgs([]zygo.Sexp{&zygo.SexpStr{S: "__kw_reverse"}})
	v, ok := pa.kw["reverse"]
	if !ok {
		t.Fatal("expected reverse flag present")
	}
	b, err := toBool(v)
	if err != nil || !b {
		t.Errorf("expected true flag, got %v (err %v)", b, err)
	}
}

func TestKwDefaults(t *testing.T) {
	pa := parseArgs(nil)
	f, err := pa.kwFloat("sigma", 3.5)
	if err != nil || f != 3.5 {
		t.Errorf("kwFloat default = %v, err = %v", f, err)
	}
	n, err := pa.kwInt("nphi", 64)
	if err != nil || n != 64 {
		t.Errorf("kwInt default = %v, err = %v", n, err)
	}
}

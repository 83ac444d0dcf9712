package exprlang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/jacoelho/oglob"
)

// writeTree creates root/{a.py, b.txt, tests/c.py, src/d.go}.
func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"tests", "src"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, file := range []string{"a.py", "b.txt", filepath.Join("tests", "c.py"), filepath.Join("src", "d.go")} {
		if err := os.WriteFile(filepath.Join(root, file), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func matchedNames(t *testing.T, root string, pattern oglob.Pattern) []string {
	t.Helper()
	var names []string
	for path, err := range oglob.Search(context.Background(), root, pattern, oglob.Recursive(true)) {
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		names = append(names, filepath.Base(path))
	}
	sort.Strings(names)
	return names
}

func TestCompile(t *testing.T) {
	root := writeTree(t)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "name_glob",
			input: `name("*.py")`,
			want:  []string{"a.py", "c.py"},
		},
		{
			name:  "ext",
			input: `ext(".py")`,
			want:  []string{"a.py", "c.py"},
		},
		{
			name:  "and_section",
			input: `name("*.py") and relsec("tests")`,
			want:  []string{"c.py"},
		},
		{
			name:  "diff",
			input: `name("*.py") - relsec("tests")`,
			want:  []string{"a.py"},
		},
		{
			name:  "or",
			input: `ext(".txt") or ext(".go")`,
			want:  []string{"b.txt", "d.go"},
		},
		{
			name:  "not",
			input: `not ext(".py") and not ext(".txt")`,
			want:  []string{"d.go"},
		},
		{
			name:  "symbols",
			input: `ext(".py") | ext(".go") & relsec("src")`,
			want:  []string{"a.py", "c.py", "d.go"},
		},
		{
			name:  "parentheses",
			input: `(ext(".py") | ext(".go")) & relsec("src")`,
			want:  []string{"d.go"},
		},
		{
			name:  "full_glob_crosses_directories",
			input: `full("**/tests/*.py")`,
			want:  []string{"c.py"},
		},
		{
			name:  "regex_on_name",
			input: `match("^[ac]\\.")`,
			want:  []string{"a.py", "c.py"},
		},
		{
			name:  "diff_is_left_associative",
			input: `name("*") - ext(".txt") - ext(".go")`,
			want:  []string{"a.py", "c.py"},
		},
		{
			name:  "double_negation",
			input: `not not ext(".py")`,
			want:  []string{"a.py", "c.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, err := Compile(tt.input)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.input, err)
			}
			if got := matchedNames(t, root, pattern); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile(%q) matched %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompileWithResolver(t *testing.T) {
	root := writeTree(t)

	python, err := Compile(`ext(".py")`)
	if err != nil {
		t.Fatal(err)
	}
	resolve := func(name string) (oglob.Pattern, bool) {
		if name == "python" {
			return python, true
		}
		return oglob.Pattern{}, false
	}

	pattern, err := CompileWith(`rule("python") - relsec("tests")`, resolve)
	if err != nil {
		t.Fatalf("CompileWith failed: %v", err)
	}
	if got := matchedNames(t, root, pattern); !reflect.DeepEqual(got, []string{"a.py"}) {
		t.Errorf("rule reference matched %v, want [a.py]", got)
	}

	if _, err := CompileWith(`rule("missing")`, resolve); !errors.Is(err, ErrSyntax) {
		t.Errorf("unknown rule error = %v, want ErrSyntax", err)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "   "},
		{name: "missing_operand", input: `ext(".py") and`},
		{name: "unbalanced_paren", input: `(ext(".py")`},
		{name: "bare_identifier", input: `python`},
		{name: "unknown_primitive", input: `size("10")`},
		{name: "bad_glob", input: `name("[")`},
		{name: "bad_regex", input: `match("(")`},
		{name: "rule_without_ruleset", input: `rule("python")`},
		{name: "trailing_tokens", input: `ext(".py") ext(".go")`},
		{name: "argument_not_string", input: `ext(py)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.input); !errors.Is(err, ErrSyntax) {
				t.Errorf("Compile(%q) error = %v, want ErrSyntax", tt.input, err)
			}
		})
	}
}

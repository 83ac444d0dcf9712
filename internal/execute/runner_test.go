package execute

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/oglob/internal/config"
	"github.com/jacoelho/oglob/internal/report"
)

// writeTree creates root/{a.py, b.txt, tests/c.py}.
func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "tests"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, file := range []string{"a.py", "b.txt", filepath.Join("tests", "c.py")} {
		if err := os.WriteFile(filepath.Join(root, file), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func runScan(t *testing.T, cfg *config.Config) (code int, stdout, stderr string) {
	t.Helper()

	runner, exitResult := New(cfg)
	if exitResult != nil {
		t.Fatalf("New failed: %s", exitResult.Message)
	}

	var out, errOut bytes.Buffer
	runner.SetOutput(&out)
	runner.SetErrorOutput(&errOut)

	return runner.Run(context.Background()), out.String(), errOut.String()
}

func outputNames(stdout string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if line != "" {
			names = append(names, filepath.Base(line))
		}
	}
	sort.Strings(names)
	return names
}

func TestRunExpression(t *testing.T) {
	root := writeTree(t)
	cfg := &config.Config{
		Expression:     `name("*.py") - relsec("tests")`,
		Roots:          []string{root},
		Recursive:      true,
		FollowSymlinks: true,
		Format:         report.FormatText,
	}

	code, stdout, stderr := runScan(t, cfg)

	if code != 0 {
		t.Fatalf("Run = %d, stderr: %s", code, stderr)
	}
	if got := outputNames(stdout); !reflect.DeepEqual(got, []string{"a.py"}) {
		t.Errorf("matches = %v, want [a.py]", got)
	}
}

func TestRunMultipleRoots(t *testing.T) {
	first := writeTree(t)
	second := writeTree(t)
	cfg := &config.Config{
		Expression:     `ext(".py")`,
		Roots:          []string{first, second},
		FollowSymlinks: true,
		Format:         report.FormatText,
	}

	code, stdout, _ := runScan(t, cfg)

	if code != 0 {
		t.Fatalf("Run = %d", code)
	}
	if got := outputNames(stdout); !reflect.DeepEqual(got, []string{"a.py", "a.py"}) {
		t.Errorf("matches = %v, want one a.py per root", got)
	}
}

func TestRunNamedRule(t *testing.T) {
	root := writeTree(t)
	rulesFile := filepath.Join(t.TempDir(), "rules.yaml")
	rules := `
rules:
  - name: python
    pattern: ext(".py")
  - name: prod-python
    pattern: rule("python") - relsec("tests")
`
	if err := os.WriteFile(rulesFile, []byte(rules), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		RulesFile:      rulesFile,
		RuleName:       "prod-python",
		Roots:          []string{root},
		Recursive:      true,
		FollowSymlinks: true,
		Format:         report.FormatText,
	}

	code, stdout, stderr := runScan(t, cfg)

	if code != 0 {
		t.Fatalf("Run = %d, stderr: %s", code, stderr)
	}
	if got := outputNames(stdout); !reflect.DeepEqual(got, []string{"a.py"}) {
		t.Errorf("matches = %v, want [a.py]", got)
	}
}

func TestRunJSONMatches(t *testing.T) {
	root := writeTree(t)
	cfg := &config.Config{
		Expression:     `ext(".py")`,
		Roots:          []string{root},
		FollowSymlinks: true,
		Format:         report.FormatJSON,
	}

	code, stdout, _ := runScan(t, cfg)

	if code != 0 {
		t.Fatalf("Run = %d", code)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 1 {
		t.Fatalf("output = %q, want one JSON line", stdout)
	}

	var match struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &match); err != nil {
		t.Fatalf("match line does not parse: %v", err)
	}
	if filepath.Base(match.Path) != "a.py" {
		t.Errorf("match path = %q, want a.py", match.Path)
	}
}

func TestRunReport(t *testing.T) {
	root := writeTree(t)
	cfg := &config.Config{
		Expression:     `ext(".py")`,
		Roots:          []string{root},
		Recursive:      true,
		FollowSymlinks: true,
		Format:         report.FormatJSON,
		Report:         true,
		Quiet:          true,
	}

	code, stdout, stderr := runScan(t, cfg)

	if code != 0 {
		t.Fatalf("Run = %d", code)
	}
	if stdout != "" {
		t.Errorf("quiet run printed matches: %q", stdout)
	}

	var doc any
	if err := json.Unmarshal([]byte(stderr), &doc); err != nil {
		t.Fatalf("report does not parse as JSON: %v\n%s", err, stderr)
	}

	tests := []struct {
		path string
		want any
	}{
		{path: "$.expression", want: `ext(".py")`},
		{path: "$.matched", want: float64(2)},
		{path: "$.skipped_errors", want: float64(0)},
		{path: "$.roots[0]", want: root},
	}
	for _, tt := range tests {
		path, err := jsonpath.Parse(tt.path)
		if err != nil {
			t.Fatalf("invalid JSONPath %q: %v", tt.path, err)
		}
		results := path.Select(doc)
		if len(results) != 1 || results[0] != tt.want {
			t.Errorf("%s = %v, want %v", tt.path, results, tt.want)
		}
	}
}

func TestRunStrictMissingRoot(t *testing.T) {
	cfg := &config.Config{
		Expression:     `ext(".py")`,
		Roots:          []string{filepath.Join(t.TempDir(), "absent")},
		StrictMissing:  true,
		FollowSymlinks: true,
		Format:         report.FormatText,
	}

	code, _, stderr := runScan(t, cfg)

	if code != 1 {
		t.Errorf("Run = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q, want an error line", stderr)
	}
}

func TestRunMissingRootTolerated(t *testing.T) {
	cfg := &config.Config{
		Expression:     `ext(".py")`,
		Roots:          []string{filepath.Join(t.TempDir(), "absent")},
		FollowSymlinks: true,
		Format:         report.FormatText,
	}

	code, stdout, _ := runScan(t, cfg)

	if code != 0 {
		t.Errorf("Run = %d, want 0", code)
	}
	if stdout != "" {
		t.Errorf("missing root printed %q, want nothing", stdout)
	}
}

func TestRunCancelledContext(t *testing.T) {
	root := writeTree(t)
	cfg := &config.Config{
		Expression:     `ext(".py")`,
		Roots:          []string{root},
		FollowSymlinks: true,
		Format:         report.FormatText,
	}

	runner, exitResult := New(cfg)
	if exitResult != nil {
		t.Fatalf("New failed: %s", exitResult.Message)
	}
	var out, errOut bytes.Buffer
	runner.SetOutput(&out)
	runner.SetErrorOutput(&errOut)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code := runner.Run(ctx); code != 1 {
		t.Errorf("Run = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "Interrupted") {
		t.Errorf("stderr = %q, want interruption notice", errOut.String())
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{
			name: "bad_expression",
			cfg:  &config.Config{Expression: `ext(`, Roots: []string{"."}},
		},
		{
			name: "missing_ruleset",
			cfg:  &config.Config{RulesFile: "absent.yaml", RuleName: "python", Roots: []string{"."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, exitResult := New(tt.cfg)
			if runner != nil {
				t.Fatal("New should fail")
			}
			if exitResult == nil || exitResult.ExitCode != 1 {
				t.Errorf("exit result = %+v, want code 1", exitResult)
			}
		})
	}
}

func TestNewUnknownRule(t *testing.T) {
	rulesFile := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(rulesFile, []byte("rules:\n  - name: python\n    pattern: ext(\".py\")\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{RulesFile: rulesFile, RuleName: "absent", Roots: []string{"."}}
	runner, exitResult := New(cfg)
	if runner != nil {
		t.Fatal("New should fail for an unknown rule")
	}
	if exitResult == nil || !strings.Contains(exitResult.Message, `rule "absent"`) {
		t.Errorf("exit result = %+v, want unknown rule message", exitResult)
	}
}

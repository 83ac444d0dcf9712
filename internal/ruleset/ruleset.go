// Package ruleset loads named pattern rules from YAML files. Rules compile
// in file order and may reference earlier rules with rule("name"), so every
// ruleset is acyclic by construction.
package ruleset

import (
	"errors"
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/oglob"
	"github.com/jacoelho/oglob/internal/exprlang"
)

// ErrRuleset is the sentinel error for all ruleset loading failures.
var ErrRuleset = errors.New("ruleset error")

// Rule is one named pattern definition.
type Rule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Pattern     string `yaml:"pattern"`
}

type document struct {
	Rules []Rule `yaml:"rules"`
}

// Set holds the compiled rules of one ruleset file.
type Set struct {
	order    []Rule
	compiled map[string]oglob.Pattern
}

// Load reads and compiles a ruleset file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleset, err)
	}

	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, path)
	}
	return set, nil
}

// Parse compiles a YAML ruleset document.
func Parse(data []byte) (*Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuleset, err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules defined", ErrRuleset)
	}

	set := &Set{
		compiled: make(map[string]oglob.Pattern, len(doc.Rules)),
	}

	for _, rule := range doc.Rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("%w: rule without a name", ErrRuleset)
		}
		if rule.Pattern == "" {
			return nil, fmt.Errorf("%w: rule %q has no pattern", ErrRuleset, rule.Name)
		}
		if _, exists := set.compiled[rule.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate rule %q", ErrRuleset, rule.Name)
		}

		pattern, err := exprlang.CompileWith(rule.Pattern, set.resolve)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %q: %v", ErrRuleset, rule.Name, err)
		}

		set.compiled[rule.Name] = pattern
		set.order = append(set.order, rule)
	}

	return set, nil
}

func (s *Set) resolve(name string) (oglob.Pattern, bool) {
	pattern, ok := s.compiled[name]
	return pattern, ok
}

// Pattern returns the compiled pattern of a named rule.
func (s *Set) Pattern(name string) (oglob.Pattern, bool) {
	return s.resolve(name)
}

// Resolver exposes the set for rule() references in ad-hoc expressions.
func (s *Set) Resolver() exprlang.Resolver {
	return s.resolve
}

// Rules returns the rules in definition order.
func (s *Set) Rules() []Rule {
	return s.order
}

// Package config parses command-line arguments for the oglob tool.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/oglob/internal/exit"
	"github.com/jacoelho/oglob/internal/report"
)

var (
	ErrNoArguments       = errors.New("no arguments provided")
	ErrNoExpression      = errors.New("no pattern expression or -rule specified")
	ErrExpressionAndRule = errors.New("a pattern expression and -rule are mutually exclusive")
	ErrRuleWithoutRules  = errors.New("-rule requires -rules")
)

// Config represents the complete configuration for the oglob tool.
type Config struct {
	// Pattern selection
	Expression string // ad-hoc pattern expression, empty when RuleName is set
	RulesFile  string // optional YAML ruleset, enables rule() references
	RuleName   string // named rule used instead of an expression

	// Traversal
	Roots          []string
	Recursive      bool
	IncludeDirs    bool
	FollowSymlinks bool
	SkipErrors     bool
	StrictMissing  bool

	// Output
	Format    report.Format
	Report    bool
	Quiet     bool
	RateLimit float64 // matches per second (0 = unlimited)
}

// PatternLabel names the pattern for report output.
func (c *Config) PatternLabel() string {
	if c.RuleName != "" {
		return fmt.Sprintf("rule(%q)", c.RuleName)
	}
	return c.Expression
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Expression == "" && c.RuleName == "" {
		return ErrNoExpression
	}
	if c.Expression != "" && c.RuleName != "" {
		return ErrExpressionAndRule
	}
	if c.RuleName != "" && c.RulesFile == "" {
		return ErrRuleWithoutRules
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); err != nil {
			return fmt.Errorf("ruleset %s not found: %w", c.RulesFile, err)
		}
	}

	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.UsageError(ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Usage and errors are reported through exit results, not by the FlagSet.
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		recursive     = fs.Bool("r", false, "Search subdirectories recursively")
		includeDirs   = fs.Bool("d", false, "Match and print directories as well as files")
		noFollow      = fs.Bool("P", false, "Do not follow symbolic links")
		skipErrors    = fs.Bool("skip-errors", false, "Skip unreadable directories and continue")
		strictMissing = fs.Bool("strict-missing", false, "Fail when a search root does not exist")
		rulesFile     = fs.String("rules", "", "Path to a YAML ruleset file")
		ruleName      = fs.String("rule", "", "Search with a named rule from the ruleset")
		rateLimit     = fs.Float64("rate-limit", 0, "Rate limit in matches per second (0 for unlimited)")
		format        = fs.String("format", "text", "Output format: text or json")
		withReport    = fs.Bool("report", false, "Print a scan summary to stderr")
		quiet         = fs.Bool("quiet", false, "Suppress match output")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.UsageError(err, Usage())
	}

	outputFormat, err := report.ParseFormat(*format)
	if err != nil {
		return nil, exit.UsageError(err, Usage())
	}

	cfg := &Config{
		RulesFile:      *rulesFile,
		RuleName:       *ruleName,
		Recursive:      *recursive,
		IncludeDirs:    *includeDirs,
		FollowSymlinks: !*noFollow,
		SkipErrors:     *skipErrors,
		StrictMissing:  *strictMissing,
		Format:         outputFormat,
		Report:         *withReport,
		Quiet:          *quiet,
		RateLimit:      *rateLimit,
	}

	positional := fs.Args()
	if cfg.RuleName == "" && len(positional) > 0 {
		cfg.Expression = positional[0]
		positional = positional[1:]
	}
	cfg.Roots = positional
	if len(cfg.Roots) == 0 {
		cfg.Roots = []string{"."}
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.UsageError(err, Usage())
	}

	return cfg, nil
}

// Usage returns the tool usage text.
func Usage() string {
	return `Usage: oglob [options] <expression> [root ...]
       oglob [options] -rules FILE -rule NAME [root ...]

Walks each root (default ".") and prints objects matching the pattern.

Expressions combine primitives with and/&, or/|, not/!/~ and - (difference):
  name("*.py")      glob over the final name component
  full("**/src/*")  glob over the absolute slash-separated path
  sec("tests")      absolute path contains the segment
  relsec("tests")   path below the root contains the segment
  ext(".py")        name suffix
  match("^a")       regular expression over the name
  rule("python")    reference a ruleset rule (requires -rules)

Example:
  oglob -r 'name("*.py") - relsec("tests")' ./src

Options:
  -r              Search subdirectories recursively
  -d              Match and print directories as well as files
  -P              Do not follow symbolic links
  -skip-errors    Skip unreadable directories and continue
  -strict-missing Fail when a search root does not exist
  -rules FILE     Path to a YAML ruleset file
  -rule NAME      Search with a named rule from the ruleset
  -rate-limit N   Rate limit in matches per second (0 for unlimited)
  -format FORMAT  Output format: text or json (default text)
  -report         Print a scan summary to stderr
  -quiet          Suppress match output
  -h, -help       Show this help
`
}

// Package execute runs a configured scan: it compiles the pattern, drives
// the search over each root, and prints matches and the optional summary.
package execute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/oglob"
	"github.com/jacoelho/oglob/internal/config"
	"github.com/jacoelho/oglob/internal/exit"
	"github.com/jacoelho/oglob/internal/exprlang"
	"github.com/jacoelho/oglob/internal/ratelimit"
	"github.com/jacoelho/oglob/internal/report"
	"github.com/jacoelho/oglob/internal/ruleset"
)

type Runner struct {
	config    *config.Config
	pattern   oglob.Pattern
	limiter   *ratelimit.Limiter
	output    io.Writer
	errOutput io.Writer
}

func New(cfg *config.Config) (*Runner, *exit.Result) {
	pattern, err := compilePattern(cfg)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n", err)
	}

	return &Runner{
		config:    cfg,
		pattern:   pattern,
		limiter:   ratelimit.New(cfg.RateLimit),
		output:    os.Stdout,
		errOutput: os.Stderr,
	}, nil
}

func compilePattern(cfg *config.Config) (oglob.Pattern, error) {
	if cfg.RulesFile == "" {
		return exprlang.Compile(cfg.Expression)
	}

	set, err := ruleset.Load(cfg.RulesFile)
	if err != nil {
		return oglob.Pattern{}, err
	}

	if cfg.RuleName != "" {
		pattern, ok := set.Pattern(cfg.RuleName)
		if !ok {
			return oglob.Pattern{}, fmt.Errorf("rule %q is not defined in %s", cfg.RuleName, cfg.RulesFile)
		}
		return pattern, nil
	}

	return exprlang.CompileWith(cfg.Expression, set.Resolver())
}

func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

func (r *Runner) SetErrorOutput(w io.Writer) {
	r.errOutput = w
}

func (r *Runner) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errOutput, format, args...)
}

// Run scans every configured root and returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	summary := report.New(r.config.PatternLabel(), r.config.Roots)
	opts := r.searchOptions(summary)

	failed := false

roots:
	for _, root := range r.config.Roots {
		for path, err := range oglob.Search(ctx, root, r.pattern, opts...) {
			if err != nil {
				failed = true
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					summary.Interrupted = true
					r.logf("Interrupted\n")
				} else {
					r.logf("Error: %v\n", err)
				}
				break roots
			}

			// The sequence is pull-based, so waiting here throttles the
			// walk itself.
			if err := r.limiter.Wait(ctx); err != nil {
				failed = true
				summary.Interrupted = true
				r.logf("Interrupted\n")
				break roots
			}

			summary.AddMatch()
			if !r.config.Quiet {
				if err := r.printMatch(path); err != nil {
					failed = true
					r.logf("Error: %v\n", err)
					break roots
				}
			}
		}
	}

	summary.Finish()
	if r.config.Report {
		if err := summary.Render(r.config.Format, r.errOutput); err != nil {
			r.logf("Error: %v\n", err)
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

func (r *Runner) searchOptions(summary *report.Summary) []oglob.Option {
	opts := []oglob.Option{
		oglob.Recursive(r.config.Recursive),
		oglob.IncludeDir(r.config.IncludeDirs),
		oglob.FollowSymlinks(r.config.FollowSymlinks),
		oglob.MissingOK(!r.config.StrictMissing),
	}

	if r.config.SkipErrors {
		opts = append(opts, oglob.OnError(func(path string, err error) bool {
			summary.AddSkipped(path, err)
			return true
		}))
	}

	return opts
}

func (r *Runner) printMatch(path string) error {
	if r.config.Format == report.FormatJSON {
		line, err := json.Marshal(struct {
			Path string `json:"path"`
		}{Path: path})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(r.output, "%s\n", line)
		return err
	}

	_, err := fmt.Fprintln(r.output, path)
	return err
}

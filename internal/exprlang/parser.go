package exprlang

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jacoelho/oglob"
)

// ErrSyntax is the sentinel error for all expression compilation failures.
// It allows consistent error checks using errors.Is().
var ErrSyntax = errors.New("pattern expression error")

// Resolver looks up a named rule referenced with rule("name").
type Resolver func(name string) (oglob.Pattern, bool)

// Compile parses a pattern expression without ruleset support; rule()
// references fail.
func Compile(input string) (oglob.Pattern, error) {
	return CompileWith(input, nil)
}

// CompileWith parses a pattern expression, resolving rule() references
// through resolve when it is non-nil.
func CompileWith(input string, resolve Resolver) (oglob.Pattern, error) {
	if strings.TrimSpace(input) == "" {
		return oglob.Pattern{}, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	tokens, err := lex(input)
	if err != nil {
		return oglob.Pattern{}, err
	}

	p := &parser{tokens: tokens, resolve: resolve}
	pattern, err := p.parseExpr()
	if err != nil {
		return oglob.Pattern{}, err
	}

	if tok := p.peek(); tok.kind != tokenEOF {
		return oglob.Pattern{}, fmt.Errorf("%w: unexpected %s at offset %d", ErrSyntax, tok.kind, tok.pos)
	}

	return pattern, nil
}

type parser struct {
	tokens  []token
	next    int
	resolve Resolver
}

func (p *parser) peek() token {
	return p.tokens[p.next]
}

func (p *parser) advance() token {
	tok := p.tokens[p.next]
	if tok.kind != tokenEOF {
		p.next++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.advance()
	if tok.kind != kind {
		return token{}, fmt.Errorf("%w: expected %s, found %s at offset %d", ErrSyntax, kind, tok.kind, tok.pos)
	}
	return tok, nil
}

func (p *parser) parseExpr() (oglob.Pattern, error) {
	left, err := p.parseTerm()
	if err != nil {
		return oglob.Pattern{}, err
	}

	for p.peek().kind == tokenOr {
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return oglob.Pattern{}, err
		}
		left = left.Or(right)
	}

	return left, nil
}

func (p *parser) parseTerm() (oglob.Pattern, error) {
	left, err := p.parseFactor()
	if err != nil {
		return oglob.Pattern{}, err
	}

	for {
		switch p.peek().kind {
		case tokenAnd:
			p.advance()
			right, err := p.parseFactor()
			if err != nil {
				return oglob.Pattern{}, err
			}
			left = left.And(right)
		case tokenMinus:
			p.advance()
			right, err := p.parseFactor()
			if err != nil {
				return oglob.Pattern{}, err
			}
			left = left.Diff(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseFactor() (oglob.Pattern, error) {
	negated := false
	for p.peek().kind == tokenNot {
		p.advance()
		negated = !negated
	}

	pattern, err := p.parseAtom()
	if err != nil {
		return oglob.Pattern{}, err
	}

	if negated {
		pattern = pattern.Not()
	}
	return pattern, nil
}

func (p *parser) parseAtom() (oglob.Pattern, error) {
	if p.peek().kind == tokenLParen {
		p.advance()
		pattern, err := p.parseExpr()
		if err != nil {
			return oglob.Pattern{}, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return oglob.Pattern{}, err
		}
		return pattern, nil
	}

	ident, err := p.expect(tokenIdent)
	if err != nil {
		return oglob.Pattern{}, err
	}
	if _, err := p.expect(tokenLParen); err != nil {
		return oglob.Pattern{}, err
	}
	arg, err := p.expect(tokenString)
	if err != nil {
		return oglob.Pattern{}, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return oglob.Pattern{}, err
	}

	return p.primitive(ident, arg)
}

func (p *parser) primitive(ident, arg token) (oglob.Pattern, error) {
	switch ident.text {
	case "name":
		g, err := glob.Compile(arg.text)
		if err != nil {
			return oglob.Pattern{}, fmt.Errorf("%w: name(%q): %v", ErrSyntax, arg.text, err)
		}
		return oglob.Name(g.Match), nil

	case "full":
		// Full paths are always slash-separated; '/' bounds the glob
		// wildcards so "*" never crosses a directory boundary.
		g, err := glob.Compile(arg.text, '/')
		if err != nil {
			return oglob.Pattern{}, fmt.Errorf("%w: full(%q): %v", ErrSyntax, arg.text, err)
		}
		return oglob.Full(g.Match), nil

	case "sec":
		segment := arg.text
		return oglob.Sec(func(sections []string) bool {
			return slices.Contains(sections, segment)
		}), nil

	case "relsec":
		segment := arg.text
		return oglob.SecRelative(func(sections []string) bool {
			return slices.Contains(sections, segment)
		}), nil

	case "ext":
		suffix := arg.text
		return oglob.Name(func(name string) bool {
			return strings.HasSuffix(name, suffix)
		}), nil

	case "match":
		re, err := regexp.Compile(arg.text)
		if err != nil {
			return oglob.Pattern{}, fmt.Errorf("%w: match(%q): %v", ErrSyntax, arg.text, err)
		}
		return oglob.Name(re.MatchString), nil

	case "rule":
		if p.resolve == nil {
			return oglob.Pattern{}, fmt.Errorf("%w: rule(%q) requires a ruleset", ErrSyntax, arg.text)
		}
		pattern, ok := p.resolve(arg.text)
		if !ok {
			return oglob.Pattern{}, fmt.Errorf("%w: unknown rule %q", ErrSyntax, arg.text)
		}
		return pattern, nil
	}

	return oglob.Pattern{}, fmt.Errorf("%w: unknown primitive %q at offset %d", ErrSyntax, ident.text, ident.pos)
}

// Package exprlang compiles the textual pattern language used by the oglob
// command line into library patterns.
//
// Grammar:
//
//	expr      := term { ("or" | "|") term }
//	term      := factor { ("and" | "&") factor | "-" factor }
//	factor    := { "not" | "!" | "~" } atom
//	atom      := "(" expr ")" | primitive
//	primitive := ident "(" string ")"
//
// "-" is set difference: p - q matches what p matches except what q matches.
package exprlang

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenLParen
	tokenRParen
	tokenAnd
	tokenOr
	tokenNot
	tokenMinus
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of expression"
	case tokenIdent:
		return "identifier"
	case tokenString:
		return "string"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenAnd:
		return "'and'"
	case tokenOr:
		return "'or'"
	case tokenNot:
		return "'not'"
	case tokenMinus:
		return "'-'"
	}
	return "unknown token"
}

// token is a single lexeme with its byte offset in the source expression.
type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)

	i := 0
	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		case r == '&':
			tokens = append(tokens, token{kind: tokenAnd, text: "&", pos: i})
			i++
			if i < len(runes) && runes[i] == '&' {
				i++
			}
		case r == '|':
			tokens = append(tokens, token{kind: tokenOr, text: "|", pos: i})
			i++
			if i < len(runes) && runes[i] == '|' {
				i++
			}
		case r == '!' || r == '~':
			tokens = append(tokens, token{kind: tokenNot, text: string(r), pos: i})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokenMinus, text: "-", pos: i})
			i++

		case r == '"':
			text, next, err := lexString(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, text: text, pos: i})
			i = next

		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			tokens = append(tokens, token{kind: keywordKind(word), text: word, pos: start})

		default:
			return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrSyntax, r, i)
		}
	}

	return append(tokens, token{kind: tokenEOF, pos: len(runes)}), nil
}

// lexString scans a double-quoted string starting at the opening quote and
// returns the unescaped text and the offset past the closing quote.
func lexString(runes []rune, start int) (string, int, error) {
	var b strings.Builder

	i := start + 1
	for i < len(runes) {
		switch runes[i] {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 >= len(runes) {
				return "", 0, fmt.Errorf("%w: unterminated escape at offset %d", ErrSyntax, i)
			}
			next := runes[i+1]
			if next != '"' && next != '\\' {
				return "", 0, fmt.Errorf("%w: unsupported escape %q at offset %d", ErrSyntax, string(next), i)
			}
			b.WriteRune(next)
			i += 2
		default:
			b.WriteRune(runes[i])
			i++
		}
	}

	return "", 0, fmt.Errorf("%w: unterminated string starting at offset %d", ErrSyntax, start)
}

func keywordKind(word string) tokenKind {
	switch word {
	case "and":
		return tokenAnd
	case "or":
		return tokenOr
	case "not":
		return tokenNot
	}
	return tokenIdent
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

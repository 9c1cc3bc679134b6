// Package expr implements the small integer expression language evaluated by
// bigcalc: decimal literals, variables, C-style operators and a handful of
// built-in functions such as fib, fact and pow.
//
// Parsing produces a backend-neutral Program. Evaluation is generic over an
// Arith implementation, so the same Program can be run on the native bigint
// package, on math/big or on GMP and the results compared.
package expr

import (
	"fmt"
	"strings"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota
	Number
	IdentTok
	Operator
	LParen
	RParen
	Comma
	Assign
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Number:
		return "number"
	case IdentTok:
		return "identifier"
	case Operator:
		return "operator"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Comma:
		return "','"
	case Assign:
		return "'='"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a lexical token with its byte offset in the source.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// twoCharOps must be tried before their one-character prefixes.
var twoCharOps = []string{"<<", ">>", "<=", ">=", "==", "!="}

const oneCharOps = "+-*/%&|^~<>"

// Tokenize splits src into tokens, ending with an EOF token.
func Tokenize(src string) ([]Token, error) {
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c):
			start := i
			for i < len(src) && isDigit(src[i]) {
				i++
			}
			if i < len(src) && isIdentStart(src[i]) {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q in number", src[i])}
			}
			toks = append(toks, Token{Kind: Number, Text: src[start:i], Pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentStart(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, Token{Kind: IdentTok, Text: src[start:i], Pos: start})
		case c == '(':
			toks = append(toks, Token{Kind: LParen, Text: "(", Pos: i})
			i++
		case c == ')':
			toks = append(toks, Token{Kind: RParen, Text: ")", Pos: i})
			i++
		case c == ',':
			toks = append(toks, Token{Kind: Comma, Text: ",", Pos: i})
			i++
		default:
			if op := matchTwoCharOp(src[i:]); op != "" {
				toks = append(toks, Token{Kind: Operator, Text: op, Pos: i})
				i += 2
				continue
			}
			if c == '=' {
				toks = append(toks, Token{Kind: Assign, Text: "=", Pos: i})
				i++
				continue
			}
			if strings.IndexByte(oneCharOps, c) >= 0 {
				toks = append(toks, Token{Kind: Operator, Text: string(c), Pos: i})
				i++
				continue
			}
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, Token{Kind: EOF, Pos: len(src)})
	return toks, nil
}

func matchTwoCharOp(s string) string {
	for _, op := range twoCharOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

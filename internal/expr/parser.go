package expr

import "fmt"

// Binding powers, lowest first, following C operator precedence.
var infixPower = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"==": 4, "!=": 4,
	"<": 5, "<=": 5, ">": 5, ">=": 5,
	"<<": 6, ">>": 6,
	"+": 7, "-": 7,
	"*": 8, "/": 8, "%": 8,
}

const prefixPower = 9

type parser struct {
	toks  []Token
	pos   int
	nodes int
}

// Parse parses a statement: either an expression or "name = expression".
func Parse(src string) (*Program, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog := &Program{Source: src}

	if len(toks) > 2 && toks[0].Kind == IdentTok && toks[1].Kind == Assign {
		if _, builtin := builtins[toks[0].Text]; builtin {
			return nil, &SyntaxError{Pos: toks[0].Pos, Msg: fmt.Sprintf("cannot assign to built-in %q", toks[0].Text)}
		}
		prog.Target = toks[0].Text
		p.pos = 2
	}

	root, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != EOF {
		return nil, p.unexpected(tok)
	}
	prog.Root = root
	prog.nodes = p.nodes
	return prog, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Program {
	prog, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return prog
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) unexpected(tok Token) error {
	if tok.Kind == EOF {
		return &SyntaxError{Pos: tok.Pos, Msg: "unexpected end of input"}
	}
	return &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s %q", tok.Kind, tok.Text)}
}

// expr parses an expression whose operators bind tighter than minPower.
func (p *parser) expr(minPower int) (Node, error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != Operator {
			return left, nil
		}
		power, ok := infixPower[tok.Text]
		if !ok || power <= minPower {
			return left, nil
		}
		p.next()
		right, err := p.expr(power)
		if err != nil {
			return nil, err
		}
		left = &Binary{At: tok.Pos, Op: tok.Text, X: left, Y: right}
		p.nodes++
	}
}

func (p *parser) prefix() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case Number:
		p.nodes++
		return &NumberLit{At: tok.Pos, Text: tok.Text}, nil
	case IdentTok:
		if p.peek().Kind == LParen {
			return p.call(tok)
		}
		p.nodes++
		return &Ident{At: tok.Pos, Name: tok.Text}, nil
	case LParen:
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Kind != RParen {
			return nil, &SyntaxError{Pos: closing.Pos, Msg: "missing ')'"}
		}
		return inner, nil
	case Operator:
		switch tok.Text {
		case "+", "-", "~":
			x, err := p.expr(prefixPower)
			if err != nil {
				return nil, err
			}
			p.nodes++
			return &Unary{At: tok.Pos, Op: tok.Text, X: x}, nil
		}
	}
	return nil, p.unexpected(tok)
}

func (p *parser) call(name Token) (Node, error) {
	fn, ok := builtins[name.Text]
	if !ok {
		return nil, &SyntaxError{Pos: name.Pos, Msg: fmt.Sprintf("unknown function %q", name.Text)}
	}
	p.next() // (
	var args []Node
	if p.peek().Kind != RParen {
		for {
			arg, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Kind != Comma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.Kind != RParen {
		return nil, &SyntaxError{Pos: closing.Pos, Msg: fmt.Sprintf("missing ')' after arguments to %s", name.Text)}
	}
	if len(args) != fn.arity {
		return nil, &SyntaxError{Pos: name.Pos, Msg: fmt.Sprintf("%s expects %d argument(s), got %d", name.Text, fn.arity, len(args))}
	}
	p.nodes++
	return &Call{At: name.Pos, Func: name.Text, Args: args}, nil
}

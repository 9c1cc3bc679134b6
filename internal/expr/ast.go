package expr

import (
	"strings"
)

// Node is an expression tree node.
type Node interface {
	// Pos is the byte offset of the node in the source.
	Pos() int
	String() string
}

// NumberLit is a decimal integer literal.
type NumberLit struct {
	At   int
	Text string
}

// Ident is a variable reference.
type Ident struct {
	At   int
	Name string
}

// Unary is a prefix operation: +x, -x or ~x.
type Unary struct {
	At int
	Op string
	X  Node
}

// Binary is an infix operation.
type Binary struct {
	At   int
	Op   string
	X, Y Node
}

// Call is a built-in function call.
type Call struct {
	At   int
	Func string
	Args []Node
}

func (n *NumberLit) Pos() int { return n.At }
func (n *Ident) Pos() int     { return n.At }
func (n *Unary) Pos() int     { return n.At }
func (n *Binary) Pos() int    { return n.At }
func (n *Call) Pos() int      { return n.At }

func (n *NumberLit) String() string { return n.Text }
func (n *Ident) String() string     { return n.Name }
func (n *Unary) String() string     { return "(" + n.Op + n.X.String() + ")" }
func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")"
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Func + "(" + strings.Join(args, ", ") + ")"
}

// Program is a parsed statement: an expression, optionally assigned to a
// variable.
type Program struct {
	Source string
	// Target is the variable assigned by "name = expr", or "" for a bare
	// expression.
	Target string
	Root   Node
	nodes  int
}

// Cost returns the number of nodes evaluated by the program. It is the
// denominator of progress reports.
func (p *Program) Cost() int { return p.nodes }

// String renders the program fully parenthesised.
func (p *Program) String() string {
	if p.Target != "" {
		return p.Target + " = " + p.Root.String()
	}
	return p.Root.String()
}

// Variables returns the names the program reads, in first-use order.
func (p *Program) Variables() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Ident:
			if !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n.Name)
			}
		case *Unary:
			walk(n.X)
		case *Binary:
			walk(n.X)
			walk(n.Y)
		case *Call:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(p.Root)
	return out
}

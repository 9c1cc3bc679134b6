package expr

import (
	"context"
	"fmt"
)

type evaluator[T any] struct {
	ctx  context.Context
	ar   Arith[T]
	env  map[string]T
	opts Options
	done int
	cost int
}

// Eval evaluates prog with the given backend. Variables are looked up in env;
// when prog is an assignment and env is not nil, the result is also stored
// under prog.Target.
//
// The context is checked between steps and inside long-running built-ins.
// Panics raised by the backend are returned as *EvalError.
func Eval[T any](ctx context.Context, prog *Program, ar Arith[T], env map[string]T, opts Options) (result T, err error) {
	e := &evaluator[T]{
		ctx:  ctx,
		ar:   ar,
		env:  env,
		opts: opts.withDefaults(),
		cost: prog.Cost(),
	}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = &EvalError{Pos: 0, Op: ar.Name(), Err: cause}
		}
	}()

	result, err = e.eval(prog.Root)
	if err != nil {
		var zero T
		return zero, err
	}
	if prog.Target != "" && env != nil {
		env[prog.Target] = result
	}
	e.report(1)
	return result, nil
}

func (e *evaluator[T]) step() error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	e.done++
	if e.cost > 0 {
		e.report(float64(e.done) / float64(e.cost))
	}
	return nil
}

func (e *evaluator[T]) report(p float64) {
	if e.opts.Reporter != nil {
		if p > 1 {
			p = 1
		}
		e.opts.Reporter(p)
	}
}

func (e *evaluator[T]) eval(n Node) (T, error) {
	var zero T
	switch n := n.(type) {
	case *NumberLit:
		v, err := e.ar.Parse(n.Text)
		if err != nil {
			return zero, evalErr(n, "literal", err)
		}
		return v, e.step()

	case *Ident:
		v, ok := e.env[n.Name]
		if !ok {
			return zero, evalErr(n, n.Name, ErrUndefined)
		}
		return v, e.step()

	case *Unary:
		x, err := e.eval(n.X)
		if err != nil {
			return zero, err
		}
		var v T
		switch n.Op {
		case "+":
			v = x
		case "-":
			v = e.ar.Neg(x)
		case "~":
			v = e.ar.Not(x)
		}
		return v, e.step()

	case *Binary:
		x, err := e.eval(n.X)
		if err != nil {
			return zero, err
		}
		y, err := e.eval(n.Y)
		if err != nil {
			return zero, err
		}
		v, err := e.binary(n, x, y)
		if err != nil {
			return zero, err
		}
		return v, e.step()

	case *Call:
		args := make([]T, len(n.Args))
		for i, a := range n.Args {
			v, err := e.eval(a)
			if err != nil {
				return zero, err
			}
			args[i] = v
		}
		v, err := e.call(n, args)
		if err != nil {
			return zero, err
		}
		return v, e.step()
	}
	return zero, fmt.Errorf("expr: unknown node %T", n)
}

func (e *evaluator[T]) binary(n *Binary, x, y T) (T, error) {
	var zero T
	ar := e.ar
	switch n.Op {
	case "+":
		return ar.Add(x, y), nil
	case "-":
		return ar.Sub(x, y), nil
	case "*":
		return ar.Mul(x, y), nil
	case "/", "%":
		if ar.Sign(y) == 0 {
			return zero, evalErr(n, n.Op, ErrDivisionByZero)
		}
		if n.Op == "/" {
			return ar.Quo(x, y), nil
		}
		return ar.Rem(x, y), nil
	case "&":
		return ar.And(x, y), nil
	case "|":
		return ar.Or(x, y), nil
	case "^":
		return ar.Xor(x, y), nil
	case "<<", ">>":
		if ar.Sign(y) < 0 {
			return zero, evalErr(n, n.Op, fmt.Errorf("%w: negative shift count", ErrArgument))
		}
		k, fits := ar.Uint64(y)
		if n.Op == ">>" {
			if !fits || k >= uint64(ar.BitLen(x)) {
				if ar.Sign(x) < 0 {
					return ar.FromInt64(-1), nil
				}
				return ar.FromInt64(0), nil
			}
			return ar.Rsh(x, uint(k)), nil
		}
		if ar.Sign(x) == 0 {
			return x, nil
		}
		if !fits || k > e.opts.Limits.MaxBits || uint64(ar.BitLen(x))+k > e.opts.Limits.MaxBits {
			return zero, evalErr(n, n.Op, fmt.Errorf("%w: result exceeds %d bits", ErrArgument, e.opts.Limits.MaxBits))
		}
		return ar.Lsh(x, uint(k)), nil
	case "==":
		return e.bool(ar.Cmp(x, y) == 0), nil
	case "!=":
		return e.bool(ar.Cmp(x, y) != 0), nil
	case "<":
		return e.bool(ar.Cmp(x, y) < 0), nil
	case "<=":
		return e.bool(ar.Cmp(x, y) <= 0), nil
	case ">":
		return e.bool(ar.Cmp(x, y) > 0), nil
	case ">=":
		return e.bool(ar.Cmp(x, y) >= 0), nil
	}
	return zero, evalErr(n, n.Op, fmt.Errorf("unknown operator"))
}

func (e *evaluator[T]) bool(b bool) T {
	if b {
		return e.ar.FromInt64(1)
	}
	return e.ar.FromInt64(0)
}

package expr

import (
	"fmt"
	"math/bits"
)

type builtin struct {
	arity int
	usage string
}

var builtins = map[string]builtin{
	"abs":  {1, "abs(x): absolute value"},
	"sign": {1, "sign(x): -1, 0 or 1"},
	"bits": {1, "bits(x): bit length of |x|"},
	"min":  {2, "min(a, b): smaller of a and b"},
	"max":  {2, "max(a, b): larger of a and b"},
	"gcd":  {2, "gcd(a, b): greatest common divisor, always >= 0"},
	"pow":  {2, "pow(x, n): x raised to n >= 0"},
	"fact": {1, "fact(n): n factorial"},
	"fib":  {1, "fib(n): n-th Fibonacci number"},
}

// Functions returns the usage line of every built-in function, sorted by
// name.
func Functions() []string {
	names := []string{"abs", "bits", "fact", "fib", "gcd", "max", "min", "pow", "sign"}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = builtins[name].usage
	}
	return out
}

// checkEvery is how many loop iterations run between context checks.
const checkEvery = 64

func (e *evaluator[T]) call(n *Call, args []T) (T, error) {
	var zero T
	ar := e.ar
	switch n.Func {
	case "abs":
		if ar.Sign(args[0]) < 0 {
			return ar.Neg(args[0]), nil
		}
		return args[0], nil
	case "sign":
		return ar.FromInt64(int64(ar.Sign(args[0]))), nil
	case "bits":
		return ar.FromInt64(int64(ar.BitLen(args[0]))), nil
	case "min":
		if ar.Cmp(args[1], args[0]) < 0 {
			return args[1], nil
		}
		return args[0], nil
	case "max":
		if ar.Cmp(args[1], args[0]) > 0 {
			return args[1], nil
		}
		return args[0], nil
	case "gcd":
		return e.gcd(args[0], args[1])
	case "pow":
		return e.pow(n, args[0], args[1])
	case "fact":
		k, err := e.smallArg(n, args[0], e.opts.Limits.MaxFactorial)
		if err != nil {
			return zero, err
		}
		return e.fact(k)
	case "fib":
		k, err := e.smallArg(n, args[0], e.opts.Limits.MaxFib)
		if err != nil {
			return zero, err
		}
		return e.fib(k)
	}
	return zero, evalErr(n, n.Func, fmt.Errorf("unknown function"))
}

// smallArg converts x to a machine integer in [0, limit].
func (e *evaluator[T]) smallArg(n *Call, x T, limit uint64) (uint64, error) {
	if e.ar.Sign(x) < 0 {
		return 0, evalErr(n, n.Func, fmt.Errorf("%w: negative argument %s", ErrArgument, e.ar.String(x)))
	}
	k, ok := e.ar.Uint64(x)
	if !ok || k > limit {
		return 0, evalErr(n, n.Func, fmt.Errorf("%w: argument exceeds %d", ErrArgument, limit))
	}
	return k, nil
}

func (e *evaluator[T]) gcd(a, b T) (T, error) {
	var zero T
	ar := e.ar
	if ar.Sign(a) < 0 {
		a = ar.Neg(a)
	}
	if ar.Sign(b) < 0 {
		b = ar.Neg(b)
	}
	for i := 0; ar.Sign(b) != 0; i++ {
		if i%checkEvery == 0 {
			if err := e.ctx.Err(); err != nil {
				return zero, err
			}
		}
		a, b = b, ar.Rem(a, b)
	}
	return a, nil
}

func (e *evaluator[T]) pow(n *Call, x, y T) (T, error) {
	var zero T
	ar := e.ar
	if ar.Sign(y) < 0 {
		return zero, evalErr(n, n.Func, fmt.Errorf("%w: negative exponent", ErrArgument))
	}
	k, ok := ar.Uint64(y)
	// x in {-1, 0, 1} never grows.
	if ar.BitLen(x) <= 1 {
		switch {
		case ar.Sign(y) == 0:
			return ar.FromInt64(1), nil
		case ar.Sign(x) < 0 && ar.Sign(ar.And(y, ar.FromInt64(1))) == 0:
			return ar.FromInt64(1), nil
		}
		return x, nil
	}
	if !ok || k > e.opts.Limits.MaxBits || uint64(ar.BitLen(x)-1)*k > e.opts.Limits.MaxBits {
		return zero, evalErr(n, n.Func, fmt.Errorf("%w: result exceeds %d bits", ErrArgument, e.opts.Limits.MaxBits))
	}

	result := ar.FromInt64(1)
	for i := bits.Len64(k) - 1; i >= 0; i-- {
		if err := e.ctx.Err(); err != nil {
			return zero, err
		}
		result = ar.Mul(result, result)
		if k&(1<<uint(i)) != 0 {
			result = ar.Mul(result, x)
		}
	}
	return result, nil
}

func (e *evaluator[T]) fact(k uint64) (T, error) {
	var zero T
	ar := e.ar
	result := ar.FromInt64(1)
	for i := uint64(2); i <= k; i++ {
		if i%checkEvery == 0 {
			if err := e.ctx.Err(); err != nil {
				return zero, err
			}
		}
		result = ar.Mul(result, ar.FromInt64(int64(i)))
	}
	return result, nil
}

// fib uses fast doubling:
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k)^2 + F(k+1)^2
func (e *evaluator[T]) fib(k uint64) (T, error) {
	var zero T
	ar := e.ar
	a, b := ar.FromInt64(0), ar.FromInt64(1)
	for i := bits.Len64(k) - 1; i >= 0; i-- {
		if err := e.ctx.Err(); err != nil {
			return zero, err
		}
		c := ar.Mul(a, ar.Sub(ar.Lsh(b, 1), a))
		d := ar.Add(ar.Mul(a, a), ar.Mul(b, b))
		if k&(1<<uint(i)) != 0 {
			a, b = d, ar.Add(c, d)
		} else {
			a, b = c, d
		}
	}
	return a, nil
}

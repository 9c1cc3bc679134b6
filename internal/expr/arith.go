package expr

// Arith is the set of integer operations a backend provides to the
// evaluator. Values of T are treated as immutable: every operation returns a
// fresh value and never modifies its arguments.
//
// Quo and Rem truncate toward zero and Rsh floors, whatever the backend's
// native convention. The evaluator never calls Quo or Rem with a zero
// divisor.
type Arith[T any] interface {
	Name() string
	Parse(s string) (T, error)
	FromInt64(i int64) T
	String(x T) string

	Sign(x T) int
	Cmp(x, y T) int
	BitLen(x T) int
	// Uint64 returns x and true when 0 <= x < 2^64.
	Uint64(x T) (uint64, bool)

	Add(x, y T) T
	Sub(x, y T) T
	Mul(x, y T) T
	Quo(x, y T) T
	Rem(x, y T) T
	Neg(x T) T

	And(x, y T) T
	Or(x, y T) T
	Xor(x, y T) T
	Not(x T) T
	Lsh(x T, k uint) T
	Rsh(x T, k uint) T
}

// Limits bound the size of results the evaluator agrees to build. Shift
// counts and the arguments of pow, fact and fib are small integers checked
// against these before any work starts.
type Limits struct {
	// MaxBits caps the estimated bit length of a left shift or power.
	MaxBits uint64
	// MaxFactorial is the largest n accepted by fact(n).
	MaxFactorial uint64
	// MaxFib is the largest n accepted by fib(n).
	MaxFib uint64
}

// DefaultLimits keeps single evaluations of the schoolbook backend within a
// few seconds.
func DefaultLimits() Limits {
	return Limits{
		MaxBits:      1 << 20,
		MaxFactorial: 1 << 15,
		MaxFib:       1 << 20,
	}
}

// ProgressReporter receives the fraction of evaluation steps completed, in
// [0, 1].
type ProgressReporter func(progress float64)

// Options configure a single evaluation.
type Options struct {
	Limits   Limits
	Reporter ProgressReporter
}

func (o Options) withDefaults() Options {
	def := DefaultLimits()
	if o.Limits.MaxBits == 0 {
		o.Limits.MaxBits = def.MaxBits
	}
	if o.Limits.MaxFactorial == 0 {
		o.Limits.MaxFactorial = def.MaxFactorial
	}
	if o.Limits.MaxFib == 0 {
		o.Limits.MaxFib = def.MaxFib
	}
	return o
}

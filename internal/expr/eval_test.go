package expr_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/pkg/bigint"
)

func eval(t *testing.T, src string, env map[string]bigint.Int, opts expr.Options) (bigint.Int, error) {
	t.Helper()
	prog, err := expr.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return expr.Eval[bigint.Int](context.Background(), prog, calculator.Native{}, env, opts)
}

func TestEval_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"123456789012345678901234567890 + 1", "123456789012345678901234567891"},
		{"7 / -2", "-3"},
		{"7 % -2", "1"},
		{"-7 / 2", "-3"},
		{"-7 % 2", "-1"},
		{"0 - 0", "0"},
		{"-1 == 0 - 1", "1"},
		{"(-1) & 1", "1"},
		{"-0", "0"},
		{"1 + 2 * 3 - 4 / 2", "5"},
		{"(1 << 100) >> 99", "2"},
		{"~0", "-1"},
		{"-5 | 3", "-5"},
		{"-6 ^ 3", "-7"},
		{"fib(0) + fib(1) + fib(2)", "2"},
		{"fib(93)", "12200160415121876738"},
		{"fact(0) + fact(1)", "2"},
		{"fact(20)", "2432902008176640000"},
		{"pow(10, 30) / pow(10, 28)", "100"},
		{"gcd(0, 0)", "0"},
		{"max(1, 1)", "1"},
	}
	for _, tt := range tests {
		got, err := eval(t, tt.src, nil, expr.Options{})
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.src, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("%q = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestEval_AssignmentAndVariables(t *testing.T) {
	t.Parallel()

	env := map[string]bigint.Int{"a": bigint.FromInt(6)}
	got, err := eval(t, "b = a * 7", env, expr.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "42" || env["b"].String() != "42" {
		t.Errorf("got %s, env[b] = %s", got, env["b"])
	}

	_, err = eval(t, "c + 1", env, expr.Options{})
	if !errors.Is(err, expr.ErrUndefined) {
		t.Errorf("expected ErrUndefined, got %v", err)
	}
	var evalErr *expr.EvalError
	if !errors.As(err, &evalErr) || evalErr.Pos != 0 || evalErr.Op != "c" {
		t.Errorf("unexpected error detail %#v", err)
	}

	// A nil env is allowed for assignments.
	if _, err := eval(t, "d = 1", nil, expr.Options{}); err != nil {
		t.Errorf("assignment with nil env: %v", err)
	}
}

func TestEval_Limits(t *testing.T) {
	t.Parallel()

	opts := expr.Options{Limits: expr.Limits{MaxBits: 64, MaxFactorial: 10, MaxFib: 50}}
	tests := []struct {
		src string
		ok  bool
	}{
		{"fact(10)", true},
		{"fact(11)", false},
		{"fib(50)", true},
		{"fib(51)", false},
		{"1 << 63", true},
		{"1 << 64", false},
		{"pow(2, 64)", true},
		{"pow(4, 64)", false},
		{"pow(1, 1000000)", true},
		{"1 >> 1000000", true},
	}
	for _, tt := range tests {
		_, err := eval(t, tt.src, nil, opts)
		if tt.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tt.src, err)
		}
		if !tt.ok && !errors.Is(err, expr.ErrArgument) {
			t.Errorf("%q: error = %v, want ErrArgument", tt.src, err)
		}
	}

	def := expr.DefaultLimits()
	if def.MaxBits == 0 || def.MaxFactorial == 0 || def.MaxFib == 0 {
		t.Errorf("DefaultLimits has zero fields: %+v", def)
	}
}

func TestEval_Progress(t *testing.T) {
	t.Parallel()

	var seen []float64
	opts := expr.Options{Reporter: func(p float64) { seen = append(seen, p) }}
	if _, err := eval(t, "(1 + 2) * (3 + 4)", nil, opts); err != nil {
		t.Fatal(err)
	}
	// Seven nodes plus the final report.
	if len(seen) != 8 {
		t.Fatalf("got %d reports: %v", len(seen), seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Errorf("progress not monotonic: %v", seen)
		}
	}
	if seen[len(seen)-1] != 1 {
		t.Errorf("final progress = %v, want 1", seen[len(seen)-1])
	}
}

func TestEval_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := expr.Eval[bigint.Int](ctx, expr.MustParse("fact(5000)"), calculator.Native{}, nil, expr.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// panickyArith panics on multiplication to exercise recovery.
type panickyArith struct{ calculator.Native }

func (panickyArith) Mul(x, y bigint.Int) bigint.Int { panic(errors.New("multiplier on fire")) }

func TestEval_RecoversPanics(t *testing.T) {
	t.Parallel()

	_, err := expr.Eval[bigint.Int](context.Background(), expr.MustParse("2 * 3"), panickyArith{}, nil, expr.Options{})
	var evalErr *expr.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvalError, got %v", err)
	}
	if !strings.Contains(err.Error(), "multiplier on fire") {
		t.Errorf("error %q should carry the panic value", err)
	}
}

func TestEval_BackendsShareProgram(t *testing.T) {
	t.Parallel()

	prog := expr.MustParse("fib(300) % fact(40) - (pow(-3, 77) >> 5)")
	native, err := expr.Eval[bigint.Int](context.Background(), prog, calculator.Native{}, nil, expr.Options{})
	if err != nil {
		t.Fatal(err)
	}
	std, err := expr.Eval[*big.Int](context.Background(), prog, calculator.MathBig{}, nil, expr.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if native.String() != std.String() {
		t.Errorf("native %s != mathbig %s", native, std)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/config"
	"github.com/agbru/bigcalc/internal/expr"
)

func newTestService(maxLen int) *CalculatorService {
	return NewCalculatorService(calculator.NewDefaultFactory(), config.AppConfig{MaxBits: 1 << 16}, maxLen)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	svc := newTestService(0)

	tests := []struct {
		backend string
		src     string
		env     calculator.Env
		want    string
	}{
		{"native", "fib(90)", nil, "2880067194370816120"},
		{"mathbig", "fib(90)", nil, "2880067194370816120"},
		{"native", "x * x - 1", calculator.Env{"x": "-100000000000000000000"}, "9999999999999999999999999999999999999999"},
		{"native", "-7 / 2", nil, "-3"},
		{"mathbig", "-7 % 2", nil, "-1"},
		{"native", "~0 >> 100", nil, "-1"},
	}
	for _, tt := range tests {
		res, err := svc.Evaluate(context.Background(), tt.backend, tt.src, tt.env)
		if err != nil {
			t.Errorf("%s on %s: %v", tt.src, tt.backend, err)
			continue
		}
		if res.Value != tt.want {
			t.Errorf("%s on %s = %s, want %s", tt.src, tt.backend, res.Value, tt.want)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()
	svc := newTestService(16)
	ctx := context.Background()

	if _, err := svc.Evaluate(ctx, "native", strings.Repeat("1+", 10)+"1", nil); !errors.Is(err, ErrExpressionTooLong) {
		t.Errorf("long expression: err = %v", err)
	}

	var syntaxErr *expr.SyntaxError
	if _, err := svc.Evaluate(ctx, "native", "1 +* 2", nil); !errors.As(err, &syntaxErr) {
		t.Errorf("syntax: err = %v", err)
	}

	if _, err := svc.Evaluate(ctx, "abacus", "1", nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("backend: err = %v", err)
	}

	if _, err := svc.Evaluate(ctx, "mathbig", "1 << 100000", nil); !errors.Is(err, expr.ErrArgument) {
		t.Errorf("limit: err = %v", err)
	}

	if _, err := svc.Evaluate(ctx, "native", "q % 0", calculator.Env{"q": "5"}); !errors.Is(err, expr.ErrDivisionByZero) {
		t.Errorf("division: err = %v", err)
	}
}

func TestEvaluateCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestService(0).Evaluate(ctx, "native", "fib(100000)", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackends(t *testing.T) {
	t.Parallel()
	if got := strings.Join(newTestService(0).Backends(), ","); got != "mathbig,native" {
		t.Errorf("Backends = %s", got)
	}
}

func TestProgramCache(t *testing.T) {
	t.Parallel()
	svc := newTestService(0)
	ctx := context.Background()

	for _, x := range []string{"2", "3"} {
		res, err := svc.Evaluate(ctx, "native", "x << 64", calculator.Env{"x": x})
		if err != nil {
			t.Fatalf("x=%s: %v", x, err)
		}
		want := map[string]string{"2": "36893488147419103232", "3": "55340232221128654848"}[x]
		if res.Value != want {
			t.Errorf("x=%s: got %s, want %s", x, res.Value, want)
		}
	}
	if n := svc.programs.Len(); n != 1 {
		t.Errorf("cached programs = %d, want 1", n)
	}

	if _, err := svc.Evaluate(ctx, "native", "1 +", nil); err == nil {
		t.Fatal("expected syntax error")
	}
	if svc.programs.Contains("1 +") {
		t.Error("syntax error was cached")
	}
}

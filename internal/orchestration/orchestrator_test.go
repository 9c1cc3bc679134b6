package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/calculator/mocks"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/testutil"
	"github.com/agbru/bigcalc/internal/ui"
)

func init() { ui.SetCurrentTheme(ui.NoColorTheme) }

// SpyCalculator records the arguments of its last evaluation.
type SpyCalculator struct {
	opts  calculator.Options
	env   calculator.Env
	index int
}

func (s *SpyCalculator) Evaluate(ctx context.Context, progressChan chan<- calculator.ProgressUpdate, calcIndex int, prog *expr.Program, env calculator.Env, opts calculator.Options) (calculator.Result, error) {
	s.opts, s.env, s.index = opts, env, calcIndex
	progressChan <- calculator.ProgressUpdate{CalculatorIndex: calcIndex, Value: 1}
	return calculator.Result{Value: "55", Bits: 6, Sign: 1}, nil
}

func (s *SpyCalculator) Name() string { return "spy" }

func TestExecuteEvaluationsPassesConfiguration(t *testing.T) {
	t.Parallel()
	first, spy := &SpyCalculator{}, &SpyCalculator{}
	env := calculator.Env{"n": "10"}
	cfg := config.AppConfig{MaxBits: 12345}

	results := ExecuteEvaluations(context.Background(), []calculator.Calculator{first, spy}, expr.MustParse("fib(n)"), env, cfg, io.Discard)

	if len(results) != 2 || results[1].Result.Value != "55" {
		t.Fatalf("results = %+v", results)
	}
	if spy.opts.Limits.MaxBits != 12345 {
		t.Errorf("MaxBits = %d, want 12345", spy.opts.Limits.MaxBits)
	}
	if spy.env["n"] != "10" || spy.index != 1 {
		t.Errorf("spy saw env %v index %d", spy.env, spy.index)
	}
}

func TestExecuteEvaluationsRealBackends(t *testing.T) {
	t.Parallel()
	factory := calculator.NewDefaultFactory()
	calcs := []calculator.Calculator{factory.MustGet("native"), factory.MustGet("mathbig")}

	results := ExecuteEvaluations(context.Background(), calcs, expr.MustParse("fact(30) / fib(30) % 1000003"), nil, config.AppConfig{}, io.Discard)
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: %v", res.Name, res.Err)
		}
	}
	if results[0].Result.Value != results[1].Result.Value {
		t.Errorf("native %s != mathbig %s", results[0].Result.Value, results[1].Result.Value)
	}
}

func TestExecuteEvaluationsWrapsErrors(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockCalculator(ctrl)
	failing.EXPECT().Name().Return("broken").AnyTimes()
	failing.EXPECT().Evaluate(gomock.Any(), gomock.Any(), 0, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(calculator.Result{}, context.DeadlineExceeded)

	results := ExecuteEvaluations(context.Background(), []calculator.Calculator{failing}, expr.MustParse("1"), nil, config.AppConfig{}, io.Discard)

	var calcErr apperrors.CalculationError
	if !errors.As(results[0].Err, &calcErr) || calcErr.Backend != "broken" {
		t.Fatalf("err = %v, want CalculationError from broken", results[0].Err)
	}
	if !errors.Is(results[0].Err, context.DeadlineExceeded) {
		t.Error("cause lost in wrapping")
	}
}

func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	five := calculator.Result{Value: "5", Bits: 3, Sign: 1}
	six := calculator.Result{Value: "6", Bits: 3, Sign: 1}
	divErr := &expr.EvalError{Pos: 2, Op: "/", Err: expr.ErrDivisionByZero}

	tests := []struct {
		name     string
		results  []EvaluationResult
		want     int
		contains []string
	}{
		{
			name: "all success",
			results: []EvaluationResult{
				{Name: "a", Result: five, Duration: time.Millisecond},
				{Name: "b", Result: five, Duration: 2 * time.Millisecond},
			},
			want:     apperrors.ExitSuccess,
			contains: []string{"Global Status: Success", "x = 5"},
		},
		{
			name: "mismatch",
			results: []EvaluationResult{
				{Name: "a", Result: five, Duration: time.Millisecond},
				{Name: "b", Result: six, Duration: time.Millisecond},
			},
			want:     apperrors.ExitErrorMismatch,
			contains: []string{"CRITICAL ERROR"},
		},
		{
			name: "all failure",
			results: []EvaluationResult{
				{Name: "a", Err: errors.New("fail")},
				{Name: "b", Err: errors.New("fail")},
			},
			want:     apperrors.ExitErrorGeneric,
			contains: []string{"No backend could evaluate"},
		},
		{
			name: "invalid expression",
			results: []EvaluationResult{
				{Name: "a", Err: apperrors.NewCalculationError("a", divErr)},
			},
			want:     apperrors.ExitErrorInput,
			contains: []string{"Invalid expression", "division by zero"},
		},
		{
			name: "mixed",
			results: []EvaluationResult{
				{Name: "slow", Err: errors.New("fail"), Duration: time.Nanosecond},
				{Name: "ok", Result: five, Duration: time.Second},
			},
			want:     apperrors.ExitSuccess,
			contains: []string{"❌ Failure (fail)", "✅ Success"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			got := AnalyzeComparisonResults(tt.results, expr.MustParse("x"), config.AppConfig{}, &buf)
			if got != tt.want {
				t.Errorf("exit code = %d, want %d", got, tt.want)
			}
			out := testutil.StripAnsiCodes(buf.String())
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestAnalyzeComparisonResultsOrdering(t *testing.T) {
	t.Parallel()
	results := []EvaluationResult{
		{Name: "failed", Err: errors.New("x")},
		{Name: "slow", Result: calculator.Result{Value: "1"}, Duration: time.Second},
		{Name: "fast", Result: calculator.Result{Value: "1"}, Duration: time.Millisecond},
	}
	AnalyzeComparisonResults(results, expr.MustParse("1"), config.AppConfig{Quiet: true}, io.Discard)
	if results[0].Name != "fast" || results[1].Name != "slow" || results[2].Name != "failed" {
		t.Errorf("order = %s, %s, %s", results[0].Name, results[1].Name, results[2].Name)
	}
}

func TestAnalyzeComparisonResultsQuiet(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	results := []EvaluationResult{{Name: "a", Result: calculator.Result{Value: "-42", Bits: 6, Sign: -1}}}
	if code := AnalyzeComparisonResults(results, expr.MustParse("-42"), config.AppConfig{Quiet: true}, &buf); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if buf.String() != "-42\n" {
		t.Errorf("quiet output = %q", buf.String())
	}
}

func TestAnalyzeComparisonResultsJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	results := []EvaluationResult{
		{Name: "a", Result: calculator.Result{Value: "7", Bits: 3, Sign: 1}},
		{Name: "b", Err: errors.New("boom")},
	}
	code := AnalyzeComparisonResults(results, expr.MustParse("3 + 4"), config.AppConfig{JSONOutput: true}, &buf)
	if code != apperrors.ExitSuccess {
		t.Errorf("exit code = %d", code)
	}

	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(records) != 2 || records[0]["value"] != "7" || records[0]["expression"] != "3 + 4" || records[1]["error"] != "boom" {
		t.Errorf("records = %v", records)
	}
}

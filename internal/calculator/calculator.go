// Package calculator evaluates parsed expressions on interchangeable
// arbitrary-precision backends. It exposes a Calculator interface used by the
// orchestration layer and the HTTP service, and wraps every backend with the
// same cross-cutting concerns: tracing, metrics, logging and progress
// reporting.
package calculator

//go:generate mockgen -source=calculator.go -destination=mocks/mock_calculator.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agbru/bigcalc/internal/expr"
)

var (
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigcalc_evaluations_total",
			Help: "The total number of expression evaluations processed",
		},
		[]string{"backend", "status"},
	)
	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bigcalc_evaluation_duration_seconds",
			Help: "The duration of expression evaluations in seconds",
		},
		[]string{"backend"},
	)
)

// progressLogThreshold is the progress step between two debug log lines.
const progressLogThreshold = 0.25

// Env holds variable values as canonical decimal strings so that one
// environment can feed every backend.
type Env map[string]string

// Options configures an evaluation.
type Options struct {
	// Limits bounds the size of intermediate results. Zero fields take the
	// defaults of expr.DefaultLimits.
	Limits expr.Limits
}

// Result is the outcome of a successful evaluation.
type Result struct {
	// Value is the result in canonical decimal form.
	Value string
	// Bits is the bit length of |Value|.
	Bits int
	// Sign is -1, 0 or 1.
	Sign int
}

// Digits returns the number of decimal digits of the result, ignoring the
// sign.
func (r Result) Digits() int {
	if r.Sign < 0 {
		return len(r.Value) - 1
	}
	return len(r.Value)
}

// Calculator defines the public interface for an expression evaluator.
// It is the primary abstraction used by the orchestration layer to run the
// same program on different arithmetic backends.
type Calculator interface {
	// Evaluate runs prog against env. It is safe for concurrent use and
	// supports cancellation through ctx. Progress updates are sent
	// asynchronously to progressChan, which may be nil.
	//
	// Parameters:
	//   - ctx: The context for managing cancellation and deadlines.
	//   - progressChan: The channel for sending progress updates.
	//   - calcIndex: A unique index for the calculator instance.
	//   - prog: The parsed program.
	//   - env: Variable values available to the program.
	//   - opts: Configuration options for the evaluation.
	//
	// Returns:
	//   - Result: The evaluated value.
	//   - error: An error if one occurred (e.g., division by zero, context cancellation).
	Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, prog *expr.Program, env Env, opts Options) (Result, error)

	// Name returns the backend name (e.g., "native").
	Name() string
}

// coreCalculator is a backend without the cross-cutting concerns.
type coreCalculator interface {
	EvaluateCore(ctx context.Context, reporter ProgressReporter, prog *expr.Program, env Env, opts Options) (Result, error)
	Name() string
}

// arithCore adapts an expr.Arith backend to coreCalculator.
type arithCore[T any] struct {
	ar expr.Arith[T]
}

func newCore[T any](ar expr.Arith[T]) coreCalculator {
	return &arithCore[T]{ar: ar}
}

func (c *arithCore[T]) Name() string { return c.ar.Name() }

// EvaluateCore converts the variables the program reads into backend values,
// evaluates, and renders the result back to decimal.
func (c *arithCore[T]) EvaluateCore(ctx context.Context, reporter ProgressReporter, prog *expr.Program, env Env, opts Options) (Result, error) {
	vars := make(map[string]T)
	for _, name := range prog.Variables() {
		s, ok := env[name]
		if !ok {
			continue
		}
		v, err := c.ar.Parse(s)
		if err != nil {
			return Result{}, fmt.Errorf("variable %s: %w", name, err)
		}
		vars[name] = v
	}

	v, err := expr.Eval(ctx, prog, c.ar, vars, expr.Options{
		Limits:   opts.Limits,
		Reporter: expr.ProgressReporter(reporter),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Value: c.ar.String(v),
		Bits:  c.ar.BitLen(v),
		Sign:  c.ar.Sign(v),
	}, nil
}

// BackendCalculator implements Calculator using the Decorator pattern: it
// wraps a coreCalculator with tracing, metrics, logging and progress
// reporting.
type BackendCalculator struct {
	core coreCalculator
}

// NewCalculator wraps core. It panics if core is nil.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("calculator: the `coreCalculator` implementation cannot be nil")
	}
	return &BackendCalculator{core: core}
}

// Name returns the name of the wrapped backend.
func (c *BackendCalculator) Name() string {
	return c.core.Name()
}

// Evaluate builds a ProgressSubject that feeds progressChan, the Prometheus
// progress gauge and the debug log, then delegates to EvaluateWithObservers.
func (c *BackendCalculator) Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, prog *expr.Program, env Env, opts Options) (Result, error) {
	backend := c.core.Name()
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	subject.Register(NewMetricsObserver(backend))
	subject.Register(NewLoggingObserver(log.Logger.With().Str("backend", backend).Logger(), progressLogThreshold))
	return c.EvaluateWithObservers(ctx, subject, calcIndex, prog, env, opts)
}

// EvaluateWithObservers executes the evaluation with observer-based progress
// reporting. A nil subject discards progress.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - subject: The progress subject with registered observers.
//   - calcIndex: A unique index for the calculator instance.
//   - prog: The parsed program.
//   - env: Variable values available to the program.
//   - opts: Configuration options for the evaluation.
//
// Returns:
//   - Result: The evaluated value.
//   - error: An error if one occurred.
func (c *BackendCalculator) EvaluateWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, prog *expr.Program, env Env, opts Options) (result Result, err error) {
	backend := c.core.Name()
	tracer := otel.Tracer("bigcalc")
	ctx, span := tracer.Start(ctx, "Evaluate")
	span.SetAttributes(
		attribute.String("backend", backend),
		attribute.Int("nodes", prog.Cost()),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("result.bits", result.Bits))
		}
		evaluationsTotal.WithLabelValues(backend, status).Inc()
		evaluationDuration.WithLabelValues(backend).Observe(duration)

		log.Debug().
			Str("backend", backend).
			Str("expr", prog.Source).
			Int("bits", result.Bits).
			Float64("duration", duration).
			Str("status", status).
			Msg("evaluation completed")
	}()

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(calcIndex)
	} else {
		reporter = func(float64) {}
	}

	result, err = c.core.EvaluateCore(ctx, reporter, prog, env, opts)
	if err == nil {
		reporter(1.0)
	}
	return result, err
}

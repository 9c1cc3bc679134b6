// Package service exposes expression evaluation as a synchronous operation
// for callers that do not draw progress, such as the HTTP server.
package service

//go:generate mockgen -source=calculator_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/config"
	"github.com/agbru/bigcalc/internal/expr"
)

var (
	// ErrExpressionTooLong is returned when the source exceeds the
	// configured maximum length.
	ErrExpressionTooLong = errors.New("expression too long")
	// ErrUnknownBackend is returned for a backend name that is not
	// registered.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Service evaluates expressions on a named backend.
type Service interface {
	// Evaluate parses src and runs it on backend with env as the variables.
	// Syntax errors are returned as *expr.SyntaxError and evaluation
	// failures as *expr.EvalError.
	Evaluate(ctx context.Context, backend, src string, env calculator.Env) (calculator.Result, error)
	// Backends returns the available backend names, sorted.
	Backends() []string
}

// ProgramCacheSize is the number of parsed programs kept per service.
const ProgramCacheSize = 512

// CalculatorService implements Service on top of a CalculatorFactory.
// Parsed programs are cached by source text; a Program is read-only once
// parsed, so one instance serves concurrent evaluations.
type CalculatorService struct {
	factory    calculator.CalculatorFactory
	config     config.AppConfig
	maxExprLen int
	programs   *lru.Cache[string, *expr.Program]
}

var _ Service = (*CalculatorService)(nil)

// NewCalculatorService creates a service. maxExprLen of 0 disables the length
// check.
func NewCalculatorService(factory calculator.CalculatorFactory, cfg config.AppConfig, maxExprLen int) *CalculatorService {
	// lru.New only fails for a non-positive size.
	programs, _ := lru.New[string, *expr.Program](ProgramCacheSize)
	return &CalculatorService{
		factory:    factory,
		config:     cfg,
		maxExprLen: maxExprLen,
		programs:   programs,
	}
}

func (s *CalculatorService) Evaluate(ctx context.Context, backend, src string, env calculator.Env) (calculator.Result, error) {
	if s.maxExprLen > 0 && len(src) > s.maxExprLen {
		return calculator.Result{}, fmt.Errorf("%w: %d bytes, limit is %d", ErrExpressionTooLong, len(src), s.maxExprLen)
	}

	prog, err := s.parse(src)
	if err != nil {
		return calculator.Result{}, err
	}

	calc, err := s.factory.Get(backend)
	if err != nil {
		return calculator.Result{}, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
	return calc.Evaluate(ctx, nil, 0, prog, env, s.config.ToCalculationOptions())
}

// parse returns the cached program for src, parsing it on a miss. Syntax
// errors are not cached.
func (s *CalculatorService) parse(src string) (*expr.Program, error) {
	if prog, ok := s.programs.Get(src); ok {
		return prog, nil
	}
	prog, err := expr.Parse(src)
	if err != nil {
		return nil, err
	}
	s.programs.Add(src, prog)
	return prog, nil
}

func (s *CalculatorService) Backends() []string {
	return s.factory.List()
}

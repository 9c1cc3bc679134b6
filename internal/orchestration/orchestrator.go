// Package orchestration runs one program on several backends concurrently
// and reconciles their answers. A disagreement between backends is treated
// as a critical error because every backend must compute the exact same
// integer.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/cli"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/ui"
)

// EvaluationResult is one backend's outcome.
type EvaluationResult struct {
	// Name is the backend name.
	Name string
	// Result is meaningful only when Err is nil.
	Result   calculator.Result
	Duration time.Duration
	Err      error
}

// ProgressBufferMultiplier sizes the progress channel per backend so slow
// rendering rarely delays an evaluation.
const ProgressBufferMultiplier = 5

// ExecuteEvaluations evaluates prog on every calculator concurrently and
// returns the outcomes in calculator order. Progress is drawn to out until
// all backends finish. A failing backend does not cancel the others, so
// every backend reports its own error.
func ExecuteEvaluations(ctx context.Context, calculators []calculator.Calculator, prog *expr.Program, env calculator.Env, cfg config.AppConfig, out io.Writer) []EvaluationResult {
	var g errgroup.Group
	results := make([]EvaluationResult, len(calculators))
	progressChan := make(chan calculator.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	opts := cfg.ToCalculationOptions()
	for i, calc := range calculators {
		i, calc := i, calc
		g.Go(func() error {
			start := time.Now()
			res, err := calc.Evaluate(ctx, progressChan, i, prog, env, opts)
			if err != nil {
				err = apperrors.NewCalculationError(calc.Name(), err)
			}
			results[i] = EvaluationResult{Name: calc.Name(), Result: res, Duration: time.Since(start), Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()
	return results
}

// sortResults orders successes before failures, fastest first.
func sortResults(results []EvaluationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})
}

// verdict summarizes a set of results: the fastest successful result, the
// first error, and whether successful backends disagree.
type verdict struct {
	first     *EvaluationResult
	firstErr  error
	successes int
	mismatch  bool
}

func judge(results []EvaluationResult) verdict {
	var v verdict
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			if v.firstErr == nil {
				v.firstErr = res.Err
			}
			continue
		}
		v.successes++
		if v.first == nil {
			v.first = res
		} else if res.Result.Value != v.first.Result.Value {
			v.mismatch = true
		}
	}
	return v
}

// AnalyzeComparisonResults prints a comparison of results and the agreed
// value, and returns the process exit code. Results are reordered in place.
func AnalyzeComparisonResults(results []EvaluationResult, prog *expr.Program, cfg config.AppConfig, out io.Writer) int {
	sortResults(results)
	v := judge(results)

	if cfg.JSONOutput {
		return reportJSON(results, prog, v, out)
	}
	if !cfg.Quiet {
		printSummary(results, out)
	}

	switch {
	case v.successes == 0:
		if !cfg.Quiet {
			fmt.Fprintf(out, "\nGlobal Status: Failure. No backend could evaluate the expression.\n")
		}
		return apperrors.HandleCalculationError(v.firstErr, 0, out, cli.CLIColorProvider{})
	case v.mismatch:
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! The backends returned different results.\n")
		return apperrors.ExitErrorMismatch
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	}
	outCfg := cli.OutputConfig{
		OutputFile: cfg.OutputFile,
		Quiet:      cfg.Quiet,
		Verbose:    cfg.Verbose,
		Details:    cfg.Details,
	}
	if err := cli.DisplayResultWithConfig(out, v.first.Result, prog.Source, v.first.Duration, v.first.Name, outCfg); err != nil {
		fmt.Fprintf(out, "%sError writing output: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func printSummary(results []EvaluationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sBackend%s\t%sDuration%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	for _, res := range results {
		status := ui.Paint(ui.ColorGreen(), "✅ Success")
		if res.Err != nil {
			status = ui.Paint(ui.ColorRed(), fmt.Sprintf("❌ Failure (%v)", res.Err))
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ui.Paint(ui.ColorBlue(), res.Name), ui.Paint(ui.ColorYellow(), duration), status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}
}

// reportJSON writes every backend's record and derives the exit code
// without printing human-readable status lines.
func reportJSON(results []EvaluationResult, prog *expr.Program, v verdict, out io.Writer) int {
	records := make([]cli.ResultRecord, len(results))
	for i, res := range results {
		records[i] = cli.NewResultRecord(prog.Source, res.Name, res.Result, res.Duration, res.Err)
	}
	if err := cli.WriteJSON(out, records); err != nil {
		return apperrors.ExitErrorGeneric
	}
	switch {
	case v.successes == 0:
		return apperrors.HandleCalculationError(v.firstErr, 0, io.Discard, nil)
	case v.mismatch:
		return apperrors.ExitErrorMismatch
	}
	return apperrors.ExitSuccess
}

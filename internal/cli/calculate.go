package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/config"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/ui"
)

// GetCalculatorsToRun resolves cfg.Backend against factory. "all" selects
// every registered backend in name order; an unknown name selects none.
func GetCalculatorsToRun(cfg config.AppConfig, factory calculator.CalculatorFactory) []calculator.Calculator {
	if cfg.Backend == "all" {
		names := factory.List()
		calculators := make([]calculator.Calculator, 0, len(names))
		for _, name := range names {
			if calc, err := factory.Get(name); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(cfg.Backend); err == nil {
		return []calculator.Calculator{calc}
	}
	return nil
}

// PrintExecutionConfig describes the evaluation about to run.
func PrintExecutionConfig(cfg config.AppConfig, prog *expr.Program, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Evaluating %s with a timeout of %s.\n",
		ui.Paint(ui.ColorMagenta(), prog.String()), ui.Paint(ui.ColorYellow(), cfg.Timeout.String()))
	if vars := prog.Variables(); len(vars) > 0 {
		fmt.Fprintf(out, "Variables: %s.\n", ui.Paint(ui.ColorCyan(), strings.Join(vars, ", ")))
	}
	fmt.Fprintf(out, "Limits: results up to %s bits, %s nodes.\n",
		ui.Paint(ui.ColorCyan(), formatNumberString(fmt.Sprint(cfg.MaxBits))),
		ui.Paint(ui.ColorCyan(), fmt.Sprint(prog.Cost())))
	fmt.Fprintf(out, "Environment: %s logical processors, Go %s.\n",
		ui.Paint(ui.ColorCyan(), fmt.Sprint(runtime.NumCPU())), ui.Paint(ui.ColorCyan(), runtime.Version()))
}

// PrintExecutionMode states whether one backend runs or several are compared.
func PrintExecutionMode(calculators []calculator.Calculator, out io.Writer) {
	mode := "Parallel comparison of all backends"
	if len(calculators) == 1 {
		mode = fmt.Sprintf("Single evaluation with the %s backend", ui.Paint(ui.ColorGreen(), calculators[0].Name()))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", mode)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/cli"
	"github.com/agbru/bigcalc/internal/config"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/logging"
	"github.com/agbru/bigcalc/internal/orchestration"
	"github.com/agbru/bigcalc/internal/server"
	"github.com/agbru/bigcalc/internal/ui"
)

// Application is one bigcalc invocation.
type Application struct {
	Config  config.AppConfig
	Factory calculator.CalculatorFactory
	// ErrWriter receives diagnostics and logs.
	ErrWriter io.Writer
	// In feeds the REPL.
	In io.Reader
}

// stdoutIsTerminal decides whether interactive progress is drawn.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// New parses args (args[0] is the program name) into an Application.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := calculator.GlobalFactory()

	programName := "bigcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}
	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
		In:        os.Stdin,
	}, nil
}

// Run dispatches to the configured mode and returns the exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	logging.Setup(a.Config.LogLevel, a.ErrWriter)
	ui.InitTheme(a.Config.NoColor || a.Config.JSONOutput)

	switch {
	case a.Config.ServerMode:
		return a.runServer(ctx)
	case a.Config.Interactive:
		return a.runREPL(out)
	}
	return a.runCalculate(ctx, out)
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

func (a *Application) runServer(ctx context.Context) int {
	srv := server.NewServer(a.Factory, a.Config, server.WithLogger(logging.NewLogger(a.ErrWriter, "server")))
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runREPL(out io.Writer) int {
	repl := cli.NewREPL(a.Factory.GetAll(), cli.REPLConfig{
		DefaultBackend: a.Config.Backend,
		Timeout:        a.Config.Timeout,
		Options:        a.Config.ToCalculationOptions(),
		ShowProgress:   stdoutIsTerminal(),
	})
	if a.In != nil {
		repl.SetInput(a.In)
	}
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// runCalculate evaluates the configured expression on the selected
// backends and reports the reconciled result.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	prog, err := expr.Parse(a.Config.Expr)
	if err != nil {
		if a.Config.JSONOutput {
			record := cli.NewResultRecord(a.Config.Expr, "", calculator.Result{}, 0, err)
			_ = cli.WriteJSON(out, []cli.ResultRecord{record})
			return apperrors.ExitErrorInput
		}
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	calculators := cli.GetCalculatorsToRun(a.Config, a.Factory)
	if len(calculators) == 0 {
		fmt.Fprintf(a.ErrWriter, "No backend available for %q\n", a.Config.Backend)
		return apperrors.ExitErrorConfig
	}

	chatty := !a.Config.JSONOutput && !a.Config.Quiet
	if chatty {
		cli.PrintExecutionConfig(a.Config, prog, out)
		cli.PrintExecutionMode(calculators, out)
	}
	progressOut := io.Discard
	if chatty && stdoutIsTerminal() {
		progressOut = out
	}

	results := orchestration.ExecuteEvaluations(ctx, calculators, prog, calculator.Env{}, a.Config, progressOut)
	return orchestration.AnalyzeComparisonResults(results, prog, a.Config, out)
}

// IsHelpError reports whether err comes from -h or --help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

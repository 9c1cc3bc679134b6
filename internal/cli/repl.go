package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/expr"
	"github.com/agbru/bigcalc/internal/ui"
)

// AnswerVar holds the last successful result in a REPL session.
const AnswerVar = "ans"

// REPLConfig configures an interactive session.
type REPLConfig struct {
	// DefaultBackend is used until the user switches. Empty or "all"
	// selects the first backend by name.
	DefaultBackend string
	// Timeout bounds each evaluation.
	Timeout time.Duration
	Options calculator.Options
	// ShowProgress draws the spinner while evaluating. It should only be
	// set when the output is a terminal.
	ShowProgress bool
}

// REPL is an interactive session. Variables assigned with "name = expr"
// persist across lines, and the last result is available as ans.
type REPL struct {
	config   REPLConfig
	registry map[string]calculator.Calculator
	backend  string
	env      calculator.Env
	in       io.Reader
	out      io.Writer
}

type replCommand struct {
	usage    string
	desc     string
	takesArg bool
	run      func(r *REPL, arg string) bool
}

var replCommands map[string]*replCommand

func init() {
	cmds := []struct {
		names []string
		cmd   *replCommand
	}{
		{[]string{"backend", "b"}, &replCommand{"backend <name>", "Switch the arithmetic backend", true, (*REPL).cmdBackend}},
		{[]string{"compare", "cmp"}, &replCommand{"compare <expr>", "Evaluate on every backend and compare", true, (*REPL).cmdCompare}},
		{[]string{"vars"}, &replCommand{"vars", "List variables", false, (*REPL).cmdVars}},
		{[]string{"reset"}, &replCommand{"reset", "Forget all variables", false, (*REPL).cmdReset}},
		{[]string{"list", "ls"}, &replCommand{"list", "List backends", false, (*REPL).cmdList}},
		{[]string{"funcs"}, &replCommand{"funcs", "List built-in functions", false, (*REPL).cmdFuncs}},
		{[]string{"status", "st"}, &replCommand{"status", "Show the session configuration", false, (*REPL).cmdStatus}},
		{[]string{"help", "h", "?"}, &replCommand{"help", "Show this help", false, (*REPL).cmdHelp}},
		{[]string{"exit", "quit", "q"}, &replCommand{"exit", "Leave interactive mode", false, (*REPL).cmdExit}},
	}
	replCommands = make(map[string]*replCommand)
	for _, c := range cmds {
		for _, name := range c.names {
			replCommands[name] = c.cmd
		}
	}
}

// NewREPL creates a session over registry.
func NewREPL(registry map[string]calculator.Calculator, config REPLConfig) *REPL {
	r := &REPL{
		config:   config,
		registry: registry,
		env:      make(calculator.Env),
		in:       os.Stdin,
		out:      os.Stdout,
	}
	if _, ok := registry[config.DefaultBackend]; ok {
		r.backend = config.DefaultBackend
	} else if names := r.backendNames(); len(names) > 0 {
		r.backend = names[0]
	}
	return r
}

func (r *REPL) SetInput(in io.Reader)   { r.in = in }
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Env returns the session variables.
func (r *REPL) Env() calculator.Env { return r.env }

// Start reads and executes lines until exit or end of input.
func (r *REPL) Start() {
	r.printBanner()
	r.cmdHelp("")
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ui.Paint(ui.ColorGreen(), "bigcalc> "))

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		if line = strings.TrimSpace(line); line != "" && !r.processLine(line) {
			return
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sbigcalc - arbitrary precision, interactive mode%s       %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

// processLine runs a command or evaluates an expression. It returns false
// when the session should end. A line that starts with a command name is an
// expression when the name is being assigned or the command takes no
// argument but one follows, so "vars = 3" and "list == 2" still evaluate.
func (r *REPL) processLine(line string) bool {
	word := line
	if i := strings.IndexFunc(line, func(c rune) bool { return c == ' ' || c == '\t' }); i >= 0 {
		word = line[:i]
	}
	arg := strings.TrimSpace(line[len(word):])

	if cmd, ok := replCommands[strings.ToLower(word)]; ok {
		assigning := strings.HasPrefix(arg, "=") && !strings.HasPrefix(arg, "==")
		if !assigning && (arg == "" || cmd.takesArg) {
			return cmd.run(r, arg)
		}
	}
	r.evaluate(line)
	return true
}

func (r *REPL) backendNames() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *REPL) parse(src string) (*expr.Program, bool) {
	prog, err := expr.Parse(src)
	if err != nil {
		r.printError(src, err)
		return nil, false
	}
	return prog, true
}

// printError shows err, pointing at the offending column when the error
// carries a position.
func (r *REPL) printError(src string, err error) {
	pos := -1
	var syntaxErr *expr.SyntaxError
	var evalErr *expr.EvalError
	switch {
	case errors.As(err, &syntaxErr):
		pos = syntaxErr.Pos
	case errors.As(err, &evalErr):
		pos = evalErr.Pos
	}
	if pos >= 0 && pos <= len(src) {
		fmt.Fprintf(r.out, "  %s\n  %s%s\n", src, strings.Repeat(" ", pos), ui.Paint(ui.ColorRed(), "^"))
	}
	fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
}

func (r *REPL) run(calc calculator.Calculator, prog *expr.Program, progress bool) (calculator.Result, time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	var progressChan chan calculator.ProgressUpdate
	var wg sync.WaitGroup
	if progress {
		progressChan = make(chan calculator.ProgressUpdate, 16)
		wg.Add(1)
		go DisplayProgress(&wg, progressChan, 1, r.out)
	}

	start := time.Now()
	result, err := calc.Evaluate(ctx, progressChan, 0, prog, r.env, r.config.Options)
	duration := time.Since(start)
	if progressChan != nil {
		close(progressChan)
		wg.Wait()
	}
	return result, duration, err
}

// evaluate runs src on the current backend and stores the result in ans and
// in the assigned variable, if any.
func (r *REPL) evaluate(src string) {
	calc, ok := r.registry[r.backend]
	if !ok {
		fmt.Fprintf(r.out, "%sBackend not found: %s%s\n", ui.ColorRed(), r.backend, ui.ColorReset())
		return
	}
	prog, ok := r.parse(src)
	if !ok {
		return
	}

	result, duration, err := r.run(calc, prog, r.config.ShowProgress)
	if err != nil {
		r.printError(src, err)
		return
	}

	name := AnswerVar
	if prog.Target != "" {
		name = prog.Target
		r.env[prog.Target] = result.Value
	}
	r.env[AnswerVar] = result.Value

	fmt.Fprintf(r.out, "%s = %s\n", ui.Paint(ui.ColorMagenta(), name), ui.Paint(ui.ColorGreen(), displayValue(result.Value)))
	fmt.Fprintf(r.out, "  %s[%s, %d bits, %d digits, %s]%s\n",
		ui.ColorCyan(), calc.Name(), result.Bits, result.Digits(), FormatExecutionDuration(duration), ui.ColorReset())
}

func displayValue(v string) string {
	if len(strings.TrimPrefix(v, "-")) > TruncationLimit {
		return truncateDigits(v) + " (truncated)"
	}
	return v
}

func (r *REPL) cmdBackend(arg string) bool {
	name := strings.ToLower(arg)
	if _, ok := r.registry[name]; !ok {
		if name == "" {
			fmt.Fprintf(r.out, "%sUsage: backend <name>%s\n", ui.ColorRed(), ui.ColorReset())
		} else {
			fmt.Fprintf(r.out, "%sUnknown backend: %s%s\n", ui.ColorRed(), name, ui.ColorReset())
		}
		fmt.Fprintf(r.out, "Available backends: %s\n", strings.Join(r.backendNames(), ", "))
		return true
	}
	r.backend = name
	fmt.Fprintf(r.out, "Backend changed to: %s\n", ui.Paint(ui.ColorGreen(), name))
	return true
}

// cmdCompare evaluates arg on every backend without touching the session
// variables and reports whether the results agree.
func (r *REPL) cmdCompare(arg string) bool {
	if arg == "" {
		fmt.Fprintf(r.out, "%sUsage: compare <expr>%s\n", ui.ColorRed(), ui.ColorReset())
		return true
	}
	prog, ok := r.parse(arg)
	if !ok {
		return true
	}

	rule := ui.Paint(ui.ColorCyan(), "─────────────────────────────────────────────")
	fmt.Fprintf(r.out, "\n%sComparison for %s:%s\n%s\n", ui.ColorBold(), prog, ui.ColorReset(), rule)

	var first string
	seen, consistent := false, true
	for _, name := range r.backendNames() {
		result, duration, err := r.run(r.registry[name], prog, false)
		if err != nil {
			fmt.Fprintf(r.out, "  %-10s: %s\n", name, ui.Paint(ui.ColorRed(), "Error - "+err.Error()))
			continue
		}
		status := ui.Paint(ui.ColorGreen(), "✓")
		if !seen {
			first, seen = result.Value, true
		} else if result.Value != first {
			status = ui.Paint(ui.ColorRed(), "✗ INCONSISTENT")
			consistent = false
		}
		fmt.Fprintf(r.out, "  %-10s: %12s %s\n", name, FormatExecutionDuration(duration), status)
	}
	fmt.Fprintln(r.out, rule)
	if seen && consistent {
		fmt.Fprintf(r.out, "%s = %s\n\n", ui.Paint(ui.ColorMagenta(), prog.String()), ui.Paint(ui.ColorGreen(), displayValue(first)))
	}
	return true
}

func (r *REPL) cmdVars(string) bool {
	if len(r.env) == 0 {
		fmt.Fprintln(r.out, "No variables defined.")
		return true
	}
	names := make([]string, 0, len(r.env))
	for name := range r.env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(r.out, "  %s = %s\n", ui.Paint(ui.ColorYellow(), name), displayValue(r.env[name]))
	}
	return true
}

func (r *REPL) cmdReset(string) bool {
	r.env = make(calculator.Env)
	fmt.Fprintln(r.out, "Variables cleared.")
	return true
}

func (r *REPL) cmdList(string) bool {
	fmt.Fprintf(r.out, "\n%sAvailable backends:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, name := range r.backendNames() {
		marker := "  "
		if name == r.backend {
			marker = ui.Paint(ui.ColorGreen(), "► ")
		}
		fmt.Fprintf(r.out, "%s%s\n", marker, ui.Paint(ui.ColorYellow(), name))
	}
	fmt.Fprintln(r.out)
	return true
}

func (r *REPL) cmdFuncs(string) bool {
	for _, usage := range expr.Functions() {
		fmt.Fprintf(r.out, "  %s\n", usage)
	}
	return true
}

func (r *REPL) cmdStatus(string) bool {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Backend:    %s\n", ui.Paint(ui.ColorCyan(), r.backend))
	fmt.Fprintf(r.out, "  Timeout:    %s\n", ui.Paint(ui.ColorCyan(), r.config.Timeout.String()))
	fmt.Fprintf(r.out, "  Max bits:   %s\n", ui.Paint(ui.ColorCyan(), fmt.Sprint(r.config.Options.Limits.MaxBits)))
	fmt.Fprintf(r.out, "  Variables:  %s\n\n", ui.Paint(ui.ColorCyan(), fmt.Sprint(len(r.env))))
	return true
}

func (r *REPL) cmdHelp(string) bool {
	fmt.Fprintf(r.out, "%sType an expression such as %s or an assignment such as %s.%s\n",
		ui.ColorBold(), "fib(100) % 97", "x = 2 << 64", ui.ColorReset())
	fmt.Fprintf(r.out, "%sCommands:%s\n", ui.ColorBold(), ui.ColorReset())
	seen := map[*replCommand]bool{}
	var cmds []*replCommand
	for _, cmd := range replCommands {
		if !seen[cmd] {
			seen[cmd] = true
			cmds = append(cmds, cmd)
		}
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].usage < cmds[j].usage })
	for _, cmd := range cmds {
		fmt.Fprintf(r.out, "  %s - %s\n", ui.Paint(ui.ColorYellow(), fmt.Sprintf("%-15s", cmd.usage)), cmd.desc)
	}
	return true
}

func (r *REPL) cmdExit(string) bool {
	fmt.Fprintf(r.out, "%s\n", ui.Paint(ui.ColorGreen(), "Goodbye!"))
	return false
}

// Package config provides the configuration management for the bigcalc
// application. It defines the configuration structure, parses command-line
// arguments with environment overrides, and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/bigcalc/internal/calculator"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/expr"
)

const (
	// EnvPrefix is the prefix for all environment variables used by bigcalc.
	EnvPrefix = "BIGCALC_"
)

// Default configuration values.
// These can be overridden via command-line flags or environment variables.
const (
	// DefaultTimeout is the default evaluation timeout.
	DefaultTimeout = 1 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultBackend runs every registered backend and compares the results.
	DefaultBackend = "all"
	// DefaultLogLevel is the default zerolog level.
	DefaultLogLevel = "info"
	// DefaultMaxExprLength bounds the size of an expression in bytes.
	DefaultMaxExprLength = 4096
)

// DefaultMaxBits is the default cap on the bit length of shifts and powers.
var DefaultMaxBits = expr.DefaultLimits().MaxBits

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Expr is the expression to evaluate, from -e or the positional
	// arguments joined by spaces.
	Expr string
	// Backend selects the arithmetic backend ("all", "native", "mathbig", ...).
	Backend string
	// Timeout sets the maximum duration of an evaluation.
	Timeout time.Duration
	// MaxBits caps the bit length of left shifts and powers.
	MaxBits uint64
	// MaxExprLength is the longest expression accepted, in bytes.
	MaxExprLength int

	// Verbose displays the full result, however long.
	Verbose bool
	// Details adds digit count, bit length and timing to the output.
	Details bool
	// JSONOutput prints the result as JSON.
	JSONOutput bool
	// Quiet prints only the result, for scripting.
	Quiet bool
	// NoColor disables colored output. NO_COLOR is also respected.
	NoColor bool
	// OutputFile, if set, receives the result.
	OutputFile string
	// LogLevel is the zerolog level name ("debug", "info", ...).
	LogLevel string

	// Interactive starts the REPL.
	Interactive bool
	// ServerMode starts the HTTP API.
	ServerMode bool
	// Port is the HTTP listen port.
	Port string
	// Completion, if set, prints a shell completion script for the given
	// shell ("bash", "zsh", "fish", "powershell").
	Completion string
	// ShowVersion prints version information and exits.
	ShowVersion bool
}

// ToCalculationOptions converts the configuration into calculator.Options.
func (c AppConfig) ToCalculationOptions() calculator.Options {
	return calculator.Options{
		Limits: expr.Limits{MaxBits: c.MaxBits},
	}
}

// Validate checks the semantic consistency of the configuration.
//
// Parameters:
//   - availableBackends: The registered backend names (e.g., ["mathbig", "native"]).
//
// Returns:
//   - error: A ConfigError if the configuration is invalid, nil otherwise.
func (c AppConfig) Validate(availableBackends []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.MaxBits == 0 {
		return apperrors.NewConfigError("max-bits must be strictly positive")
	}
	if c.MaxExprLength <= 0 {
		return apperrors.NewConfigError("max-expr-len must be strictly positive: %d", c.MaxExprLength)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("unrecognized log level: '%s'", c.LogLevel)
	}
	isBackendAvailable := false
	for _, b := range availableBackends {
		if b == c.Backend {
			isBackendAvailable = true
			break
		}
	}
	if c.Backend != DefaultBackend && !isBackendAvailable {
		return apperrors.NewConfigError("unrecognized backend: '%s'. Valid backends are: 'all' or [%s]", c.Backend, strings.Join(availableBackends, ", "))
	}
	if len(c.Expr) > c.MaxExprLength {
		return apperrors.NewConfigError("expression is %d bytes long, the limit is %d", len(c.Expr), c.MaxExprLength)
	}
	if c.needsExpression() && strings.TrimSpace(c.Expr) == "" {
		return apperrors.NewConfigError("no expression given")
	}
	return nil
}

func (c AppConfig) needsExpression() bool {
	return !c.ServerMode && !c.Interactive && !c.ShowVersion && c.Completion == ""
}

// ParseConfig parses the command-line arguments into an AppConfig, applies
// environment overrides (CLI > environment > default) and validates the
// result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage are printed.
//   - availableBackends: Valid backend names for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableBackends []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	backendHelp := fmt.Sprintf("Backend to use: 'all' (default) or one of [%s].", strings.Join(availableBackends, ", "))

	config := AppConfig{}
	fs.StringVar(&config.Expr, "e", "", "Expression to evaluate (alternative to positional arguments).")
	fs.StringVar(&config.Backend, "backend", DefaultBackend, backendHelp)
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for an evaluation.")
	fs.Uint64Var(&config.MaxBits, "max-bits", DefaultMaxBits, "Largest bit length a shift or power may produce.")
	fs.IntVar(&config.MaxExprLength, "max-expr-len", DefaultMaxExprLength, "Longest accepted expression, in bytes.")
	fs.BoolVar(&config.Verbose, "v", false, "Display the full value of the result (can be very long).")
	fs.BoolVar(&config.Verbose, "verbose", false, "Alias for -v.")
	fs.BoolVar(&config.Details, "d", false, "Display digit count, bit length and timing.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: trace, debug, info, warn, error.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version information and exit.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if config.Expr == "" && fs.NArg() > 0 {
		config.Expr = strings.Join(fs.Args(), " ")
	}

	applyEnvOverrides(&config, fs)

	config.Backend = strings.ToLower(config.Backend)
	config.LogLevel = strings.ToLower(config.LogLevel)
	if err := config.Validate(availableBackends); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}

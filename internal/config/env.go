package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnv returns the value of EnvPrefix+key converted by parse, or defaultVal
// when the variable is unset or does not parse.
func getEnv[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return defaultVal
	}
	parsed, err := parse(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

func getEnvString(key, defaultVal string) string {
	return getEnv(key, defaultVal, func(s string) (string, error) { return s, nil })
}

func getEnvUint64(key string, defaultVal uint64) uint64 {
	return getEnv(key, defaultVal, func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) })
}

func getEnvInt(key string, defaultVal int) int {
	return getEnv(key, defaultVal, strconv.Atoi)
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	return getEnv(key, defaultVal, time.ParseDuration)
}

// getEnvBool accepts "true", "1", "yes" and "false", "0", "no", in any case.
func getEnvBool(key string, defaultVal bool) bool {
	return getEnv(key, defaultVal, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean %q", s)
	})
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Supported environment variables:
//   - BIGCALC_EXPR: Expression to evaluate (string)
//   - BIGCALC_BACKEND: Backend to use (string: native, mathbig, gmp, all)
//   - BIGCALC_PORT: Port for server mode (string)
//   - BIGCALC_TIMEOUT: Evaluation timeout (duration: "5m", "30s")
//   - BIGCALC_MAX_BITS: Largest result of a shift or power, in bits (uint64)
//   - BIGCALC_MAX_EXPR_LEN: Longest accepted expression, in bytes (int)
//   - BIGCALC_LOG_LEVEL: zerolog level (string)
//   - BIGCALC_OUTPUT: Output file path (string)
//   - BIGCALC_SERVER, BIGCALC_JSON, BIGCALC_VERBOSE, BIGCALC_DETAILS,
//     BIGCALC_QUIET, BIGCALC_INTERACTIVE, BIGCALC_NO_COLOR: booleans
//     (true/false, 1/0, yes/no)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyDurationOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "max-bits") {
		config.MaxBits = getEnvUint64("MAX_BITS", config.MaxBits)
	}
	if !isFlagSet(fs, "max-expr-len") {
		config.MaxExprLength = getEnvInt("MAX_EXPR_LEN", config.MaxExprLength)
	}
}

func applyDurationOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if config.Expr == "" {
		config.Expr = getEnvString("EXPR", config.Expr)
	}
	if !isFlagSet(fs, "backend") {
		config.Backend = getEnvString("BACKEND", config.Backend)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "output") && !isFlagSet(fs, "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
	if !isFlagSet(fs, "log-level") {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "v") && !isFlagSet(fs, "verbose") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "d") && !isFlagSet(fs, "details") {
		config.Details = getEnvBool("DETAILS", config.Details)
	}
	if !isFlagSet(fs, "quiet") && !isFlagSet(fs, "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "interactive") {
		config.Interactive = getEnvBool("INTERACTIVE", config.Interactive)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
}

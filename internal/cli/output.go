package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/bigcalc/internal/calculator"
	apperrors "github.com/agbru/bigcalc/internal/errors"
	"github.com/agbru/bigcalc/internal/ui"
)

// OutputConfig selects how a result is presented.
type OutputConfig struct {
	// OutputFile, when set, also saves the result to this path.
	OutputFile string
	// Quiet prints only the decimal value.
	Quiet bool
	// Verbose prints the full value however long it is.
	Verbose bool
	// Details adds timing and size analysis.
	Details bool
}

// ResultRecord is the JSON form of one backend's evaluation.
type ResultRecord struct {
	Expression string  `json:"expression"`
	Backend    string  `json:"backend"`
	Value      string  `json:"value,omitempty"`
	Bits       int     `json:"bits"`
	Digits     int     `json:"digits"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// NewResultRecord builds the JSON record for a single evaluation.
func NewResultRecord(src, backend string, result calculator.Result, duration time.Duration, err error) ResultRecord {
	rec := ResultRecord{
		Expression: src,
		Backend:    backend,
		DurationMS: float64(duration) / float64(time.Millisecond),
	}
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	rec.Value = result.Value
	rec.Bits = result.Bits
	rec.Digits = result.Digits()
	return rec
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(out io.Writer, records []ResultRecord) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteResultToFile saves result with a commented header describing how it
// was produced. Missing parent directories are created.
func WriteResultToFile(result calculator.Result, src, backend string, duration time.Duration, path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.WrapError(err, "failed to create directory %s", dir)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.WrapError(err, "failed to create output file %s", path)
	}
	defer file.Close()

	fmt.Fprintf(file, "# bigcalc result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Expression: %s\n", src)
	fmt.Fprintf(file, "# Backend: %s\n", backend)
	fmt.Fprintf(file, "# Duration: %s\n", duration)
	fmt.Fprintf(file, "# Bits: %d\n", result.Bits)
	fmt.Fprintf(file, "# Digits: %d\n\n", result.Digits())
	if _, err := fmt.Fprintf(file, "%s\n", result.Value); err != nil {
		return apperrors.WrapError(err, "failed to write output file %s", path)
	}
	return nil
}

// DisplayResultWithConfig prints result according to cfg and saves it when
// an output file is configured.
func DisplayResultWithConfig(out io.Writer, result calculator.Result, src string, duration time.Duration, backend string, cfg OutputConfig) error {
	if cfg.Quiet {
		fmt.Fprintln(out, result.Value)
	} else {
		DisplayResult(result, src, duration, cfg.Verbose, cfg.Details, out)
	}

	if cfg.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(result, src, backend, duration, cfg.OutputFile); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s\n", ui.ColorGreen(), ui.Paint(ui.ColorCyan(), cfg.OutputFile), ui.ColorReset())
	}
	return nil
}

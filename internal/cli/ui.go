// Package cli renders bigcalc's terminal output: the progress spinner shown
// while backends evaluate, the result report, scripting-friendly output
// modes, shell completion scripts and the interactive REPL.
package cli

//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/bigcalc/internal/calculator"
	"github.com/agbru/bigcalc/internal/ui"
)

const (
	// TruncationLimit is the number of digits above which a result is
	// abbreviated unless verbose output was requested.
	TruncationLimit = 100
	// DisplayEdges is how many leading and trailing digits a truncated
	// result keeps.
	DisplayEdges = 25
	// ProgressRefreshRate is the spinner and progress bar refresh interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the progress bar width in characters.
	ProgressBarWidth = 40
)

// FormatExecutionDuration renders d in µs below a millisecond, in ms below a
// second, and with time.Duration's own format otherwise.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// Spinner abstracts the terminal spinner so DisplayProgress can be tested.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text shown after the spinner glyph.
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// ProgressState tracks the progress of several concurrent backends and
// averages it for a single progress bar.
type ProgressState struct {
	progresses     []float64
	numCalculators int
}

// NewProgressState tracks numCalculators backends, all starting at zero.
func NewProgressState(numCalculators int) *ProgressState {
	return &ProgressState{
		progresses:     make([]float64, numCalculators),
		numCalculators: numCalculators,
	}
}

// Update records value for the backend at index. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress, or 0 with no backends.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numCalculators == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numCalculators)
}

func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	var b strings.Builder
	b.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < filled {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}

func progressLabel(numCalculators int) string {
	if numCalculators > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress draws a spinner with an averaged progress bar and ETA until
// progressChan is closed, then prints a final 100% line. It is meant to run
// in its own goroutine and calls wg.Done on return. With no calculators it
// only drains the channel.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan calculator.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numCalculators)
	label := progressLabel(numCalculators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			s.UpdateSuffix(" " + label + ": " + FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth))
		}
	}
}

// DisplayResult prints the evaluation report for src. Results longer than
// TruncationLimit digits are abbreviated unless verbose is set; details adds
// timing, digit count and scientific notation.
func DisplayResult(result calculator.Result, src string, duration time.Duration, verbose, details bool, out io.Writer) {
	fmt.Fprintf(out, "Result binary size: %s%s%s bits.\n", ui.ColorCyan(), formatNumberString(fmt.Sprint(result.Bits)), ui.ColorReset())

	digits := result.Digits()
	if details {
		fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ui.ColorBold(), ui.ColorReset())
		durationStr := FormatExecutionDuration(duration)
		if duration == 0 {
			durationStr = "< 1µs"
		}
		fmt.Fprintf(out, "Evaluation time        : %s%s%s\n", ui.ColorGreen(), durationStr, ui.ColorReset())
		fmt.Fprintf(out, "Number of digits       : %s%s%s\n", ui.ColorCyan(), formatNumberString(fmt.Sprint(digits)), ui.ColorReset())
		if digits > 6 {
			if f, ok := new(big.Float).SetString(result.Value); ok {
				fmt.Fprintf(out, "Scientific notation    : %s%.6e%s\n", ui.ColorCyan(), f, ui.ColorReset())
			}
		}
	}

	fmt.Fprintf(out, "\n%s--- Result ---%s\n", ui.ColorBold(), ui.ColorReset())
	lhs := ui.Paint(ui.ColorMagenta(), src)
	switch {
	case verbose:
		fmt.Fprintf(out, "%s =\n%s\n", lhs, ui.Paint(ui.ColorGreen(), formatNumberString(result.Value)))
	case digits > TruncationLimit:
		fmt.Fprintf(out, "%s (truncated) = %s\n", lhs, ui.Paint(ui.ColorGreen(), truncateDigits(result.Value)))
		fmt.Fprintf(out, "(Tip: use the %s-v%s or %s--verbose%s option to display the full value)\n",
			ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
	default:
		fmt.Fprintf(out, "%s = %s\n", lhs, ui.Paint(ui.ColorGreen(), formatNumberString(result.Value)))
	}
}

// truncateDigits keeps DisplayEdges digits on each side of s, preserving a
// leading minus sign.
func truncateDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 2*DisplayEdges {
		return sign + s
	}
	return sign + s[:DisplayEdges] + "..." + s[len(s)-DisplayEdges:]
}

// formatNumberString inserts thousands separators into a decimal string.
func formatNumberString(s string) string {
	if s == "" {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var b strings.Builder
	b.Grow(len(prefix) + n + (n-1)/3)
	b.WriteString(prefix)
	first := n % 3
	if first == 0 {
		first = 3
	}
	b.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

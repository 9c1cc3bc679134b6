package cli

import (
	"fmt"
	"time"
)

const (
	// maxETA caps estimates so a stalled backend does not print absurd values.
	maxETA = 24 * time.Hour
	// etaWarmup is how long to wait before the first estimate.
	etaWarmup = 100 * time.Millisecond
	// rateSmoothing is the weight kept from the previous rate.
	rateSmoothing = 0.7
)

// ProgressWithETA adds a remaining-time estimate to ProgressState. The rate
// is exponentially smoothed so bursty progress from nested function calls
// does not make the estimate jump around.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	// progressRate is the smoothed progress per second.
	progressRate float64
	now          func() time.Time
}

// NewProgressWithETA tracks numCalculators backends starting now.
func NewProgressWithETA(numCalculators int) *ProgressWithETA {
	return newProgressWithClock(numCalculators, time.Now)
}

func newProgressWithClock(numCalculators int, now func() time.Time) *ProgressWithETA {
	start := now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numCalculators),
		startTime:     start,
		lastUpdate:    start,
		now:           now,
	}
}

// UpdateWithETA records value for the backend at index and returns the
// averaged progress with the current estimate. The estimate is 0 until
// enough time and progress have accumulated.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (progress float64, eta time.Duration) {
	p.Update(index, value)
	progress = p.CalculateAverage()

	now := p.now()
	elapsed := now.Sub(p.startTime)
	if elapsed < etaWarmup || progress <= 0.001 {
		p.lastUpdate, p.lastProgress = now, progress
		return progress, 0
	}

	if since := now.Sub(p.lastUpdate).Seconds(); since > 0.05 {
		if delta := progress - p.lastProgress; delta > 0 {
			if p.progressRate > 0 {
				p.progressRate = rateSmoothing*p.progressRate + (1-rateSmoothing)*delta/since
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate, p.lastProgress = now, progress
	}
	return progress, p.GetETA()
}

// GetETA returns the estimate for the current progress without recording an
// update.
func (p *ProgressWithETA) GetETA() time.Duration {
	progress := p.CalculateAverage()
	if p.progressRate <= 0 || progress >= 1 {
		return 0
	}
	eta := time.Duration((1 - progress) / p.progressRate * float64(time.Second))
	return min(eta, maxETA)
}

// FormatETA renders an estimate as "< 1s", "42s", "2m30s" or "1h15m".
// Non-positive values mean no estimate yet.
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		if s := int(eta.Seconds()) % 60; s > 0 {
			return fmt.Sprintf("%dm%ds", int(eta.Minutes()), s)
		}
		return fmt.Sprintf("%dm", int(eta.Minutes()))
	}
	if m := int(eta.Minutes()) % 60; m > 0 {
		return fmt.Sprintf("%dh%dm", int(eta.Hours()), m)
	}
	return fmt.Sprintf("%dh", int(eta.Hours()))
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}

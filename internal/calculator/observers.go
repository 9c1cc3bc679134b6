package calculator

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Channel Observer
// ─────────────────────────────────────────────────────────────────────────────

// ChannelObserver forwards progress to a channel, as expected by the CLI
// progress display.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends updates to ch. If ch is
// nil, updates are discarded.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver. The send never blocks: when the channel
// is full the update is dropped and the display catches up on the next one.
func (o *ChannelObserver) Update(calcIndex int, progress float64) {
	if o.channel == nil {
		return
	}
	if progress > 1.0 {
		progress = 1.0
	}

	update := ProgressUpdate{CalculatorIndex: calcIndex, Value: progress}
	select {
	case o.channel <- update:
	default:
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver logs progress with zerolog, throttled by a threshold.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64         // Minimum progress change to log
	lastLog   map[int]float64 // Last logged progress per calculator
	mu        sync.Mutex
}

// NewLoggingObserver creates an observer that logs when progress moves by
// at least threshold (default 0.1).
//
// Parameters:
//   - logger: The zerolog logger to use.
//   - threshold: Minimum progress change to trigger a log (e.g., 0.1 for 10%).
//
// Returns:
//   - *LoggingObserver: A new observer that logs to zerolog.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{
		logger:    logger,
		threshold: threshold,
		lastLog:   make(map[int]float64),
	}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(calcIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	lastProgress := o.lastLog[calcIndex]

	shouldLog := progress >= 1.0 ||
		lastProgress == 0 && progress > 0 ||
		progress-lastProgress >= o.threshold

	if shouldLog {
		o.logger.Debug().
			Int("calculator", calcIndex).
			Float64("progress", progress).
			Str("percent", fmt.Sprintf("%.1f%%", progress*100)).
			Msg("evaluation progress")
		o.lastLog[calcIndex] = progress
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

// progressGauge is registered once globally to avoid duplicate registration.
var progressGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "bigcalc_evaluation_progress",
		Help: "Progress of the latest evaluation per backend (0.0 to 1.0)",
	},
	[]string{"backend"},
)

// MetricsObserver exports progress to a Prometheus gauge labelled with the
// backend name.
type MetricsObserver struct {
	gauge prometheus.Gauge
}

// NewMetricsObserver creates an observer backed by the global progress gauge.
func NewMetricsObserver(backend string) *MetricsObserver {
	return &MetricsObserver{
		gauge: progressGauge.WithLabelValues(backend),
	}
}

// Update implements ProgressObserver. Progress is tracked per backend, not
// per calculator index.
func (o *MetricsObserver) Update(_ int, progress float64) {
	if progress > 1.0 {
		progress = 1.0
	}
	o.gauge.Set(progress)
}

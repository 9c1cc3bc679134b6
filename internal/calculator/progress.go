package calculator

// ProgressUpdate is sent over a channel from a calculator to the user
// interface to report asynchronous progress.
type ProgressUpdate struct {
	// CalculatorIndex distinguishes concurrent calculators.
	CalculatorIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback backends use to report normalized
// progress without knowing how it is delivered.
type ProgressReporter func(progress float64)

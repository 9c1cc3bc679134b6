package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// SetupLifecycle returns a context canceled when timeout expires or when
// SIGINT or SIGTERM arrives, whichever happens first. A zero timeout means
// no deadline.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	cancelTimeout := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, &CancelFuncs{
		CancelTimeout: cancelTimeout,
		StopSignals:   stopSignals,
	}
}

// CancelFuncs releases what SetupLifecycle acquired.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup stops signal delivery, then cancels the timeout.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}

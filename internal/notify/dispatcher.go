package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cupidworks/valentine-backend/pkg/logger"
	"github.com/cupidworks/valentine-backend/pkg/metrics"
)

const defaultTaskTimeout = 15 * time.Second

// Dispatcher runs best-effort side effects (sheet appends, approval prompts,
// confirmation emails) on detached goroutines. Failures are logged and
// counted, never propagated to the request that scheduled them.
type Dispatcher struct {
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	errs   []error
	wg     sync.WaitGroup
	closed bool
}

// NewDispatcher constructs a Dispatcher with the given per-task timeout.
// A non-positive timeout falls back to the default.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &Dispatcher{
		timeout: timeout,
		log:     logger.WithModule("notify"),
	}
}

// Go schedules fn on a detached goroutine. The channel label feeds the
// side-effect failure metric (sheet|telegram|email). Tasks scheduled after
// Close are dropped.
func (d *Dispatcher) Go(channel string, fn func(ctx context.Context) error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.Warn("dispatcher closed, dropping side effect", zap.String("channel", channel))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("side effect panicked", zap.String("channel", channel), zap.Any("panic", r))
				metrics.SideEffectFailures.WithLabelValues(channel).Inc()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			d.log.Warn("side effect failed", zap.String("channel", channel), zap.Error(err))
			metrics.SideEffectFailures.WithLabelValues(channel).Inc()

			d.mu.Lock()
			d.errs = append(d.errs, err)
			d.mu.Unlock()
		}
	}()
}

// Close waits for in-flight tasks to finish and returns their combined
// failures. Used at shutdown so pending notifications are drained rather
// than dropped.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	return multierr.Combine(d.errs...)
}

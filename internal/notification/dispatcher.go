package notification

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Dispatcher delivers push messages in the background, decoupled from the
// request/response cycle. Each dispatch retries with backoff a bounded
// number of times; the final failure is logged and dropped.
type Dispatcher struct {
	push       PushClient
	timeout    time.Duration
	maxRetries uint64
	logger     *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. timeout bounds a single delivery
// attempt; maxRetries bounds the number of re-attempts after the first.
func NewDispatcher(push PushClient, timeout time.Duration, maxRetries uint64, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		push:       push,
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Dispatch queues a push delivery and returns immediately. A missing device
// token means the user never registered a device; nothing is sent.
func (d *Dispatcher) Dispatch(deviceToken, title, body string, data map[string]string) {
	if deviceToken == "" {
		d.logger.Debug("Skipping push, no device token registered")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(deviceToken, title, body, data)
	}()
}

func (d *Dispatcher) deliver(deviceToken, title, body string, data map[string]string) {
	// The overall budget covers the first attempt plus every retry.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout*time.Duration(d.maxRetries+1))
	defer cancel()

	backoff := retry.WithMaxRetries(d.maxRetries, retry.NewFibonacci(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		if err := d.push.Send(attemptCtx, deviceToken, title, body, data); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		d.logger.Warn("Push delivery failed after retries",
			zap.String("title", title),
			zap.Error(err),
		)
		return
	}

	d.logger.Debug("Push delivered", zap.String("title", title))
}

// Wait blocks until all in-flight deliveries finish. Called on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

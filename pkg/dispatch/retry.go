package dispatch

import (
	"context"

	"github.com/cenkalti/backoff/v5"
	"github.com/sigbus/sigbus/pkg/signal"
)

// retryingAdapter decorates another Adapter, retrying Deliver according
// to a backoff policy. Validate is untouched — retry only governs the
// per-signal delivery attempt, never option normalization.
type retryingAdapter struct {
	inner Adapter
	opts  []backoff.RetryOption
}

// WithRetry wraps inner so that transient Deliver failures are retried
// per opts before the dispatch pipeline sees a final error. A typical
// pairing is backoff.WithBackOff(backoff.NewExponentialBackOff()) with
// backoff.WithMaxTries to bound attempts.
func WithRetry(inner Adapter, opts ...backoff.RetryOption) Adapter {
	return &retryingAdapter{inner: inner, opts: opts}
}

func (a *retryingAdapter) Validate(options map[string]any) (map[string]any, error) {
	return a.inner.Validate(options)
}

func (a *retryingAdapter) Deliver(ctx context.Context, sig *signal.Signal, options map[string]any) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, a.inner.Deliver(ctx, sig, options)
	}, a.opts...)
	return err
}

package zhipu

import (
	"context"
	"net/http"
	"time"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/pkg/log"
	"github.com/sandevgo/zhipukit/pkg/retry"
)

// DefaultRetryableStatuses are the HTTP statuses worth another attempt.
var DefaultRetryableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// RetryingSender wraps a Sender with backoff. It never inspects response
// bodies and returns the last Attempt as-is.
type RetryingSender struct {
	sender    core.Sender
	retrier   *retry.Retrier
	timeout   time.Duration
	retryable map[int]struct{}
}

func NewRetryingSender(sender core.Sender, retrier *retry.Retrier, timeout time.Duration, statuses ...int) *RetryingSender {
	if len(statuses) == 0 {
		statuses = DefaultRetryableStatuses
	}
	retryable := make(map[int]struct{}, len(statuses))
	for _, s := range statuses {
		retryable[s] = struct{}{}
	}
	return &RetryingSender{
		sender:    sender,
		retrier:   retrier,
		timeout:   timeout,
		retryable: retryable,
	}
}

func (r *RetryingSender) Execute(ctx context.Context, spec core.RequestSpec, cred core.Credential) core.Attempt {
	logger := log.FromCtx(ctx)
	cfg := r.retrier.Config()

	var last core.Attempt
	_, err := r.retrier.Run(ctx, func(ctx context.Context, n int) bool {
		last = r.sender.Send(ctx, spec, cred, r.timeout)
		last.Number = n

		again := r.shouldRetry(ctx, last) && n < cfg.MaxAttempts
		ev := logger.Debug().
			Str("kind", spec.Kind.String()).
			Int("attempt", n).
			Dur("duration", last.Duration)
		switch o := last.Outcome.(type) {
		case core.Success:
			ev = ev.Int("status", o.Status)
		case core.HTTPFailure:
			ev = ev.Int("status", o.Status)
		case core.TransportFailure:
			ev = ev.Str("failure", string(o.Kind))
		}
		if again {
			ev = ev.Dur("delay", cfg.Delay(n))
		}
		ev.Msg("vendor attempt")
		return again
	})
	if err != nil {
		logger.Debug().Err(err).Int("attempt", last.Number).Msg("retry wait interrupted")
	}
	return last
}

func (r *RetryingSender) shouldRetry(ctx context.Context, a core.Attempt) bool {
	if ctx.Err() != nil {
		return false
	}
	switch o := a.Outcome.(type) {
	case core.TransportFailure:
		return true
	case core.HTTPFailure:
		_, ok := r.retryable[o.Status]
		return ok
	default:
		return false
	}
}

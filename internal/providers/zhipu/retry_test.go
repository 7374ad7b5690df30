package zhipu

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSender replays outcomes in order and repeats the last one.
type scriptedSender struct {
	outcomes []core.Outcome
	calls    int
	specs    []core.RequestSpec
}

func (s *scriptedSender) Send(ctx context.Context, spec core.RequestSpec, cred core.Credential, timeout time.Duration) core.Attempt {
	s.specs = append(s.specs, spec)
	i := min(s.calls, len(s.outcomes)-1)
	s.calls++
	return core.Attempt{StartedAt: time.Now(), Outcome: s.outcomes[i]}
}

type fakeSleeper struct {
	delays []time.Duration
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.delays = append(f.delays, d)
	return ctx.Err()
}

func newTestRetrier(sleeper *fakeSleeper) *retry.Retrier {
	return retry.NewRetrier(&retry.Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffFactor: 2,
		MaxDelay:      30 * time.Second,
	}, retry.WithSleeper(sleeper.Sleep))
}

var testSpec = core.RequestSpec{Kind: core.KindRerank, Path: "rerank", Payload: struct{}{}}

func TestRetryingSender_AlwaysFailing(t *testing.T) {
	sender := &scriptedSender{outcomes: []core.Outcome{
		core.TransportFailure{Kind: core.FailureTimeout, Cause: context.DeadlineExceeded},
	}}
	sleeper := &fakeSleeper{}

	attempt := NewRetryingSender(sender, newTestRetrier(sleeper), time.Second).Execute(context.Background(), testSpec, "k")

	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, 3, attempt.Number)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
	assert.Equal(t, core.KindTimeout, core.KindOf(attempt.Err()))
}

func TestRetryingSender_Statuses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int
	}{
		{"too many requests", http.StatusTooManyRequests, 3},
		{"bad gateway", http.StatusBadGateway, 3},
		{"unavailable", http.StatusServiceUnavailable, 3},
		{"gateway timeout", http.StatusGatewayTimeout, 3},
		{"bad request", http.StatusBadRequest, 1},
		{"unauthorized", http.StatusUnauthorized, 1},
		{"internal error", http.StatusInternalServerError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &scriptedSender{outcomes: []core.Outcome{core.HTTPFailure{Status: tt.status}}}
			attempt := NewRetryingSender(sender, newTestRetrier(&fakeSleeper{}), time.Second).Execute(context.Background(), testSpec, "k")

			assert.Equal(t, tt.wantCalls, sender.calls)
			assert.Equal(t, core.HTTPFailure{Status: tt.status}, attempt.Outcome)
		})
	}
}

func TestRetryingSender_RecoversAfterFailures(t *testing.T) {
	sender := &scriptedSender{outcomes: []core.Outcome{
		core.TransportFailure{Kind: core.FailureConnectionReset},
		core.HTTPFailure{Status: http.StatusServiceUnavailable},
		core.Success{Status: http.StatusOK, Body: []byte(`{}`)},
	}}
	sleeper := &fakeSleeper{}

	attempt := NewRetryingSender(sender, newTestRetrier(sleeper), time.Second).Execute(context.Background(), testSpec, "k")

	require.True(t, attempt.Succeeded())
	assert.Equal(t, 3, attempt.Number)
	assert.Len(t, sleeper.delays, 2)
}

func TestRetryingSender_CustomStatuses(t *testing.T) {
	sender := &scriptedSender{outcomes: []core.Outcome{core.HTTPFailure{Status: http.StatusInternalServerError}}}

	NewRetryingSender(sender, newTestRetrier(&fakeSleeper{}), time.Second, http.StatusInternalServerError).
		Execute(context.Background(), testSpec, "k")

	assert.Equal(t, 3, sender.calls)
}

func TestRetryingSender_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &scriptedSender{outcomes: []core.Outcome{core.TransportFailure{Kind: core.FailureConnection, Cause: context.Canceled}}}
	attempt := NewRetryingSender(sender, newTestRetrier(&fakeSleeper{}), time.Second).Execute(ctx, testSpec, "k")

	assert.Equal(t, 1, sender.calls)
	assert.True(t, errors.Is(attempt.Err(), core.ErrConnection))
}

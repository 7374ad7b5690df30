package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

type Operation = func() error

// AttemptFunc runs attempt n (1-based) and reports whether another attempt
// should follow.
type AttemptFunc = func(ctx context.Context, attempt int) (retry bool)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Config struct {
	// MaxAttempts bounds total attempts, including the first one.
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
	Jitter        time.Duration
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffFactor: 2,
		MaxDelay:      30 * time.Second,
	}
}

// Delay returns the wait after failed attempt n before attempt n+1:
// InitialDelay * BackoffFactor^(n-1), capped at MaxDelay. Jitter is not included.
func (c *Config) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	factor := c.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	d := float64(c.InitialDelay) * math.Pow(factor, float64(attempt-1))
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

func (c *Config) attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Retrier struct {
	config *Config
	sleep  Sleeper
}

type Option func(*Retrier)

// WithSleeper replaces the real clock, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(r *Retrier) {
		r.sleep = s
	}
}

func NewRetrier(config *Config, opts ...Option) *Retrier {
	if config == nil {
		config = NewDefaultConfig()
	}
	r := &Retrier{
		config: config,
		sleep:  SleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

func (r *Retrier) Config() Config {
	return *r.config
}

// Run calls op until it declines a retry or MaxAttempts is reached. The
// first attempt runs immediately. It returns the number of attempts made and
// a non-nil error only when ctx ended while waiting between attempts.
func (r *Retrier) Run(ctx context.Context, op AttemptFunc) (int, error) {
	maxAttempts := r.config.attempts()
	for attempt := 1; ; attempt++ {
		if !op(ctx, attempt) || attempt >= maxAttempts {
			return attempt, nil
		}
		if err := r.sleep(ctx, r.wait(attempt)); err != nil {
			return attempt, err
		}
	}
}

// Do retries op on any error and returns the last one.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	_, sleepErr := r.Run(ctx, func(ctx context.Context, attempt int) bool {
		err = op()
		return err != nil
	})
	if sleepErr != nil {
		return sleepErr
	}
	return err
}

func (r *Retrier) wait(attempt int) time.Duration {
	d := r.config.Delay(attempt)
	if r.config.Jitter > 0 {
		d += time.Duration(rand.Int64N(int64(r.config.Jitter) + 1)) // #nosec G404 -- jitter only
	}
	return d
}

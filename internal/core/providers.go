package core

import (
	"context"
	"time"
)

// Sender executes exactly one HTTP call and never retries.
type Sender interface {
	Send(ctx context.Context, spec RequestSpec, cred Credential, timeout time.Duration) Attempt
}

// Executor runs a request end to end and returns the parsed result.
type Executor interface {
	Execute(ctx context.Context, spec RequestSpec) (any, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, spec RequestSpec) (any, error)

func (f ExecutorFunc) Execute(ctx context.Context, spec RequestSpec) (any, error) {
	return f(ctx, spec)
}

// Package batch runs independent requests with bounded concurrency and
// fixed pacing between dispatches.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/pkg/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Options struct {
	// ConcurrencyLimit bounds in-flight items. Values below 1 mean 1.
	ConcurrencyLimit int
	// Delay is the minimum gap between two dispatches.
	Delay time.Duration
}

func OptionsFrom(cfg core.BatchConfig) Options {
	return Options{
		ConcurrencyLimit: cfg.GetConcurrency(),
		Delay:            cfg.GetDelay(),
	}
}

// Run executes every item of job and returns one entry per item in job
// order. A failing item never affects the others. Results are normalized to
// their JSON form so a saved report reloads equal. Items not yet dispatched
// when ctx ends are reported as canceled.
func Run(ctx context.Context, job core.BatchJob, exec core.Executor, opts Options) core.BatchReport {
	logger := log.FromCtx(ctx)

	entries := make([]core.BatchEntry, len(job))
	for i := range entries {
		entries[i].Index = i
	}

	limit := opts.ConcurrencyLimit
	if limit < 1 {
		limit = 1
	}

	var limiter *rate.Limiter
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	var g errgroup.Group
	g.SetLimit(limit)

	dispatched := 0
	for i, spec := range job {
		if err := ctx.Err(); err != nil {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		g.Go(func() error {
			entries[i] = runItem(ctx, i, spec, exec)
			return nil
		})
		dispatched++
	}
	_ = g.Wait()

	for i := dispatched; i < len(job); i++ {
		entries[i].Err = (&core.Error{Kind: core.KindCanceled, Detail: "not dispatched", Cause: ctx.Err()}).Detached()
	}

	report := core.BatchReport{Entries: entries}
	logger.Debug().
		Int("items", report.Len()).
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Int("concurrency", limit).
		Msg("batch finished")
	return report
}

type itemKey struct{}

// itemFromContext returns the job position of the item ctx was derived for.
func itemFromContext(ctx context.Context) (int, bool) {
	i, ok := ctx.Value(itemKey{}).(int)
	return i, ok
}

func runItem(ctx context.Context, i int, spec core.RequestSpec, exec core.Executor) (entry core.BatchEntry) {
	entry.Index = i
	ctx = context.WithValue(ctx, itemKey{}, i)
	defer func() {
		if r := recover(); r != nil {
			entry.Result = nil
			entry.Err = &core.Error{Kind: core.KindUnknownError, Detail: fmt.Sprintf("panic: %v", r)}
			log.FromCtx(ctx).Error().Int("item", i).Interface("panic", r).Msg("batch item panicked")
		}
	}()

	if err := ctx.Err(); err != nil {
		entry.Err = (&core.Error{Kind: core.KindCanceled, Detail: "not dispatched", Cause: err}).Detached()
		return entry
	}

	result, err := exec.Execute(ctx, spec)
	if err == nil {
		entry.Result, err = core.NormalizeResult(result)
	}
	if err != nil {
		entry.Err = itemError(ctx, err)
		log.FromCtx(ctx).Debug().
			Int("item", i).
			Str("error_kind", string(entry.Err.Kind)).
			Err(err).
			Msg("batch item failed")
		return entry
	}
	return entry
}

// ItemFunc executes the spec built for input i.
type ItemFunc func(ctx context.Context, i int, spec core.RequestSpec) (any, error)

// RunEach builds one spec per input and runs the valid ones. Inputs whose
// spec fails to build are reported with that error and never dispatched.
func RunEach(ctx context.Context, n int, build func(i int) (core.RequestSpec, error), exec ItemFunc, opts Options) core.BatchReport {
	entries := make([]core.BatchEntry, n)
	job := make(core.BatchJob, 0, n)
	pos := make([]int, 0, n)
	for i := range n {
		entries[i].Index = i
		spec, err := build(i)
		if err != nil {
			entries[i].Err = core.AsError(err).Detached()
			continue
		}
		job = append(job, spec)
		pos = append(pos, i)
	}

	run := core.ExecutorFunc(func(ctx context.Context, spec core.RequestSpec) (any, error) {
		j, _ := itemFromContext(ctx)
		return exec(ctx, pos[j], spec)
	})
	for j, entry := range Run(ctx, job, run, opts).Entries {
		entry.Index = pos[j]
		entries[pos[j]] = entry
	}
	return core.BatchReport{Entries: entries}
}

func itemError(ctx context.Context, err error) *core.Error {
	var e *core.Error
	if errors.As(err, &e) {
		return e.Detached()
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return (&core.Error{Kind: core.KindCanceled, Cause: err}).Detached()
	}
	return core.AsError(err).Detached()
}

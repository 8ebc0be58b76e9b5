package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"github.com/shpitdev/fdi-ranker/pkg/pipeline/core"
)

type Options struct {
	// RequestTimeout bounds each item's processing. Set to <=0 to disable.
	RequestTimeout time.Duration

	// RateLimitRPS paces item starts. Set to <=0 to disable.
	RateLimitRPS float64
}

// Result holds the output for one input item.
type Result[In any, Out any] struct {
	Index  int
	Input  In
	Output Out
	Err    error
}

// PanicError is returned in Result.Err when the processor panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// ProcessEach runs processor over items strictly one at a time, in input
// order, and hands each result to onResult before starting the next item.
//
// A processor error or panic is reported through Result.Err and does not stop
// the run. An onResult error or cancellation of ctx does.
func ProcessEach[In any, Out any](
	ctx context.Context,
	items []In,
	processor core.RowProcessor[In, Out],
	onResult func(Result[In, Out]) error,
	opts Options,
) error {
	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		res := processOne(ctx, i, item, processor, opts)
		if err := ctx.Err(); err != nil {
			return err
		}
		if onResult == nil {
			continue
		}
		if err := onResult(res); err != nil {
			return err
		}
	}
	return nil
}

func processOne[In any, Out any](
	ctx context.Context,
	idx int,
	item In,
	processor core.RowProcessor[In, Out],
	opts Options,
) (res Result[In, Out]) {
	res = Result[In, Out]{Index: idx, Input: item}

	reqCtx := ctx
	var cancel context.CancelFunc
	if opts.RequestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, opts.RequestTimeout)
	}
	defer func() {
		if cancel != nil {
			cancel()
		}
		if v := recover(); v != nil {
			res.Err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	res.Output, res.Err = processor.ProcessRow(reqCtx, idx, item)
	return res
}

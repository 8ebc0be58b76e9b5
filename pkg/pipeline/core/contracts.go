package core

import "context"

// InputAdapter loads input records for pipeline processing.
type InputAdapter[In any] interface {
	Load(ctx context.Context) ([]In, error)
}

// RowProcessor handles one item given its zero-based position in the input.
type RowProcessor[In any, Out any] interface {
	ProcessRow(ctx context.Context, idx int, in In) (Out, error)
}

// RowFunc lets a plain function serve as a RowProcessor.
type RowFunc[In any, Out any] func(ctx context.Context, idx int, in In) (Out, error)

func (f RowFunc[In, Out]) ProcessRow(ctx context.Context, idx int, in In) (Out, error) {
	return f(ctx, idx, in)
}

// TransientError marks an upstream failure as temporary (rate limits, 5xx,
// network timeouts). The pipeline does not retry; the marker only changes how
// the failure is logged.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

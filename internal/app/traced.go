package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shpitdev/fdi-ranker/internal/analysis"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/redact"
)

const replyPreviewRunes = 200

// tracedRequester logs every analysis call with its latency and a preview of
// the reply.
type tracedRequester struct {
	next   analysis.Requester
	logger *zap.Logger

	mu    sync.Mutex
	calls int
}

func newTracedRequester(next analysis.Requester, logger *zap.Logger) *tracedRequester {
	return &tracedRequester{next: next, logger: logger}
}

func (t *tracedRequester) RequestAnalysis(ctx context.Context, prompt string) (string, error) {
	call := t.nextCall()

	deadlineIn := "none"
	if d, ok := ctx.Deadline(); ok {
		deadlineIn = time.Until(d).Round(time.Millisecond).String()
	}
	t.logger.Debug("analysis request",
		zap.Int("call", call),
		zap.Int("prompt_chars", len(prompt)),
		zap.String("deadline_in", deadlineIn),
	)

	start := time.Now()
	reply, err := t.next.RequestAnalysis(ctx, prompt)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		t.logger.Debug("analysis response",
			zap.Int("call", call),
			zap.Duration("duration", elapsed),
			zap.String("status", "error"),
			zap.Bool("transient", analysis.IsTransient(err)),
			zap.String("error", redact.Secrets(err.Error())),
		)
		return reply, err
	}

	t.logger.Info("analysis response",
		zap.Int("call", call),
		zap.Duration("duration", elapsed),
		zap.String("status", "ok"),
		zap.String("preview", preview(reply, replyPreviewRunes)),
	)
	return reply, nil
}

func (t *tracedRequester) nextCall() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	return t.calls
}

func preview(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

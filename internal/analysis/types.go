// Package analysis defines the contract for the generative service that scores
// each company.
package analysis

import (
	"context"
	"errors"
	"net"

	"github.com/shpitdev/fdi-ranker/pkg/pipeline/core"
)

// APIErrorText replaces the reply when the service call fails. It is fed to
// the extractor like any other reply.
const APIErrorText = "API_ERROR"

// Requester sends one rendered prompt and returns the raw reply text.
type Requester interface {
	RequestAnalysis(ctx context.Context, prompt string) (string, error)
}

// RequesterFunc adapts a function to Requester.
type RequesterFunc func(ctx context.Context, prompt string) (string, error)

func (f RequesterFunc) RequestAnalysis(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// TransientError marks a failure that would likely succeed later.
type TransientError = core.TransientError

// Safe calls r and degrades any failure to APIErrorText. The error is still
// returned so callers can log it.
func Safe(ctx context.Context, r Requester, prompt string) (string, error) {
	reply, err := r.RequestAnalysis(ctx, prompt)
	if err != nil {
		return APIErrorText, err
	}
	return reply, nil
}

// IsTransient reports whether err is a rate limit, server or network timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

package analysis_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/fdi-ranker/internal/analysis"
)

func TestSafe(t *testing.T) {
	ok := analysis.RequesterFunc(func(_ context.Context, prompt string) (string, error) {
		return "reply to " + prompt, nil
	})
	reply, err := analysis.Safe(context.Background(), ok, "p")
	require.NoError(t, err)
	assert.Equal(t, "reply to p", reply)

	boom := errors.New("quota exceeded")
	failing := analysis.RequesterFunc(func(context.Context, string) (string, error) {
		return "partial", boom
	})
	reply, err = analysis.Safe(context.Background(), failing, "p")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, analysis.APIErrorText, reply)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("bad request"), want: false},
		{name: "marked", err: &analysis.TransientError{Err: errors.New("429")}, want: true},
		{name: "wrapped marked", err: fmt.Errorf("call: %w", &analysis.TransientError{Err: errors.New("503")}), want: true},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: true},
		{name: "net timeout", err: timeoutErr{}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analysis.IsTransient(tt.err))
		})
	}
}

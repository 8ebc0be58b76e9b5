// Package pipeline enriches company records with ranking fields and drives a
// full run, one record at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shpitdev/fdi-ranker/internal/analysis"
	"github.com/shpitdev/fdi-ranker/internal/extract"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/core"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/redact"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/schema"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/worker"
)

// OutputRecord is an input record merged with its ranking fields, keyed by a
// fixed header.
type OutputRecord struct {
	header []string
	values map[string]string
}

// Header returns the output column order.
func (o OutputRecord) Header() []string {
	return append([]string(nil), o.header...)
}

// Get returns the value for col; columns with no data are "".
func (o OutputRecord) Get(col string) string {
	return o.values[col]
}

// Values returns the row aligned with Header.
func (o OutputRecord) Values() []string {
	out := make([]string, len(o.header))
	for i, col := range o.header {
		out[i] = o.values[col]
	}
	return out
}

// Map returns a copy of the row keyed by column, one entry per header column.
func (o OutputRecord) Map() map[string]string {
	out := make(map[string]string, len(o.header))
	for _, col := range o.header {
		out[col] = o.values[col]
	}
	return out
}

// Header derives the output header for a run from the first record's columns.
func Header(records []core.Record) []string {
	if len(records) == 0 {
		return schema.OutputHeader(nil)
	}
	return schema.OutputHeader(records[0].Keys())
}

// Enrich merges f into rec under header. Ranking fields win over input
// columns of the same name.
func Enrich(rec core.Record, f extract.Fields, header []string) OutputRecord {
	merged := make(map[string]string, rec.Len()+4)
	for _, k := range rec.Keys() {
		merged[k] = rec.Get(k)
	}
	merged[schema.ColumnScore] = f.Score
	merged[schema.ColumnExplanation] = f.Explanation
	merged[schema.ColumnEcosystemFit] = f.EcosystemFit
	merged[schema.ColumnSourcesDetails] = f.SourcesDetails

	values := make(map[string]string, len(header))
	for _, col := range header {
		values[col] = merged[col]
	}
	return OutputRecord{header: append([]string(nil), header...), values: values}
}

// PromptBuilder renders the analysis prompt for one record.
type PromptBuilder interface {
	Build(r core.Record) (string, error)
}

// Sink receives enriched rows in input order.
type Sink interface {
	WriteRow(values map[string]string) error
}

// Stage names the step a record was dropped at.
type Stage string

const (
	StagePrompt Stage = "prompt"
	StagePanic  Stage = "panic"
)

// StageError is a per-record failure that drops the record.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// SkipReason records why one input row produced no output row.
type SkipReason struct {
	// Row is 1-based, counting data rows only.
	Row      int
	FirmName string
	Stage    Stage
	Err      error
}

func (s SkipReason) Error() string {
	return fmt.Sprintf("row %d (%s) skipped at %s: %s", s.Row, s.FirmName, s.Stage, redact.Secrets(s.Err.Error()))
}

// Result is the outcome of processing one record: either an Output or a Skip.
type Result struct {
	Row    int
	Record core.Record
	Reply  string
	Fields extract.Fields
	Tier   extract.Tier
	Output OutputRecord

	// RequestErr is the service failure that was replaced by analysis.APIErrorText.
	RequestErr error
	Skip       *SkipReason
}

// Skipped reports whether the record was dropped.
func (r Result) Skipped() bool {
	return r.Skip != nil
}

type Deps struct {
	Prompts   PromptBuilder
	Requester analysis.Requester
	Logger    *zap.Logger
}

type Options struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
}

// Summary describes a completed run.
type Summary struct {
	Read          int
	Written       int
	Fallback      int
	RequestErrors int
	Skipped       []SkipReason
	Duration      time.Duration
}

// Process runs prompt, request, extract and enrich for one record. A failed
// service call degrades to analysis.APIErrorText and still yields a row.
func Process(ctx context.Context, row int, rec core.Record, header []string, deps Deps) (Result, error) {
	res := Result{Row: row, Record: rec}

	p, err := deps.Prompts.Build(rec)
	if err != nil {
		return res, &StageError{Stage: StagePrompt, Err: err}
	}

	res.Reply, res.RequestErr = analysis.Safe(ctx, deps.Requester, p)

	res.Fields, res.Tier = extract.Analyze(res.Reply)
	res.Output = Enrich(rec, res.Fields, header)
	return res, nil
}

// Run processes records sequentially and writes each enriched row to sink
// before moving to the next record. Dropped records are collected in
// Summary.Skipped; they never abort the run. Sink errors and cancellation do.
func Run(ctx context.Context, records []core.Record, deps Deps, sink Sink, opts Options) (Summary, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	header := Header(records)
	sum := Summary{Read: len(records)}

	processor := core.RowFunc[core.Record, Result](func(reqCtx context.Context, idx int, rec core.Record) (Result, error) {
		row := idx + 1
		logger.Info("processing row", zap.Int("row", row), zap.String("firm", rec.Get(schema.ColumnFirmName)))
		return Process(reqCtx, row, rec, header, deps)
	})

	onResult := func(r worker.Result[core.Record, Result]) error {
		row := r.Index + 1
		firm := r.Input.Get(schema.ColumnFirmName)

		if r.Err != nil {
			skip := SkipReason{Row: row, FirmName: firm, Stage: StagePanic, Err: r.Err}
			var se *StageError
			if errors.As(r.Err, &se) {
				skip.Stage = se.Stage
			}
			sum.Skipped = append(sum.Skipped, skip)
			logger.Warn("row skipped",
				zap.Int("row", row),
				zap.String("firm", firm),
				zap.String("stage", string(skip.Stage)),
				zap.String("error", redact.Secrets(r.Err.Error())),
			)
			return nil
		}

		out := r.Output
		if out.RequestErr != nil {
			sum.RequestErrors++
			logger.Warn("analysis request failed",
				zap.Int("row", row),
				zap.String("firm", firm),
				zap.Bool("transient", analysis.IsTransient(out.RequestErr)),
				zap.String("error", redact.Secrets(out.RequestErr.Error())),
			)
		}
		if out.Tier == extract.TierFallback {
			sum.Fallback++
		}

		if err := sink.WriteRow(out.Output.Map()); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		sum.Written++
		logger.Info("row written",
			zap.Int("row", row),
			zap.String("firm", firm),
			zap.String("score", out.Fields.Score),
			zap.String("tier", string(out.Tier)),
		)
		return nil
	}

	err := worker.ProcessEach(ctx, records, processor, onResult, worker.Options{
		RequestTimeout: opts.RequestTimeout,
		RateLimitRPS:   opts.RateLimitRPS,
	})
	sum.Duration = time.Since(start)
	if err != nil {
		return sum, err
	}
	return sum, nil
}

package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shpitdev/fdi-ranker/internal/analysis"
	"github.com/shpitdev/fdi-ranker/internal/pipeline"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/io/local"
	"github.com/shpitdev/fdi-ranker/pkg/pipeline/schema"
)

// RunLocal ranks every company in the input CSV and writes the enriched CSV.
// Rows are written as they complete, in input order. An empty input produces
// no output file.
func RunLocal(
	ctx context.Context,
	inputPath string,
	outputPath string,
	opts pipeline.Options,
	prompts pipeline.PromptBuilder,
	requester analysis.Requester,
	logger *zap.Logger,
) (pipeline.Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	readStart := time.Now()
	src := local.FileSource{Path: inputPath, OnOverflow: func(o local.Overflow) {
		logger.Warn("dropped fields past header",
			zap.Int("line", o.Line),
			zap.Int("row", o.Record+1),
			zap.Int("extra_fields", len(o.Extra)),
		)
	}}
	records, err := src.Load(ctx)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("read input: %w", err)
	}
	logger.Info("loaded input",
		zap.String("path", inputPath),
		zap.Int("rows", len(records)),
		zap.Duration("duration", time.Since(readStart).Round(time.Millisecond)),
	)
	if len(records) == 0 {
		logger.Warn("no data found", zap.String("path", inputPath))
		return pipeline.Summary{}, nil
	}
	if !local.HasColumn(records[0].Keys(), schema.ColumnFirmName) {
		logger.Warn("input has no firm name column", zap.String("column", schema.ColumnFirmName))
	}

	outF, err := os.Create(outputPath)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		_ = outF.Close()
	}()

	tw, err := local.NewTableWriter(outF, pipeline.Header(records))
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("write header: %w", err)
	}

	logger.Info("ranking start",
		zap.String("output", outputPath),
		zap.Duration("request_timeout", opts.RequestTimeout),
		zap.Float64("rate_limit_rps", opts.RateLimitRPS),
	)
	sum, err := pipeline.Run(ctx, records, pipeline.Deps{
		Prompts:   prompts,
		Requester: newTracedRequester(requester, logger),
		Logger:    logger,
	}, tw, opts)
	if err != nil {
		return sum, err
	}
	if err := tw.Flush(); err != nil {
		return sum, fmt.Errorf("flush output: %w", err)
	}
	if err := outF.Close(); err != nil {
		return sum, fmt.Errorf("close output: %w", err)
	}

	logger.Info("ranking complete",
		zap.Int("read", sum.Read),
		zap.Int("written", sum.Written),
		zap.Int("skipped", len(sum.Skipped)),
		zap.Int("request_errors", sum.RequestErrors),
		zap.Int("fallback_parsed", sum.Fallback),
		zap.Duration("duration", sum.Duration.Round(time.Millisecond)),
	)
	return sum, nil
}

// Package service orchestrates extraction runs around the pure engine:
// run identifiers, structured logging and export wiring live here, so the
// engine itself stays free of side effects.
package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/epicier/invoice-extract/internal/domain/extraction"
	"github.com/epicier/invoice-extract/internal/domain/extraction/record"
	"github.com/epicier/invoice-extract/internal/export"
)

// RunResult summarizes one extraction pass.
type RunResult struct {
	RunID    uuid.UUID
	Lines    []record.CanonicalLine
	Invoices int
	RawLines int
	Emitted  int
	Duration time.Duration
}

// Service runs extractions with fixed options. Safe for concurrent use.
type Service struct {
	engine *extraction.Engine
	opts   extraction.Options
	logger *slog.Logger
}

// New creates an extraction service. A nil logger discards all output.
func New(logger *slog.Logger, opts extraction.Options) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		engine: extraction.New(),
		opts:   opts,
		logger: logger,
	}
}

// Run extracts canonical purchase lines from a raw invoice text blob.
// The context is accepted for API symmetry with the surrounding services;
// a parse is cheap and bounded by input size, so it is never interrupted
// mid-pass.
func (s *Service) Run(ctx context.Context, text string) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.New()

	lines := s.engine.Extract(text, s.opts)
	groups := extraction.GroupByInvoice(lines)

	result := &RunResult{
		RunID:    runID,
		Lines:    lines,
		Invoices: len(groups),
		RawLines: countLines(text),
		Emitted:  len(lines),
		Duration: time.Since(start),
	}

	s.logger.Info("extraction run complete",
		slog.String("run_id", runID.String()),
		slog.Int("raw_lines", result.RawLines),
		slog.Int("emitted", result.Emitted),
		slog.Int("invoices", result.Invoices),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// ExportCSV writes a run's lines as CSV.
func (s *Service) ExportCSV(w io.Writer, result *RunResult) error {
	return export.WriteCSV(w, result.Lines)
}

// ExportXLSX writes a run's lines as a workbook.
func (s *Service) ExportXLSX(w io.Writer, result *RunResult) error {
	return export.WriteXLSX(w, result.Lines)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

package dataprocessing

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	apperrors "ledgercli/internal/errors"
	"ledgercli/pkg/contracts/domain"
)

// minColumnCount is the floor for the export sheet width. The stock layout
// is 14 columns; the header block is padded up so the export merges always
// have room. Mapping validation uses the sheet's true width, never this
// floor.
const minColumnCount = 14

// Options control one analysis run.
type Options struct {
	// AutoDetect scans each sheet for its header row; when off (or when the
	// scan fails) the user/default mapping applies.
	AutoDetect bool `json:"auto_detect"`
	// Dedupe removes cross-file duplicates by natural key.
	Dedupe bool `json:"dedupe"`
}

// DefaultOptions mirror the product defaults: detection and dedupe on.
func DefaultOptions() Options {
	return Options{AutoDetect: true, Dedupe: true}
}

// AnalysisRequest is everything one run needs, passed by value into Analyze.
// The engine keeps no state between runs.
type AnalysisRequest struct {
	Sheets   []domain.SourceSheet
	Override domain.MappingOverride
	Options  Options
}

// SheetOutcome is the per-file slice of the run diagnostics.
type SheetOutcome struct {
	FileName       string `json:"file_name"`
	HeaderDetected bool   `json:"header_detected"`
	HeaderRow      int    `json:"header_row"` // 0-based
	ParsedRows     int    `json:"parsed_rows"`
	SkippedRows    int    `json:"skipped_rows"`
	ParseErrors    int    `json:"parse_errors"`
}

// Diagnostics summarize what happened during a run without being errors.
type Diagnostics struct {
	ParsedRows        int            `json:"parsed_rows"`
	SkippedRows       int            `json:"skipped_rows"`
	ParseErrors       int            `json:"parse_errors"`
	DedupedRows       int            `json:"deduped_rows"`
	DetectionFailures int            `json:"detection_failures"`
	Sheets            []SheetOutcome `json:"sheets"`
}

// AnalysisResult is the complete output of one run.
type AnalysisResult struct {
	RunID        string               `json:"run_id"`
	Meta         domain.StatementMeta `json:"meta"`
	Transactions []domain.Transaction `json:"transactions"`
	Days         []domain.DayBucket   `json:"days"`
	Months       []domain.MonthBucket `json:"months"`
	Totals       domain.Totals        `json:"totals"`
	Diagnostics  Diagnostics          `json:"diagnostics"`

	// Original is the first uploaded sheet; exports copy it verbatim and
	// reuse its header block.
	Original    domain.SourceSheet `json:"-"`
	HeaderBlock domain.HeaderBlock `json:"-"`
}

// Analyzer runs the parse/dedupe/aggregate pipeline. It is stateless apart
// from its logger; concurrent runs on distinct requests are independent.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// Analyze processes the request's sheets in order: resolve a mapping per
// sheet, parse its rows, then dedupe and aggregate the combined list. Meta
// fields fill from the first sheet that provides them. Structural problems
// (no sheets, unresolvable mapping) abort the run; row-level problems only
// count in diagnostics.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if len(req.Sheets) == 0 {
		return nil, apperrors.NewAppValidationError("no statement sheets to analyze")
	}

	result := &AnalysisResult{RunID: uuid.New().String()}

	a.logger.InfoContext(ctx, "analysis started",
		slog.String("run_id", result.RunID),
		slog.Int("sheet_count", len(req.Sheets)),
		slog.Bool("override_set", !req.Override.IsZero()))

	var all []domain.Transaction

	for i, sheet := range req.Sheets {
		meta := ExtractMeta(sheet.Matrix)
		if result.Meta.Owner == "" {
			result.Meta.Owner = meta.Owner
		}
		if result.Meta.Account == "" {
			result.Meta.Account = meta.Account
		}
		if result.Meta.Period == "" {
			result.Meta.Period = meta.Period
		}

		var detection *Detection
		if req.Options.AutoDetect {
			var err error
			detection, err = DetectHeader(sheet.Matrix)
			if err != nil {
				// Recoverable: the default/user mapping takes over.
				result.Diagnostics.DetectionFailures++
				a.logger.WarnContext(ctx, "header detection failed, falling back to manual mapping",
					slog.String("file", sheet.FileName))
			}
		}

		resolved, err := ResolveMapping(detection, req.Override, sheet.Matrix.ColumnCount(0))
		if err != nil {
			return nil, err
		}

		if i == 0 {
			result.Original = sheet
			result.HeaderBlock = buildHeaderBlock(sheet, resolved.HeaderRow)
		}

		parsed, err := ParseTransactions(ctx, sheet, resolved.HeaderRow, resolved.Mapping, a.logger)
		if err != nil {
			return nil, err
		}

		all = append(all, parsed.Transactions...)
		result.Diagnostics.ParsedRows += len(parsed.Transactions)
		result.Diagnostics.SkippedRows += parsed.SkippedRows
		result.Diagnostics.ParseErrors += parsed.ParseErrors
		result.Diagnostics.Sheets = append(result.Diagnostics.Sheets, SheetOutcome{
			FileName:       sheet.FileName,
			HeaderDetected: resolved.Detected,
			HeaderRow:      resolved.HeaderRow,
			ParsedRows:     len(parsed.Transactions),
			SkippedRows:    parsed.SkippedRows,
			ParseErrors:    parsed.ParseErrors,
		})
	}

	if req.Options.Dedupe {
		deduped, removed := Dedupe(all)
		all = deduped
		result.Diagnostics.DedupedRows = removed
	}

	agg := Aggregate(all)
	result.Transactions = all
	result.Days = agg.Days
	result.Months = agg.Months
	result.Totals = agg.Totals

	if result.Meta.Period == "" {
		result.Meta.Period = derivePeriod(agg.Days)
	}

	a.logger.InfoContext(ctx, "analysis complete",
		slog.String("run_id", result.RunID),
		slog.Int("transactions", len(all)),
		slog.Int("skipped_rows", result.Diagnostics.SkippedRows),
		slog.Int("parse_errors", result.Diagnostics.ParseErrors),
		slog.Int("deduped_rows", result.Diagnostics.DedupedRows))

	return result, nil
}

// buildHeaderBlock snapshots the preamble of the original sheet: rows 0
// through the header row, the merges confined to that range, and the column
// widths. Exports replay this block unchanged.
func buildHeaderBlock(sheet domain.SourceSheet, headerRow int) domain.HeaderBlock {
	block := domain.HeaderBlock{
		HeaderRow:    headerRow,
		ColumnWidths: append([]float64(nil), sheet.Format.ColumnWidths...),
	}

	end := headerRow + 1
	if end > len(sheet.Matrix) {
		end = len(sheet.Matrix)
	}
	block.Rows = make(domain.RawMatrix, end)
	for i := 0; i < end; i++ {
		block.Rows[i] = append([]string(nil), sheet.Matrix[i]...)
	}

	for _, m := range sheet.Format.Merges {
		if m.EndRow <= headerRow {
			block.Merges = append(block.Merges, m)
		}
	}

	block.ColumnCount = sheet.Matrix.ColumnCount(0)
	if block.ColumnCount < minColumnCount {
		block.ColumnCount = minColumnCount
	}
	return block
}

func derivePeriod(days []domain.DayBucket) string {
	if len(days) == 0 {
		return ""
	}
	// Days are sorted descending; period reads oldest ~ newest.
	return days[len(days)-1].DateKey + " ~ " + days[0].DateKey
}

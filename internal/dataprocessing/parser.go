package dataprocessing

import (
	"context"
	"log/slog"

	"ledgercli/internal/normalize"
	"ledgercli/pkg/contracts/domain"
)

// checkpointInterval is how many rows the parser walks between cancellation
// checks. Cancellation is observed only at these checkpoints, never
// mid-row, so a half-built Transaction can never escape.
const checkpointInterval = 256

// ParseResult is the output of walking one sheet's data rows.
type ParseResult struct {
	Transactions []domain.Transaction
	// SkippedRows counts rows without a sequence marker: footers, blank
	// separators, disclaimers. Expected, not an error.
	SkippedRows int
	// ParseErrors counts rows that carried a sequence marker but an
	// unparseable date. These are corrupt rows, distinct from skips, and
	// the distinction is preserved in run diagnostics.
	ParseErrors int
}

// ParseTransactions walks the rows below the header and classifies each as
// transaction, skip or error. Per-row problems never abort the walk; only
// ctx cancellation does, at row checkpoints.
func ParseTransactions(ctx context.Context, sheet domain.SourceSheet, headerRow int, mapping domain.ColumnMapping, logger *slog.Logger) (*ParseResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	result := &ParseResult{}
	matrix := sheet.Matrix

	for r := headerRow + 1; r < len(matrix); r++ {
		if (r-headerRow)%checkpointInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row := matrix[r]

		seq, ok := normalize.ToInt(cellAt(row, mapping.Sequence))
		if !ok {
			result.SkippedRows++
			continue
		}

		dt := normalize.ParseDateTime(cellAt(row, mapping.DateTime))
		if !dt.Valid() {
			// A sequence marker with a broken date is a corrupt row, not a
			// footer; count it on both sides.
			result.ParseErrors++
			result.SkippedRows++
			logger.DebugContext(ctx, "unparseable transaction date",
				slog.String("file", sheet.FileName),
				slog.Int("row", r+1),
				slog.String("cell", dt.Text))
			continue
		}

		branch := ""
		if mapping.Branch >= 0 {
			branch = cellAt(row, mapping.Branch)
		}

		result.Transactions = append(result.Transactions, domain.Transaction{
			SequenceNumber: seq,
			Timestamp:      dt.Timestamp,
			DateKey:        dt.DateKey,
			MonthKey:       dt.MonthKey,
			TimestampText:  dt.Text,
			Debit:          normalize.Amount(normalize.FirstNonEmpty(row, mapping.Debit)),
			Credit:         normalize.Amount(cellAt(row, mapping.Credit)),
			Balance:        normalize.Amount(normalize.FirstNonEmpty(row, mapping.Balance)),
			Description:    normalize.Text(normalize.FirstNonEmpty(row, mapping.Description)),
			Memo:           normalize.Text(normalize.FirstNonEmpty(row, mapping.Memo)),
			Branch:         normalize.Text(branch),
			SourceFile:     sheet.FileName,
			SourceSheet:    sheet.SheetName,
			SourceRow:      r + 1,
		})
	}

	return result, nil
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

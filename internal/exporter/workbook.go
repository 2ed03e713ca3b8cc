package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"ledgercli/internal/dataprocessing"
	apperrors "ledgercli/internal/errors"
	"ledgercli/pkg/contracts/domain"
)

// Sheet names of the generated report workbook.
const (
	SheetOriginal = "통장거래내역 (원본)"
	SheetFull     = "통장거래내역 (입출금)"
	SheetDeposits = "통장거래내역 (입금)"
)

// Stock-layout column positions of a ledger data row (0-based).
const (
	colSequence = 1
	colDateTime = 2
	colDebit    = 3
	colCredit   = 5
	colBalance  = 6
	colDesc     = 8
	colMemo     = 10
	colBranch   = 13
)

// rowMergeSpans are the merged regions of one ledger data row, relative to
// the row itself: debit D:E, balance G:H, description I:J, memo K:M. They
// are materialized per emitted row at its absolute position, so appending
// subtotal rows can never desynchronize merge coordinates from the data.
var rowMergeSpans = [][2]int{
	{colDebit, colDebit + 1},
	{colBalance, colBalance + 1},
	{colDesc, colDesc + 1},
	{colMemo, colMemo + 2},
}

// WorkbookComposer rebuilds the three-sheet report workbook from one
// analysis result.
type WorkbookComposer struct {
	logger *slog.Logger
}

// NewWorkbookComposer creates a workbook composer.
func NewWorkbookComposer(logger *slog.Logger) *WorkbookComposer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookComposer{logger: logger.With(slog.String("component", "workbook_composer"))}
}

// Compose builds the export workbook: the original sheet copied verbatim,
// the full ledger with daily subtotals, and the deposit-only ledger.
// Composing with zero transactions is rejected.
func (c *WorkbookComposer) Compose(result *dataprocessing.AnalysisResult) (*excelize.File, error) {
	if len(result.Transactions) == 0 {
		return nil, apperrors.NewExportError("no transactions to export", nil)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetOriginal); err != nil {
		return nil, fmt.Errorf("rename original sheet: %w", err)
	}

	if err := c.writeOriginal(f, result.Original); err != nil {
		return nil, fmt.Errorf("write original sheet: %w", err)
	}

	sorted := sortForLedger(result.Transactions)
	groups := groupByDay(sorted)

	if err := c.writeLedger(f, SheetFull, result.HeaderBlock, groups, false); err != nil {
		return nil, fmt.Errorf("write full ledger: %w", err)
	}
	if err := c.writeLedger(f, SheetDeposits, result.HeaderBlock, depositsOnly(groups), true); err != nil {
		return nil, fmt.Errorf("write deposit ledger: %w", err)
	}

	c.logger.Info("export workbook composed",
		slog.Int("transactions", len(result.Transactions)),
		slog.Int("days", len(groups)))

	return f, nil
}

// writeOriginal copies the source sheet without reinterpretation: every cell
// value, every merge, every column width.
func (c *WorkbookComposer) writeOriginal(f *excelize.File, original domain.SourceSheet) error {
	for r, row := range original.Matrix {
		for col, cell := range row {
			if cell == "" {
				continue
			}
			if err := setCell(f, SheetOriginal, r, col, cell); err != nil {
				return err
			}
		}
	}
	for _, m := range original.Format.Merges {
		if err := mergeRegion(f, SheetOriginal, m); err != nil {
			return err
		}
	}
	return applyColumnWidths(f, SheetOriginal, original.Format.ColumnWidths)
}

// writeLedger emits the header block verbatim, then one row per transaction
// grouped by day (newest day first) with a subtotal row closing each day.
func (c *WorkbookComposer) writeLedger(f *excelize.File, sheet string, block domain.HeaderBlock, groups []dayGroup, depositSheet bool) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for r, row := range block.Rows {
		for col, cell := range row {
			if cell == "" {
				continue
			}
			if err := setCell(f, sheet, r, col, cell); err != nil {
				return err
			}
		}
	}
	for _, m := range block.Merges {
		if err := mergeRegion(f, sheet, m); err != nil {
			return err
		}
	}
	if err := applyColumnWidths(f, sheet, block.ColumnWidths); err != nil {
		return err
	}

	next := len(block.Rows)
	for _, g := range groups {
		for _, t := range g.txns {
			if err := c.writeTransactionRow(f, sheet, next, t, depositSheet); err != nil {
				return err
			}
			next++
		}
		if err := c.writeSubtotalRow(f, sheet, next, g, depositSheet); err != nil {
			return err
		}
		next++
	}

	return nil
}

func (c *WorkbookComposer) writeTransactionRow(f *excelize.File, sheet string, row int, t domain.Transaction, depositSheet bool) error {
	if err := setCell(f, sheet, row, colSequence, t.SequenceNumber); err != nil {
		return err
	}
	if err := setCell(f, sheet, row, colDateTime, t.TimestampText); err != nil {
		return err
	}
	if t.Debit != 0 {
		if err := setCell(f, sheet, row, colDebit, t.Debit); err != nil {
			return err
		}
	}
	// The full ledger shows an explicit 0 in the credit column of debit
	// rows, matching the source bank export; the deposit sheet leaves it
	// blank (its rows always carry a credit anyway).
	if t.Credit != 0 || !depositSheet {
		if err := setCell(f, sheet, row, colCredit, t.Credit); err != nil {
			return err
		}
	}
	if t.Balance != 0 {
		if err := setCell(f, sheet, row, colBalance, t.Balance); err != nil {
			return err
		}
	}
	if err := setCell(f, sheet, row, colDesc, t.Description); err != nil {
		return err
	}
	if err := setCell(f, sheet, row, colMemo, t.Memo); err != nil {
		return err
	}
	if t.Branch != "" {
		if err := setCell(f, sheet, row, colBranch, t.Branch); err != nil {
			return err
		}
	}

	for _, span := range rowMergeSpans {
		err := mergeRegion(f, sheet, domain.MergeRegion{
			StartRow: row, StartCol: span[0],
			EndRow: row, EndCol: span[1],
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *WorkbookComposer) writeSubtotalRow(f *excelize.File, sheet string, row int, g dayGroup, depositSheet bool) error {
	if err := setCell(f, sheet, row, colDateTime, g.dateKey+" 합계"); err != nil {
		return err
	}
	// The deposit sheet audits incoming money; its subtotal omits the
	// debit figure by convention.
	if !depositSheet {
		if err := setCell(f, sheet, row, colDebit, g.debitSum); err != nil {
			return err
		}
	}
	return setCell(f, sheet, row, colCredit, g.creditSum)
}

func setCell(f *excelize.File, sheet string, row, col int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func mergeRegion(f *excelize.File, sheet string, m domain.MergeRegion) error {
	start, err := excelize.CoordinatesToCellName(m.StartCol+1, m.StartRow+1)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(m.EndCol+1, m.EndRow+1)
	if err != nil {
		return err
	}
	return f.MergeCell(sheet, start, end)
}

func applyColumnWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		if w <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return err
		}
	}
	return nil
}

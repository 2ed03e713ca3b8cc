package exporter

import (
	"fmt"
	"io"
	"strconv"

	"ledgercli/internal/config"
	"ledgercli/internal/dataprocessing"
	apperrors "ledgercli/internal/errors"
	"ledgercli/pkg/contracts/domain"
)

// LedgerExporter writes the flat delimited-text renditions of the ledgers.
// Row filtering and ordering match the workbook sheets exactly; only the
// cosmetics (merges, widths) have no CSV equivalent.
type LedgerExporter struct {
	csvWriter *CSVWriter
}

// NewLedgerExporter creates a new ledger exporter
func NewLedgerExporter(paths *config.Paths) *LedgerExporter {
	return &LedgerExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportFullLedger writes every transaction grouped by day, newest day
// first, each day closed by its subtotal row.
func (e *LedgerExporter) ExportFullLedger(result *dataprocessing.AnalysisResult, outputPath string) error {
	groups := groupByDay(sortForLedger(result.Transactions))
	return e.export(groups, outputPath, false)
}

// ExportDepositLedger writes only deposit transactions of days that have at
// least one deposit, with per-day subtotals over the kept rows.
func (e *LedgerExporter) ExportDepositLedger(result *dataprocessing.AnalysisResult, outputPath string) error {
	groups := depositsOnly(groupByDay(sortForLedger(result.Transactions)))
	return e.export(groups, outputPath, true)
}

// WriteFullLedger streams the full ledger as CSV to dst, same rows as
// ExportFullLedger writes to disk.
func (e *LedgerExporter) WriteFullLedger(result *dataprocessing.AnalysisResult, dst io.Writer) error {
	groups := groupByDay(sortForLedger(result.Transactions))
	return e.stream(groups, dst, false)
}

// WriteDepositLedger streams the deposit-only ledger as CSV to dst.
func (e *LedgerExporter) WriteDepositLedger(result *dataprocessing.AnalysisResult, dst io.Writer) error {
	groups := depositsOnly(groupByDay(sortForLedger(result.Transactions)))
	return e.stream(groups, dst, true)
}

func (e *LedgerExporter) stream(groups []dayGroup, dst io.Writer, depositLedger bool) error {
	if len(groups) == 0 {
		return apperrors.NewExportError("no transactions to export", nil)
	}

	stream, err := NewStreamWriter(dst, ledgerHeaders())
	if err != nil {
		return fmt.Errorf("failed to start ledger stream: %w", err)
	}
	for _, g := range groups {
		for _, t := range g.txns {
			if err := stream.WriteRecord(transactionRow(t, depositLedger)); err != nil {
				return err
			}
		}
		if err := stream.WriteRecord(subtotalRow(g, depositLedger)); err != nil {
			return err
		}
	}
	return stream.Close()
}

func (e *LedgerExporter) export(groups []dayGroup, outputPath string, depositLedger bool) error {
	if len(groups) == 0 {
		return apperrors.NewExportError("no transactions to export", nil)
	}

	var records [][]string
	for _, g := range groups {
		for _, t := range g.txns {
			records = append(records, transactionRow(t, depositLedger))
		}
		records = append(records, subtotalRow(g, depositLedger))
	}

	if err := e.csvWriter.WriteSimpleCSV(outputPath, ledgerHeaders(), records); err != nil {
		return fmt.Errorf("failed to write ledger export: %w", err)
	}
	return nil
}

func ledgerHeaders() []string {
	return []string{
		"구분", "거래일자", "출금금액", "입금금액", "거래후잔액",
		"거래내용", "거래기록사항", "거래점",
	}
}

func transactionRow(t domain.Transaction, depositLedger bool) []string {
	credit := strconv.FormatInt(t.Credit, 10)
	if t.Credit == 0 && depositLedger {
		credit = ""
	}
	return []string{
		strconv.Itoa(t.SequenceNumber),
		t.TimestampText,
		blankZero(t.Debit),
		credit,
		blankZero(t.Balance),
		t.Description,
		t.Memo,
		t.Branch,
	}
}

func subtotalRow(g dayGroup, depositLedger bool) []string {
	debit := strconv.FormatInt(g.debitSum, 10)
	if depositLedger {
		debit = ""
	}
	return []string{
		"",
		g.dateKey + " 합계",
		debit,
		strconv.FormatInt(g.creditSum, 10),
		"", "", "", "",
	}
}

func blankZero(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

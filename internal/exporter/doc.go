// Package exporter turns an analysis result back into shareable artifacts.
//
// This package contains three main components:
//
// WorkbookComposer: Rebuilds the three-sheet report workbook (verbatim
// original, full ledger with daily subtotals, deposit-only ledger) and keeps
// the original header cosmetics: header-block rows, merges and column widths
// are replayed, and every data row re-establishes the merged-cell layout at
// its new absolute position.
//
// LedgerExporter: Flat delimited-text exports of the same ledgers, with the
// identical row filtering and sorting rules as the workbook sheets.
//
// CSVWriter: Core CSV writing with UTF-8 BOM for spreadsheet-tool
// compatibility and a streaming variant for large ledgers.
package exporter

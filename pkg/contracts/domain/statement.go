package domain

import "time"

// Transaction is one normalized bank statement row. Amounts are integer won
// (smallest currency unit); fractional inputs are rounded during parsing.
// A Transaction is never constructed with a zero Timestamp: rows whose date
// cannot be parsed are rejected by the parser before this type exists.
type Transaction struct {
	SequenceNumber int       `json:"sequence_number"`
	Timestamp      time.Time `json:"timestamp"`
	DateKey        string    `json:"date_key"`  // YYYY-MM-DD
	MonthKey       string    `json:"month_key"` // YYYY-MM
	TimestampText  string    `json:"timestamp_text"`
	Debit          int64     `json:"debit"`
	Credit         int64     `json:"credit"`
	Balance        int64     `json:"balance"`
	Description    string    `json:"description"`
	Memo           string    `json:"memo"`
	Branch         string    `json:"branch"`
	SourceFile     string    `json:"source_file"`
	SourceSheet    string    `json:"source_sheet"`
	SourceRow      int       `json:"source_row"` // 1-based row in the original sheet
}

// DayBucket aggregates the transactions of one calendar day.
type DayBucket struct {
	DateKey      string        `json:"date_key"`
	MonthKey     string        `json:"month_key"`
	Transactions []Transaction `json:"transactions"`
	DebitSum     int64         `json:"debit_sum"`
	CreditSum    int64         `json:"credit_sum"`
	Count        int           `json:"count"`
	HasDeposit   bool          `json:"has_deposit"`
}

// MonthBucket aggregates the transactions of one calendar month.
type MonthBucket struct {
	MonthKey  string `json:"month_key"`
	DebitSum  int64  `json:"debit_sum"`
	CreditSum int64  `json:"credit_sum"`
	Count     int    `json:"count"`
}

// Totals holds the run-wide aggregate figures.
type Totals struct {
	TotalDebit      int64 `json:"total_debit"`
	TotalCredit     int64 `json:"total_credit"`
	Count           int   `json:"count"`
	DepositDayCount int   `json:"deposit_day_count"`
}

// StatementMeta is the labeled preamble data of a statement document.
type StatementMeta struct {
	Owner   string `json:"owner"`
	Account string `json:"account"`
	Period  string `json:"period"`
}

// RawMatrix is the cell grid of one sheet as read from a workbook, rows by
// columns, 0-indexed. It is an immutable snapshot; the engine never writes
// into it.
type RawMatrix [][]string

// Cell returns the cell at (row, col) or "" when the coordinate is outside
// the ragged matrix.
func (m RawMatrix) Cell(row, col int) string {
	if row < 0 || row >= len(m) {
		return ""
	}
	r := m[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnCount reports the widest row within the first n rows (all rows when
// n <= 0). Statement exports pad short rows, so the widest row is the sheet
// width.
func (m RawMatrix) ColumnCount(n int) int {
	if n <= 0 || n > len(m) {
		n = len(m)
	}
	max := 0
	for i := 0; i < n; i++ {
		if len(m[i]) > max {
			max = len(m[i])
		}
	}
	return max
}

// MergeRegion is a merged cell range in 0-indexed sheet coordinates,
// inclusive on both ends.
type MergeRegion struct {
	StartRow int `json:"start_row"`
	StartCol int `json:"start_col"`
	EndRow   int `json:"end_row"`
	EndCol   int `json:"end_col"`
}

// SheetFormat carries the cosmetic metadata of a source sheet that exports
// reproduce: merge regions and column widths. Width 0 means "not set".
type SheetFormat struct {
	Merges       []MergeRegion `json:"merges"`
	ColumnWidths []float64     `json:"column_widths"`
}

// HeaderBlock is the verbatim preamble of the original document, row 0
// through the header row inclusive, with the merges confined to that range.
// Export sheets replay it unchanged before their own data rows.
type HeaderBlock struct {
	Rows         RawMatrix     `json:"rows"`
	Merges       []MergeRegion `json:"merges"`
	ColumnWidths []float64     `json:"column_widths"`
	HeaderRow    int           `json:"header_row"` // 0-based index of the last row of the block
	ColumnCount  int           `json:"column_count"`
}

// SourceSheet is one uploaded workbook's first sheet plus its formatting
// metadata, as handed to the engine.
type SourceSheet struct {
	FileName  string      `json:"file_name"`
	SheetName string      `json:"sheet_name"`
	Matrix    RawMatrix   `json:"-"`
	Format    SheetFormat `json:"-"`
}

// Package dataprocessing implements the statement analysis engine: header
// detection, column mapping resolution, row parsing, cross-file
// deduplication and day/month aggregation. The exported entry point is
// Analyzer.Analyze; everything else exists in service of it.
package dataprocessing

import (
	"errors"
	"regexp"
	"strings"

	"ledgercli/internal/normalize"
	"ledgercli/pkg/contracts/domain"
)

// ErrHeaderNotDetected reports that no row within the scan window carried
// every required header keyword. It is recoverable: the resolver falls back
// to the user or default mapping.
var ErrHeaderNotDetected = errors.New("header row not detected")

// headerScanRows bounds the top-down header scan. Statement preambles sit
// well inside the first 40 rows on every known export.
const headerScanRows = 40

// metaScanRows bounds the preamble scan for labeled meta cells.
const metaScanRows = 25

// fieldKeyword binds a logical field to the header label pattern that marks
// its column, plus the width of the merged region the value may land in.
// Spans are fixed by the known bank layout rather than read from merge
// metadata, because upstream tools routinely strip that metadata.
type fieldKeyword struct {
	field    domain.Field
	pattern  *regexp.Regexp
	span     int
	required bool
}

var headerKeywords = []fieldKeyword{
	{field: domain.FieldSequence, pattern: regexp.MustCompile(`구분`), span: 1, required: true},
	{field: domain.FieldDateTime, pattern: regexp.MustCompile(`거래일자`), span: 1, required: true},
	{field: domain.FieldDebit, pattern: regexp.MustCompile(`출금금액`), span: 2, required: true},
	{field: domain.FieldCredit, pattern: regexp.MustCompile(`입금금액`), span: 1, required: true},
	{field: domain.FieldBalance, pattern: regexp.MustCompile(`거래후잔액`), span: 2, required: true},
	{field: domain.FieldDescription, pattern: regexp.MustCompile(`거래내용`), span: 2, required: true},
	{field: domain.FieldMemo, pattern: regexp.MustCompile(`거래기록사항`), span: 3, required: true},
	{field: domain.FieldBranch, pattern: regexp.MustCompile(`거래점`), span: 1, required: false},
}

// Detection is a successful header scan: the header row plus the column
// mapping derived from the keyword positions.
type Detection struct {
	HeaderRow int
	Mapping   domain.ColumnMapping
}

// DetectHeader scans the first rows of a sheet for the one row where every
// required field keyword appears, and maps each field to the column of its
// match. Multi-column fields are expanded into fixed-size candidate ranges.
// The first qualifying row wins.
func DetectHeader(matrix domain.RawMatrix) (*Detection, error) {
	limit := len(matrix)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for r := 0; r < limit; r++ {
		keys := make([]string, len(matrix[r]))
		for c, cell := range matrix[r] {
			// Labels like "거래 후 잔액" match their keyword once inner
			// spaces are removed.
			keys[c] = strings.ReplaceAll(normalize.Text(cell), " ", "")
		}

		if mapping, ok := matchRow(keys); ok {
			return &Detection{HeaderRow: r, Mapping: mapping}, nil
		}
	}

	return nil, ErrHeaderNotDetected
}

func matchRow(keys []string) (domain.ColumnMapping, bool) {
	mapping := domain.ColumnMapping{Branch: -1}

	for _, kw := range headerKeywords {
		col := -1
		for c, key := range keys {
			if key != "" && kw.pattern.MatchString(key) {
				col = c
				break
			}
		}
		if col < 0 {
			if kw.required {
				return domain.ColumnMapping{}, false
			}
			continue
		}

		switch kw.field {
		case domain.FieldSequence:
			mapping.Sequence = col
		case domain.FieldDateTime:
			mapping.DateTime = col
		case domain.FieldDebit:
			mapping.Debit = candidateRange(col, kw.span)
		case domain.FieldCredit:
			mapping.Credit = col
		case domain.FieldBalance:
			mapping.Balance = candidateRange(col, kw.span)
		case domain.FieldDescription:
			mapping.Description = candidateRange(col, kw.span)
		case domain.FieldMemo:
			mapping.Memo = candidateRange(col, kw.span)
		case domain.FieldBranch:
			mapping.Branch = col
		}
	}

	return mapping, true
}

func candidateRange(start, span int) []int {
	out := make([]int, 0, span)
	for i := 0; i < span; i++ {
		out = append(out, start+i)
	}
	return out
}

var metaLabels = map[string]func(*domain.StatementMeta) *string{
	"계좌번호": func(m *domain.StatementMeta) *string { return &m.Account },
	"예금주명": func(m *domain.StatementMeta) *string { return &m.Owner },
	"조회기간": func(m *domain.StatementMeta) *string { return &m.Period },
}

// ExtractMeta scans the preamble rows for the labeled meta cells (account
// number, holder name, inquiry period) and reads the first non-empty cell to
// the right of each label.
func ExtractMeta(matrix domain.RawMatrix) domain.StatementMeta {
	var meta domain.StatementMeta

	limit := len(matrix)
	if limit > metaScanRows {
		limit = metaScanRows
	}

	for r := 0; r < limit; r++ {
		row := matrix[r]
		for c, cell := range row {
			label := strings.ReplaceAll(normalize.Text(cell), " ", "")
			target, ok := metaLabels[label]
			if !ok {
				continue
			}
			if slot := target(&meta); *slot == "" {
				*slot = rightValue(row, c)
			}
		}
	}

	return meta
}

func rightValue(row []string, from int) string {
	for c := from + 1; c < len(row); c++ {
		if v := normalize.Text(row[c]); v != "" {
			return v
		}
	}
	return ""
}

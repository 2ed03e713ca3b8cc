package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "ledgercli/internal/errors"
	"ledgercli/internal/normalize"
	"ledgercli/pkg/contracts/domain"
)

// DefaultHeaderRow is the 0-based header row of the stock bank export
// layout, used when detection is off or fails and the user did not override
// the row. The export puts the header on the 12th sheet row.
const DefaultHeaderRow = 11

// DefaultMapping returns the hard-coded stock layout: 14 columns, data
// starting in column B, with the known merged spans for debit, balance,
// description and memo.
func DefaultMapping() domain.ColumnMapping {
	return domain.ColumnMapping{
		Sequence:    1,                  // B
		DateTime:    2,                  // C
		Debit:       []int{3, 4},        // D,E
		Credit:      5,                  // F
		Balance:     []int{6, 7},        // G,H
		Description: []int{8, 9},        // I,J
		Memo:        []int{10, 11, 12},  // K,L,M
		Branch:      13,                 // N
	}
}

// ResolvedMapping is the outcome of merging the mapping layers for one sheet.
type ResolvedMapping struct {
	HeaderRow int
	Mapping   domain.ColumnMapping
	// Detected records whether the auto-detected layer contributed, for
	// run diagnostics.
	Detected bool
}

// ResolveMapping merges, lowest precedence first, the default layout, the
// auto-detected mapping and the user override, then validates that every
// required field resolved to a column inside the sheet. detection may be
// nil (not attempted or not found); a failed detection is not an error
// here, only an unresolvable merge result is.
func ResolveMapping(detection *Detection, override domain.MappingOverride, columnCount int) (*ResolvedMapping, error) {
	resolved := ResolvedMapping{
		HeaderRow: DefaultHeaderRow,
		Mapping:   DefaultMapping(),
	}

	if detection != nil {
		resolved.Mapping = detection.Mapping.Clone()
		resolved.HeaderRow = detection.HeaderRow
		resolved.Detected = true
	}

	if err := applyOverride(&resolved, override); err != nil {
		return nil, err
	}

	if missing := validateMapping(resolved.Mapping, columnCount); len(missing) > 0 {
		return nil, apperrors.NewMappingError(missing)
	}

	return &resolved, nil
}

func applyOverride(resolved *ResolvedMapping, o domain.MappingOverride) error {
	m := &resolved.Mapping

	scalar := []struct {
		spec  string
		field domain.Field
		dst   *int
	}{
		{o.Sequence, domain.FieldSequence, &m.Sequence},
		{o.DateTime, domain.FieldDateTime, &m.DateTime},
		{o.Credit, domain.FieldCredit, &m.Credit},
		{o.Branch, domain.FieldBranch, &m.Branch},
	}
	for _, s := range scalar {
		if s.spec == "" {
			continue
		}
		col, err := ParseColumn(s.spec)
		if err != nil {
			return apperrors.NewAppValidationError(
				fmt.Sprintf("invalid column for %s: %v", s.field, err))
		}
		*s.dst = col
	}

	list := []struct {
		spec  string
		field domain.Field
		dst   *[]int
	}{
		{o.Debit, domain.FieldDebit, &m.Debit},
		{o.Balance, domain.FieldBalance, &m.Balance},
		{o.Description, domain.FieldDescription, &m.Description},
		{o.Memo, domain.FieldMemo, &m.Memo},
	}
	for _, l := range list {
		if l.spec == "" {
			continue
		}
		cols, err := ParseColumnList(l.spec)
		if err != nil {
			return apperrors.NewAppValidationError(
				fmt.Sprintf("invalid column list for %s: %v", l.field, err))
		}
		*l.dst = cols
	}

	if o.HeaderRow > 0 {
		resolved.HeaderRow = o.HeaderRow - 1
	}
	return nil
}

// validateMapping returns the required fields whose column falls outside the
// sheet. Candidate fields need at least their first candidate in range;
// trailing candidates beyond the sheet edge are tolerated because short rows
// simply read as empty there. Branch is not in RequiredFields and is never
// reported.
func validateMapping(m domain.ColumnMapping, columnCount int) []string {
	inRange := func(col int) bool { return col >= 0 && col < columnCount }
	firstInRange := func(cols []int) bool { return len(cols) > 0 && inRange(cols[0]) }

	var missing []string
	for _, field := range domain.RequiredFields {
		ok := false
		switch field {
		case domain.FieldSequence:
			ok = inRange(m.Sequence)
		case domain.FieldDateTime:
			ok = inRange(m.DateTime)
		case domain.FieldDebit:
			ok = firstInRange(m.Debit)
		case domain.FieldCredit:
			ok = inRange(m.Credit)
		case domain.FieldBalance:
			ok = firstInRange(m.Balance)
		case domain.FieldDescription:
			ok = firstInRange(m.Description)
		case domain.FieldMemo:
			ok = firstInRange(m.Memo)
		}
		if !ok {
			missing = append(missing, string(field))
		}
	}
	return missing
}

// ParseColumn converts a column letter (A-ZZZ, case-insensitive) to its
// 0-based index.
func ParseColumn(spec string) (int, error) {
	s := strings.ToUpper(normalize.Text(spec))
	if s == "" {
		return 0, fmt.Errorf("empty column letter")
	}
	if len(s) > 3 {
		return 0, fmt.Errorf("column letter %q too long", spec)
	}
	n := 0
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column letter %q", spec)
		}
		n = n*26 + int(r-'A') + 1
	}
	return n - 1, nil
}

// ParseColumnList converts a comma-separated letter list ("D,E") into
// 0-based candidate indices, preserving order.
func ParseColumnList(spec string) ([]int, error) {
	parts := strings.Split(spec, ",")
	cols := make([]int, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		col, err := ParseColumn(p)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("empty column list %q", spec)
	}
	return cols, nil
}

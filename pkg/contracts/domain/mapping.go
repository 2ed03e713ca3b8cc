package domain

// Field names a logical statement column.
type Field string

const (
	FieldSequence    Field = "sequence"
	FieldDateTime    Field = "datetime"
	FieldDebit       Field = "debit"
	FieldCredit      Field = "credit"
	FieldBalance     Field = "balance"
	FieldDescription Field = "description"
	FieldMemo        Field = "memo"
	FieldBranch      Field = "branch"
)

// RequiredFields are the fields a header row must provide before the sheet
// can be parsed. Branch is optional and deliberately absent.
var RequiredFields = []Field{
	FieldSequence, FieldDateTime, FieldDebit, FieldCredit,
	FieldBalance, FieldDescription, FieldMemo,
}

// ColumnMapping binds logical fields to sheet columns. Debit, balance,
// description and memo are candidate lists because their source cells sit in
// merged regions and the value may land in any member column; the first
// non-empty candidate wins. Branch is -1 when unmapped.
type ColumnMapping struct {
	Sequence    int   `json:"sequence"`
	DateTime    int   `json:"datetime"`
	Debit       []int `json:"debit"`
	Credit      int   `json:"credit"`
	Balance     []int `json:"balance"`
	Description []int `json:"description"`
	Memo        []int `json:"memo"`
	Branch      int   `json:"branch"`
}

// Clone returns a deep copy so resolver merging never aliases candidate
// slices between mapping layers.
func (m ColumnMapping) Clone() ColumnMapping {
	out := m
	out.Debit = append([]int(nil), m.Debit...)
	out.Balance = append([]int(nil), m.Balance...)
	out.Description = append([]int(nil), m.Description...)
	out.Memo = append([]int(nil), m.Memo...)
	return out
}

// MappingOverride carries user-supplied column letters, one field per entry.
// Empty strings mean "not set" and leave the lower-precedence layer intact.
// Multi-candidate fields accept comma-separated letter lists ("D,E").
type MappingOverride struct {
	Sequence    string `json:"sequence,omitempty"`
	DateTime    string `json:"datetime,omitempty"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
	Balance     string `json:"balance,omitempty"`
	Description string `json:"description,omitempty"`
	Memo        string `json:"memo,omitempty"`
	Branch      string `json:"branch,omitempty"`
	// HeaderRow overrides the header row (1-based as users count rows);
	// 0 means "not set".
	HeaderRow int `json:"header_row,omitempty"`
}

// IsZero reports whether no field of the override is set.
func (o MappingOverride) IsZero() bool {
	return o == MappingOverride{}
}

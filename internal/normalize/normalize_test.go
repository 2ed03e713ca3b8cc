package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "nbsp escape", input: "농협_x00A0_은행", want: "농협 은행"},
		{name: "newline escape", input: "a_x000A_b", want: "a\nb"},
		{name: "plain text untouched", input: "입금금액", want: "입금금액"},
		{name: "literal nbsp folded", input: "a b", want: "a b"},
		{name: "incomplete escape left alone", input: "_x00A_", want: "_x00A_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeEscapes(tt.input))
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "collapses runs", input: "  거래  후   잔액 ", want: "거래 후 잔액"},
		{name: "newlines collapse", input: "a\n\nb\tc", want: "a b c"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: " \t\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "thousands and currency marker", input: "1,234,567원", want: 1234567},
		{name: "plain number", input: "50000", want: 50000},
		{name: "accounting negative", input: "(500)", want: -500},
		{name: "accounting negative with separators", input: "(1,500원)", want: -1500},
		{name: "fraction rounds", input: "1234.6", want: 1235},
		{name: "empty", input: "", want: 0},
		{name: "whitespace", input: "   ", want: 0},
		{name: "non numeric", input: "합계", want: 0},
		{name: "marker only", input: "원", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount(tt.input))
		})
	}
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantDate  string
		wantMonth string
		wantText  string
	}{
		{
			name:      "slash with time",
			input:     "2024/01/05 10:00:00",
			wantValid: true,
			wantDate:  "2024-01-05",
			wantMonth: "2024-01",
			wantText:  "2024/01/05 10:00:00",
		},
		{
			name:      "dash date only",
			input:     "2024-11-30",
			wantValid: true,
			wantDate:  "2024-11-30",
			wantMonth: "2024-11",
			wantText:  "2024/11/30 00:00:00",
		},
		{
			name:      "dot separators short time",
			input:     "2023.7.4 9:05",
			wantValid: true,
			wantDate:  "2023-07-04",
			wantMonth: "2023-07",
			wantText:  "2023/07/04 09:05:00",
		},
		{
			name:      "excel serial",
			input:     "45296.5",
			wantValid: true,
			wantDate:  "2024-01-05",
			wantMonth: "2024-01",
			wantText:  "2024/01/05 12:00:00",
		},
		{
			name:      "garbage keeps text",
			input:     "이월  잔액",
			wantValid: false,
			wantText:  "이월 잔액",
		},
		{
			name:      "impossible date rejected",
			input:     "2024/13/40",
			wantValid: false,
			wantText:  "2024/13/40",
		},
		{name: "empty", input: "", wantValid: false, wantText: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDateTime(tt.input)
			assert.Equal(t, tt.wantValid, got.Valid())
			assert.Equal(t, tt.wantText, got.Text)
			if tt.wantValid {
				assert.Equal(t, tt.wantDate, got.DateKey)
				assert.Equal(t, tt.wantMonth, got.MonthKey)
			} else {
				assert.Empty(t, got.DateKey)
				assert.Empty(t, got.MonthKey)
			}
		})
	}
}

func TestParseDateTime_RoundTrip(t *testing.T) {
	// The rendered text of a parsed cell must re-parse to the same dateKey.
	inputs := []string{
		"2024/01/05 10:00:00",
		"2024-02-29",
		"2019.12.31 23:59:59",
		"45296",
	}
	for _, input := range inputs {
		first := ParseDateTime(input)
		require.True(t, first.Valid(), "input %q", input)

		second := ParseDateTime(first.Text)
		require.True(t, second.Valid(), "re-parse of %q", first.Text)
		assert.Equal(t, first.DateKey, second.DateKey)
		assert.Equal(t, first.Timestamp, second.Timestamp)
	}
}

func TestParseDateTime_SerialEpoch(t *testing.T) {
	// Serial 61 is 1900-03-01, the first serial unaffected by the phantom
	// 1900-02-29 of the Windows date system.
	got := ParseDateTime("61")
	require.True(t, got.Valid())
	assert.Equal(t, time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC), got.Timestamp)
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{name: "digits", input: "12", want: 12, wantOK: true},
		{name: "padded digits", input: " 3 ", want: 3, wantOK: true},
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace", input: "  ", wantOK: false},
		{name: "decimal rejected", input: "1.0", wantOK: false},
		{name: "label rejected", input: "합계", wantOK: false},
		{name: "signed rejected", input: "-1", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	row := []string{"", "1", "", "커피", " ", "메모"}

	assert.Equal(t, "커피", FirstNonEmpty(row, []int{2, 3, 4}))
	assert.Equal(t, "메모", FirstNonEmpty(row, []int{4, 5}))
	assert.Equal(t, "", FirstNonEmpty(row, []int{0, 2, 4}))
	assert.Equal(t, "", FirstNonEmpty(row, []int{9, 10}), "out of range candidates are skipped")
}

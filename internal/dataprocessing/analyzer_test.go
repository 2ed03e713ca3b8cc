package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ledgercli/internal/errors"
	"ledgercli/pkg/contracts/domain"
)

func statementSheet(fileName string, rows ...[]string) domain.SourceSheet {
	matrix := domain.RawMatrix{
		{"통장거래내역"},
		{"", "계좌번호", "123-4567-890"},
		{"", "예금주명", "홍길동"},
		statementHeaderRow(),
	}
	matrix = append(matrix, rows...)
	return domain.SourceSheet{
		FileName:  fileName,
		SheetName: "Sheet1",
		Matrix:    matrix,
		Format: domain.SheetFormat{
			Merges: []domain.MergeRegion{
				{StartRow: 0, StartCol: 0, EndRow: 0, EndCol: 13},
				{StartRow: 20, StartCol: 0, EndRow: 20, EndCol: 1},
			},
			ColumnWidths: []float64{2, 6, 18, 12, 12, 12, 12, 12, 14, 14, 10, 10, 10, 8},
		},
	}
}

func TestAnalyze(t *testing.T) {
	sheet := statementSheet("jan.xlsx",
		dataRow("1", "2024/01/05 10:00:00", "", "50,000", "50,000", "급여", "1월분", "본점"),
		dataRow("2", "2024/01/06 09:00:00", "4,500", "", "45,500", "커피", "", ""),
		[]string{"", "", "", "", "", "", "", "", "이하 여백"},
	)

	result, err := NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{
		Sheets:  []domain.SourceSheet{sheet},
		Options: DefaultOptions(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "홍길동", result.Meta.Owner)
	assert.Equal(t, "123-4567-890", result.Meta.Account)
	// No 조회기간 label; the period falls back to the observed date range.
	assert.Equal(t, "2024-01-05 ~ 2024-01-06", result.Meta.Period)

	require.Len(t, result.Transactions, 2)
	assert.Len(t, result.Days, 2)
	assert.Len(t, result.Months, 1)
	assert.Equal(t, int64(50000), result.Totals.TotalCredit)

	require.Len(t, result.Diagnostics.Sheets, 1)
	outcome := result.Diagnostics.Sheets[0]
	assert.True(t, outcome.HeaderDetected)
	assert.Equal(t, 3, outcome.HeaderRow)
	assert.Equal(t, 2, outcome.ParsedRows)
	assert.Equal(t, 1, outcome.SkippedRows)
	assert.Zero(t, outcome.ParseErrors)
	assert.Zero(t, result.Diagnostics.DetectionFailures)
}

func TestAnalyzeHeaderBlock(t *testing.T) {
	sheet := statementSheet("jan.xlsx",
		dataRow("1", "2024/01/05", "", "100", "100", "x", "", ""),
	)

	result, err := NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{
		Sheets:  []domain.SourceSheet{sheet},
		Options: DefaultOptions(),
	})
	require.NoError(t, err)

	block := result.HeaderBlock
	assert.Equal(t, 3, block.HeaderRow)
	assert.Len(t, block.Rows, 4)
	assert.Equal(t, 14, block.ColumnCount)
	// Only merges confined to the preamble survive; the one at row 20 does not.
	require.Len(t, block.Merges, 1)
	assert.Equal(t, 0, block.Merges[0].StartRow)
	assert.Equal(t, sheet.Format.ColumnWidths, block.ColumnWidths)
	assert.Equal(t, "jan.xlsx", result.Original.FileName)
}

func TestAnalyzeDedupeAcrossFiles(t *testing.T) {
	shared := dataRow("1", "2024/01/05 10:00:00", "", "50,000", "50,000", "급여", "", "")
	first := statementSheet("jan.xlsx",
		shared,
		dataRow("2", "2024/01/06 09:00:00", "4,500", "", "45,500", "커피", "", ""),
	)
	second := statementSheet("jan_copy.xlsx", shared)

	result, err := NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{
		Sheets:  []domain.SourceSheet{first, second},
		Options: DefaultOptions(),
	})
	require.NoError(t, err)

	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, 1, result.Diagnostics.DedupedRows)
	assert.Equal(t, 3, result.Diagnostics.ParsedRows)

	// Dedupe off keeps the duplicate.
	result, err = NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{
		Sheets:  []domain.SourceSheet{first, second},
		Options: Options{AutoDetect: true, Dedupe: false},
	})
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 3)
	assert.Zero(t, result.Diagnostics.DedupedRows)
}

func TestAnalyzeDetectionFallback(t *testing.T) {
	// No recognizable header anywhere; detection fails per sheet but the run
	// continues on the override mapping.
	matrix := domain.RawMatrix{
		{"custom export"},
		{"", "no", "labels", "here"},
		dataRow("1", "2024/03/01", "", "7,000", "7,000", "입금", "", ""),
	}
	sheet := domain.SourceSheet{FileName: "raw.xlsx", SheetName: "Sheet1", Matrix: matrix}

	result, err := NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{
		Sheets:   []domain.SourceSheet{sheet},
		Override: domain.MappingOverride{HeaderRow: 2}, // 1-based: data starts on row 3
		Options:  DefaultOptions(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Diagnostics.DetectionFailures)
	require.Len(t, result.Diagnostics.Sheets, 1)
	assert.False(t, result.Diagnostics.Sheets[0].HeaderDetected)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, int64(7000), result.Transactions[0].Credit)
}

func TestAnalyzeMetaBackfill(t *testing.T) {
	first := statementSheet("jan.xlsx",
		dataRow("1", "2024/01/05", "", "100", "100", "x", "", ""),
	)
	// Second file carries the period label the first one lacked.
	second := statementSheet("feb.xlsx",
		dataRow("1", "2024/02/05", "", "100", "100", "y", "", ""),
	)
	second.Matrix = append(domain.RawMatrix{
		{"", "조회기간", "2024/01/01 ~ 2024/02/29"},
	}, second.Matrix...)

	result, err := NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{
		Sheets:  []domain.SourceSheet{first, second},
		Options: DefaultOptions(),
	})
	require.NoError(t, err)

	assert.Equal(t, "2024/01/01 ~ 2024/02/29", result.Meta.Period)
	assert.Equal(t, "홍길동", result.Meta.Owner)
}

func TestAnalyzeNarrowSheetAbortsWithMappingError(t *testing.T) {
	// A sheet too narrow for the default layout must abort the run naming
	// the unresolved fields, not succeed with zero transactions.
	sheet := domain.SourceSheet{
		FileName:  "narrow.xlsx",
		SheetName: "Sheet1",
		Matrix:    domain.RawMatrix{{"a", "b", "c"}, {"d", "e", "f"}},
	}

	_, err := NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{
		Sheets:  []domain.SourceSheet{sheet},
		Options: DefaultOptions(),
	})
	require.Error(t, err)

	var mapErr *apperrors.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Contains(t, mapErr.Fields, string(domain.FieldCredit))
	assert.Contains(t, mapErr.Fields, string(domain.FieldMemo))
}

func TestAnalyzeNoSheets(t *testing.T) {
	_, err := NewAnalyzer(nil).Analyze(context.Background(), AnalysisRequest{})
	assert.Error(t, err)
}

func TestAnalyzeCancelledContext(t *testing.T) {
	rows := make([][]string, checkpointInterval+1)
	for i := range rows {
		rows[i] = dataRow("1", "2024/01/01", "", "100", "100", "x", "", "")
	}
	sheet := statementSheet("big.xlsx", rows...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(nil).Analyze(ctx, AnalysisRequest{
		Sheets:  []domain.SourceSheet{sheet},
		Options: DefaultOptions(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

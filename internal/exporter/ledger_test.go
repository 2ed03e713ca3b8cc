package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgercli/internal/config"
	"ledgercli/internal/dataprocessing"
)

func readLedgerCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM")
	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportFullLedger(t *testing.T) {
	dir := t.TempDir()
	exporter := NewLedgerExporter(config.NewPaths(config.PathsConfig{
		DataDir:    dir,
		ReportsDir: dir,
	}))

	require.NoError(t, exporter.ExportFullLedger(testResult(), "full.csv"))

	records := readLedgerCSV(t, filepath.Join(dir, "full.csv"))
	require.Len(t, records, 5) // header + 2 txns + 2 subtotals

	assert.Equal(t, ledgerHeaders(), records[0])

	// Newest day first: the 01-06 debit row, then its subtotal.
	assert.Equal(t, []string{"2", "2024/01/06 09:00:00", "4500", "0", "45500", "커피", "", ""}, records[1])
	assert.Equal(t, []string{"", "2024-01-06 합계", "4500", "0", "", "", "", ""}, records[2])
	assert.Equal(t, []string{"1", "2024/01/05 10:00:00", "", "50000", "50000", "급여", "1월분", "본점"}, records[3])
	assert.Equal(t, []string{"", "2024-01-05 합계", "0", "50000", "", "", "", ""}, records[4])
}

func TestExportDepositLedger(t *testing.T) {
	dir := t.TempDir()
	exporter := NewLedgerExporter(config.NewPaths(config.PathsConfig{
		DataDir:    dir,
		ReportsDir: dir,
	}))

	require.NoError(t, exporter.ExportDepositLedger(testResult(), "deposit.csv"))

	records := readLedgerCSV(t, filepath.Join(dir, "deposit.csv"))
	require.Len(t, records, 3) // header + 1 deposit + 1 subtotal

	assert.Equal(t, []string{"1", "2024/01/05 10:00:00", "", "50000", "50000", "급여", "1월분", "본점"}, records[1])
	// Deposit subtotal omits the debit figure.
	assert.Equal(t, []string{"", "2024-01-05 합계", "", "50000", "", "", "", ""}, records[2])
}

func TestExportDepositLedgerNoDeposits(t *testing.T) {
	result := testResult()
	for i := range result.Transactions {
		result.Transactions[i].Credit = 0
	}

	exporter := NewLedgerExporter(config.NewPaths(config.PathsConfig{
		DataDir:    t.TempDir(),
		ReportsDir: t.TempDir(),
	}))
	assert.Error(t, exporter.ExportDepositLedger(result, "deposit.csv"))
}

func TestExportFullLedgerEmpty(t *testing.T) {
	exporter := NewLedgerExporter(nil)
	assert.Error(t, exporter.ExportFullLedger(&dataprocessing.AnalysisResult{}, "full.csv"))
}

func TestWriteFullLedgerStreamsToWriter(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewLedgerExporter(nil)

	require.NoError(t, exporter.WriteFullLedger(testResult(), &buf))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM")
	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)

	// Identical rows to the file-based export.
	require.Len(t, records, 5)
	assert.Equal(t, ledgerHeaders(), records[0])
	assert.Equal(t, []string{"", "2024-01-06 합계", "4500", "0", "", "", "", ""}, records[2])
}

func TestWriteDepositLedgerNoDepositsToWriter(t *testing.T) {
	result := testResult()
	for i := range result.Transactions {
		result.Transactions[i].Credit = 0
	}

	var buf bytes.Buffer
	err := NewLedgerExporter(nil).WriteDepositLedger(result, &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing may be written when the export is rejected")
}

func TestCSVStreamWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(config.NewPaths(config.PathsConfig{DataDir: dir, ReportsDir: dir}))

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1", "2"}))
	require.NoError(t, stream.WriteRecord([]string{"3", "4"}))
	require.NoError(t, stream.Close())

	records := readLedgerCSV(t, filepath.Join(dir, "stream.csv"))
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, records)
}

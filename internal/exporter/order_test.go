package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgercli/pkg/contracts/domain"
)

func ledgerTxn(dateKey, text string, seq int, debit, credit int64) domain.Transaction {
	return domain.Transaction{
		SequenceNumber: seq,
		DateKey:        dateKey,
		TimestampText:  text,
		Debit:          debit,
		Credit:         credit,
	}
}

func TestSortForLedger(t *testing.T) {
	in := []domain.Transaction{
		ledgerTxn("2024-01-05", "2024/01/05 09:00:00", 1, 100, 0),
		ledgerTxn("2024-01-06", "2024/01/06 08:00:00", 3, 0, 300),
		ledgerTxn("2024-01-05", "2024/01/05 14:00:00", 2, 0, 200),
		ledgerTxn("2024-01-06", "2024/01/06 08:00:00", 1, 400, 0),
	}

	out := sortForLedger(in)

	// Newest day first, latest time first within a day, then sequence asc.
	require.Len(t, out, 4)
	assert.Equal(t, 1, out[0].SequenceNumber) // 01-06 08:00 seq 1
	assert.Equal(t, 3, out[1].SequenceNumber) // 01-06 08:00 seq 3
	assert.Equal(t, 2, out[2].SequenceNumber) // 01-05 14:00
	assert.Equal(t, int64(100), out[3].Debit) // 01-05 09:00

	// Input untouched.
	assert.Equal(t, "2024-01-05", in[0].DateKey)
	assert.Equal(t, 1, in[0].SequenceNumber)
}

func TestSortForLedgerStableOnFullTies(t *testing.T) {
	a := ledgerTxn("2024-01-05", "2024/01/05 10:00:00", 1, 0, 100)
	a.SourceFile = "first.xlsx"
	b := a
	b.SourceFile = "second.xlsx"

	out := sortForLedger([]domain.Transaction{a, b})
	assert.Equal(t, "first.xlsx", out[0].SourceFile)
	assert.Equal(t, "second.xlsx", out[1].SourceFile)
}

func TestGroupByDay(t *testing.T) {
	sorted := sortForLedger([]domain.Transaction{
		ledgerTxn("2024-01-05", "2024/01/05 09:00:00", 1, 100, 0),
		ledgerTxn("2024-01-05", "2024/01/05 14:00:00", 2, 0, 200),
		ledgerTxn("2024-01-06", "2024/01/06 08:00:00", 1, 50, 70),
	})

	groups := groupByDay(sorted)
	require.Len(t, groups, 2)

	assert.Equal(t, "2024-01-06", groups[0].dateKey)
	assert.Equal(t, int64(50), groups[0].debitSum)
	assert.Equal(t, int64(70), groups[0].creditSum)

	assert.Equal(t, "2024-01-05", groups[1].dateKey)
	assert.Len(t, groups[1].txns, 2)
	assert.Equal(t, int64(100), groups[1].debitSum)
	assert.Equal(t, int64(200), groups[1].creditSum)
}

func TestDepositsOnly(t *testing.T) {
	groups := groupByDay(sortForLedger([]domain.Transaction{
		ledgerTxn("2024-01-05", "2024/01/05 09:00:00", 1, 100, 0),
		ledgerTxn("2024-01-05", "2024/01/05 14:00:00", 2, 0, 200),
		ledgerTxn("2024-01-06", "2024/01/06 08:00:00", 1, 50, 0),
	}))

	deposits := depositsOnly(groups)

	// The all-debit day drops out entirely.
	require.Len(t, deposits, 1)
	assert.Equal(t, "2024-01-05", deposits[0].dateKey)
	require.Len(t, deposits[0].txns, 1)
	// Sums are recomputed over the kept rows only.
	assert.Equal(t, int64(0), deposits[0].debitSum)
	assert.Equal(t, int64(200), deposits[0].creditSum)
}

func TestDepositsOnlyEmpty(t *testing.T) {
	assert.Empty(t, depositsOnly(nil))
}

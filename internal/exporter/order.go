package exporter

import (
	"sort"

	"ledgercli/pkg/contracts/domain"
)

// sortForLedger orders transactions the way both ledger exports list them:
// day descending, time descending within the day, ascending sequence number
// as the tie-break. The sort is stable, so rows that tie on all three keys
// keep their input (file submission) order.
func sortForLedger(txns []domain.Transaction) []domain.Transaction {
	out := append([]domain.Transaction(nil), txns...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DateKey != b.DateKey {
			return a.DateKey > b.DateKey
		}
		if a.TimestampText != b.TimestampText {
			return a.TimestampText > b.TimestampText
		}
		return a.SequenceNumber < b.SequenceNumber
	})
	return out
}

// dayGroup is one day's slice of a sorted ledger.
type dayGroup struct {
	dateKey   string
	txns      []domain.Transaction
	debitSum  int64
	creditSum int64
}

// groupByDay splits an already ledger-sorted list into contiguous day groups,
// preserving the descending day order.
func groupByDay(sorted []domain.Transaction) []dayGroup {
	var groups []dayGroup
	for _, t := range sorted {
		if len(groups) == 0 || groups[len(groups)-1].dateKey != t.DateKey {
			groups = append(groups, dayGroup{dateKey: t.DateKey})
		}
		g := &groups[len(groups)-1]
		g.txns = append(g.txns, t)
		g.debitSum += t.Debit
		g.creditSum += t.Credit
	}
	return groups
}

// depositsOnly filters a day group down to its credit rows, recomputing the
// group sums over the kept rows. Days without any deposit drop out entirely.
func depositsOnly(groups []dayGroup) []dayGroup {
	var out []dayGroup
	for _, g := range groups {
		filtered := dayGroup{dateKey: g.dateKey}
		for _, t := range g.txns {
			if t.Credit > 0 {
				filtered.txns = append(filtered.txns, t)
				filtered.debitSum += t.Debit
				filtered.creditSum += t.Credit
			}
		}
		if len(filtered.txns) > 0 {
			out = append(out, filtered)
		}
	}
	return out
}

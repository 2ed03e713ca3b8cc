package dataprocessing

import (
	"sort"

	"ledgercli/pkg/contracts/domain"
)

// Aggregation is the full bucketing of one analysis run. Buckets are rebuilt
// from scratch on every run; there is no incremental update path.
type Aggregation struct {
	Days   []domain.DayBucket   // dateKey descending, most recent first
	Months []domain.MonthBucket // monthKey ascending
	Totals domain.Totals
}

// Aggregate buckets transactions by day and month in a single pass and
// computes the run totals. Bucket keys are unique, so neither sort has ties.
func Aggregate(txns []domain.Transaction) *Aggregation {
	dayIdx := make(map[string]int)
	monthIdx := make(map[string]int)

	agg := &Aggregation{}

	for _, t := range txns {
		agg.Totals.TotalDebit += t.Debit
		agg.Totals.TotalCredit += t.Credit

		di, ok := dayIdx[t.DateKey]
		if !ok {
			di = len(agg.Days)
			dayIdx[t.DateKey] = di
			agg.Days = append(agg.Days, domain.DayBucket{
				DateKey:  t.DateKey,
				MonthKey: t.MonthKey,
			})
		}
		day := &agg.Days[di]
		day.Transactions = append(day.Transactions, t)
		day.DebitSum += t.Debit
		day.CreditSum += t.Credit
		day.Count++

		mi, ok := monthIdx[t.MonthKey]
		if !ok {
			mi = len(agg.Months)
			monthIdx[t.MonthKey] = mi
			agg.Months = append(agg.Months, domain.MonthBucket{MonthKey: t.MonthKey})
		}
		month := &agg.Months[mi]
		month.DebitSum += t.Debit
		month.CreditSum += t.Credit
		month.Count++
	}

	for i := range agg.Days {
		day := &agg.Days[i]
		day.HasDeposit = day.CreditSum > 0
		if day.HasDeposit {
			agg.Totals.DepositDayCount++
		}
	}
	agg.Totals.Count = len(txns)

	sort.Slice(agg.Days, func(i, j int) bool {
		return agg.Days[i].DateKey > agg.Days[j].DateKey
	})
	sort.Slice(agg.Months, func(i, j int) bool {
		return agg.Months[i].MonthKey < agg.Months[j].MonthKey
	})

	return agg
}

package vesting

import "iter"

// Dates yields the disbursement dates of a schedule: the i-th date
// (1-indexed) is start + i*periodMonths months. Each date is computed from
// start, so month-end clamping never accumulates (Jan 31 -> Feb 28 -> Mar 31).
// The sequence can be ranged over any number of times.
func Dates(start Date, periodMonths, count int) iter.Seq2[int, Date] {
	return func(yield func(int, Date) bool) {
		for i := 1; i <= count; i++ {
			if !yield(i, start.AddMonths(i*periodMonths)) {
				return
			}
		}
	}
}

// DisbursementDates collects Dates into a slice.
func DisbursementDates(start Date, periodMonths, count int) []Date {
	out := make([]Date, 0, max(count, 0))
	for _, d := range Dates(start, periodMonths, count) {
		out = append(out, d)
	}
	return out
}

/*
allocation.go - The seven rounding policies

PURPOSE:
  Splits a grant's total shares across its vesting periods. Dividing 100
  shares over 3 periods leaves a remainder; each policy decides where the
  remainder goes. Every policy conserves the total exactly.

TWO STAGES:
  1. AllocatePeriods: one raw value per period (PeriodsTotal values)
  2. Allocate: sums the first PeriodsInCliff values into a single leading
     cliff lump sum (TrancheCount values)

POLICIES (base = total / periods):
  CumulativeRounding   ceil(i*base) - ceil((i-1)*base)          5-4-5-4
  CumulativeRoundDown  floor(i*base) - floor((i-1)*base)        4-5-4-5
  FrontLoaded          floor(base), +1 from the first period    5-5-4-4
  BackLoaded           floor(base), +1 from the last period     4-4-5-5
  FrontLoadedSingle    floor(base), all extra on the first      6-4-4-4
  BackLoadedSingle     floor(base), all extra on the last       4-4-4-6
  Fractional           round-to-even(base, 4), rest on cliff    4.5-4.5-4.5-4.5

INTEGER POLICIES:
  Policies 1-6 use exact integer division (decimal QuoRem), never float
  arithmetic, so cumulative rounding cannot drift past the total.

EXAMPLE:
  shares, _ := vesting.Allocate(vesting.FrontLoaded, vesting.Allocation{
      TotalShares:    100,
      PeriodsTotal:   3,
      PeriodsInCliff: 1,
  })
  // [34 33 33]

SEE ALSO:
  - schedule.go: Computes the Allocation from a Request
*/
package vesting

import (
	"github.com/shopspring/decimal"
)

// FractionalPlaces is the precision of the Fractional policy.
const FractionalPlaces = 4

// Allocation is the numeric input shared by all policies.
type Allocation struct {
	TotalShares    int64
	PeriodsTotal   int
	PeriodsInCliff int

	// Extra is the remainder left after flooring, consumed by the
	// single-tranche policies. See ExtraShares.
	Extra int64
}

// ExtraShares is total - floor(total/periods)*periods.
func ExtraShares(totalShares int64, periodsTotal int) int64 {
	_, rem := decimal.NewFromInt(totalShares).QuoRem(decimal.NewFromInt(int64(periodsTotal)), 0)
	return rem.IntPart()
}

type allocator func(a Allocation) []decimal.Decimal

var allocators = map[RoundingPolicy]allocator{
	CumulativeRounding:  cumulativeRounding,
	CumulativeRoundDown: cumulativeRoundDown,
	FrontLoaded:         frontLoaded,
	BackLoaded:          backLoaded,
	FrontLoadedSingle:   frontLoadedSingle,
	BackLoadedSingle:    backLoadedSingle,
	Fractional:          fractional,
}

// AllocatePeriods returns one raw share count per period, before the cliff
// periods are merged.
func AllocatePeriods(policy RoundingPolicy, a Allocation) ([]decimal.Decimal, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	alloc, ok := allocators[policy]
	if !ok {
		return nil, invalidPolicy(policy)
	}
	return alloc(a), nil
}

// Allocate returns the final per-tranche share counts: the cliff lump sum
// followed by one value per post-cliff period.
func Allocate(policy RoundingPolicy, a Allocation) ([]decimal.Decimal, error) {
	raw, err := AllocatePeriods(policy, a)
	if err != nil {
		return nil, err
	}

	out := collapseCliff(raw, a.PeriodsInCliff)
	if policy == Fractional {
		out = settleFractional(out, raw, a.TotalShares)
	}
	return out, nil
}

func (a Allocation) validate() error {
	if a.PeriodsTotal <= 0 {
		return &InvalidInputError{Field: "periods_total", Reason: "must be positive"}
	}
	if a.PeriodsInCliff < 0 || a.PeriodsInCliff > a.PeriodsTotal {
		return &InvalidInputError{Field: "periods_in_cliff", Reason: "must be between 0 and periods_total"}
	}
	if a.TotalShares < 0 {
		return &InvalidInputError{Field: "total_shares", Reason: "cannot be negative"}
	}
	return nil
}

// =============================================================================
// CLIFF COLLAPSING
// =============================================================================

func collapseCliff(raw []decimal.Decimal, inCliff int) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(raw)-inCliff+1)
	out = append(out, decimal.Sum(decimal.Zero, raw[:inCliff]...))
	return append(out, raw[inCliff:]...)
}

// settleFractional puts the rounding residual on the cliff entry and
// re-rounds every value. The residual is total minus the sum of all rounded
// periods, so it can be negative; a deficit the cliff entry cannot cover
// (an empty cliff) is taken from the following entries in order.
func settleFractional(out, raw []decimal.Decimal, total int64) []decimal.Decimal {
	residual := decimal.NewFromInt(total).Sub(decimal.Sum(decimal.Zero, raw...))
	if !residual.IsNegative() {
		out[0] = out[0].Add(residual)
	} else {
		deficit := residual.Neg()
		for i := 0; i < len(out) && deficit.IsPositive(); i++ {
			take := decimal.Min(out[i], deficit)
			out[i] = out[i].Sub(take)
			deficit = deficit.Sub(take)
		}
	}
	for i := range out {
		out[i] = out[i].RoundBank(FractionalPlaces)
	}
	return out
}

// =============================================================================
// CUMULATIVE POLICIES
// =============================================================================

func cumulativeRounding(a Allocation) []decimal.Decimal {
	return cumulative(a, true)
}

func cumulativeRoundDown(a Allocation) []decimal.Decimal {
	return cumulative(a, false)
}

// cumulative rounds the running total total*i/n at each period and emits
// the differences. The last running total is exactly total, so the
// differences always sum to it.
func cumulative(a Allocation, up bool) []decimal.Decimal {
	total := decimal.NewFromInt(a.TotalShares)
	n := decimal.NewFromInt(int64(a.PeriodsTotal))

	out := make([]decimal.Decimal, a.PeriodsTotal)
	prev := decimal.Zero
	for i := range out {
		q, r := total.Mul(decimal.NewFromInt(int64(i + 1))).QuoRem(n, 0)
		if up && r.IsPositive() {
			q = q.Add(decimal.NewFromInt(1))
		}
		out[i] = q.Sub(prev)
		prev = q
	}
	return out
}

// =============================================================================
// FLOOR-BASED POLICIES
// =============================================================================

// floored gives every period floor(base) and returns the shortfall.
func floored(a Allocation) ([]decimal.Decimal, int64) {
	q, r := decimal.NewFromInt(a.TotalShares).QuoRem(decimal.NewFromInt(int64(a.PeriodsTotal)), 0)
	out := make([]decimal.Decimal, a.PeriodsTotal)
	for i := range out {
		out[i] = q
	}
	return out, r.IntPart()
}

var one = decimal.NewFromInt(1)

func frontLoaded(a Allocation) []decimal.Decimal {
	out, shortfall := floored(a)
	idx := 0
	for ; shortfall > 0; shortfall-- {
		out[idx] = out[idx].Add(one)
		idx++
		if idx >= len(out) {
			idx = 0
		}
	}
	return out
}

// backLoaded hands out the shortfall from the last period backwards and
// wraps to the last period before entering the cliff-covered range.
func backLoaded(a Allocation) []decimal.Decimal {
	out, shortfall := floored(a)
	last := len(out) - 1
	idx := last
	for ; shortfall > 0; shortfall-- {
		out[idx] = out[idx].Add(one)
		idx--
		if idx < a.PeriodsInCliff || idx < 0 {
			idx = last
		}
	}
	return out
}

func frontLoadedSingle(a Allocation) []decimal.Decimal {
	out, _ := floored(a)
	out[0] = out[0].Add(decimal.NewFromInt(a.Extra))
	return out
}

func backLoadedSingle(a Allocation) []decimal.Decimal {
	out, _ := floored(a)
	last := len(out) - 1
	out[last] = out[last].Add(decimal.NewFromInt(a.Extra))
	return out
}

// =============================================================================
// FRACTIONAL POLICY
// =============================================================================

func fractional(a Allocation) []decimal.Decimal {
	// Exact ties round to even: 1/32 = 0.03125 becomes 0.0312.
	base := decimal.NewFromInt(a.TotalShares).
		Div(decimal.NewFromInt(int64(a.PeriodsTotal))).
		RoundBank(FractionalPlaces)
	out := make([]decimal.Decimal, a.PeriodsTotal)
	for i := range out {
		out[i] = base
	}
	return out
}

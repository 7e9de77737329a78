package vesting

import "github.com/shopspring/decimal"

// =============================================================================
// COMPUTE - Request to Schedule
// =============================================================================

// Compute builds the disbursement schedule for req.
//
// Steps: validate, derive geometry, sequence dates, allocate shares, zip.
// The first tranche is the cliff lump sum and is dated one period after the
// start date, like every other tranche is dated one period after the last.
// On error no schedule is returned.
func Compute(req Request) (*Schedule, error) {
	geom, err := req.geometry()
	if err != nil {
		return nil, err
	}

	shares, err := Allocate(req.Policy, Allocation{
		TotalShares:    req.TotalShares,
		PeriodsTotal:   geom.PeriodsTotal,
		PeriodsInCliff: geom.PeriodsInCliff,
		Extra:          ExtraShares(req.TotalShares, geom.PeriodsTotal),
	})
	if err != nil {
		return nil, err
	}

	tranches := make([]Tranche, 0, geom.TrancheCount)
	for i, date := range Dates(req.StartDate, req.PeriodMonths, geom.TrancheCount) {
		tranches = append(tranches, Tranche{
			Date:   date,
			Shares: shares[i-1],
			Cliff:  i == 1,
		})
	}

	return &Schedule{
		Request:  req,
		Geometry: geom,
		Tranches: tranches,
	}, nil
}

// VestedAsOf sums the shares of every tranche dated on or before d.
func (s *Schedule) VestedAsOf(d Date) decimal.Decimal {
	vested := decimal.Zero
	for _, t := range s.Tranches {
		if t.Date.After(d) {
			break
		}
		vested = vested.Add(t.Shares)
	}
	return vested
}

// TranchesBetween returns the tranches dated after `after` and on or before upTo.
func (s *Schedule) TranchesBetween(after, upTo Date) []Tranche {
	var out []Tranche
	for _, t := range s.Tranches {
		if t.Date.After(after) && !t.Date.After(upTo) {
			out = append(out, t)
		}
	}
	return out
}

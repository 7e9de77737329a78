package vesting

// DeriveGeometry computes the tranche layout for a vesting horizon.
//
//	PeriodsTotal   = ceil(vesting / period)
//	PeriodsInCliff = ceil(cliff / period)
//	TrancheCount   = PeriodsTotal - PeriodsInCliff + 1
func DeriveGeometry(vestingMonths, cliffMonths, periodMonths int) (Geometry, error) {
	if periodMonths <= 0 {
		return Geometry{}, &InvalidInputError{Field: "period_months", Reason: "must be positive"}
	}
	if vestingMonths <= 0 {
		return Geometry{}, &InvalidInputError{Field: "vesting_months", Reason: "must be positive"}
	}
	if cliffMonths < 0 {
		return Geometry{}, &InvalidInputError{Field: "cliff_months", Reason: "cannot be negative"}
	}

	g := Geometry{
		PeriodsTotal:   ceilDiv(vestingMonths, periodMonths),
		PeriodsInCliff: ceilDiv(cliffMonths, periodMonths),
	}
	g.TrancheCount = g.PeriodsTotal - g.PeriodsInCliff + 1

	// A cliff past the horizon leaves nothing to disburse after it.
	if g.TrancheCount < 1 {
		return Geometry{}, &InvalidInputError{Field: "cliff_months", Reason: "leaves a degenerate schedule"}
	}
	return g, nil
}

// ceilDiv is ceil(a/b) for a >= 0, b > 0.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

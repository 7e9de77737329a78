package vesting_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vesting-engine/vesting"
)

func TestDeriveGeometry(t *testing.T) {
	cases := []struct {
		name                   string
		vesting, cliff, period int
		want                   vesting.Geometry
	}{
		{"annual four year", 48, 12, 12, vesting.Geometry{PeriodsTotal: 4, PeriodsInCliff: 1, TrancheCount: 4}},
		{"annual three year", 36, 12, 12, vesting.Geometry{PeriodsTotal: 3, PeriodsInCliff: 1, TrancheCount: 3}},
		{"monthly four year", 48, 12, 1, vesting.Geometry{PeriodsTotal: 48, PeriodsInCliff: 12, TrancheCount: 37}},
		{"quarterly", 48, 12, 3, vesting.Geometry{PeriodsTotal: 16, PeriodsInCliff: 4, TrancheCount: 13}},
		{"no cliff", 10, 0, 3, vesting.Geometry{PeriodsTotal: 4, PeriodsInCliff: 0, TrancheCount: 5}},
		{"partial periods round up", 10, 4, 3, vesting.Geometry{PeriodsTotal: 4, PeriodsInCliff: 2, TrancheCount: 3}},
		{"cliff equals horizon", 12, 12, 12, vesting.Geometry{PeriodsTotal: 1, PeriodsInCliff: 1, TrancheCount: 1}},
		{"period longer than horizon", 6, 0, 12, vesting.Geometry{PeriodsTotal: 1, PeriodsInCliff: 0, TrancheCount: 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := vesting.DeriveGeometry(tc.vesting, tc.cliff, tc.period)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveGeometry_Rejects(t *testing.T) {
	cases := []struct {
		name                   string
		vesting, cliff, period int
		field                  string
	}{
		{"zero period", 48, 12, 0, "period_months"},
		{"negative period", 48, 12, -1, "period_months"},
		{"zero vesting", 0, 0, 12, "vesting_months"},
		{"negative cliff", 48, -1, 12, "cliff_months"},
		{"cliff past horizon", 12, 13, 12, "cliff_months"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := vesting.DeriveGeometry(tc.vesting, tc.cliff, tc.period)
			require.ErrorIs(t, err, vesting.ErrInvalidInput)

			var inv *vesting.InvalidInputError
			require.True(t, errors.As(err, &inv))
			assert.Equal(t, tc.field, inv.Field)
		})
	}
}

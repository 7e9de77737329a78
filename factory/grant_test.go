/*
grant_test.go - Tests for JSON grant parsing

Tests for:
- Canonical and legacy field names
- Numeric and named rounding policies
- Default policy and ID generation
- Presets round-trip through the factory
*/
package factory

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/vesting-engine/vesting"
)

func fixedFactory() *GrantFactory {
	f := NewGrantFactory()
	f.newID = func() string { return "generated-id" }
	f.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestParseGrant_CanonicalFields(t *testing.T) {
	g, err := fixedFactory().ParseGrant(`{
		"id": "grant-1",
		"name": "Alice 2025",
		"holder": "alice",
		"total_shares": 100,
		"vesting_months": 36,
		"cliff_months": 12,
		"period_months": 12,
		"start_date": "2025-01-01",
		"rounding_policy": "front_loaded"
	}`)
	require.NoError(t, err)

	assert.Equal(t, vesting.GrantID("grant-1"), g.ID)
	assert.Equal(t, "Alice 2025", g.Name)
	assert.Equal(t, "alice", g.Holder)
	assert.Equal(t, vesting.Request{
		TotalShares:   100,
		VestingMonths: 36,
		CliffMonths:   12,
		PeriodMonths:  12,
		StartDate:     vesting.NewDate(2025, time.January, 1),
		Policy:        vesting.FrontLoaded,
	}, g.Request)
}

func TestParseGrant_LegacyFieldNames(t *testing.T) {
	// GIVEN: a body using the legacy calendar field names
	g, err := fixedFactory().ParseGrant(`{
		"total_acoes": 48,
		"vesting": 48,
		"cliff": 12,
		"periodicidade": 12,
		"data_inicio_vesting": "2025-01-01",
		"arredondamento": 1
	}`)
	require.NoError(t, err)

	// THEN: they map onto the canonical request, and ID/name are generated
	assert.Equal(t, vesting.GrantID("generated-id"), g.ID)
	assert.Equal(t, "48 shares from 2025-01-01", g.Name)
	assert.Equal(t, int64(48), g.Request.TotalShares)
	assert.Equal(t, 48, g.Request.VestingMonths)
	assert.Equal(t, 12, g.Request.CliffMonths)
	assert.Equal(t, 12, g.Request.PeriodMonths)
	assert.Equal(t, vesting.CumulativeRounding, g.Request.Policy)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), g.CreatedAt)
}

func TestParseGrant_CanonicalWinsOverLegacy(t *testing.T) {
	var gj GrantJSON
	require.NoError(t, json.Unmarshal([]byte(`{"total_shares": 10, "total_acoes": 99, "rounding_policy": 2, "arredondamento": 3}`), &gj))
	assert.Equal(t, int64(10), gj.TotalShares)
	assert.Equal(t, PolicyRef("2"), gj.RoundingPolicy)
}

func TestPolicyRef_Forms(t *testing.T) {
	cases := map[string]vesting.RoundingPolicy{
		`3`:                            vesting.FrontLoaded,
		`"3"`:                          vesting.FrontLoaded,
		`"back_loaded_single_tranche"`: vesting.BackLoadedSingle,
		`7`:                            vesting.Fractional,
	}
	for raw, want := range cases {
		var ref PolicyRef
		require.NoError(t, json.Unmarshal([]byte(raw), &ref), raw)

		got, err := fixedFactory().parsePolicy(ref)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	var ref PolicyRef
	assert.Error(t, json.Unmarshal([]byte(`true`), &ref))
}

func TestToRequest_RejectsInvalid(t *testing.T) {
	base := GrantJSON{
		TotalShares:    100,
		VestingMonths:  36,
		CliffMonths:    12,
		PeriodMonths:   12,
		StartDate:      "2025-01-01",
		RoundingPolicy: "3",
	}
	f := fixedFactory()

	cases := map[string]func(*GrantJSON){
		"policy out of range": func(g *GrantJSON) { g.RoundingPolicy = "8" },
		"unknown policy name": func(g *GrantJSON) { g.RoundingPolicy = "round_half_even" },
		"missing policy":      func(g *GrantJSON) { g.RoundingPolicy = "" },
		"bad date":            func(g *GrantJSON) { g.StartDate = "01/01/2025" },
		"zero period":         func(g *GrantJSON) { g.PeriodMonths = 0 },
		"cliff past vesting":  func(g *GrantJSON) { g.CliffMonths = 48 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gj := base
			mutate(&gj)
			_, err := f.ToRequest(gj)
			assert.ErrorIs(t, err, vesting.ErrInvalidInput)
		})
	}
}

func TestToRequest_DefaultPolicy(t *testing.T) {
	f := fixedFactory()
	f.DefaultPolicy = vesting.BackLoaded

	req, err := f.ToRequest(GrantJSON{
		TotalShares:   100,
		VestingMonths: 36,
		PeriodMonths:  12,
		StartDate:     "2025-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, vesting.BackLoaded, req.Policy)
}

func TestParseGrant_MalformedJSON(t *testing.T) {
	_, err := fixedFactory().ParseGrant(`{"total_shares": "many"}`)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, vesting.ErrInvalidInput)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := fixedFactory()
	g, err := f.ParseGrant(StandardFourYearJSON("std", "bob", 4800, "2025-01-31"))
	require.NoError(t, err)

	gj := f.ToJSON(*g)
	assert.Equal(t, "std", gj.ID)
	assert.Equal(t, "2025-01-31", gj.StartDate)
	assert.Equal(t, PolicyRef("cumulative_rounding"), gj.RoundingPolicy)

	again, err := f.FromJSON(gj)
	require.NoError(t, err)
	assert.Equal(t, g.Request, again.Request)
}

func TestPresets_Compute(t *testing.T) {
	f := fixedFactory()

	std, err := f.ParseGrant(StandardFourYearJSON("std", "bob", 4800, "2025-01-01"))
	require.NoError(t, err)
	s, err := std.Schedule()
	require.NoError(t, err)
	assert.Len(t, s.Tranches, 37)

	q, err := f.ParseGrant(QuarterlyJSON("q", "bob", 1000, 24, "2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "24-month quarterly", q.Name)
	s, err = q.Schedule()
	require.NoError(t, err)

	// 8 quarters, no cliff: an empty lump sum then 125 per quarter
	require.Len(t, s.Tranches, 9)
	assert.True(t, s.Tranches[0].Shares.IsZero())
	assert.Equal(t, "125", s.Tranches[1].Shares.String())
}

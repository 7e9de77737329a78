/*
Package factory provides JSON to Go grant conversion.

PURPOSE:
  Converts JSON grant definitions into vesting.Request and vesting.Grant
  values. The same JSON shape is accepted by the HTTP API, the CLI and
  stored fixtures, so validation lives in one place.

JSON SCHEMA:
  {
    "id": "grant-alice-2025",
    "name": "Alice 2025 option grant",
    "holder": "alice",
    "total_shares": 4800,
    "vesting_months": 48,
    "cliff_months": 12,
    "period_months": 1,
    "start_date": "2025-01-01",
    "rounding_policy": "cumulative_rounding"
  }

  rounding_policy accepts the numeric identifier (1-7) or the wire name.
  The field names of the legacy /calendario_vesting endpoint are accepted
  as aliases: total_acoes, vesting, cliff, periodicidade,
  data_inicio_vesting, arredondamento.

USAGE:
  f := factory.NewGrantFactory()
  grant, err := f.ParseGrant(jsonString)
  schedule, err := grant.Schedule()

SEE ALSO:
  - vesting/types.go: Request and RoundingPolicy
  - api/dto.go: Embeds GrantJSON in request bodies
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/warp/vesting-engine/vesting"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// GrantJSON is the JSON representation of a grant.
type GrantJSON struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name,omitempty"`
	Holder         string    `json:"holder,omitempty"`
	TotalShares    int64     `json:"total_shares"`
	VestingMonths  int       `json:"vesting_months"`
	CliffMonths    int       `json:"cliff_months"`
	PeriodMonths   int       `json:"period_months"`
	StartDate      string    `json:"start_date"`
	RoundingPolicy PolicyRef `json:"rounding_policy"`
}

// legacyGrantJSON carries the field names of the legacy calendar endpoint.
type legacyGrantJSON struct {
	TotalAcoes        *int64    `json:"total_acoes"`
	Vesting           *int      `json:"vesting"`
	Cliff             *int      `json:"cliff"`
	Periodicidade     *int      `json:"periodicidade"`
	DataInicioVesting *string   `json:"data_inicio_vesting"`
	Arredondamento    PolicyRef `json:"arredondamento"`
}

// UnmarshalJSON decodes the canonical fields and fills gaps from the legacy aliases.
func (g *GrantJSON) UnmarshalJSON(data []byte) error {
	type plain GrantJSON
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var legacy legacyGrantJSON
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}

	if p.TotalShares == 0 && legacy.TotalAcoes != nil {
		p.TotalShares = *legacy.TotalAcoes
	}
	if p.VestingMonths == 0 && legacy.Vesting != nil {
		p.VestingMonths = *legacy.Vesting
	}
	if p.CliffMonths == 0 && legacy.Cliff != nil {
		p.CliffMonths = *legacy.Cliff
	}
	if p.PeriodMonths == 0 && legacy.Periodicidade != nil {
		p.PeriodMonths = *legacy.Periodicidade
	}
	if p.StartDate == "" && legacy.DataInicioVesting != nil {
		p.StartDate = *legacy.DataInicioVesting
	}
	if p.RoundingPolicy == "" {
		p.RoundingPolicy = legacy.Arredondamento
	}

	*g = GrantJSON(p)
	return nil
}

// PolicyRef is a rounding policy as written in JSON: 3, "3" or "front_loaded".
type PolicyRef string

func (r *PolicyRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = PolicyRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("rounding_policy must be a number or a name: %w", err)
	}
	*r = PolicyRef(n.String())
	return nil
}

// PolicyRefOf returns the wire name of p.
func PolicyRefOf(p vesting.RoundingPolicy) PolicyRef {
	return PolicyRef(p.String())
}

// =============================================================================
// GRANT FACTORY
// =============================================================================

// GrantFactory converts JSON grants to Go structs.
type GrantFactory struct {
	// DefaultPolicy is used when the JSON omits rounding_policy.
	// Zero means the policy is required.
	DefaultPolicy vesting.RoundingPolicy

	newID func() string
	now   func() time.Time
}

// NewGrantFactory creates a new grant factory.
func NewGrantFactory() *GrantFactory {
	return &GrantFactory{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// ParseGrant parses a JSON string into a Grant.
func (f *GrantFactory) ParseGrant(jsonStr string) (*vesting.Grant, error) {
	var gj GrantJSON
	if err := json.Unmarshal([]byte(jsonStr), &gj); err != nil {
		return nil, fmt.Errorf("failed to parse grant JSON: %w", err)
	}
	return f.FromJSON(gj)
}

// ToRequest converts the schedule fields of gj into a validated Request.
func (f *GrantFactory) ToRequest(gj GrantJSON) (vesting.Request, error) {
	policy, err := f.parsePolicy(gj.RoundingPolicy)
	if err != nil {
		return vesting.Request{}, err
	}

	start, err := vesting.ParseDate(gj.StartDate)
	if err != nil {
		return vesting.Request{}, err
	}

	req := vesting.Request{
		TotalShares:   gj.TotalShares,
		VestingMonths: gj.VestingMonths,
		CliffMonths:   gj.CliffMonths,
		PeriodMonths:  gj.PeriodMonths,
		StartDate:     start,
		Policy:        policy,
	}
	if err := req.Validate(); err != nil {
		return vesting.Request{}, err
	}
	return req, nil
}

// FromJSON converts GrantJSON to a Grant, generating an ID when absent.
func (f *GrantFactory) FromJSON(gj GrantJSON) (*vesting.Grant, error) {
	req, err := f.ToRequest(gj)
	if err != nil {
		return nil, err
	}

	id := gj.ID
	if id == "" {
		id = f.newID()
	}
	name := gj.Name
	if name == "" {
		name = fmt.Sprintf("%d shares from %s", req.TotalShares, req.StartDate)
	}

	return &vesting.Grant{
		ID:        vesting.GrantID(id),
		Name:      name,
		Holder:    gj.Holder,
		Request:   req,
		CreatedAt: f.now().UTC(),
	}, nil
}

// ToJSON converts a Grant to GrantJSON.
func (f *GrantFactory) ToJSON(g vesting.Grant) GrantJSON {
	return GrantJSON{
		ID:             string(g.ID),
		Name:           g.Name,
		Holder:         g.Holder,
		TotalShares:    g.Request.TotalShares,
		VestingMonths:  g.Request.VestingMonths,
		CliffMonths:    g.Request.CliffMonths,
		PeriodMonths:   g.Request.PeriodMonths,
		StartDate:      g.Request.StartDate.String(),
		RoundingPolicy: PolicyRefOf(g.Request.Policy),
	}
}

func (f *GrantFactory) parsePolicy(ref PolicyRef) (vesting.RoundingPolicy, error) {
	if ref == "" {
		if f.DefaultPolicy.Valid() {
			return f.DefaultPolicy, nil
		}
		return 0, &vesting.InvalidInputError{Field: "rounding_policy", Reason: "is required"}
	}
	return vesting.ParseRoundingPolicy(string(ref))
}

// =============================================================================
// PRESET GRANTS
// =============================================================================

// StandardFourYearJSON is the common 4-year monthly schedule with a 1-year cliff.
func StandardFourYearJSON(id, holder string, shares int64, start string) string {
	return presetJSON(GrantJSON{
		ID:             id,
		Name:           "4-year monthly, 1-year cliff",
		Holder:         holder,
		TotalShares:    shares,
		VestingMonths:  48,
		CliffMonths:    12,
		PeriodMonths:   1,
		StartDate:      start,
		RoundingPolicy: PolicyRefOf(vesting.CumulativeRounding),
	})
}

// QuarterlyJSON vests quarterly over the given horizon with no cliff.
func QuarterlyJSON(id, holder string, shares int64, vestingMonths int, start string) string {
	return presetJSON(GrantJSON{
		ID:             id,
		Name:           strconv.Itoa(vestingMonths) + "-month quarterly",
		Holder:         holder,
		TotalShares:    shares,
		VestingMonths:  vestingMonths,
		PeriodMonths:   3,
		StartDate:      start,
		RoundingPolicy: PolicyRefOf(vesting.FrontLoaded),
	})
}

func presetJSON(gj GrantJSON) string {
	b, err := json.Marshal(gj)
	if err != nil {
		panic(err) // plain struct, cannot fail
	}
	return string(b)
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SHARE VALUES:
  Share counts are emitted as JSON numbers built from the decimal string
  (json.Number), never through float64, so 33.3333 stays 33.3333.

TYPES:
  Schedules:
    factory.GrantJSON (request body), ScheduleDTO, TrancheDTO, GeometryDTO

  Grants:
    CreateGrantRequest, GrantDTO, VestedDTO

  Policies:
    RoundingPolicyDTO

SEE ALSO:
  - handlers.go: Uses these types
  - factory/grant.go: GrantJSON type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/vesting"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ScheduleDTO is a computed schedule.
type ScheduleDTO struct {
	Policy      string            `json:"policy"`
	PolicyID    int               `json:"policy_id"`
	TotalShares json.Number       `json:"total_shares"`
	Geometry    GeometryDTO       `json:"geometry"`
	Tranches    []TrancheDTO      `json:"tranches"`
	Schedule    *vesting.Schedule `json:"schedule"` // ordered {date: shares}
}

// GeometryDTO describes how the horizon was divided.
type GeometryDTO struct {
	PeriodsTotal   int `json:"periods_total"`
	PeriodsInCliff int `json:"periods_in_cliff"`
	TrancheCount   int `json:"tranche_count"`
}

// TrancheDTO is one disbursement.
type TrancheDTO struct {
	Date   string      `json:"date"`
	Shares json.Number `json:"shares"`
	Cliff  bool        `json:"cliff,omitempty"`
}

// CreateGrantRequest is the request to store a grant.
type CreateGrantRequest struct {
	Config factory.GrantJSON `json:"config"`
}

// GrantDTO represents a stored grant.
type GrantDTO struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Holder    string            `json:"holder,omitempty"`
	Config    factory.GrantJSON `json:"config"`
	CreatedAt string            `json:"created_at,omitempty"`
}

// VestedDTO is a grant's position on a given date.
type VestedDTO struct {
	GrantID  string      `json:"grant_id"`
	AsOf     string      `json:"as_of"`
	Vested   json.Number `json:"vested"`
	Unvested json.Number `json:"unvested"`
	Total    json.Number `json:"total"`
}

// RoundingPolicyDTO describes one rounding policy.
type RoundingPolicyDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toScheduleDTO(s *vesting.Schedule) ScheduleDTO {
	tranches := make([]TrancheDTO, len(s.Tranches))
	for i, t := range s.Tranches {
		tranches[i] = TrancheDTO{
			Date:   t.Date.String(),
			Shares: json.Number(t.Shares.String()),
			Cliff:  t.Cliff,
		}
	}
	return ScheduleDTO{
		Policy:      s.Request.Policy.String(),
		PolicyID:    int(s.Request.Policy),
		TotalShares: json.Number(s.Total().String()),
		Geometry: GeometryDTO{
			PeriodsTotal:   s.Geometry.PeriodsTotal,
			PeriodsInCliff: s.Geometry.PeriodsInCliff,
			TrancheCount:   s.Geometry.TrancheCount,
		},
		Tranches: tranches,
		Schedule: s,
	}
}

func toGrantDTO(f *factory.GrantFactory, g vesting.Grant) GrantDTO {
	dto := GrantDTO{
		ID:     string(g.ID),
		Name:   g.Name,
		Holder: g.Holder,
		Config: f.ToJSON(g),
	}
	if !g.CreatedAt.IsZero() {
		dto.CreatedAt = g.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toVestedDTO(id vesting.GrantID, asOf vesting.Date, s *vesting.Schedule) VestedDTO {
	total := s.Total()
	vested := s.VestedAsOf(asOf)
	return VestedDTO{
		GrantID:  string(id),
		AsOf:     asOf.String(),
		Vested:   json.Number(vested.String()),
		Unvested: json.Number(total.Sub(vested).String()),
		Total:    json.Number(total.String()),
	}
}

func toRoundingPolicyDTO(info vesting.PolicyInfo) RoundingPolicyDTO {
	return RoundingPolicyDTO{
		ID:          int(info.Policy),
		Name:        info.Name,
		Title:       info.Title,
		Description: info.Description,
		Example:     info.Example,
	}
}

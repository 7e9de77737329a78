/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the grant store with sample
	grants for demos. Each scenario is a list of JSON grant definitions
	that go through the same factory as POST /api/grants.

AVAILABLE SCENARIOS:

	four-year-standard:  4800 shares, monthly, 1-year cliff, two holders
	rounding-showcase:   100 shares over 3 annual tranches, once per policy
	quarterly-no-cliff:  Quarterly vesting with an empty leading tranche

HOW SCENARIOS WORK:
 1. Reset the store (clear all grants)
 2. Build each grant via the factory
 3. Check it computes, then save it

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "rounding-showcase"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - factory/grant.go: Preset grant JSON
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/vesting"
)

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Grants      int    `json:"grants"`
}

type scenario struct {
	ScenarioDTO
	grants func() []string
}

// resetter is implemented by stores that can be cleared.
type resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const demoStart = "2025-01-01"

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "four-year-standard",
			Name:        "Four-Year Standard",
			Description: "4800 shares vesting monthly over 4 years with a 1-year cliff",
		},
		grants: func() []string {
			return []string{
				factory.StandardFourYearJSON("alice-2025", "alice", 4800, demoStart),
				factory.StandardFourYearJSON("bob-2025", "bob", 4801, "2025-01-31"),
			}
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "rounding-showcase",
			Name:        "Rounding Showcase",
			Description: "100 shares over 3 annual tranches under each of the seven rounding policies",
		},
		grants: func() []string {
			var out []string
			for _, p := range vesting.Policies() {
				out = append(out, grantJSON(factory.GrantJSON{
					ID:             "showcase-" + p.Name,
					Name:           p.Title,
					Holder:         "showcase",
					TotalShares:    100,
					VestingMonths:  36,
					CliffMonths:    12,
					PeriodMonths:   12,
					StartDate:      demoStart,
					RoundingPolicy: factory.PolicyRefOf(p.Policy),
				}))
			}
			return out
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "quarterly-no-cliff",
			Name:        "Quarterly, No Cliff",
			Description: "Quarterly vesting over 2 years; the cliff tranche is empty",
		},
		grants: func() []string {
			return []string{
				factory.QuarterlyJSON("carol-2025", "carol", 1000, 24, demoStart),
				factory.QuarterlyJSON("dave-2025", "dave", 999, 24, demoStart),
			}
		},
	},
}

func init() {
	for i := range scenarios {
		scenarios[i].Grants = len(scenarios[i].grants())
	}
}

func grantJSON(gj factory.GrantJSON) string {
	b, _ := json.Marshal(gj)
	return string(b)
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	s, _ := findScenario(current)
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "Unknown scenario",
			Code:    "not_found",
			Details: req.ScenarioID,
		})
		return
	}

	rs, ok := h.Store.(resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store cannot be reset", nil)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	if err := rs.Reset(ctx); err != nil {
		h.writeDomainError(w, r, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	for _, raw := range s.grants() {
		if err := h.loadGrant(ctx, raw); err != nil {
			h.writeDomainError(w, r, fmt.Sprintf("Failed to load scenario %s", s.ID), err)
			return
		}
	}
	h.currentScenario = s.ID

	if err := h.SyncGrantCount(ctx); err != nil {
		h.Logger.Warn("failed to count stored grants", zap.Error(err))
	}
	h.Logger.Info("scenario loaded",
		zap.String("request_id", requestID(ctx)),
		zap.String("scenario", s.ID),
		zap.Int("grants", s.Grants),
	)
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

func (h *Handler) loadGrant(ctx context.Context, raw string) error {
	grant, err := h.GrantFactory.ParseGrant(raw)
	if err != nil {
		return err
	}
	if _, err := h.compute(ctx, grant.Request); err != nil {
		return err
	}
	return h.Store.SaveGrant(ctx, *grant)
}

/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Swaps a prebuilt workshop into the engine so the API has data to show.
  Scenario contents live in the factory package; this file only exposes
  them over HTTP.

USAGE VIA API:
	GET  /api/scenarios
	GET  /api/scenarios/current
	POST /api/scenarios/load   {"scenario_id": "bracket-shop"}
	POST /api/scenarios/reset

NOTE:
  Loading a scenario replaces everything in memory. The autosaver then
  persists it like any other change.

SEE ALSO:
  - factory/scenarios.go: Scenario builders
  - engine/engine.go: Replace
*/
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/workshop-engine/factory"
	"github.com/warp/workshop-engine/workshop"
)

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	out := make([]ScenarioDTO, 0, len(factory.Scenarios))
	for _, s := range factory.Scenarios {
		out = append(out, ScenarioDTO{Scenario: s, Current: s.ID == current})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCurrentScenario returns the loaded scenario, or null once the data
// has been reset or restored from elsewhere.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	for _, s := range factory.Scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, ScenarioDTO{Scenario: s, Current: true})
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces the workshop with a prebuilt scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	st, err := factory.Build(req.ScenarioID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Engine.Replace(r.Context(), st); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setScenario(req.ScenarioID)
	h.log.Info("scenario loaded", zap.String("scenario", req.ScenarioID))

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// ResetWorkshop clears all data, on disk as well when a store is attached.
// Backups survive.
func (h *Handler) ResetWorkshop(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Replace(r.Context(), workshop.State{}); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.Backups != nil {
		if err := h.Backups.Reset(r.Context()); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	h.setScenario("")
	h.log.Info("workshop reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) scenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/Veraticus/carbon-footprint/internal/emissions"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/tips"
)

// TipsHandler serves tips and emission breakdowns for a journey.
type TipsHandler struct {
	advisor TipsProvider
}

// NewTipsHandler creates a tips handler.
func NewTipsHandler(advisor TipsProvider) *TipsHandler {
	return &TipsHandler{advisor: advisor}
}

// Tailored returns {tips: [...]}, at most tips.MaxTips entries.
func (h *TipsHandler) Tailored(w http.ResponseWriter, r *http.Request) {
	snapshot, err := decodeSnapshot(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid journey", err)
		return
	}

	advice := h.advisor.Advise(snapshot)
	if len(advice) > tips.MaxTips {
		advice = advice[:tips.MaxTips]
	}
	writeJSON(w, http.StatusOK, tips.Response{Tips: advice})
}

// EmissionsResponse is the breakdown returned by Emissions.
type EmissionsResponse struct {
	ModeEmissions     map[model.TransportMode]float64 `json:"modeEmissions"`
	Bars              map[model.TransportMode]float64 `json:"bars"`
	Tier              string                          `json:"tier"`
	TierLabel         string                          `json:"tierLabel"`
	TierColor         string                          `json:"tierColor"`
	TotalDistance     float64                         `json:"totalDistance"`
	TotalEmission     float64                         `json:"totalEmission"`
	TotalSaved        float64                         `json:"totalSaved"`
	ZeroEmissionShare float64                         `json:"zeroEmissionShare"`
	RingFraction      float64                         `json:"ringFraction"`
	Score             int                             `json:"score"`
}

// Emissions computes the breakdown for the posted distances. Totals in the
// request body are ignored and recomputed.
func (h *TipsHandler) Emissions(w http.ResponseWriter, r *http.Request) {
	snapshot, err := decodeSnapshot(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid journey", err)
		return
	}

	state := emissions.ComputeSnapshot(snapshot)
	tier := emissions.TierFor(state.ZeroEmissionShare)
	writeJSON(w, http.StatusOK, EmissionsResponse{
		ModeEmissions:     state.ModeEmissions,
		Bars:              emissions.BarHeights(state),
		Tier:              tier.Name(),
		TierLabel:         tier.Label(),
		TierColor:         tier.Color(),
		TotalDistance:     state.TotalDistance,
		TotalEmission:     state.TotalEmission,
		TotalSaved:        state.TotalSaved,
		ZeroEmissionShare: state.ZeroEmissionShare,
		RingFraction:      emissions.RingFraction(state.TotalDistance),
		Score:             emissions.Score(state),
	})
}

func decodeSnapshot(w http.ResponseWriter, r *http.Request) (model.Snapshot, error) {
	var snapshot model.Snapshot
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&snapshot); err != nil {
		return model.Snapshot{}, fmt.Errorf("malformed JSON: %w", err)
	}
	for _, mode := range model.AllModes() {
		d := snapshot.Distance(mode)
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return model.Snapshot{}, fmt.Errorf("%s distance must be a non-negative number", mode)
		}
	}
	return snapshot, nil
}

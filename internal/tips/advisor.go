package tips

import (
	"context"
	"fmt"
	"sort"

	"github.com/Veraticus/carbon-footprint/internal/emissions"
	"github.com/Veraticus/carbon-footprint/internal/model"
)

// rule produces a tip and the kg CO2 it could save when it applies.
type rule struct {
	apply func(s model.Snapshot, st emissions.State) (string, float64, bool)
	name  string
}

// Advisor generates tips from a snapshot. It backs the tips endpoint served
// by the API.
type Advisor struct {
	rules []rule
}

// NewAdvisor returns an advisor with the built-in rule set.
func NewAdvisor() *Advisor {
	return &Advisor{rules: defaultRules()}
}

// Advise returns tips ordered by potential savings, largest first. An empty
// journey yields no tips.
func (a *Advisor) Advise(s model.Snapshot) []string {
	state := emissions.ComputeSnapshot(s)
	if state.TotalDistance == 0 {
		return []string{}
	}

	type scored struct {
		text   string
		saving float64
		order  int
	}
	var matches []scored
	for i, r := range a.rules {
		text, saving, ok := r.apply(s, state)
		if !ok {
			continue
		}
		matches = append(matches, scored{text: text, saving: saving, order: i})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].saving != matches[j].saving {
			return matches[i].saving > matches[j].saving
		}
		return matches[i].order < matches[j].order
	})

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.text)
	}
	return out
}

// RequestTailoredTips advises locally and shapes the result the same way a
// tips service response is shaped, so the advisor can stand in for a
// Requester when no API is running.
func (a *Advisor) RequestTailoredTips(_ context.Context, s model.Snapshot) Outcome {
	return outcomeFor(a.Advise(s))
}

func defaultRules() []rule {
	return []rule{
		{
			name: "short car trips",
			apply: func(s model.Snapshot, _ emissions.State) (string, float64, bool) {
				if s.Car <= 0 || s.Car > 5 {
					return "", 0, false
				}
				saving := s.Car * model.CarFactor
				return fmt.Sprintf("Your %.0f km by car is short enough to walk or cycle, saving %.2f kg CO2.", s.Car, saving), saving, true
			},
		},
		{
			name: "car to bus",
			apply: func(s model.Snapshot, _ emissions.State) (string, float64, bool) {
				if s.Car <= 5 {
					return "", 0, false
				}
				saving := s.Car * (model.CarFactor - model.BusFactor)
				return fmt.Sprintf("Taking the bus instead of driving %.0f km would save %.2f kg CO2.", s.Car, saving), saving, true
			},
		},
		{
			name: "car sharing",
			apply: func(s model.Snapshot, _ emissions.State) (string, float64, bool) {
				if s.Car < 20 {
					return "", 0, false
				}
				saving := s.Car * model.CarFactor / 2
				return fmt.Sprintf("Sharing your car journeys with one other person halves their footprint, about %.2f kg CO2.", saving), saving, true
			},
		},
		{
			name: "motorbike to bicycle",
			apply: func(s model.Snapshot, _ emissions.State) (string, float64, bool) {
				if s.Bike <= 0 || s.Bike > 15 {
					return "", 0, false
				}
				saving := s.Bike * model.BikeFactor
				return fmt.Sprintf("Swapping %.0f km of motorbike riding for a bicycle saves %.2f kg CO2.", s.Bike, saving), saving, true
			},
		},
		{
			name: "bus to bicycle",
			apply: func(s model.Snapshot, _ emissions.State) (string, float64, bool) {
				if s.Bus <= 0 || s.Bus > 10 {
					return "", 0, false
				}
				saving := s.Bus * model.BusFactor
				return fmt.Sprintf("Short bus hops of %.0f km are ideal by bicycle, saving %.2f kg CO2.", s.Bus, saving), saving, true
			},
		},
		{
			name: "low zero-emission share",
			apply: func(_ model.Snapshot, st emissions.State) (string, float64, bool) {
				if emissions.TierFor(st.ZeroEmissionShare) != emissions.TierNeedsImprovement {
					return "", 0, false
				}
				return fmt.Sprintf("Only %.0f%% of your travel is emission-free. Aim for a quarter by walking one short trip a day.", st.ZeroEmissionShare*100), 0, true
			},
		},
		{
			name: "keep it up",
			apply: func(_ model.Snapshot, st emissions.State) (string, float64, bool) {
				if emissions.TierFor(st.ZeroEmissionShare) != emissions.TierOutstanding {
					return "", 0, false
				}
				return fmt.Sprintf("Great work! You already avoided %.2f kg CO2 compared to driving.", st.TotalSaved), 0, true
			},
		},
	}
}

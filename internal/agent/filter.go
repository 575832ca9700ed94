package agent

import (
	"sort"
	"time"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

// defaultTypeWeights ranks signal kinds by how strongly they argue for
// re-engagement. Traction beats everything; risk barely registers.
var defaultTypeWeights = map[model.SignalType]float64{
	model.SignalTraction:        1.0,
	model.SignalFunding:         0.9,
	model.SignalNeed:            0.85,
	model.SignalProductLaunch:   0.8,
	model.SignalPartnership:     0.75,
	model.SignalHiring:          0.7,
	model.SignalExecutiveChange: 0.6,
	model.SignalRisk:            0.3,
}

// unknownTypeWeight applies to kinds with no entry in the weight table.
const unknownTypeWeight = 0.5

const (
	scoreWeightBase    = 0.7
	scoreWeightRecency = 0.3
	recencyWindowDays  = 30
)

// SignalFilter filters signals by actionability and ranks them by a
// composite of type weight, confidence, and recency.
type SignalFilter struct {
	weights map[model.SignalType]float64
	clock   Clock
}

// NewSignalFilter creates a SignalFilter. Nil weights fall back to the
// built-in table; a nil clock falls back to the system clock.
func NewSignalFilter(weights map[model.SignalType]float64, clock Clock) *SignalFilter {
	if weights == nil {
		weights = defaultTypeWeights
	}
	if clock == nil {
		clock = systemClock
	}
	return &SignalFilter{weights: weights, clock: clock}
}

// FilterActionable returns the subset of signals clearing the confidence
// threshold, excluding risk signals. Input order is preserved.
func (f *SignalFilter) FilterActionable(signals []model.Signal, threshold float64) []model.Signal {
	var actionable []model.Signal
	for _, s := range signals {
		if s.IsActionable(threshold) {
			actionable = append(actionable, s)
		}
	}
	return actionable
}

// Prioritize returns a copy of signals sorted descending by composite score.
// The sort is stable: signals with equal scores keep their relative order.
func (f *SignalFilter) Prioritize(signals []model.Signal) []model.Signal {
	now := f.clock()
	out := make([]model.Signal, len(signals))
	copy(out, signals)
	sort.SliceStable(out, func(i, j int) bool {
		return f.score(out[i], now) > f.score(out[j], now)
	})
	return out
}

// score blends confidence and type weight (70%) with recency (30%).
// Recency decays linearly to zero at 30 days; older signals get no
// negative bonus beyond that.
func (f *SignalFilter) score(s model.Signal, now time.Time) float64 {
	weight, ok := f.weights[s.Type]
	if !ok {
		weight = unknownTypeWeight
	}
	daysOld := int(now.Sub(s.DetectedAt).Hours() / 24)
	recency := 1 - float64(daysOld)/recencyWindowDays
	if recency < 0 {
		recency = 0
	}
	return s.Confidence*weight*scoreWeightBase + recency*scoreWeightRecency
}

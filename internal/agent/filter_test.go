package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sago-ventures/reengage-cli/internal/model"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testSignal(typ model.SignalType, confidence float64, age time.Duration) model.Signal {
	s := model.NewSignal("c1", typ, model.SourceManual, string(typ)+" signal", "desc", "evidence", confidence)
	s.DetectedAt = testNow.Add(-age)
	return s
}

func TestFilterActionable(t *testing.T) {
	t.Parallel()

	f := NewSignalFilter(nil, fixedClock)
	signals := []model.Signal{
		testSignal(model.SignalTraction, 0.8, time.Hour),
		testSignal(model.SignalHiring, 0.4, time.Hour),
		testSignal(model.SignalRisk, 0.9, time.Hour),
		testSignal(model.SignalFunding, 0.6, time.Hour),
	}

	result := f.FilterActionable(signals, 0.6)

	require.Len(t, result, 2)
	assert.Equal(t, model.SignalTraction, result[0].Type)
	assert.Equal(t, model.SignalFunding, result[1].Type, "input order preserved")
}

func TestFilterActionableNeverReturnsRisk(t *testing.T) {
	t.Parallel()

	f := NewSignalFilter(nil, fixedClock)
	signals := []model.Signal{
		testSignal(model.SignalRisk, 0.99, time.Hour),
		testSignal(model.SignalRisk, 1.0, time.Hour),
	}

	assert.Empty(t, f.FilterActionable(signals, 0))
}

func TestPrioritizeTypeWeightDominates(t *testing.T) {
	t.Parallel()

	// Equally fresh: traction at 0.8 confidence must outrank hiring at 0.9.
	f := NewSignalFilter(nil, fixedClock)
	hiring := testSignal(model.SignalHiring, 0.9, time.Hour)
	traction := testSignal(model.SignalTraction, 0.8, time.Hour)

	result := f.Prioritize([]model.Signal{hiring, traction})

	require.Len(t, result, 2)
	assert.Equal(t, model.SignalTraction, result[0].Type)
	assert.Equal(t, model.SignalHiring, result[1].Type)
}

func TestPrioritizeRecencyNudgesFresherAhead(t *testing.T) {
	t.Parallel()

	f := NewSignalFilter(nil, fixedClock)
	stale := testSignal(model.SignalFunding, 0.8, 40*24*time.Hour)
	fresh := testSignal(model.SignalFunding, 0.8, time.Hour)

	result := f.Prioritize([]model.Signal{stale, fresh})

	require.Len(t, result, 2)
	assert.Equal(t, fresh.ID, result[0].ID)
}

func TestPrioritizeIsStable(t *testing.T) {
	t.Parallel()

	f := NewSignalFilter(nil, fixedClock)
	first := testSignal(model.SignalTraction, 0.8, time.Hour)
	second := testSignal(model.SignalTraction, 0.8, time.Hour)
	third := testSignal(model.SignalTraction, 0.8, time.Hour)

	result := f.Prioritize([]model.Signal{first, second, third})

	require.Len(t, result, 3)
	assert.Equal(t, first.ID, result[0].ID)
	assert.Equal(t, second.ID, result[1].ID)
	assert.Equal(t, third.ID, result[2].ID)
}

func TestPrioritizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	f := NewSignalFilter(nil, fixedClock)
	low := testSignal(model.SignalHiring, 0.5, time.Hour)
	high := testSignal(model.SignalTraction, 0.9, time.Hour)
	input := []model.Signal{low, high}

	_ = f.Prioritize(input)

	assert.Equal(t, low.ID, input[0].ID)
	assert.Equal(t, high.ID, input[1].ID)
}

func TestScoreUnknownTypeDefaultsToHalfWeight(t *testing.T) {
	t.Parallel()

	f := NewSignalFilter(nil, fixedClock)
	s := testSignal(model.SignalType("rumor"), 1.0, time.Hour)

	// confidence 1.0 × weight 0.5 × 0.7 + recency 1.0 × 0.3
	assert.InDelta(t, 0.65, f.score(s, testNow), 1e-9)
}

func TestScoreRecencyFloorsAtZero(t *testing.T) {
	t.Parallel()

	f := NewSignalFilter(nil, fixedClock)
	s := testSignal(model.SignalTraction, 1.0, 365*24*time.Hour)

	// A year old: recency contributes nothing, no negative bonus.
	assert.InDelta(t, 0.7, f.score(s, testNow), 1e-9)
}

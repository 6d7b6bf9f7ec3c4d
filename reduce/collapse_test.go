package reduce

import (
	"testing"

	"github.com/jsphweid/chordreduce/pitch"
	"github.com/jsphweid/chordreduce/score"
	"github.com/jsphweid/chordreduce/util"
	"github.com/stretchr/testify/assert"
)

var (
	chordA = []uint8{60, 64, 67, 72} // C4 E4 G4 C5
	chordB = []uint8{60, 64, 65, 71} // C4 E4 F4 B4
)

// a 4/4 measure holding chord A for two beats, chord B for one, and
// chord A again for one
func testMeasure() score.Measure {
	return score.Measure{
		Number:      1,
		Start:       0,
		Stop:        4,
		Numerator:   4,
		Denominator: 4,
		Events: []score.Event{
			{Offset: 0, Duration: 2, Pitches: chordA},
			{Offset: 2, Duration: 1, Pitches: chordB},
			{Offset: 3, Duration: 1, Pitches: chordA},
		},
	}
}

func TestComputeMeasureWeightsDuration(t *testing.T) {
	weights, _ := ComputeMeasureWeights(testMeasure(), WeightDuration)
	assert := assert.New(t)
	assert.Equal(3.0, weights["0-4-7"])
	assert.Equal(1.0, weights["0-4-5-11"])
}

func TestComputeMeasureWeightsBeatStrength(t *testing.T) {
	weights, _ := ComputeMeasureWeights(testMeasure(), WeightDurationBeatStrength)
	assert := assert.New(t)
	assert.Equal(2.25, weights["0-4-7"])
	assert.Equal(0.5, weights["0-4-5-11"])
}

func TestComputeMeasureWeightsMeasurePosition(t *testing.T) {
	weights, _ := ComputeMeasureWeights(testMeasure(), WeightDurationBeatStrengthFinal)
	assert := assert.New(t)
	assert.Equal(3.0, weights["0-4-7"])
	assert.Equal(0.5, weights["0-4-5-11"])
}

func TestComputeMeasureWeightsConsonance(t *testing.T) {
	weights, _ := ComputeMeasureWeights(testMeasure(), WeightConsonance)
	assert := assert.New(t)
	assert.Equal(3.0, weights["0-4-7"])
	assert.InDelta(0.05, weights["0-4-5-11"], 1e-9)
}

func TestCollapseMeasureKeepsSingleChord(t *testing.T) {
	m := CollapseMeasure(testMeasure(), 3, WeightConsonance, 0.25)
	assert := assert.New(t)
	assert.Len(m.Events, 1)
	assert.Equal(chordA, m.Events[0].Pitches)
	assert.Equal(0.0, m.Events[0].Offset)
	assert.Equal(4.0, m.Events[0].Duration)
}

func TestCollapseMeasureChordCountBound(t *testing.T) {
	m := score.Measure{
		Number: 1, Start: 0, Stop: 4, Numerator: 4, Denominator: 4,
		Events: []score.Event{
			{Offset: 0, Duration: 1, Pitches: []uint8{60}},
			{Offset: 1, Duration: 1, Pitches: []uint8{62}},
			{Offset: 2, Duration: 1, Pitches: []uint8{64}},
			{Offset: 3, Duration: 0.5, Pitches: []uint8{65}},
			{Offset: 3.5, Duration: 0.5, Pitches: []uint8{67}},
		},
	}
	collapsed := CollapseMeasure(m, 3, WeightDuration, 0)

	distinct := make(map[string]bool)
	for _, ev := range collapsed.Events {
		if !ev.IsRest() {
			distinct[pitch.Classes(ev.Pitches).Key()] = true
		}
	}
	assert := assert.New(t)
	assert.LessOrEqual(len(distinct), 3)
	assert.GreaterOrEqual(len(collapsed.Events), 1)
}

func TestCollapseMeasureTrimMonotonicity(t *testing.T) {
	distinctKept := func(trim float64) int {
		collapsed := CollapseMeasure(testMeasure(), 3, WeightDuration, trim)
		distinct := make(map[string]bool)
		for _, ev := range collapsed.Events {
			if !ev.IsRest() {
				distinct[pitch.Classes(ev.Pitches).Key()] = true
			}
		}
		return len(distinct)
	}
	prev := distinctKept(0)
	for _, trim := range []float64{0.25, 0.5, 0.75, 1.0} {
		curr := distinctKept(trim)
		assert.LessOrEqual(t, curr, prev, "trim %v", trim)
		prev = curr
	}
}

func TestCollapseMeasureConservesDuration(t *testing.T) {
	strategies := map[string]WeightFunc{
		"duration":                     WeightDuration,
		"duration-beat-strength":       WeightDurationBeatStrength,
		"duration-beat-strength-final": WeightDurationBeatStrengthFinal,
		"consonance":                   WeightConsonance,
	}
	for name, weight := range strategies {
		t.Run(name, func(t *testing.T) {
			collapsed := CollapseMeasure(testMeasure(), 3, weight, 0.25)
			var durations []float64
			for _, ev := range collapsed.Events {
				durations = append(durations, ev.Duration)
			}
			assert.Equal(t, 4.0, util.Sum(durations))
		})
	}
}

func TestCollapseMeasureDegenerate(t *testing.T) {
	m := score.Measure{
		Number: 1, Start: 4, Stop: 8, Numerator: 4, Denominator: 4,
		Events: []score.Event{
			{Offset: 4, Duration: 4},
		},
	}
	collapsed := CollapseMeasure(m, 3, WeightConsonance, 0.25)
	assert := assert.New(t)
	assert.Len(collapsed.Events, 1)
	assert.True(collapsed.Events[0].IsRest())
	assert.Equal(4.0, collapsed.Events[0].Offset)
	assert.Equal(4.0, collapsed.Events[0].Duration)
}

func TestCollapseMeasureLeadingRestFolds(t *testing.T) {
	m := score.Measure{
		Number: 1, Start: 0, Stop: 4, Numerator: 4, Denominator: 4,
		Events: []score.Event{
			{Offset: 0, Duration: 1},
			{Offset: 1, Duration: 3, Pitches: []uint8{60, 64, 67}},
		},
	}
	collapsed := CollapseMeasure(m, 3, WeightDuration, 0.25)
	assert := assert.New(t)
	assert.Len(collapsed.Events, 1)
	assert.Equal(0.0, collapsed.Events[0].Offset)
	assert.Equal(4.0, collapsed.Events[0].Duration)
}

func TestCollapseMeasureEqualWeightTieBreak(t *testing.T) {
	m := score.Measure{
		Number: 1, Start: 0, Stop: 4, Numerator: 4, Denominator: 4,
		Events: []score.Event{
			{Offset: 0, Duration: 1, Pitches: []uint8{62}},
			{Offset: 1, Duration: 1, Pitches: []uint8{60}},
			{Offset: 2, Duration: 2},
		},
	}
	collapsed := CollapseMeasure(m, 1, WeightDuration, 0.25)
	assert := assert.New(t)
	assert.Len(collapsed.Events, 1)
	// equal weights: the natural sort order prefers pitch class 0
	assert.Equal([]uint8{60}, collapsed.Events[0].Pitches)
	assert.Equal(0.0, collapsed.Events[0].Offset)
	assert.Equal(4.0, collapsed.Events[0].Duration)
}

func TestCollapseMeasureRebarsSyncopations(t *testing.T) {
	m := score.Measure{
		Number: 1, Start: 0, Stop: 4, Numerator: 4, Denominator: 4,
		Events: []score.Event{
			{Offset: 0, Duration: 1.25, Pitches: []uint8{60}},
			{Offset: 1.25, Duration: 2.75, Pitches: []uint8{62}},
		},
	}
	collapsed := CollapseMeasure(m, 3, WeightDuration, 0)
	assert := assert.New(t)
	assert.Len(collapsed.Events, 2)
	assert.Equal(1.0, collapsed.Events[0].Duration)
	assert.Equal(1.0, collapsed.Events[1].Offset)
	assert.Equal(3.0, collapsed.Events[1].Duration)
}

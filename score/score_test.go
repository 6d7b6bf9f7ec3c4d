package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fourFour(number int, start float64, events ...Event) Measure {
	return Measure{
		Number:      number,
		Start:       start,
		Stop:        start + 4,
		Numerator:   4,
		Denominator: 4,
		Events:      events,
	}
}

func TestBeatStrengthQuadruple(t *testing.T) {
	span := MeasureSpan{Number: 1, Start: 0, Stop: 4, Numerator: 4, Denominator: 4}
	cases := map[float64]float64{
		0:    1.0,
		1:    0.25,
		2:    0.5,
		3:    0.25,
		0.5:  0.125,
		2.5:  0.125,
		0.25: 0.0625,
		1.75: 0.0625,
	}
	for offset, expected := range cases {
		assert.Equal(t, expected, BeatStrength(span, offset), "offset %v", offset)
	}
}

func TestBeatStrengthTriple(t *testing.T) {
	span := MeasureSpan{Number: 1, Start: 4, Stop: 7, Numerator: 3, Denominator: 4}
	assert := assert.New(t)
	assert.Equal(1.0, BeatStrength(span, 4))
	assert.Equal(0.5, BeatStrength(span, 5))
	assert.Equal(0.5, BeatStrength(span, 6))
	assert.Equal(0.125, BeatStrength(span, 5.5))
}

func TestBeatStrengthCompound(t *testing.T) {
	span := MeasureSpan{Number: 1, Start: 0, Stop: 3, Numerator: 6, Denominator: 8}
	assert := assert.New(t)
	assert.Equal(1.0, BeatStrength(span, 0))
	assert.Equal(0.25, BeatStrength(span, 0.5))
	assert.Equal(0.25, BeatStrength(span, 1.5))
}

func TestMeasureMapErrors(t *testing.T) {
	assert := assert.New(t)

	empty := &Score{}
	_, err := empty.MeasureMap()
	assert.Error(err)

	noMeter := &Score{Parts: []Part{{Measures: []Measure{{Number: 1, Start: 0, Stop: 4}}}}}
	_, err = noMeter.MeasureMap()
	assert.Error(err)
}

func TestMeasureMapAt(t *testing.T) {
	s := &Score{Parts: []Part{{Measures: []Measure{
		fourFour(1, 0),
		fourFour(2, 4),
	}}}}
	mm, err := s.MeasureMap()
	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(mm, 2)

	span, ok := mm.At(5)
	assert.True(ok)
	assert.Equal(2, span.Number)

	// the final boundary belongs to the last measure
	span, ok = mm.At(8)
	assert.True(ok)
	assert.Equal(2, span.Number)

	_, ok = mm.At(9)
	assert.False(ok)
}

func TestFlattenSkipsRestsAndStampsContext(t *testing.T) {
	s := &Score{Parts: []Part{{Measures: []Measure{
		fourFour(1, 0,
			Event{Offset: 0, Duration: 2, Pitches: []uint8{60, 64, 67}},
			Event{Offset: 2, Duration: 1},
			Event{Offset: 3, Duration: 1, Pitches: []uint8{62}},
		),
	}}}}

	tr, err := Flatten(s)
	assert := assert.New(t)
	assert.NoError(err)

	spans := tr.PartTimespans(0)
	assert.Len(spans, 2)
	assert.Equal(1.0, spans[0].BeatStrength)
	assert.Equal(0.25, spans[1].BeatStrength)
	assert.Equal(1, spans[0].Measure)
	assert.Equal(0.0, spans[0].MeasureStart)
	assert.Equal(4.0, spans[0].MeasureStop)
}

func TestFlattenRejectsMalformedInput(t *testing.T) {
	assert := assert.New(t)

	noMeter := &Score{Parts: []Part{{Measures: []Measure{{
		Number: 1, Start: 0, Stop: 4,
		Events: []Event{{Offset: 0, Duration: 1, Pitches: []uint8{60}}},
	}}}}}
	_, err := Flatten(noMeter)
	assert.Error(err)

	zeroDuration := &Score{Parts: []Part{{Measures: []Measure{
		fourFour(1, 0, Event{Offset: 0, Duration: 0, Pitches: []uint8{60}}),
	}}}}
	_, err = Flatten(zeroDuration)
	assert.Error(err)

	outside := &Score{Parts: []Part{{Measures: []Measure{
		fourFour(1, 0, Event{Offset: 5, Duration: 1, Pitches: []uint8{60}}),
	}}}}
	_, err = Flatten(outside)
	assert.Error(err)
}

func TestPartwiseFillsGapsWithRests(t *testing.T) {
	s := &Score{Parts: []Part{{Name: "melody", Measures: []Measure{
		fourFour(1, 0,
			Event{Offset: 1, Duration: 1, Pitches: []uint8{60}},
			Event{Offset: 3, Duration: 1, Pitches: []uint8{62}},
		),
	}}}}
	tr, err := Flatten(s)
	assert := assert.New(t)
	assert.NoError(err)

	projected, err := Partwise(tr, s)
	assert.NoError(err)
	assert.Len(projected.Parts, 1)

	events := projected.Parts[0].Measures[0].Events
	assert.Len(events, 4)
	assert.True(events[0].IsRest())
	assert.Equal([]uint8{60}, events[1].Pitches)
	assert.True(events[2].IsRest())
	assert.Equal([]uint8{62}, events[3].Pitches)

	var total float64
	for _, ev := range events {
		total += ev.Duration
	}
	assert.Equal(4.0, total)
}

func TestChordifiedMergesParts(t *testing.T) {
	s := &Score{Parts: []Part{
		{Name: "upper", Measures: []Measure{
			fourFour(1, 0,
				Event{Offset: 0, Duration: 2, Pitches: []uint8{64}},
				Event{Offset: 2, Duration: 2, Pitches: []uint8{65}},
			),
		}},
		{Name: "lower", Measures: []Measure{
			fourFour(1, 0,
				Event{Offset: 0, Duration: 4, Pitches: []uint8{48}},
			),
		}},
	}}
	tr, err := Flatten(s)
	assert := assert.New(t)
	assert.NoError(err)

	chordified, err := Chordified(tr, s)
	assert.NoError(err)
	assert.Len(chordified.Measures, 1)

	events := chordified.Measures[0].Events
	assert.Len(events, 2)
	assert.Equal([]uint8{48, 64}, events[0].Pitches)
	assert.Equal([]uint8{48, 65}, events[1].Pitches)
	assert.Equal(2.0, events[0].Duration)
	assert.Equal(2.0, events[1].Duration)
}

func TestChordifiedEmitsRestsForSilence(t *testing.T) {
	s := &Score{Parts: []Part{{Measures: []Measure{
		fourFour(1, 0,
			Event{Offset: 2, Duration: 2, Pitches: []uint8{60}},
		),
	}}}}
	tr, err := Flatten(s)
	assert := assert.New(t)
	assert.NoError(err)

	chordified, err := Chordified(tr, s)
	assert.NoError(err)
	events := chordified.Measures[0].Events
	assert.Len(events, 2)
	assert.True(events[0].IsRest())
	assert.Equal(2.0, events[0].Duration)
	assert.Equal([]uint8{60}, events[1].Pitches)
}

func TestApplyTies(t *testing.T) {
	p := Part{Measures: []Measure{
		fourFour(1, 0,
			Event{Offset: 0, Duration: 2, Pitches: []uint8{60, 64}},
			Event{Offset: 2, Duration: 2, Pitches: []uint8{60, 64}},
		),
		fourFour(2, 4,
			Event{Offset: 4, Duration: 2, Pitches: []uint8{60, 64}},
			Event{Offset: 6, Duration: 2, Pitches: []uint8{62}},
		),
	}}
	ApplyTies(&p)

	assert := assert.New(t)
	assert.True(p.Measures[0].Events[0].Tie)
	// ties cross the barline
	assert.True(p.Measures[0].Events[1].Tie)
	assert.False(p.Measures[1].Events[0].Tie)
	assert.False(p.Measures[1].Events[1].Tie)
}

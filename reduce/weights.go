package reduce

import (
	"fmt"

	"github.com/jsphweid/chordreduce/pitch"
	"github.com/jsphweid/chordreduce/score"
)

// WeightContext is the positional context handed to a weight
// function: the measure the event lives in, the event's index among
// the measure's pitched events, and how many pitched events the
// measure holds.
type WeightContext struct {
	Span  score.MeasureSpan
	Index int
	Count int
}

// WeightFunc scores one pitched event; the collapser accumulates
// these per pitch-class set, strictly in event encounter order, so
// results are bit-for-bit reproducible.
type WeightFunc func(ev score.Event, ctx WeightContext) float64

// WeightDuration scores by raw duration.
func WeightDuration(ev score.Event, ctx WeightContext) float64 {
	return ev.Duration
}

// WeightDurationBeatStrength scores by duration times the metrical
// weight of the event's offset.
func WeightDurationBeatStrength(ev score.Event, ctx WeightContext) float64 {
	return ev.Duration * score.BeatStrength(ctx.Span, ev.Offset)
}

// WeightDurationBeatStrengthFinal is the same, except the last event
// of the measure counts with beat strength 1: whatever the measure
// lands on is treated as maximally stable.
func WeightDurationBeatStrengthFinal(ev score.Event, ctx WeightContext) float64 {
	if ctx.Index == ctx.Count-1 {
		return ev.Duration
	}
	return WeightDurationBeatStrength(ev, ctx)
}

// WeightConsonance multiplies the previous strategy by a consonance
// factor: 1.0 for consonant events, 0.1 for dissonant ones. The
// default strategy.
func WeightConsonance(ev score.Event, ctx WeightContext) float64 {
	factor := 0.1
	if pitch.IsConsonant(ev.Pitches) {
		factor = 1.0
	}
	return WeightDurationBeatStrengthFinal(ev, ctx) * factor
}

// WeightByName resolves a strategy by its CLI/API name.
func WeightByName(name string) (WeightFunc, error) {
	switch name {
	case "duration":
		return WeightDuration, nil
	case "duration-beat-strength":
		return WeightDurationBeatStrength, nil
	case "duration-beat-strength-final":
		return WeightDurationBeatStrengthFinal, nil
	case "consonance", "":
		return WeightConsonance, nil
	default:
		return nil, fmt.Errorf("unknown weight strategy: %v", name)
	}
}

package reduce

import (
	"math"
	"sort"

	"github.com/jsphweid/chordreduce/pitch"
	"github.com/jsphweid/chordreduce/score"
	"github.com/jsphweid/chordreduce/util"
)

// offsets whose fractional part lands here are considered syncopated
// and get rebarred onto the preceding integer beat
var weakFractions = map[float64]bool{
	0.250: true,
	0.125: true,
	0.333: true,
	0.063: true,
	0.062: true,
}

// ComputeMeasureWeights accumulates one weight per distinct
// pitch-class set across the measure's pitched events, in encounter
// order. Rests contribute nothing.
func ComputeMeasureWeights(m score.Measure, weight WeightFunc) (map[string]float64, map[string]pitch.ClassSet) {
	span := spanOf(m)
	count := 0
	for _, ev := range m.Events {
		if !ev.IsRest() {
			count++
		}
	}
	weights := make(map[string]float64)
	sets := make(map[string]pitch.ClassSet)
	index := 0
	for _, ev := range m.Events {
		if ev.IsRest() {
			continue
		}
		cs := pitch.Classes(ev.Pitches)
		key := cs.Key()
		weights[key] += weight(ev, WeightContext{Span: span, Index: index, Count: count})
		sets[key] = cs
		index++
	}
	return weights, sets
}

// CollapseMeasure reduces one flattened measure to at most maxChords
// representative chords by weighted greedy selection. The result
// always tiles the measure's full duration; a measure with no notes
// at all collapses to a single full-measure rest.
func CollapseMeasure(m score.Measure, maxChords int, weight WeightFunc, trimBelow float64) score.Measure {
	weights, sets := ComputeMeasureWeights(m, weight)
	if len(weights) == 0 {
		return fullMeasureRest(m)
	}

	keys := util.GetKeys(weights)
	sort.Slice(keys, func(i, j int) bool {
		wi, wj := weights[keys[i]], weights[keys[j]]
		if wi != wj {
			return wi > wj
		}
		return sets[keys[i]].Less(sets[keys[j]])
	})
	top := keys[:util.Min(maxChords, len(keys))]
	maxWeight := weights[top[0]]
	surviving := make(map[string]bool)
	for _, key := range top {
		if weights[key] < maxWeight*trimBelow {
			break
		}
		surviving[key] = true
	}

	// greedy left-to-right sweep: a kept event absorbs the duration
	// of everything discarded after it, up to the next kept event
	var out []score.Event
	var currKey string
	var currLen float64
	haveCurr := false
	for _, ev := range m.Events {
		keep := false
		var key string
		if !ev.IsRest() {
			key = pitch.Classes(ev.Pitches).Key()
			keep = surviving[key] && key != currKey
		}
		if keep {
			if !haveCurr && ev.Offset != m.Start {
				// leading gap folds into the first kept event
				currLen = ev.Offset - m.Start
				ev.Offset = m.Start
			} else if haveCurr {
				out[len(out)-1].Duration = currLen
				currLen = 0
			}
			ev.Tie = false
			out = append(out, ev)
			haveCurr = true
			currKey = key
			currLen += ev.Duration
		} else {
			currLen += ev.Duration
		}
	}
	if !haveCurr {
		return fullMeasureRest(m)
	}
	out[len(out)-1].Duration = currLen

	rebarSyncopations(m, out)

	res := m
	res.Events = out
	return res
}

// rebarSyncopations shaves a weak fractional onset off the previous
// chord so boundaries land on stronger beats.
func rebarSyncopations(m score.Measure, events []score.Event) {
	for i := 1; i < len(events); i++ {
		rel := events[i].Offset - m.Start
		frac := rel - math.Trunc(rel)
		if !weakFractions[math.Round(frac*1000)/1000] {
			continue
		}
		events[i-1].Duration -= frac
		events[i].Offset = m.Start + math.Trunc(rel)
		events[i].Duration += frac
	}
}

func fullMeasureRest(m score.Measure) score.Measure {
	res := m
	res.Events = []score.Event{{Offset: m.Start, Duration: m.Duration()}}
	return res
}

func spanOf(m score.Measure) score.MeasureSpan {
	return score.MeasureSpan{
		Number:      m.Number,
		Start:       m.Start,
		Stop:        m.Stop,
		Numerator:   m.Numerator,
		Denominator: m.Denominator,
	}
}

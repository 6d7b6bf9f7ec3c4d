package score

import (
	"sort"

	"github.com/jsphweid/chordreduce/pitch"
	"github.com/jsphweid/chordreduce/tree"
)

// Terminal projections from an offset tree back into score
// structures. The template supplies part names and the measure map;
// the tree supplies the content.

// Partwise projects the tree one part at a time, preserving part
// structure. Time not covered by any timespan of a part becomes
// rests, so every projected measure tiles its full time range.
func Partwise(t *tree.Tree, template *Score) (*Score, error) {
	mm, err := template.MeasureMap()
	if err != nil {
		return nil, err
	}
	res := &Score{}
	for partNum, part := range template.Parts {
		projected := Part{Name: part.Name}
		spans := t.PartTimespans(partNum)
		for _, span := range mm {
			m := Measure{
				Number:      span.Number,
				Start:       span.Start,
				Stop:        span.Stop,
				Numerator:   span.Numerator,
				Denominator: span.Denominator,
			}
			cursor := span.Start
			for _, ts := range spans {
				if ts.Start >= span.Stop || ts.Stop <= span.Start {
					continue
				}
				start, stop := clamp(ts.Start, span), clamp(ts.Stop, span)
				if cursor < start {
					m.Events = append(m.Events, Event{Offset: cursor, Duration: start - cursor})
				}
				m.Events = append(m.Events, Event{
					Offset:   start,
					Duration: stop - start,
					Pitches:  ts.Pitches,
				})
				cursor = stop
			}
			if cursor < span.Stop {
				m.Events = append(m.Events, Event{Offset: cursor, Duration: span.Stop - cursor})
			}
			projected.Measures = append(projected.Measures, m)
		}
		res.Parts = append(res.Parts, projected)
	}
	return res, nil
}

// Chordified merges every part into a single sequence: at each
// distinct time boundary the active pitches of all parts collapse
// into one chord event, and silent stretches become rests.
func Chordified(t *tree.Tree, template *Score) (Part, error) {
	mm, err := template.MeasureMap()
	if err != nil {
		return Part{}, err
	}
	all := t.All()
	res := Part{Name: "chordified"}
	for _, span := range mm {
		m := Measure{
			Number:      span.Number,
			Start:       span.Start,
			Stop:        span.Stop,
			Numerator:   span.Numerator,
			Denominator: span.Denominator,
		}
		boundaries := []float64{span.Start, span.Stop}
		for _, ts := range all {
			for _, offset := range []float64{ts.Start, ts.Stop} {
				if offset > span.Start && offset < span.Stop {
					boundaries = append(boundaries, offset)
				}
			}
		}
		boundaries = dedupSorted(boundaries)
		for i := 0; i+1 < len(boundaries); i++ {
			start, stop := boundaries[i], boundaries[i+1]
			var pitches []uint8
			for _, ts := range all {
				if ts.Start <= start && start < ts.Stop {
					pitches = append(pitches, ts.Pitches...)
				}
			}
			m.Events = append(m.Events, Event{
				Offset:   start,
				Duration: stop - start,
				Pitches:  pitch.Sorted(pitches),
			})
		}
		res.Measures = append(res.Measures, m)
	}
	return res, nil
}

// ApplyTies marks a tie start on the earlier of every adjacent pair
// of pitch-identical events in the part, across measure boundaries.
func ApplyTies(p *Part) {
	var prev *Event
	for mi := range p.Measures {
		for ei := range p.Measures[mi].Events {
			curr := &p.Measures[mi].Events[ei]
			if prev != nil && !prev.IsRest() && !curr.IsRest() &&
				pitch.Equal(prev.Pitches, curr.Pitches) {
				prev.Tie = true
			}
			prev = curr
		}
	}
}

func clamp(offset float64, span MeasureSpan) float64 {
	if offset < span.Start {
		return span.Start
	}
	if offset > span.Stop {
		return span.Stop
	}
	return offset
}

func dedupSorted(offsets []float64) []float64 {
	sort.Float64s(offsets)
	res := offsets[:0]
	for i, v := range offsets {
		if i == 0 || v != res[len(res)-1] {
			res = append(res, v)
		}
	}
	return res
}

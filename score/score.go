package score

import (
	"fmt"
	"math"

	"github.com/jsphweid/chordreduce/pitch"
	"github.com/jsphweid/chordreduce/tree"
)

// Offsets and durations are in quarter lengths from the start of the
// piece.

// Event is one note, chord or rest. A rest has no pitches.
type Event struct {
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
	Pitches  []uint8 `json:"pitches,omitempty"`

	// Tie marks the start of a tie into the following event.
	Tie bool `json:"tie,omitempty"`
}

func (e Event) IsRest() bool {
	return len(e.Pitches) == 0
}

func (e Event) Stop() float64 {
	return e.Offset + e.Duration
}

// Measure is one measure of one part, with its time-signature
// context.
type Measure struct {
	Number      int     `json:"number"`
	Start       float64 `json:"start"`
	Stop        float64 `json:"stop"`
	Numerator   int     `json:"numerator"`
	Denominator int     `json:"denominator"`
	Events      []Event `json:"events"`
}

func (m Measure) Duration() float64 {
	return m.Stop - m.Start
}

type Part struct {
	Name     string    `json:"name"`
	Measures []Measure `json:"measures"`
}

type Score struct {
	Parts []Part `json:"parts"`
}

// MeasureSpan is one entry of a score's measure map: the time range
// and meter of a measure, independent of any part.
type MeasureSpan struct {
	Number      int
	Start       float64
	Stop        float64
	Numerator   int
	Denominator int
}

type MeasureMap []MeasureSpan

// At returns the measure whose time range contains offset.
func (mm MeasureMap) At(offset float64) (MeasureSpan, bool) {
	for _, span := range mm {
		if span.Start <= offset && offset < span.Stop {
			return span, true
		}
	}
	// the final boundary belongs to the last measure
	if len(mm) > 0 && offset == mm[len(mm)-1].Stop {
		return mm[len(mm)-1], true
	}
	return MeasureSpan{}, false
}

// MeasureMap derives the measure map from the first part. Every part
// of a well-formed score shares the same barlines.
func (s *Score) MeasureMap() (MeasureMap, error) {
	if len(s.Parts) == 0 {
		return nil, fmt.Errorf("score has no parts")
	}
	var mm MeasureMap
	for _, m := range s.Parts[0].Measures {
		if m.Numerator <= 0 || m.Denominator <= 0 {
			return nil, fmt.Errorf("measure %v has no time signature context", m.Number)
		}
		if m.Stop <= m.Start {
			return nil, fmt.Errorf("measure %v has an empty time range", m.Number)
		}
		mm = append(mm, MeasureSpan{
			Number:      m.Number,
			Start:       m.Start,
			Stop:        m.Stop,
			Numerator:   m.Numerator,
			Denominator: m.Denominator,
		})
	}
	return mm, nil
}

const offsetEpsilon = 1e-6

// BeatStrength is the metrical weight of offset within span. The
// downbeat is 1.0. In quadruple meters the middle beat is 0.5 and the
// other beats 0.25; in duple and triple meters every beat after the
// downbeat is 0.5; other meters get 0.25. Eighth-level offsets are
// 0.125 and anything finer 0.0625.
func BeatStrength(span MeasureSpan, offset float64) float64 {
	beatLen := 4.0 / float64(span.Denominator)
	beat := (offset - span.Start) / beatLen
	idx := math.Floor(beat + offsetEpsilon)
	frac := beat - idx
	if frac >= 1-offsetEpsilon {
		idx, frac = idx+1, 0
	}
	switch {
	case frac < offsetEpsilon:
		if idx == 0 {
			return 1.0
		}
		switch {
		case span.Numerator == 4 && idx == 2:
			return 0.5
		case span.Numerator == 4:
			return 0.25
		case span.Numerator == 2 || span.Numerator == 3:
			return 0.5
		default:
			return 0.25
		}
	case math.Abs(frac-0.5) < offsetEpsilon:
		return 0.125
	default:
		return 0.0625
	}
}

// Flatten spreads the score into a single offset tree, one timespan
// per pitched event per part. Rests are skipped; silence is a gap for
// the reduction passes to reason about. Malformed input surfaces as an
// error, never a panic.
func Flatten(s *Score) (*tree.Tree, error) {
	t := tree.New()
	for partNum, part := range s.Parts {
		for _, m := range part.Measures {
			if m.Numerator <= 0 || m.Denominator <= 0 {
				return nil, fmt.Errorf("part %v measure %v has no time signature context",
					partNum, m.Number)
			}
			span := MeasureSpan{
				Number:      m.Number,
				Start:       m.Start,
				Stop:        m.Stop,
				Numerator:   m.Numerator,
				Denominator: m.Denominator,
			}
			for _, ev := range m.Events {
				if ev.Duration <= 0 {
					return nil, fmt.Errorf("part %v measure %v has an event of duration %v",
						partNum, m.Number, ev.Duration)
				}
				if ev.Offset < m.Start || ev.Offset >= m.Stop {
					return nil, fmt.Errorf("part %v measure %v has an event outside the measure at %v",
						partNum, m.Number, ev.Offset)
				}
				if ev.IsRest() {
					continue
				}
				t.Insert(tree.Timespan{
					Start:        ev.Offset,
					Stop:         ev.Offset + ev.Duration,
					Part:         partNum,
					Pitches:      pitch.Sorted(ev.Pitches),
					BeatStrength: BeatStrength(span, ev.Offset),
					Measure:      m.Number,
					MeasureStart: m.Start,
					MeasureStop:  m.Stop,
				})
			}
		}
	}
	return t, nil
}

package tree

import (
	"fmt"

	"github.com/jsphweid/chordreduce/pitch"
)

// Timespan is one pitched event in one part: a half-open interval
// [Start, Stop) in quarter lengths, the sounding pitches, and the
// measure context it was created in. Timespans are value objects: they
// are never edited inside the tree, only removed and re-inserted.
type Timespan struct {
	Start        float64
	Stop         float64
	Part         int
	Pitches      []uint8
	BeatStrength float64

	// measure context, stamped when the timespan is created from a
	// score and carried through replacements
	Measure      int
	MeasureStart float64
	MeasureStop  float64
}

func (ts Timespan) Duration() float64 {
	return ts.Stop - ts.Start
}

// WithStart returns a copy starting at start with the given beat
// strength.
func (ts Timespan) WithStart(start, beatStrength float64) Timespan {
	ts.Start = start
	ts.BeatStrength = beatStrength
	return ts
}

// WithStop returns a copy stopping at stop.
func (ts Timespan) WithStop(stop float64) Timespan {
	ts.Stop = stop
	return ts
}

// WithPitches returns a copy sounding the given pitches.
func (ts Timespan) WithPitches(pitches []uint8) Timespan {
	ts.Pitches = pitches
	return ts
}

// Equal reports whether two timespans are the same value. Removal
// matches on this, so a pass must hand back exactly what it queried.
func (ts Timespan) Equal(other Timespan) bool {
	return ts.Start == other.Start &&
		ts.Stop == other.Stop &&
		ts.Part == other.Part &&
		ts.BeatStrength == other.BeatStrength &&
		ts.Measure == other.Measure &&
		ts.MeasureStart == other.MeasureStart &&
		ts.MeasureStop == other.MeasureStop &&
		pitch.Equal(ts.Pitches, other.Pitches)
}

// LowestPitch panics on an empty timespan; flattening never produces
// one.
func (ts Timespan) LowestPitch() uint8 {
	if len(ts.Pitches) == 0 {
		panic("timespan has no pitches")
	}
	low := ts.Pitches[0]
	for _, p := range ts.Pitches[1:] {
		if p < low {
			low = p
		}
	}
	return low
}

func (ts Timespan) String() string {
	return fmt.Sprintf("<%v..%v part=%v pitches=%v>",
		ts.Start, ts.Stop, ts.Part, ts.Pitches)
}

package tree

import (
	"sort"

	"github.com/jsphweid/chordreduce/pitch"
)

// Verticality is the vertical slice of the tree at one instant. It is
// an ephemeral view: derived from tree state at query time and thrown
// away, never stored back.
type Verticality struct {
	Start            float64
	StartTimespans   []Timespan
	OverlapTimespans []Timespan
}

func (v Verticality) all() []Timespan {
	res := make([]Timespan, 0, len(v.StartTimespans)+len(v.OverlapTimespans))
	res = append(res, v.OverlapTimespans...)
	res = append(res, v.StartTimespans...)
	return res
}

// PitchSet returns every pitch sounding at this instant, sorted and
// distinct.
func (v Verticality) PitchSet() []uint8 {
	var pitches []uint8
	for _, ts := range v.all() {
		pitches = append(pitches, ts.Pitches...)
	}
	return pitch.Sorted(pitches)
}

// IsConsonant classifies the full sounding pitch set. Silence is
// consonant.
func (v Verticality) IsConsonant() bool {
	return pitch.IsConsonant(v.PitchSet())
}

// BassTimespan returns the timespan owning the lowest sounding pitch.
// Ties go to the earlier start offset, then the lower part.
func (v Verticality) BassTimespan() (Timespan, bool) {
	var best Timespan
	found := false
	for _, ts := range v.all() {
		if !found {
			best = ts
			found = true
			continue
		}
		bp, tp := best.LowestPitch(), ts.LowestPitch()
		switch {
		case tp < bp:
			best = ts
		case tp == bp && ts.Start < best.Start:
			best = ts
		case tp == bp && ts.Start == best.Start && ts.Part < best.Part:
			best = ts
		}
	}
	return best, found
}

// BeatStrength is the metrical weight at this instant: the weight of
// the timespans starting here, or 1.0 when nothing starts but the
// instant is a downbeat of something already sounding.
func (v Verticality) BeatStrength() float64 {
	if len(v.StartTimespans) > 0 {
		return v.StartTimespans[0].BeatStrength
	}
	for _, ts := range v.OverlapTimespans {
		if ts.MeasureStart == v.Start {
			return 1.0
		}
	}
	return 0
}

// MeasureNumber is the measure of the timespans starting here. A
// verticality with no start timespans has no meaningful measure and
// reports -1.
func (v Verticality) MeasureNumber() int {
	if len(v.StartTimespans) > 0 {
		return v.StartTimespans[0].Measure
	}
	return -1
}

// Horizontality is an ordered run of one part's timespans drawn from
// a window of verticalities. Like Verticality it is derived on demand
// and never stored.
type Horizontality []Timespan

// HasPassingTone reports a strictly rising or falling stepwise line
// across the first three single-pitch timespans.
func (h Horizontality) HasPassingTone() bool {
	p, ok := h.leadingPitches()
	if !ok {
		return false
	}
	rising := p[0] < p[1] && p[1] < p[2]
	falling := p[0] > p[1] && p[1] > p[2]
	if !rising && !falling {
		return false
	}
	return stepwise(p[0], p[1]) && stepwise(p[1], p[2])
}

// HasNeighborTone reports a stepwise departure and return across the
// first three single-pitch timespans.
func (h Horizontality) HasNeighborTone() bool {
	p, ok := h.leadingPitches()
	if !ok {
		return false
	}
	return p[0] == p[2] && p[0] != p[1] && stepwise(p[0], p[1])
}

func (h Horizontality) leadingPitches() ([3]uint8, bool) {
	var p [3]uint8
	if len(h) < 3 {
		return p, false
	}
	for i := 0; i < 3; i++ {
		if len(h[i].Pitches) != 1 {
			return p, false
		}
		p[i] = h[i].Pitches[0]
	}
	return p, true
}

func stepwise(a, b uint8) bool {
	diff := int(a) - int(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 2
}

// Unwrap regroups a window of verticalities horizontally: for each
// part, the distinct timespans sounding anywhere in the window, in
// start order.
func Unwrap(verticalities []Verticality) map[int]Horizontality {
	res := make(map[int]Horizontality)
	for _, v := range verticalities {
		for _, ts := range v.all() {
			h := res[ts.Part]
			dup := false
			for _, other := range h {
				if other.Equal(ts) {
					dup = true
					break
				}
			}
			if !dup {
				res[ts.Part] = append(h, ts)
			}
		}
	}
	for part, h := range res {
		sort.SliceStable(h, func(i, j int) bool {
			return h[i].Start < h[j].Start
		})
		res[part] = h
	}
	return res
}

package reduce

import (
	"github.com/jsphweid/chordreduce/pitch"
	"github.com/jsphweid/chordreduce/tree"
	"github.com/jsphweid/chordreduce/util"
)

// The structural passes. Each one iterates views over the tree and
// mutates it in place; order matters, see Reducer.Reduce. Every
// mutation removes superseded timespans before inserting replacements
// so the tree never transiently holds both.

// RemoveVerticalDissonances drops, from every dissonant verticality,
// the timespans starting there whose lowest pitch is not the
// verticality's lowest pitch. Only the bass-supporting line survives.
func RemoveVerticalDissonances(t *tree.Tree) {
	next := t.Verticalities()
	for v, ok := next(); ok; v, ok = next() {
		if v.IsConsonant() {
			continue
		}
		ps := v.PitchSet()
		if len(ps) == 0 {
			continue
		}
		lowest := ps[0]
		for _, ts := range v.StartTimespans {
			if ts.LowestPitch() != lowest {
				t.Remove(ts)
			}
		}
	}
}

// FillBassGaps stretches each part's timespans so that runs sharing
// an active bass timespan cover that bass timespan's full interval,
// merging same-pitch or non-contiguous neighbors along the way.
func FillBassGaps(t *tree.Tree) {
	for _, part := range t.Parts() {
		spans := t.PartTimespans(part)
		for _, group := range groupByBass(t, spans) {
			if group.bass == nil {
				continue
			}
			fillBassGapsGroup(t, group.members, *group.bass)
		}
	}
}

type bassGroup struct {
	bass    *tree.Timespan
	members []tree.Timespan
}

// groupByBass splits one part's ordered timespans into maximal
// consecutive runs sharing the same bass timespan (the lowest-pitch
// timespan sounding at each member's start).
func groupByBass(t *tree.Tree, spans []tree.Timespan) []bassGroup {
	var groups []bassGroup
	for _, ts := range spans {
		var bass *tree.Timespan
		if b, ok := t.VerticalityAt(ts.Start).BassTimespan(); ok {
			bass = &b
		}
		if len(groups) > 0 && sameBass(groups[len(groups)-1].bass, bass) {
			last := &groups[len(groups)-1]
			last.members = append(last.members, ts)
		} else {
			groups = append(groups, bassGroup{bass: bass, members: []tree.Timespan{ts}})
		}
	}
	return groups
}

func sameBass(a, b *tree.Timespan) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func fillBassGapsGroup(t *tree.Tree, group []tree.Timespan, bass tree.Timespan) {
	if len(group) == 1 {
		ts := group[0]
		changed := false
		start, beatStrength, stop := ts.Start, ts.BeatStrength, ts.Stop
		if bass.Start < ts.Start {
			changed = true
			start = clampStart(t, ts, bass.Start)
			beatStrength = bass.BeatStrength
		}
		if ts.Stop < bass.Stop {
			changed = true
			stop = clampStop(t, ts, bass.Stop)
		}
		if changed && (start != ts.Start || stop != ts.Stop) {
			nt := ts
			nt.Start, nt.BeatStrength, nt.Stop = start, beatStrength, stop
			t.Replace(ts, nt)
		}
		return
	}
	if bass.Start < group[0].Start {
		start := clampStart(t, group[0], bass.Start)
		if start < group[0].Start {
			nt := group[0].WithStart(start, bass.BeatStrength)
			t.Replace(group[0], nt)
			group[0] = nt
		}
	}
	if group[len(group)-1].Stop < bass.Stop {
		last := group[len(group)-1]
		stop := clampStop(t, last, bass.Stop)
		if stop > last.Stop {
			nt := last.WithStop(stop)
			t.Replace(last, nt)
			group[len(group)-1] = nt
		}
	}
	for i := 0; i+1 < len(group); i++ {
		one, two := group[i], group[i+1]
		if pitch.Equal(one.Pitches, two.Pitches) || one.Stop != two.Start {
			merged := one.WithStop(two.Stop)
			t.Remove(one)
			t.Remove(two)
			t.Insert(merged)
			group[i], group[i+1] = merged, merged
		}
	}
}

// clampStart bounds a backward extension of ts at the stop of its
// part's preceding timespan, keeping the part free of overlaps.
func clampStart(t *tree.Tree, ts tree.Timespan, start float64) float64 {
	if prev, ok := t.PreviousInPart(ts); ok && prev.Stop > start {
		return prev.Stop
	}
	return start
}

// clampStop bounds a forward extension of ts at the start of its
// part's following timespan.
func clampStop(t *tree.Tree, ts tree.Timespan, stop float64) float64 {
	if next, ok := t.NextInPart(ts); ok && next.Start < stop {
		return next.Start
	}
	return stop
}

// RemoveShortTimespans removes timespans shorter than threshold. A
// maximal run of short timespans that exactly tiles a whole measure,
// or a whole bass timespan, is instead collapsed to the pitch set
// contributing the greatest cumulative duration, first encountered
// winning ties.
func RemoveShortTimespans(t *tree.Tree, threshold float64) {
	var toRemove []tree.Timespan
	for _, part := range t.Parts() {
		spans := t.PartTimespans(part)
		for _, group := range groupShort(t, spans, threshold) {
			if !group.short {
				continue
			}
			members := group.members
			entire := members[0].Start == members[0].MeasureStart &&
				members[len(members)-1].Stop == members[0].MeasureStop
			if group.bass != nil &&
				members[0].Start == group.bass.Start &&
				members[len(members)-1].Stop == group.bass.Stop {
				entire = true
			}
			if !entire {
				toRemove = append(toRemove, members...)
				continue
			}
			best := dominantPitches(members)
			for _, ts := range members {
				if !pitch.Equal(ts.Pitches, best) {
					toRemove = append(toRemove, ts)
				}
			}
		}
	}
	t.RemoveAll(toRemove)
}

type shortGroup struct {
	measure int
	short   bool
	bass    *tree.Timespan
	members []tree.Timespan
}

func groupShort(t *tree.Tree, spans []tree.Timespan, threshold float64) []shortGroup {
	var groups []shortGroup
	for _, ts := range spans {
		var bass *tree.Timespan
		if b, ok := t.VerticalityAt(ts.Start).BassTimespan(); ok && b.Duration() >= threshold {
			bass = &b
		}
		short := ts.Duration() < threshold
		if len(groups) > 0 {
			last := &groups[len(groups)-1]
			if last.measure == ts.Measure && last.short == short && sameBass(last.bass, bass) {
				last.members = append(last.members, ts)
				continue
			}
		}
		groups = append(groups, shortGroup{
			measure: ts.Measure,
			short:   short,
			bass:    bass,
			members: []tree.Timespan{ts},
		})
	}
	return groups
}

// dominantPitches picks the pitch set with the greatest cumulative
// duration across the run, in encounter order on ties.
func dominantPitches(members []tree.Timespan) []uint8 {
	type entry struct {
		pitches []uint8
		dur     float64
	}
	var entries []entry
	for _, ts := range members {
		found := false
		for i := range entries {
			if pitch.Equal(entries[i].pitches, ts.Pitches) {
				entries[i].dur += ts.Duration()
				found = true
				break
			}
		}
		if !found {
			entries = append(entries, entry{pitches: ts.Pitches, dur: ts.Duration()})
		}
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.dur > best.dur {
			best = e
		}
	}
	return best.pitches
}

// FillOuterMeasureGaps stretches each part's first and last timespan
// of every measure out to the measure boundaries. A start moved to
// the barline takes the boundary verticality's beat strength.
func FillOuterMeasureGaps(t *tree.Tree) {
	next := t.Verticalities()
	for v, ok := next(); ok; v, ok = next() {
		for _, ts := range v.StartTimespans {
			changed := false
			start, beatStrength := ts.Start, ts.BeatStrength
			prev, hasPrev := t.PreviousInPart(ts)
			if !hasPrev || prev.Measure != ts.Measure {
				if ts.Start != ts.MeasureStart {
					changed = true
					start = ts.MeasureStart
					beatStrength = t.VerticalityAt(start).BeatStrength()
					if beatStrength == 0 {
						// nothing else sounds at the barline
						beatStrength = 1.0
					}
				}
			}
			stop := ts.Stop
			nextTs, hasNext := t.NextInPart(ts)
			if !hasNext || nextTs.Measure != ts.Measure {
				if ts.Stop != ts.MeasureStop {
					changed = true
					stop = ts.MeasureStop
				}
			}
			if changed {
				nt := ts
				nt.Start, nt.BeatStrength, nt.Stop = start, beatStrength, stop
				t.Replace(ts, nt)
			}
		}
	}
}

// FillInnerMeasureGaps extends every timespan forward to its part's
// next start offset (or the barline), then merges pitch-identical
// neighbors within the measure.
func FillInnerMeasureGaps(t *tree.Tree) {
	next := t.Verticalities()
	for v, ok := next(); ok; v, ok = next() {
		for _, ts := range v.StartTimespans {
			nextStart := ts.MeasureStop
			if nextTs, ok := t.NextInPart(ts); ok {
				nextStart = nextTs.Start
			}
			if ts.Stop != nextStart && nextStart > ts.Start {
				nt := ts.WithStop(nextStart)
				t.Replace(ts, nt)
				ts = nt
			}
			prev, hasPrev := t.PreviousInPart(ts)
			if !hasPrev {
				continue
			}
			if prev.Measure != ts.Measure {
				continue
			}
			if !pitch.Equal(prev.Pitches, ts.Pitches) {
				continue
			}
			merged := prev.WithStop(ts.Stop)
			t.Remove(ts)
			t.Remove(prev)
			t.Insert(merged)
		}
	}
}

// AlignHockets smooths rhythmic interlock between parts: when two
// adjacent consonant verticalities in a measure have one pitch set
// contained in the other, the smaller side's later timespans are
// pulled back to the earlier start (absorbing whatever the part was
// sounding in between), or the earlier side's timespans are extended
// forward over the gap.
func AlignHockets(t *tree.Tree) {
	step := t.VerticalitiesNwise(2)
	for w, ok := step(); ok; w, ok = step() {
		one, two := w[0], w[1]
		if !one.IsConsonant() || !two.IsConsonant() {
			continue
		}
		if one.MeasureNumber() != two.MeasureNumber() {
			continue
		}
		psOne, psTwo := one.PitchSet(), two.PitchSet()
		if pitch.Equal(psOne, psTwo) {
			continue
		}
		if pitch.Subset(psOne, psTwo) {
			for _, ts := range two.StartTimespans {
				if prev, ok := t.PreviousInPart(ts); ok && prev.Stop > one.Start {
					if prev.Start >= one.Start {
						t.Remove(prev)
					} else {
						t.Replace(prev, prev.WithStop(one.Start))
					}
				}
				t.Replace(ts, ts.WithStart(one.Start, one.BeatStrength()))
			}
		} else if pitch.Subset(psTwo, psOne) {
			for _, ts := range one.StartTimespans {
				if ts.Stop < two.Start {
					t.Replace(ts, ts.WithStop(two.Start))
				}
			}
		}
	}
}

// RemoveNonChordTones merges away passing and neighbor tones: in each
// 3-wide verticality window, a part whose run forms a stepwise
// passing or neighbor figure has its first two timespans merged. Not
// part of the default pipeline.
func RemoveNonChordTones(t *tree.Tree) {
	step := t.VerticalitiesNwise(3)
	for w, ok := step(); ok; w, ok = step() {
		horizontalities := tree.Unwrap(w)
		for _, part := range util.GetKeysSorted(horizontalities) {
			h := horizontalities[part]
			if !h.HasPassingTone() && !h.HasNeighborTone() {
				continue
			}
			if h[0].Measure != h[1].Measure {
				continue
			}
			merged := h[0].WithStop(h[1].Stop)
			t.Remove(h[0])
			t.Remove(h[1])
			t.Insert(merged)
		}
	}
}

// CollapseArpeggios merges consecutive verticalities that share their
// lowest pitch into block chords, part by part. Not part of the
// default pipeline.
func CollapseArpeggios(t *tree.Tree) {
	step := t.VerticalitiesNwise(2)
	for w, ok := step(); ok; w, ok = step() {
		one, two := w[0], w[1]
		psOne, psTwo := one.PitchSet(), two.PitchSet()
		if len(psOne) == 0 || len(psTwo) == 0 {
			continue
		}
		if psOne[0] != psTwo[0] {
			continue
		}
		if one.MeasureNumber() != two.MeasureNumber() {
			continue
		}
		horizontalities := tree.Unwrap(w)
		for _, part := range util.GetKeysSorted(horizontalities) {
			h := horizontalities[part]
			if len(h) < 2 {
				continue
			}
			if pitch.Equal(h[0].Pitches, h[1].Pitches) {
				continue
			}
			merged := h[0].WithStop(h[1].Stop)
			merged = merged.WithPitches(pitch.Union(h[0].Pitches, h[1].Pitches))
			t.Remove(h[0])
			t.Remove(h[1])
			t.Insert(merged)
		}
	}
}

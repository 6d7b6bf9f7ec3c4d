package tree

import (
	"sort"
)

// Tree is the offset index: every timespan of every part, ordered
// within each part by start offset. Inputs are at most a few thousand
// events, so ordered slices and linear scans are all the structure
// ever needs.
//
// Mutation misuse is fatal: removing a timespan that is not present,
// or inserting an empty interval, is a bug in the calling pass, not a
// runtime condition.
type Tree struct {
	spans map[int][]Timespan
}

func New() *Tree {
	return &Tree{spans: make(map[int][]Timespan)}
}

func FromTimespans(timespans []Timespan) *Tree {
	t := New()
	t.InsertAll(timespans)
	return t
}

// Insert adds one timespan to the index.
func (t *Tree) Insert(ts Timespan) {
	if ts.Start >= ts.Stop {
		panic("cannot insert zero or negative length timespan: " + ts.String())
	}
	part := t.spans[ts.Part]
	i := sort.Search(len(part), func(i int) bool {
		if part[i].Start != ts.Start {
			return part[i].Start > ts.Start
		}
		return part[i].Stop > ts.Stop
	})
	part = append(part, Timespan{})
	copy(part[i+1:], part[i:])
	part[i] = ts
	t.spans[ts.Part] = part
}

func (t *Tree) InsertAll(timespans []Timespan) {
	for _, ts := range timespans {
		t.Insert(ts)
	}
}

// Remove drops an exact match from the index and panics if none
// exists, since a stale timespan means a pass mutated behind its own
// back.
func (t *Tree) Remove(ts Timespan) {
	part := t.spans[ts.Part]
	for i, other := range part {
		if other.Equal(ts) {
			t.spans[ts.Part] = append(part[:i], part[i+1:]...)
			return
		}
	}
	panic("cannot remove timespan not in tree: " + ts.String())
}

func (t *Tree) RemoveAll(timespans []Timespan) {
	for _, ts := range timespans {
		t.Remove(ts)
	}
}

// Replace swaps old for new atomically with respect to the passes:
// the old timespan is gone before the new one is present.
func (t *Tree) Replace(old, new Timespan) {
	t.Remove(old)
	t.Insert(new)
}

// Parts returns the part numbers that currently own timespans,
// ascending.
func (t *Tree) Parts() []int {
	var res []int
	for part, spans := range t.spans {
		if len(spans) > 0 {
			res = append(res, part)
		}
	}
	sort.Ints(res)
	return res
}

// PartTimespans returns a copy of one part's timespans in start
// order.
func (t *Tree) PartTimespans(part int) []Timespan {
	res := make([]Timespan, len(t.spans[part]))
	copy(res, t.spans[part])
	return res
}

// All returns every timespan ordered by start offset, then part.
func (t *Tree) All() []Timespan {
	var res []Timespan
	for _, part := range t.Parts() {
		res = append(res, t.spans[part]...)
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Start != res[j].Start {
			return res[i].Start < res[j].Start
		}
		return res[i].Part < res[j].Part
	})
	return res
}

// StartOffsets returns the distinct start offsets in the index,
// ascending.
func (t *Tree) StartOffsets() []float64 {
	seen := make(map[float64]bool)
	var res []float64
	for _, spans := range t.spans {
		for _, ts := range spans {
			if !seen[ts.Start] {
				seen[ts.Start] = true
				res = append(res, ts.Start)
			}
		}
	}
	sort.Float64s(res)
	return res
}

// VerticalityAt computes the vertical slice of the index at offset:
// the timespans starting exactly there plus the ones already sounding
// across it. Always recomputed, never cached.
func (t *Tree) VerticalityAt(offset float64) Verticality {
	v := Verticality{Start: offset}
	for _, part := range t.Parts() {
		for _, ts := range t.spans[part] {
			if ts.Start > offset {
				break
			}
			if ts.Start == offset {
				v.StartTimespans = append(v.StartTimespans, ts)
			} else if ts.Stop > offset {
				v.OverlapTimespans = append(v.OverlapTimespans, ts)
			}
		}
	}
	return v
}

// Next re-reads the live index each call, so mutations made by the
// caller between calls are honored. It steps through distinct start
// offsets in ascending order, never revisiting an offset at or before
// the previous step.
type stepper struct {
	tree    *Tree
	started bool
	cursor  float64
}

func (s *stepper) next() (float64, bool) {
	for _, offset := range s.tree.StartOffsets() {
		if !s.started || offset > s.cursor {
			s.started = true
			s.cursor = offset
			return offset, true
		}
	}
	return 0, false
}

// Verticalities returns a stepping iterator over the verticalities of
// the live tree in ascending start order. Each call recomputes from
// current state, which is required: passes mutate the tree while
// iterating and must observe their own edits.
func (t *Tree) Verticalities() func() (Verticality, bool) {
	s := &stepper{tree: t}
	return func() (Verticality, bool) {
		offset, ok := s.next()
		if !ok {
			return Verticality{}, false
		}
		return t.VerticalityAt(offset), true
	}
}

// VerticalitiesNwise returns a stepping iterator over sliding windows
// of n consecutive verticalities. The window is rebuilt from the live
// tree each step: the leading offset advances past the previous
// window's leading offset, and the remaining n-1 members are whatever
// the tree holds at that moment. The sequence is finite and not
// restartable.
func (t *Tree) VerticalitiesNwise(n int) func() ([]Verticality, bool) {
	if n < 1 {
		panic("verticality window must have at least 1 member")
	}
	s := &stepper{tree: t}
	return func() ([]Verticality, bool) {
		lead, ok := s.next()
		if !ok {
			return nil, false
		}
		offsets := []float64{lead}
		for _, offset := range t.StartOffsets() {
			if offset > lead && len(offsets) < n {
				offsets = append(offsets, offset)
			}
		}
		if len(offsets) < n {
			return nil, false
		}
		res := make([]Verticality, 0, n)
		for _, offset := range offsets {
			res = append(res, t.VerticalityAt(offset))
		}
		return res, true
	}
}

// NextInPart returns the timespan following ts within its part, if
// any. ts must currently be in the tree.
func (t *Tree) NextInPart(ts Timespan) (Timespan, bool) {
	part := t.spans[ts.Part]
	for i, other := range part {
		if other.Equal(ts) {
			if i+1 < len(part) {
				return part[i+1], true
			}
			return Timespan{}, false
		}
	}
	panic("timespan not in tree: " + ts.String())
}

// PreviousInPart returns the timespan preceding ts within its part,
// if any. ts must currently be in the tree.
func (t *Tree) PreviousInPart(ts Timespan) (Timespan, bool) {
	part := t.spans[ts.Part]
	for i, other := range part {
		if other.Equal(ts) {
			if i > 0 {
				return part[i-1], true
			}
			return Timespan{}, false
		}
	}
	panic("timespan not in tree: " + ts.String())
}
